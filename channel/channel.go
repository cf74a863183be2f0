// channel.go
//
// Two-cell rendezvous medium for one core pair. Each sequence cell sits at
// the start of its own cache line inside a byte buffer that is sized and
// aligned at construction time, because the line width is only known once
// the host has been inspected. The remaining bytes of each line are filler
// that nothing reads or writes, so no other variable (including the
// sibling cell) can share a line with a cell.
//
// Ordering: Publish is a release store, Observe an acquire load. Go's
// sync/atomic is sequentially consistent, a superset of acquire/release.
// One writer and one reader per cell; there is no lock.

package channel

import (
	"strconv"
	"sync/atomic"
	"unsafe"

	"c2clat/constants"
)

// Cell selects one direction of the channel.
type Cell uint8

const (
	// Forward is written by the initiator and read by the responder.
	Forward Cell = iota
	// Backward is written by the responder and read by the initiator.
	Backward
)

const cellCount = 2

// Idle is the value of a cell before any round has been published.
const Idle int64 = -1

// String names the cell for diagnostics.
func (c Cell) String() string {
	switch c {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return "cell(" + strconv.Itoa(int(c)) + ")"
}

// Channel owns the two sequence cells for a single pair measurement. It is
// built fresh per pair and dropped afterwards.
//
// Methods take a value receiver so the measurement loops can be
// instantiated on the concrete type and keep the accessors inlined.
type Channel struct {
	cells [cellCount]*atomic.Int64
	line  int
	mem   []byte // backing store; keeps cells reachable
}

// New builds a channel whose cells each own one lineSize-byte line.
// lineSize must be a positive multiple of the cell width; anything else is
// a programming error and panics.
func New(lineSize int) *Channel {
	if lineSize < constants.CellWidth || lineSize%constants.CellWidth != 0 {
		panic("channel: line size " + strconv.Itoa(lineSize) + " is not a multiple of the cell width")
	}

	// One spare line so the first cell can be moved up to a line boundary.
	mem := make([]byte, (cellCount+1)*lineSize)
	base := uintptr(unsafe.Pointer(&mem[0]))
	off := int((uintptr(lineSize) - base%uintptr(lineSize)) % uintptr(lineSize))

	c := &Channel{line: lineSize, mem: mem}
	for i := range c.cells {
		p := (*atomic.Int64)(unsafe.Pointer(&mem[off+i*lineSize]))
		p.Store(Idle)
		c.cells[i] = p
	}
	return c
}

// Publish stores v into cell with release semantics.
//
//go:nosplit
func (c Channel) Publish(cell Cell, v int64) {
	c.cells[cell].Store(v)
}

// Observe loads the last value published into cell with acquire semantics.
//
//go:nosplit
func (c Channel) Observe(cell Cell) int64 {
	return c.cells[cell].Load()
}

// LineSize is the width in bytes of the line each cell owns.
func (c Channel) LineSize() int {
	return c.line
}

// PadCells is the number of cell-sized fillers trailing each cell:
// lineSize/cellWidth - 1.
func (c Channel) PadCells() int {
	return c.line/constants.CellWidth - 1
}

// Addr reports the address of cell. Only meaningful for layout checks.
func (c Channel) Addr(cell Cell) uintptr {
	return uintptr(unsafe.Pointer(c.cells[cell]))
}
