// ============================================================================
// CHANNEL LAYOUT AND ORDERING VALIDATION SUITE
// ============================================================================
//
// Test categories:
//   - Construction: sentinel initialisation, argument validation
//   - Layout: per-cell line ownership, padding width, cross-channel isolation
//   - Ordering: release/acquire visibility of data written before Publish

package channel

import (
	"runtime"
	"sync"
	"testing"
)

// ============================================================================
// CONSTRUCTION
// ============================================================================

func TestNewStartsIdle(t *testing.T) {
	c := New(64)
	for _, cell := range []Cell{Forward, Backward} {
		if got := c.Observe(cell); got != Idle {
			t.Fatalf("%v starts at %d, want %d", cell, got, Idle)
		}
	}
}

func TestPublishObserve(t *testing.T) {
	c := New(64)
	c.Publish(Forward, 41)
	c.Publish(Backward, 7)
	if got := c.Observe(Forward); got != 41 {
		t.Fatalf("forward = %d, want 41", got)
	}
	if got := c.Observe(Backward); got != 7 {
		t.Fatalf("backward = %d, want 7", got)
	}
}

func TestNewRejectsBadLineSize(t *testing.T) {
	for _, n := range []int{0, 4, 12, 60} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%d) did not panic", n)
				}
			}()
			New(n)
		}()
	}
}

func TestCellString(t *testing.T) {
	if Forward.String() != "forward" || Backward.String() != "backward" {
		t.Fatalf("unexpected names %q %q", Forward, Backward)
	}
	if got := Cell(9).String(); got != "cell(9)" {
		t.Fatalf("Cell(9) = %q", got)
	}
}

// ============================================================================
// LAYOUT
// ============================================================================

func TestPadCells(t *testing.T) {
	tests := []struct{ line, pad int }{
		{8, 0},
		{32, 3},
		{64, 7},
		{128, 15},
	}
	for _, tt := range tests {
		if got := New(tt.line).PadCells(); got != tt.pad {
			t.Errorf("PadCells(line=%d) = %d, want %d", tt.line, got, tt.pad)
		}
	}
}

func TestCellsOwnDistinctAlignedLines(t *testing.T) {
	for _, line := range []int{32, 64, 128, 256} {
		for i := 0; i < 32; i++ {
			c := New(line)
			f, b := c.Addr(Forward), c.Addr(Backward)
			if f%uintptr(line) != 0 || b%uintptr(line) != 0 {
				t.Fatalf("line %d: cells not line aligned: %#x %#x", line, f, b)
			}
			if b-f != uintptr(line) {
				t.Fatalf("line %d: cell distance %d, want exactly one line", line, b-f)
			}
			if f/uintptr(line) == b/uintptr(line) {
				t.Fatalf("line %d: both cells in block %#x", line, f/uintptr(line))
			}
		}
	}
}

// A 64-byte line with 8-byte cells gives each cell one 64-byte region and no
// two cells, in this or any other live channel, share an aligned block.
func TestNoSharedBlocksAcrossChannels(t *testing.T) {
	const line = 64
	live := make([]*Channel, 0, 256)
	blocks := make(map[uintptr]string)
	for i := 0; i < cap(live); i++ {
		c := New(line)
		live = append(live, c)
		for _, cell := range []Cell{Forward, Backward} {
			blk := c.Addr(cell) / line
			if prev, dup := blocks[blk]; dup {
				t.Fatalf("block %#x shared by %s and channel %d %v", blk, prev, i, cell)
			}
			blocks[blk] = cell.String()
		}
	}
	runtime.KeepAlive(live)
}

func TestLineSizeReported(t *testing.T) {
	if got := New(128).LineSize(); got != 128 {
		t.Fatalf("LineSize() = %d, want 128", got)
	}
}

// ============================================================================
// ORDERING
// ============================================================================

// Data written before Publish must be visible after the matching Observe.
func TestPublishOrdersPriorWrites(t *testing.T) {
	const rounds = 2000
	c := New(64)
	payload := make([]int64, rounds)

	var (
		wg     sync.WaitGroup
		stale  int
		firstN int64 = -1
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := int64(0); n < rounds; n++ {
			for c.Observe(Forward) != n {
				runtime.Gosched()
			}
			if payload[n] != n*3 {
				if stale == 0 {
					firstN = n
				}
				stale++
			}
			c.Publish(Backward, n)
		}
	}()

	for n := int64(0); n < rounds; n++ {
		payload[n] = n * 3
		c.Publish(Forward, n)
		for c.Observe(Backward) != n {
			runtime.Gosched()
		}
	}
	wg.Wait()
	if stale != 0 {
		t.Fatalf("%d rounds saw stale payload, first at round %d", stale, firstN)
	}
}
