package topology

import (
	"unsafe"

	"c2clat/constants"

	"golang.org/x/sys/cpu"
)

// archLineSize is the line size x/sys/cpu pads to for this GOARCH. It is
// zero on software-abstracted targets such as wasm.
var archLineSize = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// LineSize returns the L1 data cache line size in bytes. The host's own
// report wins; otherwise the architecture's padding width; otherwise
// constants.FallbackLineSize. It never fails.
func LineSize() int {
	if n, ok := platformLineSize(); ok && validLineSize(n) {
		return n
	}
	if validLineSize(archLineSize) {
		return archLineSize
	}
	return constants.FallbackLineSize
}

// validLineSize accepts powers of two inside the configured bounds. Padding
// arithmetic divides by the cell width, so anything else is rejected.
func validLineSize(n int) bool {
	return n >= constants.MinLineSize &&
		n <= constants.MaxLineSize &&
		n&(n-1) == 0
}
