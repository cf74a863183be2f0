//go:build !linux

package topology

// platformLineSize has no host source off linux; LineSize falls back to the
// architecture's padding width.
func platformLineSize() (int, bool) {
	return 0, false
}
