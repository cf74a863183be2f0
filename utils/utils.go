// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: utils.go - cold-path formatting and stderr helpers
//
// Purpose:
//   - Integer formatting without fmt for diagnostic lines.
//   - Direct writes to file descriptor 2 so diagnostics never mix with the
//     report on stdout (which may be piped straight into gnuplot).
//
// ⚠️ None of these helpers belong inside a timed loop.
// ─────────────────────────────────────────────────────────────────────────────

package utils

import "os"

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities
///////////////////////////////////////////////////////////////////////////////

// Itoa formats a signed integer in base 10 using a stack buffer.
func Itoa(n int) string {
	return I64toa(int64(n))
}

// I64toa formats a signed 64-bit integer in base 10.
func I64toa(n int64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	u := uint64(n)
	if n < 0 {
		u = uint64(-n)
	}
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if n < 0 {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// JoinInts renders xs as a comma separated list ("0,1,2").
// An empty slice yields the empty string.
func JoinInts(xs []int) string {
	if len(xs) == 0 {
		return ""
	}
	b := make([]byte, 0, len(xs)*4)
	for i, x := range xs {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, Itoa(x)...)
	}
	return string(b)
}

///////////////////////////////////////////////////////////////////////////////
// Output
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg verbatim to stderr. Write errors are dropped: there
// is nowhere left to report them.
func PrintWarning(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}
