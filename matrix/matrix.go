package matrix

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvariant reports a matrix pair that breaks a latency matrix law.
var ErrInvariant = errors.New("matrix: invariant violated")

// Matrix is a symmetric N×N table of nanosecond latencies with a zero
// diagonal. Rows and columns follow the core list it was built for.
type Matrix struct {
	n     int
	cells []int64 // row-major
}

// New returns an n×n zero matrix.
func New(n int) *Matrix {
	if n < 0 {
		panic("matrix: negative dimension " + strconv.Itoa(n))
	}
	return &Matrix{n: n, cells: make([]int64, n*n)}
}

// Len is the number of rows (and columns).
func (m *Matrix) Len() int {
	return m.n
}

// At returns the latency between row i and column j.
func (m *Matrix) At(i, j int) int64 {
	return m.cells[m.index(i, j)]
}

// SetPair writes v at (i, j) and mirrors it to (j, i). The diagonal is
// never written.
func (m *Matrix) SetPair(i, j int, v int64) {
	if i == j {
		panic("matrix: SetPair on diagonal " + strconv.Itoa(i))
	}
	m.cells[m.index(i, j)] = v
	m.cells[m.index(j, i)] = v
}

// Rows copies the matrix out as a slice of rows.
func (m *Matrix) Rows() [][]int64 {
	rows := make([][]int64, m.n)
	for i := range rows {
		rows[i] = append([]int64(nil), m.cells[i*m.n:(i+1)*m.n]...)
	}
	return rows
}

func (m *Matrix) index(i, j int) int {
	if uint(i) >= uint(m.n) || uint(j) >= uint(m.n) {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of range [0,%d)", i, j, m.n))
	}
	return i*m.n + j
}

// Verify checks the latency matrix laws on a min/avg pair:
//
//	M[i][i] == 0, M[i][j] == M[j][i], M >= 0, min[i][j] <= avg[i][j]
func Verify(lo, avg *Matrix) error {
	if lo.n != avg.n {
		return fmt.Errorf("%w: dimensions %d and %d differ", ErrInvariant, lo.n, avg.n)
	}
	for _, named := range []struct {
		name string
		m    *Matrix
	}{{"min", lo}, {"avg", avg}} {
		m := named.m
		for i := 0; i < m.n; i++ {
			if v := m.At(i, i); v != 0 {
				return fmt.Errorf("%w: %s[%d][%d] = %d, want 0", ErrInvariant, named.name, i, i, v)
			}
			for j := i + 1; j < m.n; j++ {
				a, b := m.At(i, j), m.At(j, i)
				if a != b {
					return fmt.Errorf("%w: %s[%d][%d] = %d but [%d][%d] = %d", ErrInvariant, named.name, i, j, a, j, i, b)
				}
				if a < 0 {
					return fmt.Errorf("%w: %s[%d][%d] = %d is negative", ErrInvariant, named.name, i, j, a)
				}
			}
		}
	}
	for i := 0; i < lo.n; i++ {
		for j := i + 1; j < lo.n; j++ {
			if lo.At(i, j) > avg.At(i, j) {
				return fmt.Errorf("%w: min[%d][%d] = %d exceeds avg %d", ErrInvariant, i, j, lo.At(i, j), avg.At(i, j))
			}
		}
	}
	return nil
}
