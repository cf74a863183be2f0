// ============================================================================
// TOPOLOGY VALIDATION SUITE
// ============================================================================
//
// Test categories:
//   - Core discovery: non-empty, strictly ascending, non-negative ids,
//     query failure and empty mask
//   - Cache geometry: accepted widths, fallback chain
//   - Pinning: argument validation, lock-then-pin round trip

package topology

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"c2clat/constants"
)

// ============================================================================
// CORE DISCOVERY
// ============================================================================

func TestCoresAscendingAndNonEmpty(t *testing.T) {
	cores, err := Cores()
	if err != nil {
		t.Fatalf("Cores: %v", err)
	}
	if len(cores) == 0 {
		t.Fatal("Cores returned an empty list")
	}
	for i, c := range cores {
		if c < 0 {
			t.Fatalf("core[%d] = %d, want non-negative", i, c)
		}
		if i > 0 && cores[i-1] >= c {
			t.Fatalf("cores not strictly ascending at %d: %v", i, cores)
		}
	}
}

func TestCoresBoundedByNumCPU(t *testing.T) {
	cores, err := Cores()
	if err != nil {
		t.Fatalf("Cores: %v", err)
	}
	// The Go runtime sizes NumCPU from the same affinity mask at startup.
	if len(cores) > runtime.NumCPU() && PinSupported() {
		t.Fatalf("len(cores) = %d exceeds NumCPU = %d", len(cores), runtime.NumCPU())
	}
}

// withQuery swaps the affinity query for the duration of the test.
func withQuery(t *testing.T, fn func() ([]int, error)) {
	t.Helper()
	prev := queryCores
	queryCores = fn
	t.Cleanup(func() { queryCores = prev })
}

func TestCoresQueryFailure(t *testing.T) {
	cause := errors.New("operation not permitted")
	withQuery(t, func() ([]int, error) { return nil, cause })

	cores, err := Cores()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Cores() err = %v, want ErrUnavailable", err)
	}
	if cores != nil {
		t.Fatalf("Cores() = %v on failure, want nil", cores)
	}
	if !strings.Contains(err.Error(), cause.Error()) {
		t.Fatalf("Cores() err = %q, want cause %q in message", err, cause)
	}
}

func TestCoresEmptyMask(t *testing.T) {
	withQuery(t, func() ([]int, error) { return []int{}, nil })

	if _, err := Cores(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Cores() err = %v, want ErrUnavailable", err)
	}
}

func TestCoresPassesMaskThrough(t *testing.T) {
	withQuery(t, func() ([]int, error) { return []int{1, 5, 6}, nil })

	cores, err := Cores()
	if err != nil {
		t.Fatalf("Cores: %v", err)
	}
	if len(cores) != 3 || cores[0] != 1 || cores[1] != 5 || cores[2] != 6 {
		t.Fatalf("Cores() = %v, want [1 5 6]", cores)
	}
}

// ============================================================================
// CACHE GEOMETRY
// ============================================================================

func TestLineSizeIsUsable(t *testing.T) {
	n := LineSize()
	if !validLineSize(n) {
		t.Fatalf("LineSize() = %d is not an accepted width", n)
	}
	if n%constants.CellWidth != 0 {
		t.Fatalf("LineSize() = %d is not a multiple of the cell width", n)
	}
}

func TestValidLineSize(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{0, false},
		{-64, false},
		{4, false},
		{8, true},
		{32, true},
		{48, false},
		{64, true},
		{128, true},
		{256, true},
		{1024, true},
		{2048, false},
	}
	for _, tt := range tests {
		if got := validLineSize(tt.n); got != tt.want {
			t.Errorf("validLineSize(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

// ============================================================================
// PINNING
// ============================================================================

func TestPinRejectsNegativeCore(t *testing.T) {
	err := Pin(-1)
	if !errors.Is(err, ErrPin) {
		t.Fatalf("Pin(-1) = %v, want ErrPin", err)
	}
}

func TestPinEveryAllowedCore(t *testing.T) {
	cores, err := Cores()
	if err != nil {
		t.Fatalf("Cores: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		// The thread is discarded when this goroutine exits locked.
		runtime.LockOSThread()
		for _, c := range cores {
			if err := Pin(c); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	if err := <-done; err != nil {
		t.Fatalf("Pin: %v", err)
	}
}
