// ============================================================================
// CROSS-PLATFORM COMPATIBILITY STUB
// ============================================================================
//
// Hosts without sched_setaffinity(2) (macOS, BSDs, Windows, wasm) get the
// same API surface with a lower guarantee:
//   - Cores enumerates 0..NumCPU-1 instead of reading a real mask.
//   - Pin succeeds without binding anything; the scheduler decides.
//
// Callers check PinSupported and warn the user that placement is not
// guaranteed on these hosts.

//go:build !linux

package topology

import "runtime"

const pinSupported = false

func platformCores() ([]int, error) {
	n := runtime.NumCPU()
	cores := make([]int, n)
	for i := range cores {
		cores[i] = i
	}
	return cores, nil
}

func platformPin(cpu int) error {
	return nil
}

func platformSave() (func() error, error) {
	return func() error { return nil }, nil
}
