// ════════════════════════════════════════════════════════════════════════════════════════════════
// Host Topology
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Core-to-Core Latency
// Component: Core Discovery, Cache Geometry & Thread Placement
//
// Description:
//   Answers three questions about the host before any pair is measured:
//     - which logical cores this process may run on (affinity mask),
//     - how wide an L1 data cache line is,
//     - how to bind the calling OS thread to exactly one core.
//
// Platform split:
//   - linux:  sched_getaffinity(2) / sched_setaffinity(2) via x/sys/unix,
//             cache geometry from sysfs.
//   - others: a 0..NumCPU-1 range and no-op pinning. Results on such hosts
//             carry no placement guarantee.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable reports that the affinity mask could not be queried.
	ErrUnavailable = errors.New("topology: affinity query failed")

	// ErrPin reports that a thread could not be bound to its intended core.
	ErrPin = errors.New("topology: pin failed")
)

// queryCores reads the raw affinity mask. Tests swap it out.
var queryCores = platformCores

// Cores returns the logical core ids the process may run on, ascending.
// Ids are not necessarily contiguous.
func Cores() ([]int, error) {
	cores, err := queryCores()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(cores) == 0 {
		return nil, fmt.Errorf("%w: empty mask", ErrUnavailable)
	}
	return cores, nil
}

// Pin binds the calling OS thread to core. The caller must hold
// runtime.LockOSThread for the binding to mean anything. On linux the
// resulting kernel mask is read back and must contain exactly core.
func Pin(core int) error {
	if core < 0 {
		return fmt.Errorf("%w: cpu %d out of range", ErrPin, core)
	}
	if err := platformPin(core); err != nil {
		return fmt.Errorf("%w: cpu %d: %v", ErrPin, core, err)
	}
	return nil
}

// Save captures the calling thread's affinity mask and returns a function
// that reinstates it. The restore function is always non-nil.
func Save() (restore func() error, err error) {
	return platformSave()
}

// PinSupported reports whether Pin actually constrains thread placement on
// this platform.
func PinSupported() bool {
	return pinSupported
}
