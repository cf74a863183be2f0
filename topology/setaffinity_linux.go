// setaffinity_linux.go - affinity query and thread pinning via sched_{get,set}affinity(2)

//go:build linux

package topology

import (
	"errors"

	"c2clat/constants"

	"golang.org/x/sys/unix"
)

const pinSupported = true

// platformCores scans the process mask for set bits. pid 0 addresses the
// calling thread, which at startup carries the process mask.
func platformCores() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, err
	}
	cores := make([]int, 0, set.Count())
	for i := 0; i < constants.CPUSetSize; i++ {
		if set.IsSet(i) {
			cores = append(cores, i)
		}
	}
	return cores, nil
}

// platformPin restricts the calling thread to one cpu and reads the mask
// back. A kernel that silently widened or ignored the request is a failure.
func platformPin(cpu int) error {
	if cpu >= constants.CPUSetSize {
		return errors.New("beyond CPU_SETSIZE")
	}
	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return err
	}

	var got unix.CPUSet
	if err := unix.SchedGetaffinity(0, &got); err != nil {
		return err
	}
	if got.Count() != 1 || !got.IsSet(cpu) {
		return errors.New("kernel mask does not match request")
	}
	return nil
}

func platformSave() (func() error, error) {
	var saved unix.CPUSet
	if err := unix.SchedGetaffinity(0, &saved); err != nil {
		return func() error { return nil }, err
	}
	return func() error {
		return unix.SchedSetaffinity(0, &saved)
	}, nil
}
