package measure

import "fmt"

// Result is the one-way latency of one core pair in nanoseconds.
type Result struct {
	Min int64 // best repetition
	Avg int64 // mean over kept repetitions
}

// Reduce turns per-repetition wall times (ns for the whole inner loop) into
// one-way per-round latencies. The first warmup entries are discarded.
//
//	Min = min(kept) / samples / 2
//	Avg = (sum(kept) / len(kept)) / samples / 2
//
// Integer division throughout; halving converts a round trip into a one-way
// estimate on the assumption that both directions cost the same.
func Reduce(elapsed []int64, samples, warmup int) (Result, error) {
	if samples < 1 {
		return Result{}, fmt.Errorf("%w: samples must be >= 1, got %d", ErrInvalidParams, samples)
	}
	if warmup < 0 || warmup >= len(elapsed) {
		return Result{}, fmt.Errorf("%w: %d repetitions leave none after warmup %d", ErrInvalidParams, len(elapsed), warmup)
	}

	kept := elapsed[warmup:]
	lo, sum := kept[0], int64(0)
	for _, e := range kept {
		if e < 0 {
			return Result{}, fmt.Errorf("%w: negative elapsed time %d", ErrInvalidParams, e)
		}
		lo = min(lo, e)
		sum += e
	}

	n := int64(samples)
	return Result{
		Min: lo / n / 2,
		Avg: sum / int64(len(kept)) / n / 2,
	}, nil
}
