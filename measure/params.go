package measure

import (
	"errors"
	"fmt"

	"c2clat/constants"
)

// ErrInvalidParams reports a configuration that cannot be measured.
var ErrInvalidParams = errors.New("measure: invalid parameters")

// Params controls how long each core pair is exercised.
type Params struct {
	// Samples is the number of handshake rounds timed per repetition.
	Samples int
	// Repetitions is the number of outer repetitions, warm-up included.
	Repetitions int
	// Warmup is how many leading repetitions are left out of the statistics.
	Warmup int
}

// DefaultParams returns 1000 samples over 100 repetitions, first discarded.
func DefaultParams() Params {
	return Params{
		Samples:     constants.DefaultSamples,
		Repetitions: constants.DefaultRepetitions,
		Warmup:      constants.DefaultWarmup,
	}
}

// Validate rejects parameters that would divide by zero or leave no
// repetition to reduce.
func (p Params) Validate() error {
	switch {
	case p.Samples < 1:
		return fmt.Errorf("%w: samples must be >= 1, got %d", ErrInvalidParams, p.Samples)
	case p.Warmup < 0:
		return fmt.Errorf("%w: warmup must be >= 0, got %d", ErrInvalidParams, p.Warmup)
	case p.Repetitions <= p.Warmup:
		return fmt.Errorf("%w: repetitions (%d) must exceed warmup (%d)", ErrInvalidParams, p.Repetitions, p.Warmup)
	}
	return nil
}

// Kept is the number of repetitions that contribute to the statistics.
func (p Params) Kept() int {
	return p.Repetitions - p.Warmup
}
