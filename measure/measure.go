// ════════════════════════════════════════════════════════════════════════════════════════════════
// Pair Measurer
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Core-to-Core Latency
// Component: Pinned Ping-Pong Measurement of One Core Pair
//
// Description:
//   Binds the calling thread (initiator) and one freshly spawned thread
//   (responder) to the two cores of a pair, runs the handshake for
//   Repetitions × Samples rounds over a private Channel and reduces the
//   repetition timings into min/avg one-way latency.
//
// Threading model:
//   - Exactly two OS threads are busy while a pair runs.
//   - The responder goroutine locks its OS thread and never unlocks, so the
//     pinned thread is torn down when the goroutine exits.
//   - Both sides spin at once, so fewer than two Ps is refused up front
//     (ErrSerial); EnsureParallel raises GOMAXPROCS for a run.
//   - The initiator pins before spawning; the responder reports its own pin
//     result before entering the protocol. A pin failure on either side
//     returns before anyone spins.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package measure

import (
	"errors"
	"fmt"
	"runtime"

	"c2clat/channel"
	"c2clat/constants"
	"c2clat/topology"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrResponder reports that the responder thread failed.
	ErrResponder = errors.New("measure: responder failed")

	// ErrSerial reports that the scheduler cannot run both sides of a pair
	// at the same time, so every round would wait for a preemption.
	ErrSerial = errors.New("measure: responder and initiator cannot run in parallel")
)

// EnsureParallel raises GOMAXPROCS to constants.MinParallelProcs when it is
// lower and returns a func that puts the previous value back.
func EnsureParallel() (restore func()) {
	prev := runtime.GOMAXPROCS(0)
	if prev >= constants.MinParallelProcs {
		return func() {}
	}
	runtime.GOMAXPROCS(constants.MinParallelProcs)
	return func() { runtime.GOMAXPROCS(prev) }
}

// Measurer runs the pinned handshake for one pair at a time.
type Measurer struct {
	params Params

	// Pin binds the calling, OS-locked thread to a core. Defaults to
	// topology.Pin.
	Pin func(core int) error
}

// New validates p and returns a Measurer that pins through topology.Pin.
func New(p Params) (*Measurer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Measurer{params: p, Pin: topology.Pin}, nil
}

// Params returns the parameters the measurer was built with.
func (m *Measurer) Params() Params {
	return m.params
}

// Pair measures the one-way latency between responder and initiator over
// ch, which must be fresh (both cells Idle) and is not reused afterwards.
// The calling goroutine becomes the initiator and stays bound to the
// initiator core when Pair returns.
func (m *Measurer) Pair(ch *channel.Channel, responder, initiator int) (Result, error) {
	if responder == initiator {
		return Result{}, fmt.Errorf("%w: responder and initiator share cpu %d", topology.ErrPin, responder)
	}
	if procs := runtime.GOMAXPROCS(0); procs < constants.MinParallelProcs {
		return Result{}, fmt.Errorf("%w: GOMAXPROCS=%d", ErrSerial, procs)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := m.Pin(initiator); err != nil {
		return Result{}, fmt.Errorf("initiator: %w", err)
	}

	reps, samples := int64(m.params.Repetitions), int64(m.params.Samples)
	link := *ch

	ready := make(chan error, 1)
	var g errgroup.Group
	g.Go(func() error {
		runtime.LockOSThread()
		if err := m.Pin(responder); err != nil {
			ready <- err
			return fmt.Errorf("%w: %w", ErrResponder, err)
		}
		ready <- nil
		respond(link, reps, samples)
		return nil
	})

	if err := <-ready; err != nil {
		return Result{}, g.Wait()
	}

	elapsed := make([]int64, reps)
	initiate(link, reps, samples, elapsed)

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Reduce(elapsed, m.params.Samples, m.params.Warmup)
}
