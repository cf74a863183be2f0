// ════════════════════════════════════════════════════════════════════════════════════════════════
// Latency Matrix Builder
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Core-to-Core Latency
// Component: Sequential All-Pairs Driver
//
// Description:
//   Walks every unordered pair (i < j) of the core list in a fixed order,
//   outer index ascending, inner ascending, hands each pair a fresh Channel
//   and writes the result symmetrically into the min and avg matrices.
//
// Ordering guarantee:
//   Pairs run strictly one after another from a single goroutine. Two
//   concurrent pairs would contend for the same interconnect and bias each
//   other, so there is deliberately no worker pool here.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package matrix

import (
	"errors"
	"fmt"
	"runtime"

	"c2clat/channel"
	"c2clat/measure"
	"c2clat/topology"
)

// PairMeasurer measures one pair over a fresh channel. *measure.Measurer is
// the production implementation.
type PairMeasurer interface {
	Pair(ch *channel.Channel, responder, initiator int) (measure.Result, error)
}

// Pair is one completed measurement, reported through Builder.OnPair.
// Row and Col index the core list; Index counts pairs from 0 in
// measurement order out of Total.
type Pair struct {
	Row, Col  int
	Responder int
	Initiator int
	Result    measure.Result
	Index     int
	Total     int
}

// Result is the product handed to renderers and the store: the core list
// labelling rows and columns, and the two completed matrices.
type Result struct {
	Cores []int
	Min   *Matrix
	Avg   *Matrix
}

// Builder drives a PairMeasurer over every pair of Cores.
type Builder struct {
	Cores    []int
	LineSize int
	Measurer PairMeasurer

	// OnPair, when set, is called after each pair completes, outside any
	// timed region.
	OnPair func(Pair)
}

// Pairs is the number of unordered pairs among n cores.
func Pairs(n int) int {
	return n * (n - 1) / 2
}

// Build measures all pairs and returns the verified matrices. Any error
// aborts the run; no partial result is returned.
func (b *Builder) Build() (*Result, error) {
	if b.Measurer == nil {
		return nil, errors.New("matrix: builder has no measurer")
	}
	if err := checkCores(b.Cores); err != nil {
		return nil, err
	}

	// One OS thread drives the whole run and gets its mask back afterwards.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	restore, err := topology.Save()
	if err != nil {
		return nil, fmt.Errorf("matrix: save affinity: %w", err)
	}
	defer func() { _ = restore() }()

	n := len(b.Cores)
	res := &Result{
		Cores: append([]int(nil), b.Cores...),
		Min:   New(n),
		Avg:   New(n),
	}

	total, idx := Pairs(n), 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ch := channel.New(b.LineSize)
			r, err := b.Measurer.Pair(ch, b.Cores[i], b.Cores[j])
			if err != nil {
				return nil, fmt.Errorf("cpu %d <-> cpu %d: %w", b.Cores[i], b.Cores[j], err)
			}
			res.Min.SetPair(i, j, r.Min)
			res.Avg.SetPair(i, j, r.Avg)

			if b.OnPair != nil {
				b.OnPair(Pair{
					Row: i, Col: j,
					Responder: b.Cores[i], Initiator: b.Cores[j],
					Result: r, Index: idx, Total: total,
				})
			}
			idx++
		}
	}

	if err := Verify(res.Min, res.Avg); err != nil {
		return nil, err
	}
	return res, nil
}

// checkCores rejects lists that would pin two roles to one core.
func checkCores(cores []int) error {
	seen := make(map[int]struct{}, len(cores))
	for _, c := range cores {
		if c < 0 {
			return fmt.Errorf("matrix: negative core id %d", c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("matrix: core %d listed twice", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
