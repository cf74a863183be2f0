// handshake.go
//
// Ping-pong protocol between the initiator (driving thread) and the
// responder. Round values run 0,1,2,... across all repetitions:
//
//	initiator                          responder
//	---------                          ---------
//	publish(forward, seq)  ─────────▶  spin until observe(forward) == seq
//	spin until observe(backward) == seq  ◀─────────  publish(backward, seq)
//
// Values never repeat within a pair, so a cell can never already hold the
// value a side is about to wait for, whatever the sample count.
//
// Both loops spin without sleeping, yielding or relaxing: any of those adds
// more latency than the signal being measured. There is no timeout; a dead
// peer hangs the other side.

package measure

import (
	"time"

	"c2clat/channel"
)

// Link is the two-cell medium the protocol runs over. channel.Channel is the
// production implementation; tests substitute recording wrappers.
type Link interface {
	Publish(cell channel.Cell, v int64)
	Observe(cell channel.Cell) int64
}

// respond echoes every forward value back on the backward cell.
func respond[L Link](l L, reps, samples int64) {
	for seq, end := int64(0), reps*samples; seq < end; seq++ {
		for l.Observe(channel.Forward) != seq {
		}
		l.Publish(channel.Backward, seq)
	}
}

// initiate drives reps repetitions of samples rounds each and stores the
// wall time of every repetition's inner loop into elapsed (len >= reps).
func initiate[L Link](l L, reps, samples int64, elapsed []int64) {
	seq := int64(0)
	for m := int64(0); m < reps; m++ {
		start := time.Now()
		for end := seq + samples; seq < end; seq++ {
			l.Publish(channel.Forward, seq)
			for l.Observe(channel.Backward) != seq {
			}
		}
		elapsed[m] = time.Since(start).Nanoseconds()
	}
}
