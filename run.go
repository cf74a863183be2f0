package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	rtdebug "runtime/debug"

	"c2clat/config"
	"c2clat/constants"
	"c2clat/debug"
	"c2clat/matrix"
	"c2clat/measure"
	"c2clat/report"
	"c2clat/store"
	"c2clat/topology"
	"c2clat/utils"
)

// runMeasurement discovers the allowed cores, measures every pair and writes
// the report to w. Diagnostics go to stderr only.
func runMeasurement(w io.Writer, cfg *config.Config) error {
	// PHASE 1: topology and parameters
	cores, err := topology.Cores()
	if err != nil {
		return err
	}
	lineSize := topology.LineSize()

	m, err := measure.New(cfg.Params())
	if err != nil {
		return err
	}

	if !topology.PinSupported() {
		debug.DropMessage("WARN", "thread pinning is not available on "+runtime.GOOS+"; pairs are not bound to their cores")
	}
	debug.DropVerbose("TOPOLOGY", utils.Itoa(len(cores))+" cores ["+utils.JoinInts(cores)+"], cache line "+utils.Itoa(lineSize)+"B")
	debug.DropVerbose("PARAMS", utils.Itoa(cfg.Samples)+" samples x "+utils.Itoa(cfg.Repetitions)+" repetitions, "+
		utils.Itoa(cfg.Warmup)+" discarded, "+utils.Itoa(cfg.Params().Kept())+" kept, "+utils.Itoa(matrix.Pairs(len(cores)))+" pairs")

	b := &matrix.Builder{
		Cores:    cores,
		LineSize: lineSize,
		Measurer: m,
		OnPair:   reportProgress,
	}

	// PHASE 2 + 3: timed section with both sides runnable and the collector held off
	restoreProcs := measure.EnsureParallel()
	resume := quiesce()
	res, err := b.Build()
	resume()
	restoreProcs()
	if err != nil {
		return err
	}

	if err := report.Render(w, cfg.OutputFormat(), res); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if cfg.Database == "" {
		return nil
	}
	return record(cfg, lineSize, res)
}

// quiesce collects up front and switches the collector off so no GC cycle
// lands inside a timed repetition. The memory limit still forces a cycle if
// the heap grows past constants.HeapSoftLimit. The returned func restores
// both settings.
func quiesce() (resume func()) {
	runtime.GC()
	runtime.GC()
	rtdebug.FreeOSMemory()

	prevLimit := rtdebug.SetMemoryLimit(constants.HeapSoftLimit)
	prevPercent := rtdebug.SetGCPercent(-1)
	return func() {
		rtdebug.SetGCPercent(prevPercent)
		rtdebug.SetMemoryLimit(prevLimit)
	}
}

func reportProgress(p matrix.Pair) {
	if !debug.Verbose() {
		return
	}
	debug.DropMessage("PAIR",
		utils.Itoa(p.Index+1)+"/"+utils.Itoa(p.Total)+
			" cpu "+utils.Itoa(p.Responder)+" <-> cpu "+utils.Itoa(p.Initiator)+
			": min "+utils.I64toa(p.Result.Min)+"ns avg "+utils.I64toa(p.Result.Avg)+"ns")
}

// record appends the finished run to the history database.
func record(cfg *config.Config, lineSize int, res *matrix.Result) error {
	s, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	id, err := s.Save(&store.Run{
		Host:        host,
		Arch:        runtime.GOARCH,
		Fingerprint: store.Fingerprint(res.Cores, lineSize, runtime.GOARCH, host),
		LineSize:    lineSize,
		Params:      cfg.Params(),
		Result:      res,
	})
	if err != nil {
		return err
	}
	debug.DropMessage("SAVED", "run "+id+" -> "+cfg.Database)
	return nil
}
