// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go - measurement defaults and platform fallbacks
//
// Purpose:
//   - Defaults for the layered configuration (overridable by file, env, flags).
//   - Fallbacks used when the host cannot describe itself.
//
// ⚠️ No runtime logic here - all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Measurement ──────────────────────────────

const (
	// DefaultSamples is the number of handshake rounds timed per repetition.
	// 1000 rounds keep one repetition in the tens of microseconds on a
	// single die, long enough to swamp the clock read at either end.
	DefaultSamples = 1000

	// DefaultRepetitions is the number of outer repetitions per core pair.
	DefaultRepetitions = 100

	// DefaultWarmup is how many leading repetitions are discarded. The first
	// repetition absorbs thread placement and cold cache lines.
	DefaultWarmup = 1
)

// ───────────────────────────── Cache Geometry ─────────────────────────────

const (
	// FallbackLineSize is used when neither sysfs nor x/sys/cpu yields a
	// usable cache line size.
	FallbackLineSize = 64

	// MinLineSize and MaxLineSize bound what is accepted from the host. A
	// value outside the range is treated as a failed lookup.
	MinLineSize = 8
	MaxLineSize = 1024

	// CellWidth is the size in bytes of one sequence cell (int64).
	CellWidth = 8
)

// ───────────────────────────── Topology ─────────────────────────────

const (
	// CPUSetSize bounds the logical CPU ids scanned in an affinity mask.
	// Matches the kernel's CPU_SETSIZE.
	CPUSetSize = 1024
)

// ───────────────────────────── Output & Storage ─────────────────────────────

const (
	// DefaultFormat is the report format used when none is configured.
	DefaultFormat = "text"

	// EnvPrefix prefixes environment overrides: C2CLAT_SAMPLES=500.
	EnvPrefix = "C2CLAT_"

	// ConfigFileName is looked up in the working directory when --config is
	// not given.
	ConfigFileName = "c2clat.yaml"
)

// ───────────────────────────── Runtime ─────────────────────────────

const (
	// HeapSoftLimit is the memory limit applied while the collector is
	// switched off for a run. Crossing it forces a collection mid-run.
	HeapSoftLimit = 128 << 20 // 128 MiB

	// MinParallelProcs is the GOMAXPROCS floor for a pair: the responder and
	// the initiator both spin for the whole measurement.
	MinParallelProcs = 2

	// DefaultListLimit caps how many stored runs `c2clat runs` prints.
	DefaultListLimit = 20
)
