package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler describes a single profiling session.
//
// Mode selects one of [Modes]; Path is the output directory. An empty Mode,
// or a binary built without the pprof tag, yields a no-op session.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. The returned Stopper is always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether profiling support was compiled in.
func Enabled() bool { return enabled }

type ignore struct{}

func (ignore) Stop() {}
