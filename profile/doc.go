// Package profile provides optional runtime profiling for xtpl.
//
// Profiling support is compiled in only with the pprof build tag:
//
//	go build -tags pprof -o xtpl .
//
// Without the tag, [Profiler.Start] returns a no-op [Stopper] and [Modes]
// is empty, so callers never need their own build constraints.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      live heap profiling
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	s := profile.Profiler{Mode: "cpu", Path: "/tmp/xtpl"}.Start()
//	defer s.Stop()
//
// Compiled profiles are inspected with the usual tooling:
//
//	go tool pprof -http=: /tmp/xtpl/cpu.pprof
//
// With the tag set the package also imports [net/http/pprof], registering
// its handlers under /debug/pprof/ on [net/http.DefaultServeMux].
package profile
