// Package cli contains the command line interface for xtpl.
//
// # Usage
//
//	xtpl [flags] [render] TEMPLATE...
//	xtpl repeat --path items '<li>{name}</li>'
//	xtpl inspect --format json '{price|fixed,2}'
//	xtpl funcs --globals
//	xtpl repl
//	xtpl init
//
// Render is the default command, so a bare template renders once:
//
//	echo 'name: <b>Ada</b>' | xtpl -d - 'Hello {name} / {!name}'
//
// # Data
//
// Each --data file holds one or more YAML (or JSON) documents. Mappings are
// merged in command line order, later keys winning; stdin ("-") is read last.
//
// # Globals
//
// The '#' references of a template resolve against built-in host values and
// any --define NAME=EXPR definitions, evaluated as expr-lang expressions:
//
//	xtpl -D 'greeting="hi " + user' '{#greeting}'
//
// # Configuration
//
// Flag defaults are read from config.yaml and config.json in the user
// configuration directory (for example ~/.config/xtpl). Nested YAML keys are
// joined with hyphens:
//
//	log:
//	  level: debug
//	  format: text
//
// Running "xtpl init" writes the current flag values to config.yaml.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o xtpl .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/xtpl/pprof)
package cli
