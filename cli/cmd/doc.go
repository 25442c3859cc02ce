// Package cmd implements the xtpl subcommands.
//
// Each command is a kong command struct with a Run(context.Context) method.
// The root command stores its parsed [kong.Context], data files and global
// definitions in the context with [WithContext], [WithDataFiles] and
// [WithDefinitions] before dispatching.
//
//   - [Render] renders a template once against the data.
//   - [Repeat] renders a template per element of a data list.
//   - [Inspect] prints the tokens and node tree of a template.
//   - [Funcs] lists the registered pipe functions and '#' globals.
//   - [Repl] starts the interactive renderer.
//   - [Init] writes the current flag values to the configuration file.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
