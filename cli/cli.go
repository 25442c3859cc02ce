package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/xtpl/cli/cmd"
	"github.com/ardnew/xtpl/pkg"
	"github.com/ardnew/xtpl/profile"
)

// CLI is the top-level command-line interface for xtpl.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Data   []string          `help:"Data file(s), YAML or JSON, or '-' for stdin"     name:"data" placeholder:"FILE"      short:"d" type:"existingfile"`
	Define map[string]string `help:"Define a '#' global as an expr-lang expression" name:"define" placeholder:"NAME=EXPR" short:"D"`

	Render  cmd.Render  `cmd:"" default:"withargs" help:"Render a template against the data"`
	Repeat  cmd.Repeat  `cmd:""                    help:"Render a template once per element of a data list"`
	Inspect cmd.Inspect `cmd:""                    help:"Print the tokens and node tree of a template"`
	Funcs   cmd.Funcs   `cmd:""                    help:"List pipe functions and '#' globals"`
	Repl    cmd.Repl    `cmd:""                    help:"Render templates interactively"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the xtpl CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	configFilePath := configPath(configYAML)

	vars := kong.Vars{
		"version":            pkg.Name + " " + pkg.Version,
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	groups := []kong.Group{cli.Log.group()}
	if profile.Enabled() {
		groups = append(groups, cli.Pprof.group())
	}

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(groups),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(configJSON)),
		kong.Configuration(loadYAML, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithDataFiles(ctx, cli.Data)
	ctx = cmd.WithDefinitions(ctx, cli.Define)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// No-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
