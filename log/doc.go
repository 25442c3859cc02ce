// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("template compiled", slog.String("purpose", "bind"))
//
// Attributes are always [slog.Attr] values; there is no key/value pair
// variant.
//
// # Configuration
//
// Loggers are configured with functional options when they are made, or
// derived from an existing logger with [Logger.Wrap]:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is printed as "TRACE". The other
// levels are those of [log/slog].
//
// # Pretty Output
//
// With [WithPretty] (the default) records are colourised with lipgloss
// styles. The text format prints unquoted key=value pairs on one line and
// the JSON format prints an indented object meant for reading, not parsing.
//
// # Package-Level Logger
//
// The package functions ([Info], [Warn], ...) log through a default logger
// writing to standard error, reconfigured with [Config] and returned by
// [Default].
package log
