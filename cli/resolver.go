package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// loadYAML is a [kong.ConfigurationLoader] that parses YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadYAML, "/path/to/config.yaml")
//
// Keys name flags either flat or nested; nested mappings are joined with
// hyphens, and underscores are accepted in place of hyphens:
//
//	log:
//	  level: debug
//	log_format: text
//	define:
//	  answer: 6 * 7
//
// This configuration will be applied to Kong flags:
//
//	--log-level=debug
//	--log-format=text
//	--define=answer=6*7
//
// Command-line flags override config file values. A file that fails to parse
// is treated as empty.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return config{}, nil //nolint:nilerr
	}

	cfg := make(config)
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// flatten records every key of m under prefix. A mapping is recorded both
// as a "key=value;..." string, for map-typed flags, and key by key.
func (r config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		name := strings.ReplaceAll(k, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		if sub, ok := v.(map[string]any); ok {
			r[name] = mapValue(sub)
			r.flatten(name, sub)

			continue
		}

		r[name] = flagValue(v)
	}
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flagValue converts a decoded YAML value into the string form Kong parses
// from the command line. Booleans are kept as is.
func flagValue(v any) any {
	switch v := v.(type) {
	case nil, bool, string:
		return v

	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(e)
		}

		return strings.Join(parts, ",")
	}

	return fmt.Sprint(v)
}

func mapValue(m map[string]any) string {
	parts := make([]string, 0, len(m))

	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, k+"="+fmt.Sprint(m[k]))
	}

	return strings.Join(parts, ";")
}
