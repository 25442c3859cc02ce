package cli

import (
	"path/filepath"

	"github.com/ardnew/xtpl/pkg"
)

// Base names of the configuration files in [pkg.ConfigDir].
const (
	configYAML = "config.yaml"
	configJSON = "config.json"
)

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}
