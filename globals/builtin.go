package globals

import (
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// builtins holds the host values and functions every [Env] starts with.
// The map is built once per process and cloned for each caller.
var builtins = sync.OnceValue(func() map[string]any {
	return map[string]any{
		"target":   getTarget(),
		"platform": getPlatform(),
		"hostname": getHostname(),
		"user":     getUser(),
		"shell":    os.Getenv("SHELL"),

		"cwd": getCwd,

		"file": map[string]any{
			"exists":    fileExists,
			"isDir":     fileIsDir,
			"isRegular": fileIsRegular,
			"isSymlink": fileIsSymlink,
		},

		"path": map[string]any{
			"abs":  pathAbs,
			"base": filepath.Base,
			"cat":  pathCat,
			"dir":  filepath.Dir,
			"ext":  filepath.Ext,
			"rel":  pathRel,
		},

		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
})

// Builtins returns a copy of the built-in values, without "env".
func Builtins() map[string]any {
	return maps.Clone(builtins())
}

// Target names an operating system and instruction set architecture.
type Target struct {
	OS   string
	Arch string
}

// String returns the target as "os/arch".
func (t Target) String() string { return t.OS + "/" + t.Arch }

// gnuArch maps Go architecture names to GNU GCC/LLVM names where they
// differ.
var gnuArch = map[string]string{
	"386":    "i386",
	"amd64":  "x86_64",
	"arm64":  "aarch64",
	"mipsle": "mipsel",
}

// getTarget returns the host target using GNU GCC/LLVM naming conventions.
func getTarget() Target {
	t := getPlatform()

	switch {
	case t.Arch == "arm":
		arm, _, _ := strings.Cut(os.Getenv("GOARM"), ",")
		if arm = strings.TrimSpace(arm); arm >= "5" && arm <= "7" && len(arm) == 1 {
			t.Arch = "armv" + arm
		}

	case t.Arch == "arm64" && t.OS == "darwin":
		// Apple toolchains keep "arm64".

	default:
		if arch, ok := gnuArch[t.Arch]; ok {
			t.Arch = arch
		}
	}

	return t
}

// getPlatform returns the host target using Go conventions, preferring the
// GOHOSTOS/GOHOSTARCH then GOOS/GOARCH environment variables.
func getPlatform() Target {
	return Target{
		OS:   firstEnv(runtime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: firstEnv(runtime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}

func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
	}

	return fallback
}

func getHostname() string {
	hostname, _ := os.Hostname()

	return hostname
}

func getUser() *user.User {
	u, _ := user.Current()

	return u
}

func getCwd() string { return pathAbs(".") }

// statFunc returns a predicate reporting whether path exists and its
// FileInfo satisfies fn. Symlinks are followed unless lstat is set.
func statFunc(lstat bool, fn func(os.FileInfo) bool) func(string) bool {
	stat := os.Stat
	if lstat {
		stat = os.Lstat
	}

	return func(path string) bool {
		info, err := stat(path)

		return err == nil && fn(info)
	}
}

var (
	fileExists    = statFunc(false, func(os.FileInfo) bool { return true })
	fileIsDir     = statFunc(false, os.FileInfo.IsDir)
	fileIsRegular = statFunc(false, func(i os.FileInfo) bool { return i.Mode().IsRegular() })
	fileIsSymlink = statFunc(true, func(i os.FileInfo) bool { return i.Mode()&os.ModeSymlink != 0 })
)

func pathAbs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}

	return path
}

func pathCat(elem ...string) string { return filepath.Join(elem...) }

func pathRel(from, to string) string {
	if p, err := filepath.Rel(pathAbs(from), pathAbs(to)); err == nil {
		return p
	}

	return pathCat(from, to)
}

// mungPrefix prepends items to the PATH-like list key, dropping duplicates.
func mungPrefix(key string, prefix ...string) string {
	return mungPrefixIf(key, nil, prefix...)
}

// mungPrefixIf is mungPrefix keeping only the items accepted by predicate.
func mungPrefixIf(key string, predicate func(string) bool, prefix ...string) string {
	if predicate == nil {
		return mung.Make(
			mung.WithSubjectItems(key),
			mung.WithDelim(pathListDelim),
			mung.WithPrefixItems(prefix...),
		).String()
	}

	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(pathListDelim),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}

const pathListDelim = string(os.PathListSeparator)

// processEnv converts "KEY=VALUE" entries to a map. A nil list reads the
// process environment.
func processEnv(list []string) map[string]string {
	if list == nil {
		list = os.Environ()
	}

	m := make(map[string]string, len(list))

	for _, entry := range list {
		if key, value, ok := strings.Cut(entry, "="); ok {
			m[key] = value
		}
	}

	return m
}

func envFunc(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}
