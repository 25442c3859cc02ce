package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	dataFilesKey   struct{}
	definitionsKey struct{}

	dataFiles struct {
		read     []io.Reader
		hasStdin bool
	}

	// DataFiles reads the data documents given on the command line, each
	// file once, with stdin last.
	DataFiles interface {
		IsZero() bool
		Readers() []io.Reader
		io.Reader
	}
)

// IsZero reports whether there are no data files.
func (s *dataFiles) IsZero() bool { return len(s.read) == 0 && !s.hasStdin }

// Readers returns one reader per data file, stdin last.
func (s *dataFiles) Readers() []io.Reader {
	readers := s.read
	if s.hasStdin {
		readers = append(readers[:len(readers):len(readers)], os.Stdin)
	}

	return readers
}

// Read implements io.Reader by reading from all data files in order.
func (s *dataFiles) Read(p []byte) (n int, err error) {
	return io.MultiReader(s.Readers()...).Read(p)
}

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource names stdin on the command line.
const stdinSource = "-"

// WithDataFiles returns a new context.Context carrying readers for the
// given data files.
//
// Files are deduplicated by device and inode, so symlinks and relative
// paths to the same file are read once. Every "-" names the same stdin
// reader, which is placed last.
func WithDataFiles(ctx context.Context, paths []string) context.Context {
	return context.WithValue(ctx, dataFilesKey{}, buildDataFiles(paths))
}

func buildDataFiles(paths []string) DataFiles {
	if len(paths) == 0 {
		return nil
	}

	var files dataFiles

	files.read = make([]io.Reader, 0, len(paths))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, path := range paths {
		if path == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		if reader, ok := openUniqueFile(path, seen); ok {
			files.read = append(files.read, reader)
		}
	}

	// Stdin may have been named with "-" or by a path to it.
	_, files.hasStdin = seen[stdinKey]

	if files.IsZero() {
		return nil
	}

	return &files
}

// openUniqueFile opens the file at path unless a file with the same device
// and inode was already seen.
func openUniqueFile(path string, seen map[fileKey]struct{}) (io.Reader, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return nil, false
	}

	if _, exists := seen[key]; exists {
		return nil, false
	}

	seen[key] = struct{}{}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, false
	}

	return file, true
}

// makeFileKey creates a fileKey from os.FileInfo. It fails when Sys() is
// not a *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// dataFilesFrom returns the data files stored by WithDataFiles, or nil.
func dataFilesFrom(ctx context.Context) DataFiles {
	r, _ := ctx.Value(dataFilesKey{}).(DataFiles)

	return r
}

// WithDefinitions returns a new context.Context carrying the user
// definitions of '#' globals, as name to expr-lang expression.
func WithDefinitions(ctx context.Context, defs map[string]string) context.Context {
	return context.WithValue(ctx, definitionsKey{}, defs)
}

func definitionsFrom(ctx context.Context) map[string]string {
	defs, _ := ctx.Value(definitionsKey{}).(map[string]string)

	return defs
}
