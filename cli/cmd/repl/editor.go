package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/xtpl/log"
)

const defaultEditor = "vi"

// editDataCommand implements [tea.ExecCommand] for the edit-decode-retry
// loop over the session data. The data is written as YAML to a temp file,
// opened in the user's editor and decoded again. On a decode error the
// user is asked whether to edit again; declining quits the REPL.
type editDataCommand struct {
	ctxFunc func() context.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	content string
	data    any
	edited  bool
}

// SetStdin sets the stdin reader for the command.
func (c *editDataCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editDataCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editDataCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. It returns [ErrEditDeclined] when the user
// gives up after a decode error.
func (c *editDataCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "xtpl-repl-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.content

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		edited, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(edited)) == "" {
			return nil
		}

		var data any

		decodeErr := yaml.Unmarshal(edited, &data)

		c.logger.TraceContext(
			ctx,
			"editor decode attempt",
			slog.Int("content_length", len(edited)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.data, c.edited = data, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = string(edited)
	}
}

// runEditor runs $EDITOR, or vi, on path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
