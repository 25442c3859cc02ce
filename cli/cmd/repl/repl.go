package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"
)

// editDataMsg is sent when the data was edited and decoded.
type editDataMsg struct{ data any }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to edit again after a
// decode error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const (
	templatePrompt = "➜ "
	ctrlPrompt     = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this help
  data     Print the data as YAML
  funcs    List pipe functions
  globals  List '#' globals
  edit     Edit the data in $EDITOR
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type a template to render it, e.g. Hello {name|default,'you'}
  Completions appear inside placeholders as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between template and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to browse command history
  Press Ctrl+C on empty line or Ctrl+D to exit`

// inputMode is the current input mode.
type inputMode int

const (
	modeTemplate inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func (mode inputMode) prompt() string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(templatePrompt)
}

// echo formats the submitted line as it appeared at the prompt.
func (mode inputMode) echo(input string) string {
	return mode.prompt() + inputStyle.Render(input)
}

// saved is the input line of the mode not shown.
type saved struct {
	text   string
	cursor int
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	session    *Session
	history    *History
	input      textinput.Model
	matches    fuzzy.Matches // current fuzzy match results
	candidates []string      // backing candidate list
	stash      [2]saved      // per-mode input while the other mode is shown
	altNav     *saved        // input before Alt+Up/Down browsing began
	preTab     saved         // input before tab-cycling began
	historyIdx int
	wordStart  int // byte offset of current word start
	wordEnd    int // byte offset of current word end
	suggIdx    int // selected candidate index
	width      int // terminal width for the candidate bar
	mode       inputMode
	altMode    inputMode // mode before Alt+Up/Down browsing began
	tabActive  bool
	quitting   bool
}

// Run starts the REPL for session. History is kept in cacheDir.
func Run(ctx context.Context, session *Session, cacheDir string) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if session == nil {
		return ErrNoSession
	}

	session.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Bool("has_data", session.Data != nil),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		session.Logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	session.Logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, session, history), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, session *Session, history *History) model {
	ti := textinput.New()
	ti.Prompt = modeTemplate.prompt()
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		session:    session,
		input:      ti,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeTemplate,
		suggIdx:    -1,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(templatePrompt) - 2

		return m, nil

	case editDataMsg:
		m.session.Data = msg.data

		return m, tea.Println(resultStyle.Render("✔ data updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectPipeCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len(),
		)))

	case strings.TrimSpace(input) == "":
		if m.mode == modeTemplate {
			b.WriteString(hintStyle.Render("Type a template or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"))
		}

	case call.inCall && m.mode == modeTemplate && len(m.matches) == 0:
		if params, ok := m.session.signature(call.name); ok {
			b.WriteString(renderSignatureHint(call.name, params, call.argIndex))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.session.Logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNav = nil
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNav = nil

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.browseCtrl(-1), nil
		}

		return m.historyStep(-1), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.browseCtrl(1), nil
		}

		return m.historyStep(1), nil

	case tea.KeyShiftUp:
		m, _ = m.seek(-1, m.mode)

		return m, nil

	case tea.KeyShiftDown:
		var found bool
		if m, found = m.seek(1, m.mode); !found && m.historyIdx < m.history.Len() {
			m.historyIdx = m.history.Len()
			m.input.SetValue("")
			refreshMatches(&m, false)
		}

		return m, nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTab.text)
			m.input.SetCursor(m.preTab.cursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNav = nil

		return m.switchToMode(1 - m.mode), nil

	case tea.KeyRunes:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key edits or moves within the line.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNav = nil
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by dir, completing immediately when only
// one candidate remains.
func (m model) cycle(dir int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n

	default:
		m.tabActive = true
		m.preTab = saved{m.input.Value(), m.input.Position()}

		m.suggIdx = 0
		if dir < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word with replacement and moves
// the cursor past it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the fuzzy matches. With autoConfirm the
// completion is accepted when the typed word already equals the only
// candidate.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if candidate := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := m.input.Value()
	if strings.TrimSpace(raw) == "" {
		return m, nil
	}

	m.stash = [2]saved{}
	m.input.SetValue("")

	_, _ = m.history.WriteWithMode(raw, m.mode)
	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(strings.TrimSpace(raw))
	}

	ctx := m.ctxFunc()
	echo := tea.Println(modeTemplate.echo(raw))

	out, err := m.session.Render(raw)
	if err != nil {
		m.session.Logger.TraceContext(ctx, "repl render failed", slog.Any("error", err))

		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	m.session.Logger.TraceContext(ctx, "repl rendered", slog.Int("length", len(out)))

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	echo := tea.Println(modeCtrl.echo(input))

	m.session.Logger.TraceContext(
		m.ctxFunc(),
		"repl command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]),
	)

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "d", "data":
		out, err := m.session.DataYAML()
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(out))

	case "f", "funcs":
		var b strings.Builder

		for name := range m.session.registry().Names() {
			params, _ := m.session.signature(name)
			fmt.Fprintf(&b, "  %s\n", renderSignatureHint(name, params, -1))
		}

		return m, tea.Sequence(echo, tea.Println(b.String()))

	case "g", "globals":
		var b strings.Builder

		for _, key := range m.session.globalKeys() {
			fmt.Fprintf(&b, "  #%s %s\n", key, hintStyle.Render(preview(m.session.global(key))))
		}

		return m, tea.Sequence(echo, tea.Println(b.String()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"))
	}
}

func (m model) edit() tea.Cmd {
	content, err := m.session.DataYAML()
	if err != nil {
		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	cmd := &editDataCommand{
		ctxFunc: m.ctxFunc,
		logger:  m.session.Logger,
		content: content,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case !cmd.edited:
			return editCancelledMsg{}
		}

		return editDataMsg{data: cmd.data}
	})
}

// show loads history entry i into the input, switching mode if needed.
func (m model) show(i int) model {
	entry, err := m.history.GetEntry(i)
	if err != nil {
		return m
	}

	if m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// historyStep moves through all history by dir. Moving past the newest
// entry clears the input.
func (m model) historyStep(dir int) model {
	next := m.historyIdx + dir

	switch {
	case next < 0:
		return m
	case next >= m.history.Len():
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)

		return m
	}

	return m.show(next)
}

// seek moves by dir to the nearest history entry entered in mode.
func (m model) seek(dir int, mode inputMode) (model, bool) {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		if entry, err := m.history.GetEntry(i); err == nil && entry.Mode == mode {
			m.historyIdx = i
			m.input.SetValue(entry.Line)
			m.input.SetCursor(len(entry.Line))
			refreshMatches(&m, false)

			return m, true
		}
	}

	return m, false
}

// browseCtrl steps through command history from any mode. Running off
// either end restores the line and mode from before browsing began.
func (m model) browseCtrl(dir int) model {
	if m.altNav == nil {
		m.altNav = &saved{m.input.Value(), m.input.Position()}
		m.altMode = m.mode

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	m, found := m.seek(dir, modeCtrl)
	if found {
		return m
	}

	orig := *m.altNav
	m.altNav = nil

	if m.altMode != m.mode {
		m = m.switchToMode(m.altMode)
	}

	m.input.SetValue(orig.text)
	m.input.SetCursor(orig.cursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

// switchToMode shows mode, stashing the input of the current one.
func (m model) switchToMode(mode inputMode) model {
	m.stash[m.mode] = saved{m.input.Value(), m.input.Position()}

	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.input.SetValue(m.stash[mode].text)
	m.input.SetCursor(m.stash[mode].cursor)

	refreshMatches(&m, false)

	return m
}
