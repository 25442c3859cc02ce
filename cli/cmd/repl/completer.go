package repl

import (
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/xtpl/tmpl"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "data", "funcs", "globals", "edit", "clear", "quit"}

// isWordBoundary reports whether r ends a completion word. '#' is part of
// a word since it introduces a global reference.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'{', '}', '(', ')',
		'|', ',', '!',
		'+', '-', '*', '/',
		'\'', '"':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted path leading up to the word starting at
// wordStart. For "{a + user.address.ci" and the word "ci" it is
// "user.address". Top-level words have no parent.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// placeholderStart returns the offset just past the '{' that opens the
// placeholder containing cursor.
func placeholderStart(input string, cursor int) (int, bool) {
	head := input[:min(cursor, len(input))]

	open := strings.LastIndexByte(head, '{')
	if open < 0 || strings.LastIndexByte(head, '}') > open {
		return 0, false
	}

	return open + 1, true
}

// afterPipe reports whether the word starting at wordStart is a function
// name, meaning the nearest non-space character before it is '|'.
func afterPipe(input string, wordStart int) bool {
	head := strings.TrimRight(input[:wordStart], " \t")

	return strings.HasSuffix(head, "|")
}

// childKeys returns the member names of a map or struct value, sorted.
func childKeys(v any) []string {
	rv := reflect.ValueOf(v)

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	var keys []string

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}

		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}

	case reflect.Struct:
		for i := range rv.NumField() {
			if f := rv.Type().Field(i); f.IsExported() {
				keys = append(keys, f.Name)
			}
		}
	}

	slices.Sort(keys)

	return keys
}

// candidates returns the completions for a word whose parent path is
// parent, in placeholder position pipe (function name) or not.
func (s *Session) candidates(word, parent string, pipe bool) []string {
	if pipe && parent == "" {
		names := slices.Collect(s.registry().Names())
		for _, k := range s.globalKeys() {
			if _, ok := tmpl.AsFunc(s.global(k)); ok {
				names = append(names, "#"+k)
			}
		}

		return names
	}

	if ref, ok := strings.CutPrefix(parent, "#"); ok {
		path := strings.Split(ref, ".")
		v, ok := tmpl.LookupPath(s.global(path[0]), path[1:]...)
		if !ok {
			return nil
		}

		return childKeys(v)
	}

	if parent == "" && strings.HasPrefix(word, "#") {
		keys := s.globalKeys()
		names := make([]string, len(keys))

		for i, k := range keys {
			names[i] = "#" + k
		}

		return names
	}

	if parent == "" {
		return childKeys(s.Data)
	}

	v, ok := tmpl.LookupPath(s.Data, strings.Split(parent, ".")...)
	if !ok {
		return nil
	}

	return childKeys(v)
}

// computeMatches calculates the fuzzy matches for the word at the cursor.
// In template mode completions are offered only inside a placeholder. After
// a dot every member is offered before anything is typed.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		return fuzzy.Find(word, ctrlCommands), ctrlCommands, wordStart, wordEnd
	}

	if _, ok := placeholderStart(input, cursor); !ok {
		return nil, nil, wordStart, wordEnd
	}

	parent := parentPath(input, wordStart)
	pipe := afterPipe(input, wordStart)
	candidates = m.session.candidates(word, parent, pipe)

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if parent == "" && !pipe {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, cut to fit
// width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters in bold.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	highlight := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		base = selectedStyle
		highlight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
