package tmpl

import "strings"

// TokenKind classifies a [Token].
type TokenKind int

const (
	TokenIdentifier TokenKind = iota // identifier
	TokenLiteral                     // literal
	TokenOperator                    // operator
)

// String returns the lower-case name of the kind.
func (k TokenKind) String() string {
	switch k {
	case TokenIdentifier:
		return "identifier"
	case TokenLiteral:
		return "literal"
	case TokenOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Token is a lexical unit of a placeholder expression.
//
// Literal tokens keep their surrounding quotes so that a value can be
// classified by its first byte. An unterminated literal has no closing quote.
type Token struct {
	Text string
	Kind TokenKind
}

// Is reports whether t is the operator op.
func (t Token) Is(op byte) bool {
	return t.Kind == TokenOperator && len(t.Text) == 1 && t.Text[0] == op
}

// Tokenize splits a placeholder expression into tokens.
//
// A quote opens a literal that runs to the next matching quote, skipping
// over nested literals of the other quote kind. An unterminated literal takes
// the rest of the input. The bytes | , + - * / are operators. Whitespace
// outside a literal is dropped without ending the identifier being built, and
// everything else accumulates into identifiers.
func Tokenize(expr string) []Token {
	var (
		tokens []Token
		ident  strings.Builder
	)

	flush := func() {
		if ident.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenIdentifier, Text: ident.String()})
			ident.Reset()
		}
	}

	for i := 0; i < len(expr); i++ {
		c := expr[i]

		switch {
		case isOperator(c):
			flush()

			tokens = append(tokens, Token{Kind: TokenOperator, Text: expr[i : i+1]})

		case isQuote(c):
			flush()

			end := scanClose(expr, i, c)
			if end < 0 {
				tokens = append(tokens, Token{Kind: TokenLiteral, Text: expr[i:]})

				return tokens
			}

			tokens = append(tokens, Token{Kind: TokenLiteral, Text: expr[i : end+1]})
			i = end

		case isSpace(c):

		default:
			ident.WriteByte(c)
		}
	}

	flush()

	return tokens
}

// scanClose returns the index of the first byte equal to closer after start,
// skipping quoted regions along the way. A quote nested inside a quoted
// region is skipped recursively. It returns -1 when closer is never found.
func scanClose(s string, start int, closer byte) int {
	for j := start + 1; j < len(s); j++ {
		c := s[j]

		if c == closer {
			return j
		}

		if isQuote(c) {
			k := scanClose(s, j, c)
			if k < 0 {
				return -1
			}

			j = k
		}
	}

	return -1
}

func isOperator(c byte) bool {
	switch c {
	case '|', ',', '+', '-', '*', '/':
		return true
	default:
		return false
	}
}

func isQuote(c byte) bool { return c == '\'' || c == '"' }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// unquote strips the quotes around a literal token. An unterminated literal
// loses only its opening quote.
func unquote(s string) string {
	if s == "" || !isQuote(s[0]) {
		return s
	}

	q := s[0]
	s = s[1:]

	if n := len(s); n > 0 && s[n-1] == q {
		s = s[:n-1]
	}

	return s
}
