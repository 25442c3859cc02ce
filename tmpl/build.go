package tmpl

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Build constructs the expression tree for a tokenized placeholder.
//
// It returns a nil node and no error for an empty token list. The rightmost
// top-level '|' splits the tokens into a piped value (built recursively from
// everything on its left), a function name (the token right after it), and
// comma-separated extra arguments, so "a|f,1|g,2" builds g(f(a,1),2).
// Without a pipe the tokens form an arithmetic expression.
func Build(tokens []Token) (Node, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Is('|') {
			return buildPipe(tokens[:i], tokens[i+1:])
		}
	}

	if len(tokens) == 1 {
		return buildValue(tokens[0])
	}

	return parseInfix(tokens, nil)
}

func buildPipe(head, tail []Token) (Node, error) {
	piped, err := Build(head)
	if err != nil {
		return nil, err
	}

	if len(tail) == 0 {
		return nil, ErrDanglingOperator.With(slog.String("operator", "|"))
	}

	pipe := Pipe{Name: tail[0].Text}

	groups := splitArgs(tail[1:])

	// Tokens between the function name and the first comma extend the
	// piped value, as in "a|f+1" calling f(a+1).
	if lead := groups[0]; len(lead) > 0 {
		if piped, err = parseInfix(lead, operand(piped)); err != nil {
			return nil, err
		}
	}

	pipe.Args = append(pipe.Args, piped)

	for i, group := range groups[1:] {
		if len(group) == 0 {
			if i == len(groups)-2 {
				break
			}

			return nil, ErrUnexpectedToken.With(
				slog.String("function", pipe.Name),
				slog.Int("argument", i+1),
			)
		}

		arg, err := Build(group)
		if err != nil {
			return nil, err
		}

		pipe.Args = append(pipe.Args, arg)
	}

	return pipe, nil
}

// operand wraps a prebuilt node so that it can lead an infix expression. A
// nil node stands for an absent value.
func operand(n Node) Node {
	if n == nil {
		return Const{}
	}

	return n
}

// splitArgs splits tokens on commas outside parentheses. The first group
// holds whatever precedes the first comma and may be empty.
func splitArgs(tokens []Token) [][]Token {
	groups := [][]Token{nil}
	depth := 0

	for _, t := range tokens {
		if t.Kind == TokenIdentifier {
			depth += strings.Count(t.Text, "(") - strings.Count(t.Text, ")")
		}

		if t.Is(',') && depth <= 0 {
			groups = append(groups, nil)

			continue
		}

		groups[len(groups)-1] = append(groups[len(groups)-1], t)
	}

	return groups
}

// buildValue classifies a single non-operator token.
func buildValue(t Token) (Node, error) {
	if t.Kind == TokenOperator {
		return nil, ErrDanglingOperator.With(slog.String("operator", t.Text))
	}

	if t.Kind == TokenLiteral {
		return Const{Value: unquote(t.Text)}, nil
	}

	text := t.Text

	switch c := text[0]; {
	case c == '#':
		return GlobalRef{Path: splitPath(text[1:])}, nil

	case c >= '0' && c <= '9', c == '.' && len(text) > 1 && isDigit(text[1]):
		v, err := parseLiteralNumber(text)
		if err != nil {
			return nil, err
		}

		return Const{Value: v}, nil

	case c == '(' || c == ')':
		return parseInfix([]Token{t}, nil)
	}

	return Lookup{Path: splitPath(text)}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func parseLiteralNumber(s string) (float64, error) {
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(n), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, ErrInvalidNumber.With(slog.String("literal", s))
	}

	return f, nil
}

// item is one element of an infix expression: an operator, a parenthesis,
// or an operand.
type item struct {
	node Node
	op   byte
}

// lex turns tokens into infix items, peeling parentheses off the ends of
// identifier tokens.
func lex(tokens []Token) ([]item, error) {
	items := make([]item, 0, len(tokens))

	for _, t := range tokens {
		switch t.Kind {
		case TokenOperator:
			if t.Is('|') {
				return nil, ErrUnexpectedToken.With(slog.String("token", t.Text))
			}

			items = append(items, item{op: t.Text[0]})

			continue

		case TokenLiteral:
			items = append(items, item{node: Const{Value: unquote(t.Text)}})

			continue
		}

		text := t.Text

		for strings.HasPrefix(text, "(") {
			items = append(items, item{op: '('})
			text = text[1:]
		}

		closing := 0
		for strings.HasSuffix(text, ")") {
			closing++
			text = text[:len(text)-1]
		}

		if text != "" {
			n, err := buildValue(Token{Kind: TokenIdentifier, Text: text})
			if err != nil {
				return nil, err
			}

			items = append(items, item{node: n})
		}

		for range closing {
			items = append(items, item{op: ')'})
		}
	}

	return items, nil
}

// parseInfix builds an arithmetic tree from tokens. A non-nil lead is
// treated as an operand preceding the tokens.
func parseInfix(tokens []Token, lead Node) (Node, error) {
	items, err := lex(tokens)
	if err != nil {
		return nil, err
	}

	if lead != nil {
		items = append([]item{{node: lead}}, items...)
	}

	p := &infix{items: items}

	n, err := p.sequence()
	if err != nil {
		return nil, err
	}

	if !p.done() {
		if p.peek().op == ')' {
			return nil, ErrUnbalancedParen
		}

		return nil, ErrUnexpectedToken
	}

	return n, nil
}

// infix is a precedence-climbing parser over items:
//
//	sequence = sum { "," sum }
//	sum      = product { ("+" | "-") product }
//	product  = unary { ("*" | "/") unary }
//	unary    = ("+" | "-") unary | primary
//	primary  = operand | "(" sequence ")"
type infix struct {
	items []item
	pos   int
}

func (p *infix) done() bool { return p.pos >= len(p.items) }

func (p *infix) peek() item {
	if p.done() {
		return item{}
	}

	return p.items[p.pos]
}

func (p *infix) accept(ops ...byte) (byte, bool) {
	it := p.peek()
	if it.node != nil || it.op == 0 {
		return 0, false
	}

	for _, op := range ops {
		if it.op == op {
			p.pos++

			return op, true
		}
	}

	return 0, false
}

func (p *infix) sequence() (Node, error) {
	left, err := p.sum()
	if err != nil {
		return nil, err
	}

	for {
		if _, ok := p.accept(','); !ok {
			return left, nil
		}

		right, err := p.sum()
		if err != nil {
			return nil, err
		}

		left = Arith{Op: ',', Left: left, Right: right}
	}
}

func (p *infix) sum() (Node, error) {
	return p.binary(p.product, '+', '-')
}

func (p *infix) product() (Node, error) {
	return p.binary(p.unary, '*', '/')
}

func (p *infix) binary(next func() (Node, error), ops ...byte) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.accept(ops...)
		if !ok {
			return left, nil
		}

		right, err := next()
		if err != nil {
			return nil, err
		}

		left = Arith{Op: op, Left: left, Right: right}
	}
}

func (p *infix) unary() (Node, error) {
	if op, ok := p.accept('+', '-'); ok {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}

		return Arith{Op: op, Right: x}, nil
	}

	return p.primary()
}

func (p *infix) primary() (Node, error) {
	if p.done() {
		return nil, ErrDanglingOperator
	}

	it := p.items[p.pos]

	if it.node != nil {
		p.pos++

		return it.node, nil
	}

	if it.op == '(' {
		p.pos++

		n, err := p.sequence()
		if err != nil {
			return nil, err
		}

		if _, ok := p.accept(')'); !ok {
			return nil, ErrUnbalancedParen
		}

		return n, nil
	}

	if it.op == ')' {
		return nil, ErrUnbalancedParen
	}

	return nil, ErrDanglingOperator.With(slog.String("operator", string(it.op)))
}
