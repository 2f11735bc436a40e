package filter

import (
	"fmt"
	"strings"
	"time"

	"chors/internal/store"
)

// Parse compiles a filter expression into a Condition. The grammar, lowest
// precedence first:
//
//	expression = term { "or" term }
//	term       = factor { "and" factor }
//	factor     = "not" factor | operand
//	operand    = "(" expression ")" | status | date | tag | context | text
//	status     = "[ ]" | "[x]" | "[-]"
//	date       = ("due" | "sched") ("<" | ">" | "=") YYYY-MM-DD
//	tag        = "#" identifier
//	context    = "@" identifier
//	text       = `"` characters `"`
//
// A blank expression matches every task. Parse errors are wrapped in
// store.ErrValidationFailed.
func Parse(expression string) (Condition, error) {
	if strings.TrimSpace(expression) == "" {
		return alwaysTrue{}, nil
	}
	p := &parser{input: expression}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected input %q", p.input[p.pos:])
	}
	return cond, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: filter expression at offset %d: %s", store.ErrValidationFailed, p.pos, msg)
}

func (p *parser) expression() (Condition, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = orCond{left: left, right: right}
	}
	return left, nil
}

func (p *parser) term() (Condition, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = andCond{left: left, right: right}
	}
	return left, nil
}

func (p *parser) factor() (Condition, error) {
	if p.keyword("not") {
		inner, err := p.factor()
		if err != nil {
			return nil, err
		}
		return notCond{inner: inner}, nil
	}
	return p.operand()
}

func (p *parser) operand() (Condition, error) {
	p.skipSpace()
	switch {
	case p.literal("("):
		cond, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.literal(")") {
			return nil, p.errorf("expected closing parenthesis")
		}
		return cond, nil
	case p.literal("[ ]"):
		return statusCond{status: store.StatusOpen}, nil
	case p.literal("[x]"):
		return statusCond{status: store.StatusDone}, nil
	case p.literal("[-]"):
		return statusCond{status: store.StatusCancelled}, nil
	case p.keyword("due"):
		return p.dateOperand(fieldDue)
	case p.keyword("sched"):
		return p.dateOperand(fieldScheduled)
	case p.literal("#"):
		name, err := p.identifier()
		if err != nil {
			return nil, err
		}
		return tagCond{name: name}, nil
	case p.literal("@"):
		name, err := p.identifier()
		if err != nil {
			return nil, err
		}
		return contextCond{name: name}, nil
	case p.literal(`"`):
		end := strings.IndexByte(p.input[p.pos:], '"')
		if end < 0 {
			return nil, p.errorf("unterminated quoted text")
		}
		text := p.input[p.pos : p.pos+end]
		p.pos += end + 1
		return textCond{text: text}, nil
	}
	return nil, p.errorf("expected a condition")
}

func (p *parser) dateOperand(field dateField) (Condition, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, p.errorf("expected <, > or = after date field")
	}
	op := p.input[p.pos]
	if op != '<' && op != '>' && op != '=' {
		return nil, p.errorf("expected <, > or = after date field, got %q", string(op))
	}
	p.pos++
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '-') {
		p.pos++
	}
	date, err := time.Parse("2006-01-02", p.input[start:p.pos])
	if err != nil {
		return nil, p.errorf("expected a YYYY-MM-DD date, got %q", p.input[start:p.pos])
	}
	return dateCond{field: field, op: op, date: date}, nil
}

// keyword consumes word if it appears next (case-insensitive) followed by a
// word boundary, so "order" is not read as "or".
func (p *parser) keyword(word string) bool {
	p.skipSpace()
	end := p.pos + len(word)
	if end > len(p.input) || !strings.EqualFold(p.input[p.pos:end], word) {
		return false
	}
	if end < len(p.input) && isWordChar(p.input[end]) {
		return false
	}
	p.pos = end
	return true
}

func (p *parser) literal(s string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *parser) identifier() (string, error) {
	start := p.pos
	for p.pos < len(p.input) && isWordChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected an identifier")
	}
	return p.input[start:p.pos], nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || isDigit(b) ||
		b == '.' || b == '_' || b == '-'
}
