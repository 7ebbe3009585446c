package datalog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

/*
 * Text syntax for facts, rules, and checks.
 *
 *   fact:  right(#authority, "file1", #read)
 *   rule:  can_read($f) <- right(#authority, $f, #read)
 *   check: q($f) <- resource(#ambient, $f) || q2($f) <- owner(#ambient, $f)
 *
 * Terms: #name is a symbol, $name a variable, "..." a string literal,
 * bare digits an integer. Dates and bytes have no text form; they are
 * constructed through the API.
 *
 * Parse errors carry position detail for the caller that owns the text;
 * the token layer deliberately flattens them to its bare parse-error
 * marker before surfacing them to library users.
 */

type scanner struct {
	input string
	pos   int
}

func (s *scanner) errf(format string, args ...any) error {
	return fmt.Errorf("offset %d: "+format, append([]any{s.pos}, args...)...)
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.input) && unicode.IsSpace(rune(s.input[s.pos])) {
		s.pos++
	}
}

func (s *scanner) eof() bool {
	s.skipSpace()
	return s.pos >= len(s.input)
}

func (s *scanner) expect(c byte) error {
	s.skipSpace()
	if s.pos >= len(s.input) || s.input[s.pos] != c {
		return s.errf("expected %q", string(c))
	}
	s.pos++
	return nil
}

func (s *scanner) peek(c byte) bool {
	s.skipSpace()
	return s.pos < len(s.input) && s.input[s.pos] == c
}

func isIdentRune(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (s *scanner) ident() (string, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.input) && isIdentRune(s.input[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", s.errf("expected identifier")
	}
	return s.input[start:s.pos], nil
}

func (s *scanner) term(symbols *SymbolTable) (Term, error) {
	s.skipSpace()
	if s.pos >= len(s.input) {
		return nil, s.errf("expected term")
	}
	switch c := s.input[s.pos]; {
	case c == '#':
		s.pos++
		name, err := s.ident()
		if err != nil {
			return nil, err
		}
		return symbols.Insert(name), nil
	case c == '$':
		s.pos++
		name, err := s.ident()
		if err != nil {
			return nil, err
		}
		return Variable(symbols.Insert(name)), nil
	case c == '"':
		end := strings.IndexByte(s.input[s.pos+1:], '"')
		if end < 0 {
			return nil, s.errf("unterminated string literal")
		}
		lit := s.input[s.pos+1 : s.pos+1+end]
		s.pos += end + 2
		return String(lit), nil
	case c == '-' || c >= '0' && c <= '9':
		start := s.pos
		s.pos++
		for s.pos < len(s.input) && s.input[s.pos] >= '0' && s.input[s.pos] <= '9' {
			s.pos++
		}
		n, err := strconv.ParseInt(s.input[start:s.pos], 10, 64)
		if err != nil {
			return nil, s.errf("invalid integer literal")
		}
		return Integer(n), nil
	default:
		return nil, s.errf("unexpected character %q", string(c))
	}
}

func (s *scanner) predicate(symbols *SymbolTable) (Predicate, error) {
	name, err := s.ident()
	if err != nil {
		return Predicate{}, err
	}
	if err := s.expect('('); err != nil {
		return Predicate{}, err
	}
	p := Predicate{Name: symbols.Insert(name)}
	if s.peek(')') {
		s.pos++
		return p, nil
	}
	for {
		t, err := s.term(symbols)
		if err != nil {
			return Predicate{}, err
		}
		p.Terms = append(p.Terms, t)
		if s.peek(',') {
			s.pos++
			continue
		}
		if err := s.expect(')'); err != nil {
			return Predicate{}, err
		}
		return p, nil
	}
}

// ParseFact parses a ground predicate, interning new symbols into the
// table. Variables are rejected.
func ParseFact(symbols *SymbolTable, input string) (Fact, error) {
	s := &scanner{input: input}
	p, err := s.predicate(symbols)
	if err != nil {
		return Fact{}, err
	}
	if !s.eof() {
		return Fact{}, s.errf("trailing input after fact")
	}
	for _, t := range p.Terms {
		if _, ok := t.(Variable); ok {
			return Fact{}, fmt.Errorf("fact contains a variable: %s", input)
		}
	}
	return Fact{p}, nil
}

// ParseRule parses "head <- body, body".
func ParseRule(symbols *SymbolTable, input string) (Rule, error) {
	s := &scanner{input: input}
	head, err := s.predicate(symbols)
	if err != nil {
		return Rule{}, err
	}
	s.skipSpace()
	if !strings.HasPrefix(s.input[s.pos:], "<-") {
		return Rule{}, s.errf(`expected "<-"`)
	}
	s.pos += 2
	r := Rule{Head: head}
	for {
		p, err := s.predicate(symbols)
		if err != nil {
			return Rule{}, err
		}
		r.Body = append(r.Body, p)
		if s.peek(',') {
			s.pos++
			continue
		}
		break
	}
	if !s.eof() {
		return Rule{}, s.errf("trailing input after rule")
	}
	if !r.HeadVariablesBound() {
		return Rule{}, fmt.Errorf("rule head uses variables not bound in its body: %s", input)
	}
	return r, nil
}

// queryHead names the synthesized head of body-only queries. Deriving
// one queryHead fact per matching binding is what makes a query "hold".
const queryHead = "query"

// ParseQuery parses a body-only query: "p1(...), p2(...)". The head is
// synthesized so the result can run through the same engine as rules.
func ParseQuery(symbols *SymbolTable, input string) (Rule, error) {
	s := &scanner{input: input}
	r := Rule{Head: Predicate{Name: symbols.Insert(queryHead)}}
	for {
		p, err := s.predicate(symbols)
		if err != nil {
			return Rule{}, err
		}
		r.Body = append(r.Body, p)
		if s.peek(',') {
			s.pos++
			continue
		}
		break
	}
	if !s.eof() {
		return Rule{}, s.errf("trailing input after query")
	}
	return r, nil
}

// ParseCheck parses one or more alternative queries joined by "||".
func ParseCheck(symbols *SymbolTable, input string) (Check, error) {
	var c Check
	for _, part := range strings.Split(input, "||") {
		q, err := ParseQuery(symbols, strings.TrimSpace(part))
		if err != nil {
			return Check{}, err
		}
		c.Queries = append(c.Queries, q)
	}
	return c, nil
}
