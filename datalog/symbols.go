package datalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reserved symbols occupying fixed positions in every symbol table.
// SymbolAuthority tags facts originating in the authority block,
// SymbolAmbient tags facts injected by the relying party at
// authorization time. No other origin may produce either tag.
const (
	SymbolAuthority Symbol = 0
	SymbolAmbient   Symbol = 1
)

// DefaultSymbols are the mandatory namespaces every merged symbol table
// must start with, in this order.
var DefaultSymbols = []string{"authority", "ambient"}

// SymbolTable interns strings used as predicate names, symbol terms, and
// variable names. A Symbol or Variable is an index into this table.
type SymbolTable []string

// NewSymbolTable returns a table seeded with the default namespaces.
func NewSymbolTable() *SymbolTable {
	t := SymbolTable(append([]string{}, DefaultSymbols...))
	return &t
}

// Insert interns s and returns its index, reusing an existing entry.
func (t *SymbolTable) Insert(s string) Symbol {
	for i, existing := range *t {
		if existing == s {
			return Symbol(i)
		}
	}
	*t = append(*t, s)
	return Symbol(len(*t) - 1)
}

// Sym returns the index of s if already interned.
func (t *SymbolTable) Sym(s string) (Symbol, bool) {
	for i, existing := range *t {
		if existing == s {
			return Symbol(i), true
		}
	}
	return 0, false
}

// Str resolves a symbol back to its string. Unknown indexes render as a
// placeholder instead of panicking; they can only come from a corrupt
// token and surface during diagnostics printing.
func (t *SymbolTable) Str(s Symbol) string {
	if int(s) >= len(*t) {
		return fmt.Sprintf("<invalid symbol %d>", uint64(s))
	}
	return (*t)[s]
}

// IsDisjoint reports whether none of the given strings are already
// interned. Used to detect symbol table overlap between blocks.
func (t *SymbolTable) IsDisjoint(symbols []string) bool {
	for _, s := range symbols {
		if _, ok := t.Sym(s); ok {
			return false
		}
	}
	return true
}

// Extend appends the given strings without deduplication. Callers check
// IsDisjoint first.
func (t *SymbolTable) Extend(symbols []string) {
	*t = append(*t, symbols...)
}

// Clone returns an independent copy of the table.
func (t *SymbolTable) Clone() *SymbolTable {
	out := SymbolTable(append([]string{}, *t...))
	return &out
}

// PrintTerm renders a term in source syntax: #symbol, $variable, "string",
// integers and dates as literals, bytes as hex.
func (t *SymbolTable) PrintTerm(term Term) string {
	switch v := term.(type) {
	case Symbol:
		return "#" + t.Str(v)
	case Variable:
		return "$" + t.Str(Symbol(v))
	case Integer:
		return strconv.FormatInt(int64(v), 10)
	case String:
		return strconv.Quote(string(v))
	case Date:
		return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
	case Bytes:
		return fmt.Sprintf("hex:%x", []byte(v))
	default:
		return "<unknown term>"
	}
}

// PrintPredicate renders name(term, ...).
func (t *SymbolTable) PrintPredicate(p Predicate) string {
	terms := make([]string, len(p.Terms))
	for i, term := range p.Terms {
		terms[i] = t.PrintTerm(term)
	}
	return fmt.Sprintf("%s(%s)", t.Str(p.Name), strings.Join(terms, ", "))
}

// PrintFact renders the fact's predicate.
func (t *SymbolTable) PrintFact(f Fact) string {
	return t.PrintPredicate(f.Predicate)
}

// PrintRule renders head <- body, body.
func (t *SymbolTable) PrintRule(r Rule) string {
	body := make([]string, len(r.Body))
	for i, p := range r.Body {
		body[i] = t.PrintPredicate(p)
	}
	return fmt.Sprintf("%s <- %s", t.PrintPredicate(r.Head), strings.Join(body, ", "))
}

// PrintQuery renders a rule as its body alone when the head is a
// synthesized query head, and as a full rule otherwise.
func (t *SymbolTable) PrintQuery(r Rule) string {
	if t.Str(r.Head.Name) != "query" || len(r.Head.Terms) != 0 {
		return t.PrintRule(r)
	}
	body := make([]string, len(r.Body))
	for i, p := range r.Body {
		body[i] = t.PrintPredicate(p)
	}
	return strings.Join(body, ", ")
}

// PrintCheck renders the check's queries joined by " || ".
func (t *SymbolTable) PrintCheck(c Check) string {
	queries := make([]string, len(c.Queries))
	for i, q := range c.Queries {
		queries[i] = t.PrintQuery(q)
	}
	return strings.Join(queries, " || ")
}
