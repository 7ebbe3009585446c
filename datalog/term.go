package datalog

import "bytes"

// TermType discriminates the closed set of term variants.
type TermType int

const (
	TermTypeSymbol TermType = iota
	TermTypeVariable
	TermTypeInteger
	TermTypeString
	TermTypeDate
	TermTypeBytes
)

// Term is one argument of a predicate. The variant set is closed: Symbol,
// Variable, Integer, String, Date, Bytes. Terms are immutable values and
// compare structurally via Equal.
type Term interface {
	Type() TermType
	Equal(Term) bool
}

// Symbol is an index into the evaluation symbol table.
type Symbol uint64

func (Symbol) Type() TermType { return TermTypeSymbol }
func (s Symbol) Equal(t Term) bool {
	o, ok := t.(Symbol)
	return ok && o == s
}

// Variable is an index into the symbol table naming an unbound variable.
// Variables only appear in rules, never in facts.
type Variable uint64

func (Variable) Type() TermType { return TermTypeVariable }
func (v Variable) Equal(t Term) bool {
	o, ok := t.(Variable)
	return ok && o == v
}

// Integer is a signed 64-bit literal.
type Integer int64

func (Integer) Type() TermType { return TermTypeInteger }
func (i Integer) Equal(t Term) bool {
	o, ok := t.(Integer)
	return ok && o == i
}

// String is a text literal, stored verbatim rather than interned.
type String string

func (String) Type() TermType { return TermTypeString }
func (s String) Equal(t Term) bool {
	o, ok := t.(String)
	return ok && o == s
}

// Date is seconds since the Unix epoch.
type Date uint64

func (Date) Type() TermType { return TermTypeDate }
func (d Date) Equal(t Term) bool {
	o, ok := t.(Date)
	return ok && o == d
}

// Bytes is an opaque binary literal.
type Bytes []byte

func (Bytes) Type() TermType { return TermTypeBytes }
func (b Bytes) Equal(t Term) bool {
	o, ok := t.(Bytes)
	return ok && bytes.Equal(b, o)
}
