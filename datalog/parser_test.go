package datalog

import (
	"testing"
)

func TestParseFact(t *testing.T) {
	symbols := NewSymbolTable()

	f, err := ParseFact(symbols, `right(#authority, "file1", #read)`)
	if err != nil {
		t.Fatalf("ParseFact() error = %v, want nil", err)
	}
	if got := symbols.Str(f.Predicate.Name); got != "right" {
		t.Errorf("predicate name = %q, want %q", got, "right")
	}
	if len(f.Predicate.Terms) != 3 {
		t.Fatalf("len(Terms) = %d, want 3", len(f.Predicate.Terms))
	}
	if f.Predicate.Terms[0] != SymbolAuthority {
		t.Errorf("first term = %v, want the authority symbol", f.Predicate.Terms[0])
	}
	if f.Predicate.Terms[1] != String("file1") {
		t.Errorf("second term = %v, want String(file1)", f.Predicate.Terms[1])
	}
}

func TestParseFact_Integers(t *testing.T) {
	symbols := NewSymbolTable()

	f, err := ParseFact(symbols, `revision("doc", -3)`)
	if err != nil {
		t.Fatalf("ParseFact() error = %v, want nil", err)
	}
	if f.Predicate.Terms[1] != Integer(-3) {
		t.Errorf("second term = %v, want Integer(-3)", f.Predicate.Terms[1])
	}
}

func TestParseFact_NoArgs(t *testing.T) {
	symbols := NewSymbolTable()

	f, err := ParseFact(symbols, `empty()`)
	if err != nil {
		t.Fatalf("ParseFact() error = %v, want nil", err)
	}
	if len(f.Predicate.Terms) != 0 {
		t.Errorf("len(Terms) = %d, want 0", len(f.Predicate.Terms))
	}
}

func TestParseFact_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"variable in fact", `right(#authority, $f)`},
		{"missing paren", `right(#authority`},
		{"unterminated string", `right("file1`},
		{"trailing input", `right(#authority) extra`},
		{"empty input", ``},
		{"bare identifier", `right`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbols := NewSymbolTable()
			if _, err := ParseFact(symbols, tt.input); err == nil {
				t.Errorf("ParseFact(%q) error = nil, want parse failure", tt.input)
			}
		})
	}
}

func TestParseRule(t *testing.T) {
	symbols := NewSymbolTable()

	r, err := ParseRule(symbols, `can_read($f) <- right(#authority, $f, #read), resource(#ambient, $f)`)
	if err != nil {
		t.Fatalf("ParseRule() error = %v, want nil", err)
	}
	if len(r.Body) != 2 {
		t.Fatalf("len(Body) = %d, want 2", len(r.Body))
	}
	if got := symbols.Str(r.Head.Name); got != "can_read" {
		t.Errorf("head name = %q, want %q", got, "can_read")
	}
}

func TestParseRule_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing arrow", `can_read($f) right(#authority, $f)`},
		{"unbound head variable", `can_read($f, $g) <- right(#authority, $f)`},
		{"empty body", `can_read($f) <-`},
		{"trailing input", `a($x) <- b($x) extra`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbols := NewSymbolTable()
			if _, err := ParseRule(symbols, tt.input); err == nil {
				t.Errorf("ParseRule(%q) error = nil, want parse failure", tt.input)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	symbols := NewSymbolTable()

	q, err := ParseQuery(symbols, `resource(#ambient, $f), right(#authority, $f, #read)`)
	if err != nil {
		t.Fatalf("ParseQuery() error = %v, want nil", err)
	}
	if len(q.Body) != 2 {
		t.Fatalf("len(Body) = %d, want 2", len(q.Body))
	}
	if got := symbols.Str(q.Head.Name); got != "query" {
		t.Errorf("synthesized head name = %q, want %q", got, "query")
	}
	if len(q.Head.Terms) != 0 {
		t.Errorf("synthesized head arity = %d, want 0", len(q.Head.Terms))
	}
}

func TestParseCheck(t *testing.T) {
	symbols := NewSymbolTable()

	c, err := ParseCheck(symbols, `resource(#ambient, "file1") || resource(#ambient, "file2")`)
	if err != nil {
		t.Fatalf("ParseCheck() error = %v, want nil", err)
	}
	if len(c.Queries) != 2 {
		t.Fatalf("len(Queries) = %d, want 2", len(c.Queries))
	}
}

func TestParseCheck_InvalidAlternative(t *testing.T) {
	symbols := NewSymbolTable()

	if _, err := ParseCheck(symbols, `resource(#ambient, "file1") || nonsense(`); err == nil {
		t.Error("ParseCheck() error = nil, want parse failure")
	}
}

func TestPrintRoundTrip(t *testing.T) {
	symbols := NewSymbolTable()

	input := `right(#authority, "file1", #read)`
	f := mustFact(t, symbols, input)
	if got := symbols.PrintFact(f); got != input {
		t.Errorf("PrintFact() = %q, want %q", got, input)
	}

	rule := `can_read($f) <- right(#authority, $f, #read)`
	r := mustRule(t, symbols, rule)
	if got := symbols.PrintRule(r); got != rule {
		t.Errorf("PrintRule() = %q, want %q", got, rule)
	}
}

func TestPrintCheck(t *testing.T) {
	symbols := NewSymbolTable()

	input := `resource(#ambient, "file1") || resource(#ambient, "file2")`
	c := mustCheck(t, symbols, input)
	if got := symbols.PrintCheck(c); got != input {
		t.Errorf("PrintCheck() = %q, want %q", got, input)
	}
}
