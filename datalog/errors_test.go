package datalog

import (
	"errors"
	"testing"
)

func TestFailedChecksError_Equal(t *testing.T) {
	a := FailedChecksError{
		FailedBlockCheck{BlockID: 0, CheckID: 0, Rule: `resource(#ambient, "file1")`},
		FailedAuthorizerCheck{CheckID: 1, Rule: `operation(#ambient, #read)`},
	}
	b := FailedChecksError{
		FailedBlockCheck{BlockID: 0, CheckID: 0, Rule: `resource(#ambient, "file1")`},
		FailedAuthorizerCheck{CheckID: 1, Rule: `operation(#ambient, #read)`},
	}
	if !a.Equal(b) {
		t.Error("Equal() = false for identical lists, want true")
	}

	// Order matters.
	reversed := FailedChecksError{b[1], b[0]}
	if a.Equal(reversed) {
		t.Error("Equal() = true for reordered lists, want false")
	}

	shorter := FailedChecksError{b[0]}
	if a.Equal(shorter) {
		t.Error("Equal() = true for lists of different length, want false")
	}
}

func TestFailedChecksError_Message(t *testing.T) {
	err := FailedChecksError{
		FailedBlockCheck{BlockID: 1, CheckID: 0, Rule: `resource(#ambient, "file1")`},
	}
	want := `1 checks failed: block 1 check 0 failed: resource(#ambient, "file1")`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLogicErrorVariants(t *testing.T) {
	variants := []LogicError{
		ErrAuthorizerNotEmpty,
		ErrNoMatchingPolicy,
		InvalidAuthorityFactError{Fact: "f()"},
		InvalidAmbientFactError{Fact: "f()"},
		InvalidBlockFactError{BlockIndex: 1, Fact: "f()"},
		InvalidBlockRuleError{BlockIndex: 1, Rule: "r() <- f()"},
		DenyError{Policy: 0},
		FailedChecksError{},
	}
	for _, v := range variants {
		if v.Error() == "" {
			t.Errorf("%T has an empty error message", v)
		}
	}
}

func TestRunLimitErrorIdentity(t *testing.T) {
	// Each limit is a distinct value and is never a LogicError.
	limits := []RunLimitError{ErrTooManyFacts, ErrTooManyIterations, ErrTimeout}
	for i, a := range limits {
		for j, b := range limits {
			if (i == j) != errors.Is(a, b) {
				t.Errorf("errors.Is(%v, %v) mismatch", a, b)
			}
		}
		if _, ok := any(a).(LogicError); ok {
			t.Errorf("%v satisfies LogicError, want distinct taxonomy", a)
		}
	}
}

func TestDenyError_Payload(t *testing.T) {
	err := DenyError{Policy: 2}
	var deny DenyError
	if !errors.As(err, &deny) || deny.Policy != 2 {
		t.Errorf("errors.As recovered %+v, want Policy 2", deny)
	}
}
