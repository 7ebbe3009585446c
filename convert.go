package chainseal

import (
	"fmt"
	"time"

	"github.com/chainseal/chainseal/datalog"
)

// Typed extraction of terms from query results. Each conversion is a
// shape check: a mismatch reports the requested and actual kinds in a
// ConversionError and never panics.

// TermString extracts a string literal.
func TermString(t datalog.Term) (string, error) {
	if s, ok := t.(datalog.String); ok {
		return string(s), nil
	}
	return "", conversionError("string", t)
}

// TermInt64 extracts an integer literal.
func TermInt64(t datalog.Term) (int64, error) {
	if i, ok := t.(datalog.Integer); ok {
		return int64(i), nil
	}
	return 0, conversionError("integer", t)
}

// TermTime extracts a date literal as a UTC time.
func TermTime(t datalog.Term) (time.Time, error) {
	if d, ok := t.(datalog.Date); ok {
		return time.Unix(int64(d), 0).UTC(), nil
	}
	return time.Time{}, conversionError("date", t)
}

// TermBytes extracts a binary literal as a copy.
func TermBytes(t datalog.Term) ([]byte, error) {
	if b, ok := t.(datalog.Bytes); ok {
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	}
	return nil, conversionError("bytes", t)
}

func conversionError(want string, t datalog.Term) error {
	return ConversionError{Message: fmt.Sprintf("expected %s, got %s", want, termKind(t))}
}

func termKind(t datalog.Term) string {
	switch t.Type() {
	case datalog.TermTypeSymbol:
		return "symbol"
	case datalog.TermTypeVariable:
		return "variable"
	case datalog.TermTypeInteger:
		return "integer"
	case datalog.TermTypeString:
		return "string"
	case datalog.TermTypeDate:
		return "date"
	case datalog.TermTypeBytes:
		return "bytes"
	default:
		return "unknown"
	}
}
