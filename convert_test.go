package chainseal

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/chainseal/chainseal/datalog"
)

func TestTermConversions(t *testing.T) {
	s, err := TermString(datalog.String("file1"))
	if err != nil || s != "file1" {
		t.Errorf("TermString() = %q, %v, want file1, nil", s, err)
	}

	i, err := TermInt64(datalog.Integer(-42))
	if err != nil || i != -42 {
		t.Errorf("TermInt64() = %d, %v, want -42, nil", i, err)
	}

	when, err := TermTime(datalog.Date(1735689600))
	if err != nil {
		t.Fatalf("TermTime() error = %v, want nil", err)
	}
	if want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC); !when.Equal(want) {
		t.Errorf("TermTime() = %v, want %v", when, want)
	}

	b, err := TermBytes(datalog.Bytes{0xde, 0xad})
	if err != nil || !bytes.Equal(b, []byte{0xde, 0xad}) {
		t.Errorf("TermBytes() = %x, %v, want dead, nil", b, err)
	}
}

func TestTermBytes_ReturnsCopy(t *testing.T) {
	original := datalog.Bytes{0x01, 0x02}
	b, err := TermBytes(original)
	if err != nil {
		t.Fatalf("TermBytes() error = %v, want nil", err)
	}
	b[0] = 0xff
	if original[0] != 0x01 {
		t.Error("TermBytes() aliases the term's backing array")
	}
}

func TestTermConversions_Mismatch(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"string from integer", mustErr(TermString(datalog.Integer(1))), "expected string, got integer"},
		{"integer from symbol", mustErr(TermInt64(datalog.Symbol(0))), "expected integer, got symbol"},
		{"date from string", mustErr(TermTime(datalog.String("x"))), "expected date, got string"},
		{"bytes from variable", mustErr(TermBytes(datalog.Variable(3))), "expected bytes, got variable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var conv ConversionError
			if !errors.As(tt.err, &conv) {
				t.Fatalf("error = %v, want ConversionError", tt.err)
			}
			if conv.Message != tt.want {
				t.Errorf("Message = %q, want %q", conv.Message, tt.want)
			}
		})
	}
}

func mustErr[T any](_ T, err error) error { return err }
