package wire

import (
	"bytes"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/chainseal/chainseal/datalog"
)

func testBlock(t *testing.T) *Block {
	t.Helper()
	symbols := datalog.NewSymbolTable()
	fact, err := datalog.ParseFact(symbols, `right(#authority, "file1", #read)`)
	if err != nil {
		t.Fatalf("ParseFact() error = %v, want nil", err)
	}
	rule, err := datalog.ParseRule(symbols, `can_read($f) <- right(#authority, $f, #read)`)
	if err != nil {
		t.Fatalf("ParseRule() error = %v, want nil", err)
	}
	check, err := datalog.ParseCheck(symbols, `resource(#ambient, "file1") || resource(#ambient, "file2")`)
	if err != nil {
		t.Fatalf("ParseCheck() error = %v, want nil", err)
	}
	return &Block{
		Index:   0,
		Symbols: []string(*symbols),
		Facts:   []datalog.Fact{fact},
		Rules:   []datalog.Rule{rule},
		Checks:  []datalog.Check{check},
	}
}

func TestBlockRoundTrip(t *testing.T) {
	in := testBlock(t)
	// Non-string terms have no text syntax; add them directly.
	in.Facts = append(in.Facts, datalog.Fact{Predicate: datalog.Predicate{
		Name: datalog.Symbol(2),
		Terms: []datalog.Term{
			datalog.Integer(-42),
			datalog.Date(1735689600),
			datalog.Bytes{0xde, 0xad, 0xbe, 0xef},
		},
	}})

	out, err := DecodeBlock(EncodeBlock(in))
	if err != nil {
		t.Fatalf("DecodeBlock() error = %v, want nil", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in  %+v\n out %+v", in, out)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	in := &Envelope{
		Version:    1,
		Authority:  []byte("authority block"),
		Blocks:     [][]byte{[]byte("block one"), []byte("block two")},
		NextKeys:   [][]byte{[]byte("key one"), []byte("key two"), []byte("key three")},
		Signatures: [][]byte{[]byte("sig one"), []byte("sig two"), []byte("sig three")},
		NextSecret: []byte("pending secret"),
		RootKey:    []byte("root public key"),
	}

	out, err := DecodeEnvelope(EncodeEnvelope(in))
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v, want nil", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in  %+v\n out %+v", in, out)
	}
	if out.Sealed() {
		t.Error("Sealed() = true for an open envelope, want false")
	}
}

func TestEnvelopeSealed(t *testing.T) {
	in := &Envelope{
		Version:   1,
		Authority: []byte("authority block"),
		Seal:      []byte("closing signature"),
	}
	out, err := DecodeEnvelope(EncodeEnvelope(in))
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v, want nil", err)
	}
	if !out.Sealed() {
		t.Error("Sealed() = false for a sealed envelope, want true")
	}
}

func TestDecodeEnvelope_Truncated(t *testing.T) {
	data := EncodeEnvelope(&Envelope{
		Version:   1,
		Authority: []byte("authority block"),
	})

	// A cut at a field boundary still decodes, to a partial envelope;
	// a cut inside a field must error. Neither may yield the full value.
	for cut := 1; cut < len(data); cut++ {
		out, err := DecodeEnvelope(data[:cut])
		if err != nil {
			continue
		}
		if out.Version == 1 && bytes.Equal(out.Authority, []byte("authority block")) {
			t.Errorf("truncation at %d produced the complete envelope", cut)
		}
	}
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	if _, err := DecodeEnvelope([]byte{0xff, 0xff, 0xff, 0xff, 0xff}); err == nil {
		t.Error("DecodeEnvelope() error = nil for garbage, want failure")
	}
}

func TestDecodeEnvelope_VersionOverflow(t *testing.T) {
	// A declared version above uint32 range must be rejected, not
	// silently truncated under the schema ceiling.
	data := EncodeEnvelope(&Envelope{Authority: []byte("authority block")})
	data = protowire.AppendTag(data, 1, protowire.VarintType)
	data = protowire.AppendVarint(data, uint64(1)<<32+1)

	if _, err := DecodeEnvelope(data); err == nil {
		t.Error("DecodeEnvelope() error = nil for version 2^32+1, want failure")
	}
}

func TestDecodeBlock_IndexOverflow(t *testing.T) {
	data := protowire.AppendTag(nil, 1, protowire.VarintType)
	data = protowire.AppendVarint(data, uint64(1)<<32+5)

	if _, err := DecodeBlock(data); err == nil {
		t.Error("DecodeBlock() error = nil for index 2^32+5, want failure")
	}
}

func TestDecodeEnvelope_SkipsUnknownFields(t *testing.T) {
	data := EncodeEnvelope(&Envelope{Version: 1, Authority: []byte("authority block")})

	// A future writer appends field 15; an older reader must ignore it.
	data = protowire.AppendTag(data, 15, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("from the future"))

	out, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v, want nil", err)
	}
	if out.Version != 1 || !bytes.Equal(out.Authority, []byte("authority block")) {
		t.Errorf("known fields lost around an unknown field: %+v", out)
	}
}

func TestDecodeBlock_MissingParts(t *testing.T) {
	tests := []struct {
		name   string
		encode func() []byte
	}{
		{
			"fact without predicate",
			func() []byte {
				var out []byte
				out = protowire.AppendTag(out, 3, protowire.BytesType)
				out = protowire.AppendBytes(out, nil)
				return out
			},
		},
		{
			"rule without head",
			func() []byte {
				var out []byte
				out = protowire.AppendTag(out, 4, protowire.BytesType)
				out = protowire.AppendBytes(out, nil)
				return out
			},
		},
		{
			"check without queries",
			func() []byte {
				var out []byte
				out = protowire.AppendTag(out, 5, protowire.BytesType)
				out = protowire.AppendBytes(out, nil)
				return out
			},
		},
		{
			"term without variant",
			func() []byte {
				var pred []byte
				pred = protowire.AppendTag(pred, 1, protowire.VarintType)
				pred = protowire.AppendVarint(pred, 2)
				pred = protowire.AppendTag(pred, 2, protowire.BytesType)
				pred = protowire.AppendBytes(pred, nil) // empty term
				var fact []byte
				fact = protowire.AppendTag(fact, 1, protowire.BytesType)
				fact = protowire.AppendBytes(fact, pred)
				var out []byte
				out = protowire.AppendTag(out, 3, protowire.BytesType)
				out = protowire.AppendBytes(out, fact)
				return out
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBlock(tt.encode()); err == nil {
				t.Error("DecodeBlock() error = nil, want failure")
			}
		})
	}
}
