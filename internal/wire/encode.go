package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/chainseal/chainseal/datalog"
)

// EncodeEnvelope serializes the envelope.
func EncodeEnvelope(e *Envelope) []byte {
	var out []byte
	out = protowire.AppendTag(out, 1, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(e.Version))
	out = protowire.AppendTag(out, 2, protowire.BytesType)
	out = protowire.AppendBytes(out, e.Authority)
	for _, b := range e.Blocks {
		out = protowire.AppendTag(out, 3, protowire.BytesType)
		out = protowire.AppendBytes(out, b)
	}
	for _, k := range e.NextKeys {
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendBytes(out, k)
	}
	for _, s := range e.Signatures {
		out = protowire.AppendTag(out, 5, protowire.BytesType)
		out = protowire.AppendBytes(out, s)
	}
	if len(e.NextSecret) > 0 {
		out = protowire.AppendTag(out, 6, protowire.BytesType)
		out = protowire.AppendBytes(out, e.NextSecret)
	}
	if len(e.Seal) > 0 {
		out = protowire.AppendTag(out, 7, protowire.BytesType)
		out = protowire.AppendBytes(out, e.Seal)
	}
	if len(e.RootKey) > 0 {
		out = protowire.AppendTag(out, 8, protowire.BytesType)
		out = protowire.AppendBytes(out, e.RootKey)
	}
	return out
}

// EncodeBlock serializes a block.
func EncodeBlock(b *Block) []byte {
	var out []byte
	out = protowire.AppendTag(out, 1, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(b.Index))
	for _, s := range b.Symbols {
		out = protowire.AppendTag(out, 2, protowire.BytesType)
		out = protowire.AppendString(out, s)
	}
	for _, f := range b.Facts {
		out = protowire.AppendTag(out, 3, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeFact(f))
	}
	for _, r := range b.Rules {
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeRule(r))
	}
	for _, c := range b.Checks {
		out = protowire.AppendTag(out, 5, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeCheck(c))
	}
	return out
}

func encodeFact(f datalog.Fact) []byte {
	var out []byte
	out = protowire.AppendTag(out, 1, protowire.BytesType)
	out = protowire.AppendBytes(out, encodePredicate(f.Predicate))
	return out
}

func encodePredicate(p datalog.Predicate) []byte {
	var out []byte
	out = protowire.AppendTag(out, 1, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(p.Name))
	for _, t := range p.Terms {
		out = protowire.AppendTag(out, 2, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeTerm(t))
	}
	return out
}

func encodeTerm(t datalog.Term) []byte {
	var out []byte
	switch v := t.(type) {
	case datalog.Symbol:
		out = protowire.AppendTag(out, 1, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(v))
	case datalog.Variable:
		out = protowire.AppendTag(out, 2, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(v))
	case datalog.Integer:
		out = protowire.AppendTag(out, 3, protowire.VarintType)
		out = protowire.AppendVarint(out, protowire.EncodeZigZag(int64(v)))
	case datalog.String:
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendString(out, string(v))
	case datalog.Date:
		out = protowire.AppendTag(out, 5, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(v))
	case datalog.Bytes:
		out = protowire.AppendTag(out, 6, protowire.BytesType)
		out = protowire.AppendBytes(out, v)
	default:
		// Unreachable with the closed term set.
		panic(fmt.Sprintf("wire: unknown term type %T", t))
	}
	return out
}

func encodeRule(r datalog.Rule) []byte {
	var out []byte
	out = protowire.AppendTag(out, 1, protowire.BytesType)
	out = protowire.AppendBytes(out, encodePredicate(r.Head))
	for _, p := range r.Body {
		out = protowire.AppendTag(out, 2, protowire.BytesType)
		out = protowire.AppendBytes(out, encodePredicate(p))
	}
	return out
}

func encodeCheck(c datalog.Check) []byte {
	var out []byte
	for _, q := range c.Queries {
		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeRule(q))
	}
	return out
}
