package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/chainseal/chainseal/datalog"
)

// DecodeEnvelope parses the outer wrapper of a serialized token.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	e := &Envelope{}
	err := eachField(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			v, err := asVarint(typ, field)
			if err != nil {
				return err
			}
			if v > math.MaxUint32 {
				return fmt.Errorf("version %d overflows uint32", v)
			}
			e.Version = uint32(v)
		case 2:
			b, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			e.Authority = b
		case 3:
			b, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			e.Blocks = append(e.Blocks, b)
		case 4:
			b, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			e.NextKeys = append(e.NextKeys, b)
		case 5:
			b, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			e.Signatures = append(e.Signatures, b)
		case 6:
			b, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			e.NextSecret = b
		case 7:
			b, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			e.Seal = b
		case 8:
			b, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			e.RootKey = b
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	return e, nil
}

// DecodeBlock parses one serialized block.
func DecodeBlock(data []byte) (*Block, error) {
	b := &Block{}
	err := eachField(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			v, err := asVarint(typ, field)
			if err != nil {
				return err
			}
			if v > math.MaxUint32 {
				return fmt.Errorf("block index %d overflows uint32", v)
			}
			b.Index = uint32(v)
		case 2:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			b.Symbols = append(b.Symbols, string(raw))
		case 3:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			f, err := decodeFact(raw)
			if err != nil {
				return err
			}
			b.Facts = append(b.Facts, f)
		case 4:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			r, err := decodeRule(raw)
			if err != nil {
				return err
			}
			b.Rules = append(b.Rules, r)
		case 5:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			c, err := decodeCheck(raw)
			if err != nil {
				return err
			}
			b.Checks = append(b.Checks, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("block: %w", err)
	}
	return b, nil
}

// eachField walks top-level fields, skipping unknown numbers, and hands
// known ones to fn with their undecoded payload.
func eachField(data []byte, fn func(protowire.Number, protowire.Type, []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("malformed tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		size := protowire.ConsumeFieldValue(num, typ, data)
		if size < 0 {
			return fmt.Errorf("malformed field %d: %w", num, protowire.ParseError(size))
		}
		if err := fn(num, typ, data[:size]); err != nil {
			return err
		}
		data = data[size:]
	}
	return nil
}

func asVarint(typ protowire.Type, field []byte) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("unexpected wire type %d for varint field", typ)
	}
	v, n := protowire.ConsumeVarint(field)
	if n < 0 {
		return 0, fmt.Errorf("malformed varint: %w", protowire.ParseError(n))
	}
	return v, nil
}

func asBytes(typ protowire.Type, field []byte) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, fmt.Errorf("unexpected wire type %d for bytes field", typ)
	}
	b, n := protowire.ConsumeBytes(field)
	if n < 0 {
		return nil, fmt.Errorf("malformed bytes: %w", protowire.ParseError(n))
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func decodeFact(data []byte) (datalog.Fact, error) {
	var f datalog.Fact
	seen := false
	err := eachField(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		if num != 1 {
			return nil
		}
		raw, err := asBytes(typ, field)
		if err != nil {
			return err
		}
		p, err := decodePredicate(raw)
		if err != nil {
			return err
		}
		f.Predicate = p
		seen = true
		return nil
	})
	if err != nil {
		return datalog.Fact{}, err
	}
	if !seen {
		return datalog.Fact{}, fmt.Errorf("fact missing predicate")
	}
	return f, nil
}

func decodePredicate(data []byte) (datalog.Predicate, error) {
	var p datalog.Predicate
	err := eachField(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			v, err := asVarint(typ, field)
			if err != nil {
				return err
			}
			p.Name = datalog.Symbol(v)
		case 2:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			t, err := decodeTerm(raw)
			if err != nil {
				return err
			}
			p.Terms = append(p.Terms, t)
		}
		return nil
	})
	if err != nil {
		return datalog.Predicate{}, err
	}
	return p, nil
}

func decodeTerm(data []byte) (datalog.Term, error) {
	var out datalog.Term
	err := eachField(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			v, err := asVarint(typ, field)
			if err != nil {
				return err
			}
			out = datalog.Symbol(v)
		case 2:
			v, err := asVarint(typ, field)
			if err != nil {
				return err
			}
			out = datalog.Variable(v)
		case 3:
			v, err := asVarint(typ, field)
			if err != nil {
				return err
			}
			out = datalog.Integer(protowire.DecodeZigZag(v))
		case 4:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			out = datalog.String(raw)
		case 5:
			v, err := asVarint(typ, field)
			if err != nil {
				return err
			}
			out = datalog.Date(v)
		case 6:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			out = datalog.Bytes(raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("term carries no variant")
	}
	return out, nil
}

func decodeRule(data []byte) (datalog.Rule, error) {
	var r datalog.Rule
	seenHead := false
	err := eachField(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		switch num {
		case 1:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			p, err := decodePredicate(raw)
			if err != nil {
				return err
			}
			r.Head = p
			seenHead = true
		case 2:
			raw, err := asBytes(typ, field)
			if err != nil {
				return err
			}
			p, err := decodePredicate(raw)
			if err != nil {
				return err
			}
			r.Body = append(r.Body, p)
		}
		return nil
	})
	if err != nil {
		return datalog.Rule{}, err
	}
	if !seenHead {
		return datalog.Rule{}, fmt.Errorf("rule missing head")
	}
	return r, nil
}

func decodeCheck(data []byte) (datalog.Check, error) {
	var c datalog.Check
	err := eachField(data, func(num protowire.Number, typ protowire.Type, field []byte) error {
		if num != 1 {
			return nil
		}
		raw, err := asBytes(typ, field)
		if err != nil {
			return err
		}
		q, err := decodeRule(raw)
		if err != nil {
			return err
		}
		c.Queries = append(c.Queries, q)
		return nil
	})
	if err != nil {
		return datalog.Check{}, err
	}
	if len(c.Queries) == 0 {
		return datalog.Check{}, fmt.Errorf("check carries no queries")
	}
	return c, nil
}
