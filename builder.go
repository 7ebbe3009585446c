package chainseal

import (
	"fmt"
	"io"

	"github.com/chainseal/chainseal/datalog"
	"github.com/chainseal/chainseal/internal/wire"
	"github.com/chainseal/chainseal/sig"
)

/*
 * Token construction.
 *
 * Builder assembles the authority block and signs it with the holder's
 * root key. Every later block is appended through BlockBuilder, signed
 * by the pending chain key carried in the token itself, so possession of
 * the serialized token is the capability to attenuate it. Sealing signs
 * the accumulated chain and drops the pending key; a sealed token always
 * rejects appends.
 *
 * Builders parse the Datalog text syntax. Any syntax failure surfaces as
 * the bare parse-error marker; reserved-tag misuse is reported eagerly
 * with the same Logic variants authorization time would produce.
 */

// Builder assembles and signs the authority block of a new token.
type Builder struct {
	root    sig.Keypair
	rng     io.Reader
	symbols *datalog.SymbolTable
	facts   []datalog.Fact
	rules   []datalog.Rule
	checks  []datalog.Check
}

// NewBuilder creates a token builder signing with the given root
// keypair. rng may be nil to use crypto/rand.
func NewBuilder(root sig.Keypair, rng io.Reader) *Builder {
	return &Builder{
		root:    root,
		rng:     rng,
		symbols: datalog.NewSymbolTable(),
	}
}

// AddAuthorityFact parses and adds an authority fact. The fact's first
// term must be the authority tag.
func (b *Builder) AddAuthorityFact(input string) error {
	f, err := datalog.ParseFact(b.symbols, input)
	if err != nil {
		return ErrParse
	}
	if !hasTag(f.Predicate, datalog.SymbolAuthority) {
		return datalog.InvalidAuthorityFactError{Fact: b.symbols.PrintFact(f)}
	}
	b.facts = append(b.facts, f)
	return nil
}

// AddAuthorityRule parses and adds a derivation rule to the authority
// block.
func (b *Builder) AddAuthorityRule(input string) error {
	r, err := datalog.ParseRule(b.symbols, input)
	if err != nil {
		return ErrParse
	}
	b.rules = append(b.rules, r)
	return nil
}

// AddAuthorityCheck parses and adds a check to the authority block.
func (b *Builder) AddAuthorityCheck(input string) error {
	c, err := datalog.ParseCheck(b.symbols, input)
	if err != nil {
		return ErrParse
	}
	b.checks = append(b.checks, c)
	return nil
}

// Build signs the authority block and returns the new token.
func (b *Builder) Build() (*Token, error) {
	next, err := sig.GenerateKeypair(b.rng)
	if err != nil {
		return nil, fmt.Errorf("generating the next chain key: %w", err)
	}

	block := &wire.Block{
		Index:   0,
		Symbols: append([]string{}, *b.symbols...),
		Facts:   b.facts,
		Rules:   b.rules,
		Checks:  b.checks,
	}
	raw := wire.EncodeBlock(block)

	signature, err := sig.SignBlock(b.root.Private, raw, next.Public)
	if err != nil {
		return nil, signatureError(err)
	}

	env := &wire.Envelope{
		Version:    wire.MaxSchemaVersion,
		Authority:  raw,
		NextKeys:   [][]byte{next.Public},
		Signatures: [][]byte{signature},
		NextSecret: next.Private,
		RootKey:    b.root.Public,
	}
	return initToken(env, nil)
}

// BlockBuilder assembles one attenuation block for Token.Append.
type BlockBuilder struct {
	symbols *datalog.SymbolTable
	base    int
	facts   []datalog.Fact
	rules   []datalog.Rule
	checks  []datalog.Check
}

// CreateBlock starts a block builder scoped to this token's symbol
// table. Symbols the block introduces are recorded as its own.
func (t *Token) CreateBlock() *BlockBuilder {
	symbols := t.symbols.Clone()
	return &BlockBuilder{
		symbols: symbols,
		base:    len(*symbols),
	}
}

// AddFact parses and adds a block fact. Block facts must not carry a
// reserved tag; violations are reported with the printed fact text.
func (bb *BlockBuilder) AddFact(input string) error {
	f, err := datalog.ParseFact(bb.symbols, input)
	if err != nil {
		return ErrParse
	}
	if usesReservedTag(f.Predicate) {
		// Block index is unknown until append; eager reports use 0.
		return datalog.InvalidBlockFactError{BlockIndex: 0, Fact: bb.symbols.PrintFact(f)}
	}
	bb.facts = append(bb.facts, f)
	return nil
}

// AddRule parses and adds a block rule. The head must not generate
// reserved-tag facts.
func (bb *BlockBuilder) AddRule(input string) error {
	r, err := datalog.ParseRule(bb.symbols, input)
	if err != nil {
		return ErrParse
	}
	if usesReservedTag(r.Head) {
		return datalog.InvalidBlockRuleError{BlockIndex: 0, Rule: bb.symbols.PrintRule(r)}
	}
	bb.rules = append(bb.rules, r)
	return nil
}

// AddCheck parses and adds a block check.
func (bb *BlockBuilder) AddCheck(input string) error {
	c, err := datalog.ParseCheck(bb.symbols, input)
	if err != nil {
		return ErrParse
	}
	bb.checks = append(bb.checks, c)
	return nil
}

// Append signs the built block with the token's pending chain key and
// returns the extended token. Appending to a sealed token fails with
// ErrSealed no matter what the block contains.
func (t *Token) Append(bb *BlockBuilder, rng io.Reader) (*Token, error) {
	if t.Sealed() {
		return nil, ErrSealed
	}

	next, err := sig.GenerateKeypair(rng)
	if err != nil {
		return nil, fmt.Errorf("generating the next chain key: %w", err)
	}

	block := &wire.Block{
		Index:   uint32(len(t.blocks) + 1),
		Symbols: (*bb.symbols)[bb.base:],
		Facts:   bb.facts,
		Rules:   bb.rules,
		Checks:  bb.checks,
	}
	raw := wire.EncodeBlock(block)

	pending := t.envelope.NextSecret
	signature, err := sig.SignBlock(pending, raw, next.Public)
	if err != nil {
		return nil, signatureError(err)
	}

	env := &wire.Envelope{
		Version:    t.envelope.Version,
		Authority:  t.envelope.Authority,
		Blocks:     append(append([][]byte{}, t.envelope.Blocks...), raw),
		NextKeys:   append(append([][]byte{}, t.envelope.NextKeys...), []byte(next.Public)),
		Signatures: append(append([][]byte{}, t.envelope.Signatures...), signature),
		NextSecret: next.Private,
		RootKey:    t.envelope.RootKey,
	}
	return initToken(env, nil)
}

// Seal closes the token against further appends by signing the whole
// chain with the pending key and discarding it.
func (t *Token) Seal() (*Token, error) {
	if t.Sealed() {
		return nil, ErrSealed
	}

	env := &wire.Envelope{
		Version:    t.envelope.Version,
		Authority:  t.envelope.Authority,
		Blocks:     append([][]byte{}, t.envelope.Blocks...),
		NextKeys:   append([][]byte{}, t.envelope.NextKeys...),
		Signatures: append([][]byte{}, t.envelope.Signatures...),
		RootKey:    t.envelope.RootKey,
	}

	seal, err := sig.SignSeal(t.envelope.NextSecret, sealPayload(env))
	if err != nil {
		return nil, signatureError(err)
	}
	env.Seal = seal
	return initToken(env, nil)
}

// hasTag reports whether the predicate's first term is the given
// reserved symbol.
func hasTag(p datalog.Predicate, tag datalog.Symbol) bool {
	if len(p.Terms) == 0 {
		return false
	}
	return tag.Equal(p.Terms[0])
}

// usesReservedTag reports whether any term of the predicate is a
// reserved authority or ambient symbol.
func usesReservedTag(p datalog.Predicate) bool {
	for _, t := range p.Terms {
		if datalog.SymbolAuthority.Equal(t) || datalog.SymbolAmbient.Equal(t) {
			return true
		}
	}
	return false
}
