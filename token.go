// Package chainseal implements a cryptographically signed, Datalog
// evaluated authorization token: an append-only chain of signed blocks
// carrying facts, rules, and checks, authorized against ambient facts
// and an ordered allow/deny policy list.
package chainseal

import (
	"crypto/ed25519"
	"encoding/base64"
	"strconv"

	"github.com/chainseal/chainseal/datalog"
	"github.com/chainseal/chainseal/internal/wire"
	"github.com/chainseal/chainseal/sig"
)

// MaxSchemaVersion is the highest token format version this build
// understands.
const MaxSchemaVersion = wire.MaxSchemaVersion

// TrustedRoots decides whether a token's root public key is trusted.
// A nil TrustedRoots skips the trust check; parsing then only proves
// internal chain consistency.
type TrustedRoots interface {
	Trusted(pub ed25519.PublicKey) bool
}

// RootSet is a fixed list of trusted root public keys.
type RootSet []ed25519.PublicKey

// Trusted reports membership in the set.
func (s RootSet) Trusted(pub ed25519.PublicKey) bool {
	for _, k := range s {
		if k.Equal(pub) {
			return true
		}
	}
	return false
}

// Token is a parsed, signature-verified block chain. Tokens are
// immutable; Append and Seal return new values.
type Token struct {
	envelope  *wire.Envelope
	authority *wire.Block
	blocks    []*wire.Block
	symbols   *datalog.SymbolTable
}

// Parse decodes and verifies a serialized token. The returned error is
// one value from the token failure taxonomy: format failures for
// malformed bytes, bad versions, untrusted roots, or bad signatures;
// index, symbol-table, and similar structural violations at this layer.
func Parse(data []byte, roots TrustedRoots) (*Token, error) {
	env, err := wire.DecodeEnvelope(data)
	if err != nil {
		return nil, formatError(DeserializationError{Message: err.Error()})
	}
	return initToken(env, roots)
}

// ParseBase64 decodes a URL-safe base64 token and parses it.
func ParseBase64(encoded string, roots TrustedRoots) (*Token, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, Base64Error{Err: err}
	}
	return Parse(data, roots)
}

// initToken validates an envelope: version ceiling, chain shape, root
// trust, signature chain, proof, block structure, and symbol tables.
func initToken(env *wire.Envelope, roots TrustedRoots) (*Token, error) {
	if env.Version > wire.MaxSchemaVersion {
		return nil, formatError(VersionError{Maximum: wire.MaxSchemaVersion, Actual: env.Version})
	}
	if len(env.NextKeys) == 0 {
		return nil, formatError(ErrEmptyKeys)
	}
	if len(env.Authority) == 0 {
		return nil, formatError(DeserializationError{Message: "envelope carries no authority block"})
	}
	if len(env.Signatures) != len(env.Blocks)+1 || len(env.NextKeys) != len(env.Blocks)+1 {
		return nil, formatError(DeserializationError{Message: "signature chain length does not match block count"})
	}
	if len(env.RootKey) != ed25519.PublicKeySize {
		return nil, formatError(DeserializationError{Message: "envelope carries no root public key"})
	}

	rootKey := ed25519.PublicKey(env.RootKey)
	if roots != nil && !roots.Trusted(rootKey) {
		return nil, formatError(ErrUnknownRootKey)
	}

	if err := verifyChain(env, rootKey); err != nil {
		return nil, err
	}

	authority, err := wire.DecodeBlock(env.Authority)
	if err != nil {
		return nil, formatError(BlockDeserializationError{Message: err.Error()})
	}
	if authority.Index != 0 {
		return nil, InvalidAuthorityIndexError{Found: authority.Index}
	}

	blocks := make([]*wire.Block, 0, len(env.Blocks))
	for i, raw := range env.Blocks {
		block, err := wire.DecodeBlock(raw)
		if err != nil {
			return nil, formatError(BlockDeserializationError{Message: err.Error()})
		}
		expected := uint32(i + 1)
		if block.Index != expected {
			return nil, InvalidBlockIndexError{Expected: expected, Found: block.Index}
		}
		blocks = append(blocks, block)
	}

	symbols, err := mergeSymbols(authority, blocks)
	if err != nil {
		return nil, err
	}

	return &Token{
		envelope:  env,
		authority: authority,
		blocks:    blocks,
		symbols:   symbols,
	}, nil
}

// verifyChain walks the signature chain and checks the proof.
func verifyChain(env *wire.Envelope, rootKey ed25519.PublicKey) error {
	if err := sig.VerifyBlock(rootKey, env.Authority, env.NextKeys[0], env.Signatures[0]); err != nil {
		return signatureError(err)
	}
	for i, raw := range env.Blocks {
		pub := ed25519.PublicKey(env.NextKeys[i])
		if err := sig.VerifyBlock(pub, raw, env.NextKeys[i+1], env.Signatures[i+1]); err != nil {
			return signatureError(err)
		}
	}

	lastKey := env.NextKeys[len(env.NextKeys)-1]
	if env.Sealed() {
		if err := sig.VerifySeal(ed25519.PublicKey(lastKey), sealPayload(env), env.Seal); err != nil {
			return formatError(ErrSealedSignature)
		}
		return nil
	}

	// Open token: the proof is the pending signing key, which must match
	// the last public key in the chain.
	if len(env.NextSecret) != ed25519.PrivateKeySize {
		return signatureError(sig.ErrInvalidFormat)
	}
	pending := ed25519.PrivateKey(env.NextSecret)
	if !pending.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(lastKey)) {
		return signatureError(sig.ErrInvalidSignature)
	}
	return nil
}

// sealPayload is the byte string covered by the seal signature: every
// block, chained key, and signature in order.
func sealPayload(env *wire.Envelope) []byte {
	var out []byte
	out = append(out, env.Authority...)
	out = append(out, env.NextKeys[0]...)
	out = append(out, env.Signatures[0]...)
	for i, raw := range env.Blocks {
		out = append(out, raw...)
		out = append(out, env.NextKeys[i+1]...)
		out = append(out, env.Signatures[i+1]...)
	}
	return out
}

// mergeSymbols builds the token-wide symbol table. The authority block
// carries the complete base table, which must start with the default
// namespaces; later blocks only append and must not overlap.
func mergeSymbols(authority *wire.Block, blocks []*wire.Block) (*datalog.SymbolTable, error) {
	if len(authority.Symbols) < len(datalog.DefaultSymbols) {
		return nil, ErrMissingSymbols
	}
	for i, def := range datalog.DefaultSymbols {
		if authority.Symbols[i] != def {
			return nil, ErrMissingSymbols
		}
	}
	if hasDuplicateSymbols(authority.Symbols) {
		return nil, ErrSymbolTableOverlap
	}

	merged := datalog.SymbolTable(append([]string{}, authority.Symbols...))
	for _, block := range blocks {
		if hasDuplicateSymbols(block.Symbols) || !merged.IsDisjoint(block.Symbols) {
			return nil, ErrSymbolTableOverlap
		}
		merged.Extend(block.Symbols)
	}
	return &merged, nil
}

// hasDuplicateSymbols reports whether a block declares the same symbol
// twice in its own table.
func hasDuplicateSymbols(symbols []string) bool {
	for i, s := range symbols {
		for j := 0; j < i; j++ {
			if symbols[j] == s {
				return true
			}
		}
	}
	return false
}

// Serialize encodes the token back to bytes.
func (t *Token) Serialize() []byte {
	return wire.EncodeEnvelope(t.envelope)
}

// Base64 encodes the token in URL-safe base64.
func (t *Token) Base64() string {
	return base64.URLEncoding.EncodeToString(t.Serialize())
}

// Sealed reports whether the token is closed against further appends.
func (t *Token) Sealed() bool {
	return t.envelope.Sealed()
}

// RootKey returns the root public key that signed the authority block.
func (t *Token) RootKey() ed25519.PublicKey {
	return ed25519.PublicKey(t.envelope.RootKey)
}

// BlockCount is the number of blocks including the authority block.
func (t *Token) BlockCount() int {
	return len(t.blocks) + 1
}

// Symbols returns a copy of the merged symbol table.
func (t *Token) Symbols() *datalog.SymbolTable {
	return t.symbols.Clone()
}

// Print renders every block's facts, rules, and checks for diagnostics.
// The output is not a stable machine-readable contract.
func (t *Token) Print() string {
	out := "authority:\n" + printBlock(t.symbols, t.authority)
	for i, b := range t.blocks {
		out += "block " + strconv.Itoa(i+1) + ":\n" + printBlock(t.symbols, b)
	}
	return out
}

func printBlock(symbols *datalog.SymbolTable, b *wire.Block) string {
	var out string
	for _, f := range b.Facts {
		out += "  fact: " + symbols.PrintFact(f) + "\n"
	}
	for _, r := range b.Rules {
		out += "  rule: " + symbols.PrintRule(r) + "\n"
	}
	for _, c := range b.Checks {
		out += "  check: " + symbols.PrintCheck(c) + "\n"
	}
	return out
}
