// Package wire implements the binary codec for token envelopes and
// blocks using the protobuf wire format directly.
package wire

import (
	"github.com/chainseal/chainseal/datalog"
)

/*
 * Wire schema, protobuf field numbers.
 *
 * Envelope: 1 version (varint), 2 authority (bytes), 3 blocks (repeated
 * bytes), 4 next_keys (repeated bytes), 5 signatures (repeated bytes),
 * 6 next_secret (bytes), 7 seal (bytes), 8 root_key (bytes).
 * next_secret and seal are the mutually exclusive chain proof: the
 * pending signing key of an open token, or the closing signature of a
 * sealed one.
 *
 * Block: 1 index (varint), 2 symbols (repeated bytes), 3 facts, 4 rules,
 * 5 checks (repeated messages).
 *
 * Fact: 1 predicate. Predicate: 1 name (varint), 2 terms. Term is a
 * oneof: 1 symbol (varint), 2 variable (varint), 3 integer (sint64),
 * 4 string (bytes), 5 date (varint), 6 bytes (bytes). Rule: 1 head,
 * 2 body. Check: 1 queries.
 *
 * Unknown fields are skipped on decode so older readers tolerate newer
 * writers below the envelope version ceiling. Decode errors are plain
 * errors; the token layer wraps them into its format taxonomy, keeping
 * envelope and block failures distinct.
 */

// MaxSchemaVersion is the highest envelope version this codec reads.
const MaxSchemaVersion = 1

// Envelope is the outer wrapper of a serialized token.
type Envelope struct {
	Version    uint32
	Authority  []byte
	Blocks     [][]byte
	NextKeys   [][]byte
	Signatures [][]byte
	NextSecret []byte
	Seal       []byte
	RootKey    []byte
}

// Sealed reports whether the envelope carries a seal proof.
func (e *Envelope) Sealed() bool {
	return len(e.Seal) > 0
}

// Block is one decoded segment of the token chain.
type Block struct {
	Index   uint32
	Symbols []string
	Facts   []datalog.Fact
	Rules   []datalog.Rule
	Checks  []datalog.Check
}
