package sig

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
)

// Key text format: cs1-<kind>-<hex> where kind is "pub" (32-byte key,
// 64 hex chars) or "sec" (64-byte key, 128 hex chars). The version
// segment pins the algorithm; a future scheme bumps the prefix.
const (
	keyPrefix     = "cs1"
	publicKeyKind = "pub"
	secretKeyKind = "sec"
)

// EncodePublicKey renders a public key in text form.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return fmt.Sprintf("%s-%s-%x", keyPrefix, publicKeyKind, []byte(pub))
}

// EncodePrivateKey renders a private key in text form.
func EncodePrivateKey(priv ed25519.PrivateKey) string {
	return fmt.Sprintf("%s-%s-%x", keyPrefix, secretKeyKind, []byte(priv))
}

// ParsePublicKey parses the text form of a public key.
// Returns ErrInvalidFormat on any layout violation.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := parseKey(s, publicKeyKind, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(raw), nil
}

// ParsePrivateKey parses the text form of a private key.
// Returns ErrInvalidFormat on any layout violation.
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := parseKey(s, secretKeyKind, ed25519.PrivateKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PrivateKey(raw), nil
}

func parseKey(s, kind string, size int) ([]byte, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return nil, ErrInvalidFormat
	}
	if parts[0] != keyPrefix || parts[1] != kind {
		return nil, ErrInvalidFormat
	}
	if len(parts[2]) != size*2 {
		return nil, ErrInvalidFormat
	}
	raw, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidFormat
	}
	return raw, nil
}
