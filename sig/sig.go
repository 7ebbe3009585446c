// Package sig implements the signature chain securing a token's blocks.
//
// Each block is signed together with the public key of the next signer,
// forming an append-only chain rooted in the holder's trusted key.
// Sealing signs the accumulated chain with the last key, closing it
// against further appends.
package sig

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
)

// Keypair is an ed25519 signing keypair for one chain hop.
type Keypair struct {
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// GenerateKeypair creates a fresh keypair from rng, defaulting to
// crypto/rand when rng is nil.
func GenerateKeypair(rng io.Reader) (Keypair, error) {
	if rng == nil {
		rng = rand.Reader
	}
	pub, priv, err := ed25519.GenerateKey(rng)
	if err != nil {
		return Keypair{}, fmt.Errorf("ed25519 key generation: %w", err)
	}
	return Keypair{Private: priv, Public: pub}, nil
}

// KeypairFromPrivate reconstructs a keypair from an existing private key.
func KeypairFromPrivate(priv ed25519.PrivateKey) (Keypair, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return Keypair{}, fmt.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return Keypair{}, fmt.Errorf("ed25519 private key has no public half")
	}
	return Keypair{Private: priv, Public: pub}, nil
}

// signedPayload is the byte string covered by a block signature: the
// serialized block followed by the next signer's public key. Binding the
// next key prevents chain splicing.
func signedPayload(block, nextPub []byte) []byte {
	out := make([]byte, 0, len(block)+len(nextPub))
	out = append(out, block...)
	out = append(out, nextPub...)
	return out
}

// SignBlock signs a serialized block bound to the next signer's public key.
func SignBlock(priv ed25519.PrivateKey, block, nextPub []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize || len(nextPub) != ed25519.PublicKeySize {
		return nil, ErrInvalidFormat
	}
	return ed25519.Sign(priv, signedPayload(block, nextPub)), nil
}

// VerifyBlock checks a block signature produced by SignBlock.
// Wrong-length key or signature bytes are a format failure; a well-formed
// signature that does not verify is an invalid signature. The two are
// never conflated.
func VerifyBlock(pub ed25519.PublicKey, block, nextPub, signature []byte) error {
	if len(pub) != ed25519.PublicKeySize || len(nextPub) != ed25519.PublicKeySize {
		return ErrInvalidFormat
	}
	if len(signature) != ed25519.SignatureSize {
		return ErrInvalidFormat
	}
	if !ed25519.Verify(pub, signedPayload(block, nextPub), signature) {
		return ErrInvalidSignature
	}
	return nil
}

// SignSeal signs the accumulated chain bytes, finalizing the token.
func SignSeal(priv ed25519.PrivateKey, chain []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidFormat
	}
	return ed25519.Sign(priv, chain), nil
}

// VerifySeal checks a seal signature over the accumulated chain bytes.
func VerifySeal(pub ed25519.PublicKey, chain, signature []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return ErrInvalidFormat
	}
	if len(signature) != ed25519.SignatureSize {
		return ErrInvalidFormat
	}
	if !ed25519.Verify(pub, chain, signature) {
		return ErrInvalidSignature
	}
	return nil
}
