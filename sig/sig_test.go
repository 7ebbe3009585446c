package sig

import (
	"errors"
	"testing"
)

func TestSignVerifyBlock(t *testing.T) {
	signer, err := GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v, want nil", err)
	}
	next, err := GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v, want nil", err)
	}

	block := []byte("serialized block bytes")
	signature, err := SignBlock(signer.Private, block, next.Public)
	if err != nil {
		t.Fatalf("SignBlock() error = %v, want nil", err)
	}

	if err := VerifyBlock(signer.Public, block, next.Public, signature); err != nil {
		t.Errorf("VerifyBlock() error = %v, want nil", err)
	}
}

func TestVerifyBlock_TamperedBlock(t *testing.T) {
	signer, _ := GenerateKeypair(nil)
	next, _ := GenerateKeypair(nil)

	block := []byte("serialized block bytes")
	signature, err := SignBlock(signer.Private, block, next.Public)
	if err != nil {
		t.Fatalf("SignBlock() error = %v, want nil", err)
	}

	tampered := []byte("serialized block bytes!")
	err = VerifyBlock(signer.Public, tampered, next.Public, signature)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("VerifyBlock() error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyBlock_SwappedNextKey(t *testing.T) {
	// The signature binds the next signer's key; substituting another
	// key must fail even though the block itself is untouched.
	signer, _ := GenerateKeypair(nil)
	next, _ := GenerateKeypair(nil)
	other, _ := GenerateKeypair(nil)

	block := []byte("serialized block bytes")
	signature, err := SignBlock(signer.Private, block, next.Public)
	if err != nil {
		t.Fatalf("SignBlock() error = %v, want nil", err)
	}

	err = VerifyBlock(signer.Public, block, other.Public, signature)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("VerifyBlock() error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyBlock_FormatVersusSignature(t *testing.T) {
	// Malformed inputs are format failures, never signature failures.
	signer, _ := GenerateKeypair(nil)
	next, _ := GenerateKeypair(nil)

	block := []byte("serialized block bytes")
	signature, err := SignBlock(signer.Private, block, next.Public)
	if err != nil {
		t.Fatalf("SignBlock() error = %v, want nil", err)
	}

	tests := []struct {
		name string
		err  error
	}{
		{"short public key", VerifyBlock(signer.Public[:16], block, next.Public, signature)},
		{"short next key", VerifyBlock(signer.Public, block, next.Public[:16], signature)},
		{"short signature", VerifyBlock(signer.Public, block, next.Public, signature[:32])},
		{"empty signature", VerifyBlock(signer.Public, block, next.Public, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrInvalidFormat) {
				t.Errorf("error = %v, want ErrInvalidFormat", tt.err)
			}
			if errors.Is(tt.err, ErrInvalidSignature) {
				t.Error("format failure reported as ErrInvalidSignature")
			}
		})
	}
}

func TestSignBlock_ShortKey(t *testing.T) {
	next, _ := GenerateKeypair(nil)
	if _, err := SignBlock([]byte("short"), []byte("block"), next.Public); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("SignBlock() error = %v, want ErrInvalidFormat", err)
	}
}

func TestSignVerifySeal(t *testing.T) {
	kp, _ := GenerateKeypair(nil)

	chain := []byte("accumulated chain bytes")
	signature, err := SignSeal(kp.Private, chain)
	if err != nil {
		t.Fatalf("SignSeal() error = %v, want nil", err)
	}

	if err := VerifySeal(kp.Public, chain, signature); err != nil {
		t.Errorf("VerifySeal() error = %v, want nil", err)
	}

	err = VerifySeal(kp.Public, append(chain, 'x'), signature)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("VerifySeal() with tampered chain error = %v, want ErrInvalidSignature", err)
	}
}

func TestKeypairFromPrivate(t *testing.T) {
	kp, _ := GenerateKeypair(nil)

	rebuilt, err := KeypairFromPrivate(kp.Private)
	if err != nil {
		t.Fatalf("KeypairFromPrivate() error = %v, want nil", err)
	}
	if !rebuilt.Public.Equal(kp.Public) {
		t.Error("KeypairFromPrivate() derived a different public key")
	}

	if _, err := KeypairFromPrivate([]byte("short")); err == nil {
		t.Error("KeypairFromPrivate() error = nil for a short key, want failure")
	}
}
