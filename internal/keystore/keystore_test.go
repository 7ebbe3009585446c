package keystore

import (
	"crypto/ed25519"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chainseal/chainseal/sig"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "keystore.db")
	db, err := Open(dbURL)
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}

	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}
	return store
}

func testPublicKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	kp, err := sig.GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v, want nil", err)
	}
	return kp.Public
}

func TestStore_TrustAndGet(t *testing.T) {
	store := openTestStore(t)
	pub := testPublicKey(t)

	keyID, err := store.Trust(pub, "primary issuer")
	if err != nil {
		t.Fatalf("Trust() error = %v, want nil", err)
	}
	if keyID == "" {
		t.Fatal("Trust() returned empty key id")
	}

	key, err := store.Get(keyID)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if key.Comment != "primary issuer" {
		t.Errorf("Comment = %q, want %q", key.Comment, "primary issuer")
	}
	if key.Revoked() {
		t.Error("Revoked() = true for a fresh key, want false")
	}
	if key.PublicKey != sig.EncodePublicKey(pub) {
		t.Errorf("PublicKey = %q, want %q", key.PublicKey, sig.EncodePublicKey(pub))
	}
}

func TestStore_GetUnknownKey(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get("no-such-key"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_Revoke(t *testing.T) {
	store := openTestStore(t)
	pub := testPublicKey(t)

	keyID, err := store.Trust(pub, "")
	if err != nil {
		t.Fatalf("Trust() error = %v, want nil", err)
	}

	if err := store.Revoke(keyID); err != nil {
		t.Fatalf("Revoke() error = %v, want nil", err)
	}

	key, err := store.Get(keyID)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if !key.Revoked() {
		t.Error("Revoked() = false after Revoke(), want true")
	}

	// Second revocation hits no rows.
	if err := store.Revoke(keyID); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Revoke() twice error = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_RevokeUnknownKey(t *testing.T) {
	store := openTestStore(t)

	if err := store.Revoke("no-such-key"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Revoke() error = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_TrustedRootsExcludesRevoked(t *testing.T) {
	store := openTestStore(t)

	pubA := testPublicKey(t)
	pubB := testPublicKey(t)

	idA, err := store.Trust(pubA, "a")
	if err != nil {
		t.Fatalf("Trust(a) error = %v, want nil", err)
	}
	if _, err := store.Trust(pubB, "b"); err != nil {
		t.Fatalf("Trust(b) error = %v, want nil", err)
	}

	if err := store.Revoke(idA); err != nil {
		t.Fatalf("Revoke(a) error = %v, want nil", err)
	}

	roots, err := store.TrustedRoots()
	if err != nil {
		t.Fatalf("TrustedRoots() error = %v, want nil", err)
	}
	if len(roots) != 1 {
		t.Fatalf("len(roots) = %d, want 1", len(roots))
	}
	if !roots[0].Equal(pubB) {
		t.Error("TrustedRoots() returned the wrong key")
	}
}

func TestStore_List(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Trust(testPublicKey(t), "first"); err != nil {
		t.Fatalf("Trust() error = %v, want nil", err)
	}
	if _, err := store.Trust(testPublicKey(t), "second"); err != nil {
		t.Fatalf("Trust() error = %v, want nil", err)
	}

	keys, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if len(keys) != 2 {
		t.Fatalf("len(keys) = %d, want 2", len(keys))
	}
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	if _, err := Open("mysql://localhost/keystore"); err == nil {
		t.Error("Open() error = nil, want unsupported scheme error")
	}
}
