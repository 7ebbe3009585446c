package keystore

import (
	"crypto/ed25519"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"

	"github.com/chainseal/chainseal/sig"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// ErrKeyNotFound is returned when a key id does not exist, or when a
// revocation targets a key that is already revoked.
var ErrKeyNotFound = errors.New("root key not found")

// RootKey is a stored root public key together with its lifecycle metadata.
// Times are stored as RFC 3339 text so the same row shape works on both
// SQLite and PostgreSQL.
type RootKey struct {
	KeyID     string         `db:"key_id"`
	PublicKey string         `db:"public_key"`
	Comment   string         `db:"comment"`
	CreatedAt string         `db:"created_at"`
	RevokedAt sql.NullString `db:"revoked_at"`
}

// Revoked reports whether the key has been revoked.
func (k RootKey) Revoked() bool {
	return k.RevokedAt.Valid
}

// Store manages the set of root public keys trusted for token verification.
// Named queries are loaded from embedded .sql files via dotsql.
type Store struct {
	dot *dotsql.DotSql
	db  *sqlx.DB
}

// NewStore loads the embedded named queries and wraps the database handle.
func NewStore(db *sqlx.DB) (*Store, error) {
	var combinedSQL string

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}

		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		combinedSQL += string(content) + "\n"
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combinedSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	return &Store{dot: dot, db: db}, nil
}

// Trust registers a root public key and returns its generated key id.
func (s *Store) Trust(pub ed25519.PublicKey, comment string) (string, error) {
	encoded := sig.EncodePublicKey(pub)
	keyID := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC().Format(time.RFC3339)

	if _, err := s.exec("insert-root-key", keyID, encoded, comment, now); err != nil {
		return "", fmt.Errorf("failed to insert root key: %w", err)
	}
	return keyID, nil
}

// Revoke marks a root key as no longer trusted. Revoking an unknown or
// already revoked key returns ErrKeyNotFound.
func (s *Store) Revoke(keyID string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := s.exec("revoke-root-key", now, keyID)
	if err != nil {
		return fmt.Errorf("failed to revoke root key: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revocation result: %w", err)
	}
	if affected == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// Get retrieves a single root key by id.
func (s *Store) Get(keyID string) (RootKey, error) {
	var key RootKey
	err := s.get("get-root-key", &key, keyID)
	if errors.Is(err, sql.ErrNoRows) {
		return RootKey{}, ErrKeyNotFound
	}
	if err != nil {
		return RootKey{}, fmt.Errorf("failed to get root key: %w", err)
	}
	return key, nil
}

// List returns all root keys, revoked ones included, ordered by creation time.
func (s *Store) List() ([]RootKey, error) {
	var keys []RootKey
	if err := s.sel("list-root-keys", &keys); err != nil {
		return nil, fmt.Errorf("failed to list root keys: %w", err)
	}
	return keys, nil
}

// TrustedRoots returns the public keys of all non-revoked root keys,
// decoded and ready for token verification.
func (s *Store) TrustedRoots() ([]ed25519.PublicKey, error) {
	var encoded []string
	if err := s.sel("list-trusted-keys", &encoded); err != nil {
		return nil, fmt.Errorf("failed to list trusted keys: %w", err)
	}

	roots := make([]ed25519.PublicKey, 0, len(encoded))
	for _, text := range encoded {
		pub, err := sig.ParsePublicKey(text)
		if err != nil {
			return nil, fmt.Errorf("stored key is corrupt: %w", err)
		}
		roots = append(roots, pub)
	}
	return roots, nil
}

// exec executes a named query with placeholder conversion for database
// compatibility. Uses sqlx Rebind to convert ? placeholders to $1, $2
// for PostgreSQL.
func (s *Store) exec(name string, args ...interface{}) (sql.Result, error) {
	query, err := s.dot.Raw(name)
	if err != nil {
		return nil, fmt.Errorf("query not found: %s", name)
	}
	return s.db.Exec(s.db.Rebind(query), args...)
}

func (s *Store) get(name string, dest interface{}, args ...interface{}) error {
	query, err := s.dot.Raw(name)
	if err != nil {
		return fmt.Errorf("query not found: %s", name)
	}
	return s.db.Get(dest, s.db.Rebind(query), args...)
}

func (s *Store) sel(name string, dest interface{}, args ...interface{}) error {
	query, err := s.dot.Raw(name)
	if err != nil {
		return fmt.Errorf("query not found: %s", name)
	}
	return s.db.Select(dest, s.db.Rebind(query), args...)
}
