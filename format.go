package chainseal

import "fmt"

/*
 * Format failures: everything that can go wrong turning raw bytes into a
 * structurally valid, signed block chain, before any Datalog evaluation.
 *
 * FormatError is the parent variant; its Err field holds exactly one of
 * the kinds below (or a sig package error wrapped in SignatureError).
 * Construction is total and lossless, and Unwrap exposes the child so a
 * wrapped value matches back out equal to the original.
 */

// FormatError groups (de)serialization and signature-verification
// failures of the token envelope and its blocks.
type FormatError struct {
	Err error
}

func (e FormatError) Error() string {
	return fmt.Sprintf("error deserializing or verifying the token: %v", e.Err)
}

// Unwrap returns the format kind carried by this failure.
func (e FormatError) Unwrap() error { return e.Err }

// formatKind is an immutable payload-less format failure.
type formatKind string

func (e formatKind) Error() string { return string(e) }

const (
	// ErrSealedSignature is returned when the seal signature of a sealed
	// token does not verify.
	ErrSealedSignature = formatKind("failed verifying the signature of a sealed token")

	// ErrEmptyKeys is returned when the token provides no intermediate
	// public keys; the protocol requires at least one.
	ErrEmptyKeys = formatKind("the token does not provide intermediate public keys")

	// ErrUnknownRootKey is returned when the root public key that signed
	// the token is not in the caller's trusted set. A trust-boundary
	// failure, distinct from any parse failure.
	ErrUnknownRootKey = formatKind("the root public key was not recognized")
)

// SignatureError wraps a sig package failure raised while verifying the
// block chain.
type SignatureError struct {
	Err error
}

func (e SignatureError) Error() string {
	return fmt.Sprintf("failed verifying the signature: %v", e.Err)
}

// Unwrap returns the signature-layer error.
func (e SignatureError) Unwrap() error { return e.Err }

// SerializationError reports a wrapper envelope that could not be
// serialized.
type SerializationError struct {
	Message string
}

func (e SerializationError) Error() string {
	return "could not serialize the wrapper object: " + e.Message
}

// DeserializationError reports a wrapper envelope that could not be
// deserialized.
type DeserializationError struct {
	Message string
}

func (e DeserializationError) Error() string {
	return "could not deserialize the wrapper object: " + e.Message
}

// BlockSerializationError reports a block that could not be serialized.
type BlockSerializationError struct {
	Message string
}

func (e BlockSerializationError) Error() string {
	return "could not serialize the block: " + e.Message
}

// BlockDeserializationError reports a block that could not be
// deserialized. Kept distinct from DeserializationError so callers can
// localize which structural layer is malformed.
type BlockDeserializationError struct {
	Message string
}

func (e BlockDeserializationError) Error() string {
	return "could not deserialize the block: " + e.Message
}

// VersionError reports a token whose declared format version exceeds
// what this implementation understands. Maximum is the ceiling this
// build supports, Actual the version found; Actual > Maximum always
// holds, letting callers tell "upgrade your verifier" apart from
// corruption.
type VersionError struct {
	Maximum uint32
	Actual  uint32
}

func (e VersionError) Error() string {
	return fmt.Sprintf("block format version %d is higher than the maximum supported %d", e.Actual, e.Maximum)
}

// Lossless child-to-parent lifts. Pure and total: they never fail and
// never drop payload.

func formatError(kind error) error {
	return FormatError{Err: kind}
}

func signatureError(err error) error {
	return FormatError{Err: SignatureError{Err: err}}
}
