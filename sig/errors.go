package sig

// signatureError is an immutable payload-less signature failure.
type signatureError string

func (e signatureError) Error() string { return string(e) }

// The two signature failure kinds stay distinguishable: ErrInvalidFormat
// means the byte layout could not be parsed into its algorithm elements
// (a malformed or corrupt token), ErrInvalidSignature means the layout
// parsed but the cryptographic check failed (a well-formed but untrusted
// or tampered token).
const (
	ErrInvalidFormat    = signatureError("could not parse the signature elements")
	ErrInvalidSignature = signatureError("the signature did not match")
)
