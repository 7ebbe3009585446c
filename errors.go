package chainseal

import (
	"fmt"
)

/*
 * Token failure taxonomy.
 *
 * Every public operation (parse, append, seal, authorize) returns at most
 * one failure value from a closed set. Payload-less variants are
 * immutable constants; payload variants are comparable structs. Parent
 * variants wrap their child error and implement Unwrap, so errors.Is and
 * errors.As recover the child with its full payload: a child failure is
 * never discarded or downgraded on the way up.
 *
 * Three classes of outcome matter to callers. Format failures are
 * rejections before any trust is established (malformed bytes, bad
 * version, bad signature). Logic failures (datalog.LogicError) are
 * rejections after evaluation, the ordinary outcome of a security
 * decision. Run limits (datalog.RunLimitError) are inconclusive aborts;
 * the logical answer is unknown. The grpcerr package maps the classes to
 * transport codes.
 */

// tokenError is an immutable payload-less token failure.
type tokenError string

func (e tokenError) Error() string { return string(e) }

const (
	// ErrInternal marks invariant violations that should be unreachable
	// in correct code. It is never produced by user input; observing it
	// at runtime indicates an implementation bug.
	ErrInternal = tokenError("internal error")

	// ErrSymbolTableOverlap is returned when two blocks declare the same
	// symbol, which would make later deserialization ambiguous.
	ErrSymbolTableOverlap = tokenError("multiple blocks declare the same symbols")

	// ErrMissingSymbols is returned when the merged symbol table lacks
	// one of the two mandatory default namespaces.
	ErrMissingSymbols = tokenError(`the symbol table is missing either "authority" or "ambient"`)

	// ErrSealed is returned when a block append is attempted on a sealed
	// token, regardless of the appended block's content.
	ErrSealed = tokenError("tried to append a block to a sealed token")

	// ErrParse is the bare Datalog parse failure marker. Unlike its
	// sibling variants it carries no payload; callers that own the
	// source text keep the detail themselves.
	ErrParse = tokenError("datalog parsing error")

	// ErrNotAuthorized is returned when a query is attempted before a
	// successful Authorize has built the evaluated world. An ordinary
	// call-ordering mistake, not an internal failure.
	ErrNotAuthorized = tokenError("authorization has not run yet")
)

// InvalidAuthorityIndexError reports an authority block whose declared
// index is not 0.
type InvalidAuthorityIndexError struct {
	Found uint32
}

func (e InvalidAuthorityIndexError) Error() string {
	return fmt.Sprintf("the authority block must have the index 0, found %d", e.Found)
}

// InvalidBlockIndexError reports a block whose declared index does not
// match its physical position in the chain.
type InvalidBlockIndexError struct {
	Expected uint32
	Found    uint32
}

func (e InvalidBlockIndexError) Error() string {
	return fmt.Sprintf("the block index does not match its position: expected %d, found %d", e.Expected, e.Found)
}

// ConversionError reports a derived term that could not be converted to
// the caller-requested shape.
type ConversionError struct {
	Message string
}

func (e ConversionError) Error() string {
	return "cannot convert from term: " + e.Message
}

// Base64Error wraps the underlying decode failure of a textual token
// verbatim.
type Base64Error struct {
	Err error
}

func (e Base64Error) Error() string {
	return fmt.Sprintf("cannot decode base64 token: %v", e.Err)
}

// Unwrap returns the wrapped decode error.
func (e Base64Error) Unwrap() error { return e.Err }
