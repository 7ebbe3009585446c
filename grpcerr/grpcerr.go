// Package grpcerr maps token and authorization failures onto gRPC status
// codes, so services embedding the library return consistent codes at
// their API boundary.
//
// The mapping follows the taxonomy boundaries: malformed input is
// InvalidArgument, verified-but-refused is PermissionDenied, work
// limits are ResourceExhausted, call-ordering mistakes are
// FailedPrecondition, and anything unexpected is Internal.
package grpcerr

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	chainseal "github.com/chainseal/chainseal"
	"github.com/chainseal/chainseal/datalog"
)

// Code classifies err into a gRPC status code. A nil error is OK.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}

	// Work limits first: a RunLimitError means evaluation was cut
	// short, not that the token was bad.
	var limit datalog.RunLimitError
	if errors.As(err, &limit) {
		return codes.ResourceExhausted
	}

	// Call-ordering mistakes by the embedding service.
	if errors.Is(err, chainseal.ErrNotAuthorized) {
		return codes.FailedPrecondition
	}

	// Refusals of well-formed tokens.
	switch {
	case errors.Is(err, chainseal.ErrUnknownRootKey),
		errors.Is(err, datalog.ErrNoMatchingPolicy):
		return codes.PermissionDenied
	}
	var sigErr chainseal.SignatureError
	if errors.As(err, &sigErr) {
		return codes.PermissionDenied
	}
	var checks datalog.FailedChecksError
	if errors.As(err, &checks) {
		return codes.PermissionDenied
	}
	var deny datalog.DenyError
	if errors.As(err, &deny) {
		return codes.PermissionDenied
	}

	// Malformed or ill-typed input.
	var format chainseal.FormatError
	if errors.As(err, &format) {
		return codes.InvalidArgument
	}
	var b64 chainseal.Base64Error
	if errors.As(err, &b64) {
		return codes.InvalidArgument
	}
	var conv chainseal.ConversionError
	if errors.As(err, &conv) {
		return codes.InvalidArgument
	}
	switch {
	case errors.Is(err, chainseal.ErrParse),
		errors.Is(err, chainseal.ErrSealed),
		errors.Is(err, chainseal.ErrMissingSymbols),
		errors.Is(err, chainseal.ErrSymbolTableOverlap):
		return codes.InvalidArgument
	}
	var logic datalog.LogicError
	if errors.As(err, &logic) {
		return codes.InvalidArgument
	}

	return codes.Internal
}

// Status wraps err as a gRPC status carrying the classified code and
// the error's message.
func Status(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(Code(err), err.Error())
}
