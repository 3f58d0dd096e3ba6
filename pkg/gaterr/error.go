// Package gaterr contains the error taxonomy shared by the gate components.
// Every public operation returns one of these kinds so callers can branch on
// the category instead of parsing messages.
package gaterr // import "github.com/joincivil/civil-content-gate/pkg/gaterr"

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a short machine-checkable error category
type Kind string

const (
	// KindUnknown is any error that did not originate from the gate
	KindUnknown Kind = "internal_error"
	// KindValidation is a missing or malformed request field, no I/O was attempted
	KindValidation Kind = "validation_error"
	// KindInvalidSignature is a signature that is malformed or does not match the claim
	KindInvalidSignature Kind = "invalid_signature"
	// KindUnauthorized is an authenticated caller that is not the campaign owner
	KindUnauthorized Kind = "unauthorized"
	// KindChainUnavailable is an RPC failure or timeout
	KindChainUnavailable Kind = "chain_unavailable"
	// KindUnknownCampaign is a campaign the chain does not know about
	KindUnknownCampaign Kind = "unknown_campaign"
	// KindStoreIO is a persistence failure
	KindStoreIO Kind = "store_io_error"
)

// Error is an error carrying a Kind, a caller-safe message and an optional cause.
// The cause is never rendered to callers.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New returns a new Error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns a new Error of the given kind with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a new Error of the given kind wrapping err
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the Kind of the first *Error found in err's chain, or
// KindUnknown if there is none.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnknown
}

// Is returns true if err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the caller-safe message for err
func MessageOf(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return "Unexpected error"
}
