// Package xyoerr defines the cross-cutting error taxonomy shared by the
// packer, assembler, driver, verifier and repository packages so callers
// can match on a Kind regardless of which subsystem raised it.
package xyoerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error categories named by the protocol spec.
type Kind int

const (
	// KindUnknownType means a (major, minor) pair was not registered.
	KindUnknownType Kind = iota
	// KindMalformed means a buffer was truncated or its size prefix was inconsistent.
	KindMalformed
	// KindNegotiationAborted means the zig-zag exchange hit a schema mismatch
	// or a length disagreement between parallel lists.
	KindNegotiationAborted
	// KindSignatureInvalid means a signature failed to verify.
	KindSignatureInvalid
	// KindChainLinkageInvalid means index, previous-hash, or next-public-key linkage failed.
	KindChainLinkageInvalid
	// KindPeerDisconnected means the transport disconnected mid-session.
	KindPeerDisconnected
	// KindNoRotatableSigners means remove_oldest_signer was called with nothing but the genesis signer.
	KindNoRotatableSigners
	// KindRepositoryUnavailable means the chain-state backend could not be reached.
	KindRepositoryUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnknownType:
		return "UnknownType"
	case KindMalformed:
		return "Malformed"
	case KindNegotiationAborted:
		return "NegotiationAborted"
	case KindSignatureInvalid:
		return "SignatureInvalid"
	case KindChainLinkageInvalid:
		return "ChainLinkageInvalid"
	case KindPeerDisconnected:
		return "PeerDisconnected"
	case KindNoRotatableSigners:
		return "NoRotatableSigners"
	case KindRepositoryUnavailable:
		return "RepositoryUnavailable"
	default:
		return "Unknown"
	}
}

// Error carries a Kind alongside the wrapped cause, so callers can
// errors.Is/As against either the sentinel beneath it or the Kind.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind with a reason.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap builds an *Error of the given kind wrapping cause.
func Wrap(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
