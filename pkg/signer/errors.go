package signer

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/pkg/errors"
	"github/chapool/go-remotesigner/pkg/custodian"
)

// Kind classifies a signing failure so callers can branch without string
// matching.
type Kind string

const (
	// KindInvalidInput marks malformed input detected locally, before any
	// network call.
	KindInvalidInput Kind = "invalid_input"
	// KindDecode marks malformed data returned by the custodian.
	KindDecode Kind = "decode"
	// KindNetwork marks a transport-level failure.
	KindNetwork Kind = "network"
	// KindRPC marks a chain RPC failure.
	KindRPC Kind = "rpc"
	// KindGRPC marks a chain gRPC failure.
	KindGRPC Kind = "grpc"
	// KindAuthentication marks a rejected credential.
	KindAuthentication Kind = "authentication"
	// KindRateLimited marks a throttled request. Retrying with backoff is
	// the caller's responsibility.
	KindRateLimited Kind = "rate_limited"
	// KindKeyNotFound marks a key that does not exist by id or name.
	KindKeyNotFound Kind = "key_not_found"
	// KindSigningFailed marks a remote signing failure not otherwise
	// classified.
	KindSigningFailed Kind = "signing_failed"
	// KindBatchFailed marks a batch in which every item failed.
	KindBatchFailed Kind = "batch_failed"
)

// Error is the failure type of every signing operation.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Message is the human-readable description.
	Message string
	// Failed and Total are set for KindBatchFailed only.
	Failed int
	Total  int

	cause error
}

func (e *Error) Error() string {
	if e.Kind == KindBatchFailed {
		return fmt.Sprintf("%s: %d of %d batch items failed", e.Kind, e.Failed, e.Total)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// newError builds an *Error without an underlying cause.
func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err if it is (or wraps) a signer *Error.
func KindOf(err error) (Kind, bool) {
	var sigErr *Error
	if errors.As(err, &sigErr) {
		return sigErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a signer *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// classify maps any lower-level failure to exactly one Kind. The mapping is
// total: every error ends up in some kind, nothing is dropped.
func classify(err error) *Error {
	if err == nil {
		return nil
	}

	var sigErr *Error
	if errors.As(err, &sigErr) {
		return sigErr
	}

	if apiErr, ok := custodian.AsError(err); ok {
		switch {
		case apiErr.IsUnauthorized(), apiErr.IsForbidden():
			return &Error{Kind: KindAuthentication, Message: apiErr.Message, cause: err}
		case apiErr.IsRateLimited():
			return &Error{Kind: KindRateLimited, Message: apiErr.Message, cause: err}
		case apiErr.IsNotFound():
			return &Error{Kind: KindKeyNotFound, Message: apiErr.Message, cause: err}
		default:
			return &Error{Kind: KindSigningFailed, Message: apiErr.Error(), cause: err}
		}
	}

	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &urlErr), errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Error{Kind: KindNetwork, Message: err.Error(), cause: err}
	}

	return &Error{Kind: KindSigningFailed, Message: err.Error(), cause: err}
}
