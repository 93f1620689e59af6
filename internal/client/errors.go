package client

import "errors"

// The adapters collapse every failure mode into this two-value vocabulary.
// Callers never see raw transport errors.
var (
	// ErrNotFound means the remote service answered and the record does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable covers everything else: connection failures,
	// timeouts, non-success statuses, and malformed responses.
	ErrUnavailable = errors.New("service unavailable")
)
