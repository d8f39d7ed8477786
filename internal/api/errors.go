// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// ErrorKind classifies a failed backend call for retry decisions.
type ErrorKind int

const (
	// KindNetwork: the request was sent but no response was received.
	KindNetwork ErrorKind = iota
	// KindTimeout: the operation exceeded its deadline.
	KindTimeout
	// KindServer: the backend answered with status >= 500.
	KindServer
	// KindRateLimited: the backend answered 429.
	KindRateLimited
	// KindClient: the backend answered 4xx other than 429.
	KindClient
	// KindDecode: the response could not be parsed.
	KindDecode
	// KindStream: the backend emitted an explicit error record mid-stream.
	KindStream
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	case KindRateLimited:
		return "rate_limited"
	case KindClient:
		return "client"
	case KindDecode:
		return "decode"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind may be retried.
// Only connection-level failures qualify; client mistakes, parse failures
// and mid-stream backend errors never do.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindServer, KindRateLimited:
		return true
	default:
		return false
	}
}

// ClientError is an error from the backend client. It keeps its
// classification through retry wrapping so callers can branch on Kind.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Status  int // HTTP status when applicable, 0 otherwise
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrTimeout     = &ClientError{Kind: KindTimeout, Message: "request timed out"}
	ErrUnreachable = &ClientError{Kind: KindNetwork, Message: "backend is unreachable"}
)

// Classify maps an arbitrary error from a backend call to an ErrorKind.
// Errors already carrying a classification keep it.
func Classify(err error) ErrorKind {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	// A canceled context is the user backing out, not the backend failing.
	if errors.Is(err, context.Canceled) {
		return KindClient
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindNetwork
}

// statusError builds a ClientError from an unexpected HTTP status.
func statusError(status int, detail string) *ClientError {
	if detail == "" {
		detail = http.StatusText(status)
	}
	kind := KindClient
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 500:
		kind = KindServer
	}
	return &ClientError{Kind: kind, Message: detail, Status: status}
}
