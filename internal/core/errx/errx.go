// Package errx defines the agent-level error taxonomy. Provider failures,
// store failures and internal faults are wrapped into a typed AgentError so
// callers can decide what is retryable and what aborts the turn.
package errx

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an agent-level failure.
type Kind string

const (
	// KindBadRequest covers malformed requests rejected by the provider.
	KindBadRequest Kind = "bad_request"
	// KindAuth covers authentication and permission failures.
	KindAuth Kind = "auth"
	// KindRateLimit covers provider-side throttling.
	KindRateLimit Kind = "rate_limit"
	// KindServer covers persistent provider-side errors.
	KindServer Kind = "server"
	// KindUnavailable covers transient outages worth retrying.
	KindUnavailable Kind = "unavailable"
	// KindInternal covers everything the agent did to itself.
	KindInternal Kind = "internal"
)

// AgentError wraps an underlying error with a Kind and a safe message.
type AgentError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AgentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// New creates an AgentError with the provided kind and message.
func New(kind Kind, message string, err error) *AgentError {
	return &AgentError{Kind: kind, Message: message, Err: err}
}

// Internal wraps err as an internal agent fault.
func Internal(message string, err error) *AgentError {
	return &AgentError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the error is a transient provider outage.
func IsRetryable(err error) bool {
	return KindOf(err) == KindUnavailable
}

// ClassifyProvider maps a raw LLM SDK error onto the taxonomy. Provider SDKs
// do not share an error surface, so classification falls back to status-code
// and message sniffing; unknown errors count as server errors so they are
// surfaced without being retried.
func ClassifyProvider(err error) *AgentError {
	if err == nil {
		return nil
	}

	var ae *AgentError
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(KindUnavailable, "model call interrupted", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "429", "rate limit", "rate_limit", "too many requests", "quota"):
		return New(KindRateLimit, "model provider throttled the request", err)
	case containsAny(msg, "401", "403", "unauthorized", "authentication", "permission denied", "invalid api key", "invalid x-api-key"):
		return New(KindAuth, "model provider rejected credentials", err)
	case containsAny(msg, "overloaded", "503", "502", "504", "unavailable", "connection refused", "connection reset", "timeout", "temporarily"):
		return New(KindUnavailable, "model provider temporarily unavailable", err)
	case containsAny(msg, "400", "invalid request", "bad request", "invalid_request"):
		return New(KindBadRequest, "model provider rejected the request", err)
	default:
		return New(KindServer, "model provider call failed", err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
