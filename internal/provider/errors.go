package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a provider call failure.
type Kind int

const (
	// KindUnavailable means the backend binary is not installed or not on PATH.
	KindUnavailable Kind = iota + 1
	// KindTimeout means the call exceeded its deadline and was terminated.
	KindTimeout
	// KindExit means the backend process exited non-zero.
	KindExit
	// KindEmptyOutput means the process succeeded but produced no usable output.
	KindEmptyOutput
	// KindBadPrompt means the prompt failed validation before the call.
	KindBadPrompt
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	case KindExit:
		return "exit"
	case KindEmptyOutput:
		return "empty-output"
	case KindBadPrompt:
		return "bad-prompt"
	}
	return "unknown"
}

// Error is a classified provider call failure.
type Error struct {
	Provider string
	Kind     Kind
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Kind, e.Message)
}

// Quota reports whether the failure looks like a quota / rate-limit error.
// Quota errors need time to reset, so they are never retried against the
// same provider.
func (e *Error) Quota() bool {
	msg := strings.ToLower(e.Message)
	for _, indicator := range quotaIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// Retryable reports whether retrying the same provider can help.
func (e *Error) Retryable() bool {
	if e.Kind == KindUnavailable || e.Kind == KindBadPrompt {
		return false
	}
	return !e.Quota()
}

var quotaIndicators = []string{
	"quota",
	"exhausted",
	"capacity",
	"rate limit",
	"429",
	"too many requests",
	"terminalquotaerror",
	"empty response",
}

// AsError extracts a *Error from err, or wraps err as an unclassified
// exit failure for the given provider.
func AsError(provider string, err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Provider: provider, Kind: KindExit, Message: err.Error()}
}
