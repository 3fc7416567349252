package relay

import (
	"strings"
)

// ErrorClass indicates whether a resolver failure is worth retrying later.
type ErrorClass int

const (
	// ErrorClassRetryable indicates a transient failure (network, server, rate limit).
	ErrorClassRetryable ErrorClass = iota
	// ErrorClassFatal indicates a permanent failure (gone, private, unsupported).
	ErrorClassFatal
	// ErrorClassUnknown indicates the failure cannot be classified.
	ErrorClassUnknown
)

func (ec ErrorClass) String() string {
	switch ec {
	case ErrorClassRetryable:
		return "retryable"
	case ErrorClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ClassifyResolveError buckets resolver failures for logging and metrics.
// Patterns are matched against the lower-cased error text, which carries the
// resolver's stderr tail.
func ClassifyResolveError(err error) ErrorClass {
	if err == nil {
		return ErrorClassUnknown
	}
	lower := strings.ToLower(err.Error())

	// Server-side transient errors first, so "503" never matches a
	// not-found pattern below.
	for _, p := range []string{"500", "502", "503", "504", "internal server error", "bad gateway", "service unavailable", "gateway timeout"} {
		if strings.Contains(lower, p) {
			return ErrorClassRetryable
		}
	}

	for _, p := range []string{"401", "403", "login required", "authentication required", "access denied", "unauthorized", "private video", "sign in to confirm"} {
		if strings.Contains(lower, p) {
			return ErrorClassFatal
		}
	}

	if (strings.Contains(lower, "video") && strings.Contains(lower, "unavailable")) ||
		strings.Contains(lower, "404") ||
		strings.Contains(lower, "not found") ||
		strings.Contains(lower, "no longer available") ||
		strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "no video formats found") ||
		strings.Contains(lower, "unable to extract") ||
		strings.Contains(lower, "unsupported url") ||
		strings.Contains(lower, "drm") {
		return ErrorClassFatal
	}

	for _, p := range []string{"connection reset", "connection refused", "timed out", "timeout", "temporary failure in name resolution", "network unreachable", "eof", "broken pipe", "429", "too many requests", "rate limit", "fragment"} {
		if strings.Contains(lower, p) {
			return ErrorClassRetryable
		}
	}

	return ErrorClassUnknown
}
