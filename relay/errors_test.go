package relay

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyResolveError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassUnknown},
		{"not found", errors.New("ERROR: [youtube] abc: Video unavailable"), ErrorClassFatal},
		{"private", errors.New("ERROR: Private video. Sign in if you've been granted access"), ErrorClassFatal},
		{"unsupported", errors.New("ERROR: Unsupported URL: https://example.test"), ErrorClassFatal},
		{"no formats", errors.New("ERROR: no video formats found"), ErrorClassFatal},
		{"http 403", errors.New("HTTP Error 403: Forbidden"), ErrorClassFatal},
		{"server error", errors.New("HTTP Error 503: Service Unavailable"), ErrorClassRetryable},
		{"rate limited", errors.New("HTTP Error 429: Too Many Requests"), ErrorClassRetryable},
		{"network", errors.New("connection reset by peer"), ErrorClassRetryable},
		{"timeout wrapped", fmt.Errorf("yt-dlp https://x: %w", errors.New("read tcp: i/o timeout")), ErrorClassRetryable},
		{"mystery", errors.New("something odd happened"), ErrorClassUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyResolveError(tt.err); got != tt.want {
				t.Errorf("ClassifyResolveError(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}
