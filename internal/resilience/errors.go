package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks a failure that may clear on another attempt, such as
// a devtools connection dropped during startup or a provider 429.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as transient. StatusCode is 0 for non-HTTP
// failures.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// transientPatterns match errors surfaced by HTTP clients and the devtools
// protocol that carry no typed cause.
var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"tls handshake timeout",
	"i/o timeout",
	"websocket: close",
	"net::err_timed_out",
	"net::err_connection_reset",
	"net::err_connection_closed",
	"net::err_network_changed",
	"context deadline exceeded",
}

// permanentPatterns match browser start failures no retry can fix.
var permanentPatterns = []string{
	"executable file not found",
	"no such file or directory",
	"permission denied",
	"exec format error",
}

// IsTransient reports whether err, or any error in its chain, is a
// TransientError, a network timeout, a reset or refused connection, or
// matches a known transient message.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	return matchesAny(err, transientPatterns)
}

// IsPermanent reports whether err is a browser start failure caused by a
// missing or unusable executable. An explicit TransientError is never
// permanent.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return false
	}
	return matchesAny(err, permanentPatterns)
}

// LaunchRetryable reports whether a failed session start is worth another
// attempt: anything but a permanent failure.
func LaunchRetryable(err error) bool {
	return err != nil && !IsPermanent(err)
}

func matchesAny(err error, patterns []string) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
