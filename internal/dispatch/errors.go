package dispatch

import "errors"

// TransientError marks a delivery failure worth retrying within the same
// trigger cycle (network trouble, rate limiting).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient dispatch error: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a delivery failure that retrying cannot fix
// (bot kicked from the channel, chat deleted). The affected feature is
// auto-disabled and surfaced on the next status query.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent dispatch error: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Permanent wraps err as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError anywhere in
// its chain.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
