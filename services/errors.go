package services

import "errors"

// ErrVerifierUnavailable marks transport-level failures talking to the
// external verification engine. Handlers surface it as 503 so callers can
// tell "proof was rejected" apart from "we could not ask the verifier".
var ErrVerifierUnavailable = errors.New("verification service unavailable")

// ErrNotFound is returned by read paths when the requested record does not
// exist (mapped to 404).
var ErrNotFound = errors.New("record not found")

// ClientError flags malformed input (bad quest number, missing tweet URL,
// invalid wallet address shape). Mapped to 400, never retried.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}

func NewClientError(message string) *ClientError {
	return &ClientError{Message: message}
}
