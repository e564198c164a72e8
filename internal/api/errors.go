package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the server rejects the session token.
// The client clears the stored token before returning it, so callers only
// need to direct the user back to `tgreview login`.
var ErrUnauthorized = errors.New("unauthorized: session missing or expired")

// ServerError is a non-2xx response or a success=false payload from the API.
// Message carries the server's error string verbatim when one was provided.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

// ValidationError is a local, pre-flight criteria failure. It never reaches
// the network and its message is meant to be shown to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
