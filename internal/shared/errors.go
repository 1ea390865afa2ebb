package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAllowed indicates the actor lacks the privilege for the operation.
	ErrNotAllowed = errors.New("not allowed")
	// ErrSessionDesync occurs when the client holds a session the server no longer recognises.
	ErrSessionDesync = errors.New("session no longer valid")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
