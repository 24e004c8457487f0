package client

import "fmt"

// AuthError means the backend did not accept a login.
type AuthError struct {
	Status int
	Body   string

	// Reason is set when the status was 2xx but the response could not be used.
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("login response with status %d was unusable: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("login rejected with status %d: %s", e.Status, e.Body)
}

// TransportError means a request got no HTTP response at all, after all retries.
type TransportError struct {
	Method   string
	Path     string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %s", e.Method, e.Path, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
