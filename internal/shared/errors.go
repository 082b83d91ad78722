package shared

import (
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Credential acquisition errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrMalformedResponse  = fmt.Errorf("malformed token response")
	ErrUnexpectedStatus   = fmt.Errorf("unexpected status")
	ErrNoCredential       = fmt.Errorf("no credential available")

	// Fetch and normalization errors
	ErrTransport           = fmt.Errorf("transport error")
	ErrEmptyOrInaccessible = fmt.Errorf("playlist is empty or inaccessible")
	ErrShape               = fmt.Errorf("unexpected entry shape")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidPlaylistID = fmt.Errorf("not a valid Spotify playlist ID")
	ErrInvalidMarket     = fmt.Errorf("not a valid market")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
)

// AuthError is the classified outcome of a failed token exchange.
//
// Error returns the message shown to users, e.g. "Error 400 : invalid_client".
// Kind is one of [ErrInvalidCredentials], [ErrMalformedResponse], [ErrUnexpectedStatus] or [ErrTransport].
type AuthError struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("Error : %s", e.Message)
	}
	return fmt.Sprintf("Error %d : %s", e.Status, e.Message)
}

// Unwrap exposes both the kind and the underlying cause to [errors.Is] and [errors.As].
func (e *AuthError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// InvalidCredentials builds the 400 classification. An empty message degrades to "Bad Request".
func InvalidCredentials(message string) *AuthError {
	if message == "" {
		message = "Bad Request"
	}
	return &AuthError{Kind: ErrInvalidCredentials, Status: 400, Message: message}
}

// MalformedResponse builds the classification for a 200 response missing required fields.
func MalformedResponse(cause error) *AuthError {
	return &AuthError{Kind: ErrMalformedResponse, Status: 200, Message: "Malformed token response", Err: cause}
}

// UnexpectedStatus builds the classification for any status other than 200 or 400.
func UnexpectedStatus(code int) *AuthError {
	return &AuthError{Kind: ErrUnexpectedStatus, Status: code, Message: "Something went wrong"}
}

// AuthTransportError builds the classification for a token request that never got a response.
func AuthTransportError(cause error) *AuthError {
	return &AuthError{Kind: ErrTransport, Message: "Could not reach the token endpoint", Err: cause}
}

// ShapeError reports a raw entry that is missing a required identity field.
type ShapeError struct {
	Index int
	Field string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: entry %d is missing %s", ErrShape, e.Index, e.Field)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}
