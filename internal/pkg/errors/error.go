package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors. Each sentinel corresponds to one failure
// class; callers branch with errors.Is, never by matching message text.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict: resource already bound")
	ErrInternal      = errors.New("internal server error")
	ErrRateLimited   = errors.New("too many requests")
	ErrBadRequest    = errors.New("bad request")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenUsed     = errors.New("token already used")
	ErrConfiguration = errors.New("configuration error")
	ErrVerification  = errors.New("token verification failed")
	ErrTransport     = errors.New("backend unavailable")
)

// userMessages maps error variants to the short messages shown to end users.
// Expired, used, unknown and tampered tokens all collapse into the same text so
// the login surface never reveals a token's history.
var userMessages = []struct {
	err error
	msg string
}{
	{ErrTokenExpired, "Invalid or expired token"},
	{ErrTokenUsed, "Invalid or expired token"},
	{ErrNotFound, "Invalid or expired token"},
	{ErrConflict, "Invalid or expired token"},
	{ErrVerification, "Invalid or expired token"},
	{ErrUnauthorized, "Invalid or expired token"},
	{ErrRateLimited, "Too many attempts, please try again later"},
	{ErrInvalidInput, "Invalid request"},
	{ErrBadRequest, "Invalid request"},
}

// UserMessage resolves the user-facing message for an error variant.
// Unmapped errors (configuration, transport, anything internal) get a generic
// message so backend details never reach the client.
func UserMessage(err error) string {
	for _, entry := range userMessages {
		if errors.Is(err, entry.err) {
			return entry.msg
		}
	}
	return "Something went wrong, please try again"
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
