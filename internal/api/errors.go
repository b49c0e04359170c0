package api

import (
	"errors"
	"fmt"
	"strings"
)

// AuthError is the only error surfaced to the login caller: the credentials
// or invite were rejected. Everything else degrades at the boundary.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// IsAuthError reports whether err wraps an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// OperationError carries the error messages a GraphQL operation returned.
type OperationError struct {
	Messages []string
}

func (e *OperationError) Error() string {
	if len(e.Messages) == 0 {
		return "operation failed"
	}
	return strings.Join(e.Messages, "; ")
}
