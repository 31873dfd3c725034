package domain

import (
	"fmt"
	"strings"
)

// UserID is an opaque string naming a user. It doubles as the storage
// path component for that user's index directory and as the registry
// key, so it is validated before any path is derived from it.
type UserID string

// MaxUserIDLength bounds user identities to keep derived paths sane.
const MaxUserIDLength = 128

// Validate reports whether the identity is safe to use as a registry
// key and a single path component.
func (u UserID) Validate() error {
	s := string(u)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUser)
	}
	if len(s) > MaxUserIDLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidUser, MaxUserIDLength)
	}
	if s == "." || s == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidUser, s)
	}
	if strings.ContainsAny(s, "/\\\x00") {
		return fmt.Errorf("%w: %q contains path separators", ErrInvalidUser, s)
	}
	return nil
}

// String returns the raw identity.
func (u UserID) String() string {
	return string(u)
}
