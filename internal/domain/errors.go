package domain

import "errors"

// Error taxonomy shared by the bot router and the HTTP API. Services wrap these
// with fmt.Errorf("...: %w", err) and callers branch with errors.Is.
var (
	// ErrValidation marks missing or malformed user input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized marks an actor lacking the required role.
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound marks a referenced record or user that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateTag marks a violation of the OAT uniqueness constraint.
	ErrDuplicateTag = errors.New("tag already taken")

	// ErrProtectedTarget marks a moderation attempt against a shielded user.
	ErrProtectedTarget = errors.New("target is protected")

	// ErrUpstream marks a failed store, email or chat-platform call.
	ErrUpstream = errors.New("upstream unavailable")
)
