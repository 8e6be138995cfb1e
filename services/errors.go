package services

import (
	"errors"
	"fmt"
)

// Domain errors. They are expected outcomes the caller inspects with errors.Is,
// never process-fatal.
var (
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteExpired  = errors.New("invite expired")
	ErrInvalidMime    = errors.New("invalid mime type")
	ErrVideoTooLarge  = errors.New("video too large")
	// ErrEmptyVideo is a size violation too, so errors.Is(ErrEmptyVideo, ErrVideoTooLarge) holds
	ErrEmptyVideo    = fmt.Errorf("%w: empty payload", ErrVideoTooLarge)
	ErrVideoNotFound = errors.New("video not found")
	ErrEmailRequired = errors.New("email is required")
)
