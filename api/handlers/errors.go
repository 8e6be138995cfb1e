package handlers

import (
	"errors"
	"net/http"

	"github.com/linesmerrill/video-screening-api/config"
	"github.com/linesmerrill/video-screening-api/services"
)

// statusForError maps a service error to the status and message the client sees
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInviteNotFound):
		return http.StatusNotFound, "invite not found"
	case errors.Is(err, services.ErrInviteExpired):
		return http.StatusGone, "invite expired"
	case errors.Is(err, services.ErrInvalidMime):
		return http.StatusUnsupportedMediaType, "invalid mime type"
	case errors.Is(err, services.ErrEmptyVideo):
		return http.StatusRequestEntityTooLarge, "file is empty"
	case errors.Is(err, services.ErrVideoTooLarge):
		return http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, services.ErrVideoNotFound):
		return http.StatusNotFound, "video not found"
	case errors.Is(err, services.ErrEmailRequired):
		return http.StatusBadRequest, "email is required"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func serviceError(w http.ResponseWriter, err error) {
	status, message := statusForError(err)
	config.ErrorStatus(message, status, w, err)
}
