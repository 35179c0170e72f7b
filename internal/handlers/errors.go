package handlers

import (
	"errors"
	"net/http"

	"studybud/internal/services"
	"studybud/pkg/logger"
)

const notFoundText = "Not found"

// Rejections shown to a caller who does not own the target.
const (
	updateRoomForbidden    = "You are not allowed to update this room!"
	deleteRoomForbidden    = "You are not allowed to delete this room!!"
	deleteMessageForbidden = "You are not allowed to delete this message!!"
)

// handleServiceError writes the response for a failed service call. op
// names the operation in the log line for unexpected errors; forbidden is
// the body sent when the caller lacks ownership.
func handleServiceError(w http.ResponseWriter, op string, err error, forbidden string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, notFoundText, http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		if forbidden == "" {
			forbidden = http.StatusText(http.StatusForbidden)
		}
		http.Error(w, forbidden, http.StatusForbidden)
	default:
		logger.Error("%s error: %v", op, err)
		http.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
	}
}

func internalError(w http.ResponseWriter, op string, err error) {
	logger.Error("%s error: %v", op, err)
	http.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
}
