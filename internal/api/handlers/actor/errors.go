package actor

import (
	"errors"
	"log"
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/core/profiles"
)

// handleServiceError converts profile service errors to XRPC error responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profiles.ErrAlreadyRegistered):
		handlers.WriteError(w, http.StatusConflict, "AlreadyRegistered", "Profile already registered")
	case errors.Is(err, profiles.ErrInvalidUsername):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case profiles.IsNotRegistered(err):
		handlers.WriteError(w, http.StatusForbidden, "NotRegistered", "Profile not found, please register first")
	default:
		log.Printf("XRPC handler error: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
