package graph

import (
	"errors"
	"log"
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/core/graph"
	"Agora/internal/core/profiles"
)

// handleServiceError converts graph service errors to XRPC error responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, graph.ErrSelfFollow):
		handlers.WriteError(w, http.StatusBadRequest, "SelfFollow", "Cannot follow yourself")
	case errors.Is(err, graph.ErrInvalidSubject):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "subject is required")
	case profiles.IsNotRegistered(err):
		handlers.WriteError(w, http.StatusForbidden, "NotRegistered", "Profile not found, please register first")
	default:
		log.Printf("XRPC handler error: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
