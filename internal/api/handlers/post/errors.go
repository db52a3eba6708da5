package post

import (
	"errors"
	"log"
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/posts"
	"Agora/internal/core/profiles"
)

// maxBodyBytes leaves room for the longest allowed post in any encoding
const maxBodyBytes = 256 * 1024

// handleServiceError converts post service errors to XRPC error responses.
// forbiddenMessage names the action the caller was not allowed to take.
func handleServiceError(w http.ResponseWriter, err error, forbiddenMessage string) {
	switch {
	case profiles.IsNotRegistered(err):
		handlers.WriteError(w, http.StatusForbidden, "NotRegistered", "Profile not found, please register first")
	case posts.IsNotFound(err):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Post not found")
	case posts.IsForbidden(err):
		handlers.WriteError(w, http.StatusForbidden, "Forbidden", forbiddenMessage)
	case errors.Is(err, posts.ErrEmptyContent):
		handlers.WriteError(w, http.StatusBadRequest, "EmptyContent", "Content cannot be empty")
	case errors.Is(err, posts.ErrContentTooLong):
		handlers.WriteError(w, http.StatusBadRequest, "ContentTooLong", err.Error())
	default:
		log.Printf("XRPC handler error: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}

// callerDID returns the authenticated DID or writes AuthRequired
func callerDID(w http.ResponseWriter, r *http.Request) (string, bool) {
	did := middleware.GetUserDID(r)
	if did == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return "", false
	}
	return did, true
}

// requireID rejects bodies without a positive post id
func requireID(w http.ResponseWriter, id int64) bool {
	if id <= 0 {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "id must be a positive integer")
		return false
	}
	return true
}
