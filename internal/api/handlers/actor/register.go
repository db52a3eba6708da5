package actor

import (
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/profiles"
)

// RegisterHandler handles profile registration
type RegisterHandler struct {
	service profiles.Service
}

// NewRegisterHandler creates a new register handler
func NewRegisterHandler(service profiles.Service) *RegisterHandler {
	return &RegisterHandler{
		service: service,
	}
}

// HandleRegister creates the caller's profile
// POST /xrpc/social.agora.actor.register
//
// Request body: { "username": "alice", "avatarUrl": "https://..." }
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req profiles.RegisterRequest
	if !handlers.DecodeBody(w, r, 16*1024, &req) {
		return
	}

	userDID := middleware.GetUserDID(r)
	if userDID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}
	req.DID = userDID

	profile, err := h.service.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, profile)
}
