package actor

import (
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/core/profiles"
)

// GetProfileHandler handles profile lookups
type GetProfileHandler struct {
	service profiles.Service
}

// NewGetProfileHandler creates a new get profile handler
func NewGetProfileHandler(service profiles.Service) *GetProfileHandler {
	return &GetProfileHandler{
		service: service,
	}
}

// GetProfileOutput wraps an optional profile; absence is {"profile": null}
type GetProfileOutput struct {
	Profile *profiles.Profile `json:"profile"`
}

// HandleGetProfile returns the profile registered for actor, if any
// GET /xrpc/social.agora.actor.getProfile?actor={did}
func (h *GetProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	actorDID, ok := handlers.ParseDIDParam(w, r, "actor")
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), actorDID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, GetProfileOutput{Profile: profile})
}
