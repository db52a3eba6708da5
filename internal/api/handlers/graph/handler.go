package graph

import (
	"context"
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/graph"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// Handler serves the social.agora.graph.* endpoints
type Handler struct {
	service graph.Service
}

// NewHandler creates a new graph handler
func NewHandler(service graph.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// SubjectInput is the body of follow and unfollow
type SubjectInput struct {
	Subject string `json:"subject"`
}

// FollowingOutput lists the DIDs an actor follows
type FollowingOutput struct {
	Following []string `json:"following"`
}

// FollowersOutput lists the DIDs following an actor
type FollowersOutput struct {
	Followers []string `json:"followers"`
}

// RelationshipOutput describes the follow edges between actor and subject
type RelationshipOutput struct {
	Following  bool `json:"following"`
	FollowedBy bool `json:"followedBy"`
}

// HandleFollow makes the caller follow subject
// POST /xrpc/social.agora.graph.follow
//
// Request body: { "subject": "did:plc:..." }
func (h *Handler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.handleEdgeChange(w, r, h.service.Follow)
}

// HandleUnfollow removes the caller's follow of subject
// POST /xrpc/social.agora.graph.unfollow
func (h *Handler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.handleEdgeChange(w, r, h.service.Unfollow)
}

func (h *Handler) handleEdgeChange(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, callerDID, subjectDID string) error) {
	var req SubjectInput
	if !handlers.DecodeBody(w, r, 4*1024, &req) {
		return
	}

	callerDID := middleware.GetUserDID(r)
	if callerDID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	if req.Subject == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "subject is required")
		return
	}
	subject, err := syntax.ParseDID(req.Subject)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "subject must be a valid DID")
		return
	}

	if err := apply(r.Context(), callerDID, subject.String()); err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, struct{}{})
}

// HandleGetFollowing lists who actor follows
// GET /xrpc/social.agora.graph.getFollowing?actor={did}
func (h *Handler) HandleGetFollowing(w http.ResponseWriter, r *http.Request) {
	actorDID, ok := handlers.ParseDIDParam(w, r, "actor")
	if !ok {
		return
	}

	following, err := h.service.GetFollowing(r.Context(), actorDID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, FollowingOutput{Following: following})
}

// HandleGetFollowers lists who follows actor
// GET /xrpc/social.agora.graph.getFollowers?actor={did}
func (h *Handler) HandleGetFollowers(w http.ResponseWriter, r *http.Request) {
	actorDID, ok := handlers.ParseDIDParam(w, r, "actor")
	if !ok {
		return
	}

	followers, err := h.service.GetFollowers(r.Context(), actorDID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, FollowersOutput{Followers: followers})
}

// HandleGetRelationship reports whether actor follows subject and vice versa
// GET /xrpc/social.agora.graph.getRelationship?actor={did}&subject={did}
func (h *Handler) HandleGetRelationship(w http.ResponseWriter, r *http.Request) {
	actorDID, ok := handlers.ParseDIDParam(w, r, "actor")
	if !ok {
		return
	}
	subjectDID, ok := handlers.ParseDIDParam(w, r, "subject")
	if !ok {
		return
	}

	following, err := h.service.IsFollowing(r.Context(), actorDID, subjectDID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	followedBy, err := h.service.IsFollowing(r.Context(), subjectDID, actorDID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, RelationshipOutput{Following: following, FollowedBy: followedBy})
}
