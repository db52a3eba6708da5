package feed

import (
	"log"
	"net/http"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
)

// Handler serves the social.agora.feed.* endpoints
type Handler struct {
	service feed.Service
}

// NewHandler creates a new feed handler
func NewHandler(service feed.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// FeedOutput is one page of a home feed
type FeedOutput struct {
	Feed []*posts.Post `json:"feed"`
}

// HandleGetFeed returns a page of the feed of actor
// GET /xrpc/social.agora.feed.getFeed?actor={did}&offset=0&limit=20
func (h *Handler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	actorDID, ok := handlers.ParseDIDParam(w, r, "actor")
	if !ok {
		return
	}
	offset, limit, ok := parsePage(w, r)
	if !ok {
		return
	}

	page, err := h.service.GetFeedFor(r.Context(), feed.GetFeedRequest{
		ActorDID: actorDID,
		Offset:   offset,
		Limit:    limit,
	})
	writeFeed(w, actorDID, page, err)
}

// HandleGetMyFeed returns a page of the caller's own feed
// GET /xrpc/social.agora.feed.getMyFeed?offset=0&limit=20
func (h *Handler) HandleGetMyFeed(w http.ResponseWriter, r *http.Request) {
	callerDID := middleware.GetUserDID(r)
	if callerDID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}
	offset, limit, ok := parsePage(w, r)
	if !ok {
		return
	}

	page, err := h.service.GetMyFeed(r.Context(), callerDID, offset, limit)
	writeFeed(w, callerDID, page, err)
}

func parsePage(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	offset, limit, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return 0, 0, false
	}
	return offset, limit, true
}

func writeFeed(w http.ResponseWriter, did string, page []*posts.Post, err error) {
	if err != nil {
		log.Printf("Failed to get feed for %s: %v", did, err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Failed to get feed")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, FeedOutput{Feed: page})
}
