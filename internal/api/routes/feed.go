package routes

import (
	"Agora/internal/api/handlers/feed"
	"Agora/internal/api/middleware"
	corefeed "Agora/internal/core/feed"

	"github.com/go-chi/chi/v5"
)

// RegisterFeedRoutes registers home feed XRPC endpoints
func RegisterFeedRoutes(r chi.Router, service corefeed.Service, authMiddleware *middleware.AuthMiddleware) {
	handler := feed.NewHandler(service)

	// social.agora.feed.getFeed - any actor's home feed, public
	r.Get("/xrpc/social.agora.feed.getFeed", handler.HandleGetFeed)

	// social.agora.feed.getMyFeed - the caller's home feed
	r.With(authMiddleware.RequireAuth).Get("/xrpc/social.agora.feed.getMyFeed", handler.HandleGetMyFeed)
}
