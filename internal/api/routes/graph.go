package routes

import (
	"Agora/internal/api/handlers/graph"
	"Agora/internal/api/middleware"
	coregraph "Agora/internal/core/graph"

	"github.com/go-chi/chi/v5"
)

// RegisterGraphRoutes registers follow graph XRPC endpoints
func RegisterGraphRoutes(r chi.Router, service coregraph.Service, authMiddleware *middleware.AuthMiddleware) {
	handler := graph.NewHandler(service)

	r.With(authMiddleware.RequireAuth).Post("/xrpc/social.agora.graph.follow", handler.HandleFollow)
	r.With(authMiddleware.RequireAuth).Post("/xrpc/social.agora.graph.unfollow", handler.HandleUnfollow)

	r.Get("/xrpc/social.agora.graph.getFollowing", handler.HandleGetFollowing)
	r.Get("/xrpc/social.agora.graph.getFollowers", handler.HandleGetFollowers)
	r.Get("/xrpc/social.agora.graph.getRelationship", handler.HandleGetRelationship)
}
