package routes

import (
	"Agora/internal/api/handlers/post"
	"Agora/internal/api/middleware"
	"Agora/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// RegisterPostRoutes registers post, like and comment XRPC endpoints
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.AuthMiddleware) {
	handler := post.NewHandler(service)

	// Procedure endpoints (POST) - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Post("/xrpc/social.agora.post.create", handler.HandleCreate)
		r.Post("/xrpc/social.agora.post.edit", handler.HandleEdit)
		r.Post("/xrpc/social.agora.post.delete", handler.HandleDelete)
		r.Post("/xrpc/social.agora.post.like", handler.HandleLike)
		r.Post("/xrpc/social.agora.post.unlike", handler.HandleUnlike)
		r.Post("/xrpc/social.agora.post.comment", handler.HandleComment)
	})

	// Query endpoints (GET) - public
	r.Get("/xrpc/social.agora.post.get", handler.HandleGet)
	r.Get("/xrpc/social.agora.post.getAuthorPosts", handler.HandleGetAuthorPosts)
}
