package routes

import (
	"Agora/internal/api/handlers/actor"
	"Agora/internal/api/middleware"
	"Agora/internal/core/profiles"

	"github.com/go-chi/chi/v5"
)

// RegisterActorRoutes registers profile XRPC endpoints
func RegisterActorRoutes(r chi.Router, service profiles.Service, authMiddleware *middleware.AuthMiddleware) {
	registerHandler := actor.NewRegisterHandler(service)
	getProfileHandler := actor.NewGetProfileHandler(service)

	// social.agora.actor.register - create the caller's profile
	r.With(authMiddleware.RequireAuth).Post("/xrpc/social.agora.actor.register", registerHandler.HandleRegister)

	// social.agora.actor.getProfile - public read
	r.Get("/xrpc/social.agora.actor.getProfile", getProfileHandler.HandleGetProfile)
}
