package routes

import (
	"net/http"
	"time"

	"Agora/internal/api/handlers/dev"
	"Agora/internal/api/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
)

// RegisterDevRoutes registers the dev login endpoint. Only call this when IS_DEV_ENV=true.
func RegisterDevRoutes(r chi.Router, store sessions.Store, jwtSecret []byte, loginLimiter *middleware.RateLimiter) {
	handler := dev.NewLoginHandler(store, jwtSecret, 24*time.Hour)

	r.With(loginLimiter.Middleware).Post("/dev/login", handler.HandleLogin)
}

// CORSMiddleware allows the browser frontend at allowedOrigins to call the API with credentials
func CORSMiddleware(allowedOrigins []string) func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	})
}
