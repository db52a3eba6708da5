package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"Agora/internal/auth"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/gorilla/sessions"
)

// Context keys for storing user information
type contextKey string

const (
	UserDIDKey   contextKey = "user_did"
	JWTClaimsKey contextKey = "jwt_claims"
)

const (
	// SessionName is the cookie name used by the dev login flow
	SessionName = "agora_session"
	// SessionDIDKey is the session value holding the caller DID
	SessionDIDKey = "did"
)

// TokenVerifier verifies bearer tokens; implemented by *auth.Verifier
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// AuthMiddleware resolves the caller identity from a bearer token or, when a
// session store is configured, from the dev login cookie
type AuthMiddleware struct {
	verifier TokenVerifier
	sessions sessions.Store
}

// NewAuthMiddleware creates a new auth middleware. sessionStore may be nil.
func NewAuthMiddleware(verifier TokenVerifier, sessionStore sessions.Store) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		sessions: sessionStore,
	}
}

// RequireAuth middleware ensures the caller is authenticated.
// If not authenticated, returns 401; otherwise injects the caller DID into context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, ok, message := m.authenticate(r)
		if !ok {
			writeAuthError(w, message)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth middleware loads the caller identity if present, but doesn't require it
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, ok, message := m.authenticate(r)
		if !ok {
			if message != missingCredentials {
				log.Printf("Optional auth failed: %s", message)
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

const missingCredentials = "Missing Authorization header"

// authenticate returns the request context carrying the caller DID, or a
// client-facing reason why no identity could be established
func (m *AuthMiddleware) authenticate(r *http.Request) (context.Context, bool, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return nil, false, "Invalid Authorization header format. Expected: Bearer <token>"
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			log.Printf("[AUTH_FAILURE] type=verification_failed ip=%s method=%s path=%s error=%v",
				r.RemoteAddr, r.Method, r.URL.Path, err)
			return nil, false, "Invalid or expired token"
		}

		ctx := context.WithValue(r.Context(), UserDIDKey, claims.Subject)
		ctx = context.WithValue(ctx, JWTClaimsKey, claims)
		return ctx, true, ""
	}

	if m.sessions != nil {
		if did, ok := m.sessionDID(r); ok {
			return context.WithValue(r.Context(), UserDIDKey, did), true, ""
		}
	}

	return nil, false, missingCredentials
}

func (m *AuthMiddleware) sessionDID(r *http.Request) (string, bool) {
	session, err := m.sessions.Get(r, SessionName)
	if err != nil || session.IsNew {
		return "", false
	}

	did, _ := session.Values[SessionDIDKey].(string)
	if _, err := syntax.ParseDID(did); err != nil {
		return "", false
	}
	return did, true
}

// GetUserDID extracts the user's DID from the request context
// Returns empty string if not authenticated
func GetUserDID(r *http.Request) string {
	did, _ := r.Context().Value(UserDIDKey).(string)
	return did
}

// GetJWTClaims extracts the JWT claims from the request context
// Returns nil for session-authenticated or anonymous requests
func GetJWTClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(JWTClaimsKey).(*auth.Claims)
	return claims
}

// SetTestUserDID sets the user DID in the context for testing purposes
// This function should ONLY be used in tests to mock authenticated users
func SetTestUserDID(ctx context.Context, userDID string) context.Context {
	return context.WithValue(ctx, UserDIDKey, userDID)
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	// Simple error response matching XRPC error format
	response := `{"error":"AuthRequired","message":"` + message + `"}`
	if _, err := w.Write([]byte(response)); err != nil {
		log.Printf("Failed to write auth error response: %v", err)
	}
}
