// Package dev serves endpoints that only exist when IS_DEV_ENV=true
package dev

import (
	"log"
	"net/http"
	"time"

	"Agora/internal/api/handlers"
	"Agora/internal/api/middleware"
	"Agora/internal/auth"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/gorilla/sessions"
)

// LoginHandler issues a session cookie and a bearer token for any DID.
// There is no credential check, so it must never be mounted in production.
type LoginHandler struct {
	sessions  sessions.Store
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewLoginHandler creates a dev login handler. jwtSecret may be empty, in which
// case only the session cookie is issued.
func NewLoginHandler(store sessions.Store, jwtSecret []byte, tokenTTL time.Duration) *LoginHandler {
	return &LoginHandler{
		sessions:  store,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// LoginInput is the dev login request body
type LoginInput struct {
	DID string `json:"did"`
}

// LoginOutput echoes the DID and, when a signing secret is configured, a bearer token
type LoginOutput struct {
	DID         string `json:"did"`
	AccessToken string `json:"accessToken,omitempty"`
}

// HandleLogin handles POST /dev/login
//
// Request body: { "did": "did:plc:alice" }
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginInput
	if !handlers.DecodeBody(w, r, 4*1024, &req) {
		return
	}

	did, err := syntax.ParseDID(req.DID)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "did must be a valid DID")
		return
	}

	// A stale or undecodable cookie still yields a usable new session
	session, err := h.sessions.Get(r, middleware.SessionName)
	if err != nil {
		log.Printf("Dev login: discarding unreadable session: %v", err)
	}
	session.Values[middleware.SessionDIDKey] = did.String()
	if err := session.Save(r, w); err != nil {
		log.Printf("Dev login: failed to save session: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Failed to save session")
		return
	}

	out := LoginOutput{DID: did.String()}
	if len(h.jwtSecret) > 0 {
		out.AccessToken, err = auth.IssueHS256(h.jwtSecret, did.String(), h.tokenTTL)
		if err != nil {
			log.Printf("Dev login: failed to issue token: %v", err)
			handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Failed to issue token")
			return
		}
	}

	handlers.WriteJSON(w, http.StatusOK, out)
}
