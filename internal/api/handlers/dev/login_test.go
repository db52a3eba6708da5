package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Agora/internal/api/middleware"
	"Agora/internal/auth"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSessionKey = []byte("0123456789abcdef0123456789abcdef")

func loginRequest(t *testing.T, did string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(LoginInput{DID: did})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/dev/login", bytes.NewReader(payload))
}

func TestHandleLogin_CookieAuthenticatesLaterRequests(t *testing.T) {
	store := sessions.NewCookieStore(testSessionKey)
	handler := NewLoginHandler(store, nil, time.Hour)

	w := httptest.NewRecorder()
	handler.HandleLogin(w, loginRequest(t, "did:plc:alice"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out LoginOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "did:plc:alice", out.DID)
	assert.Empty(t, out.AccessToken)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	authMW := middleware.NewAuthMiddleware(auth.NewVerifier(nil, nil), store)
	protected := authMW.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(middleware.GetUserDID(r)))
	}))

	req := httptest.NewRequest(http.MethodGet, "/xrpc/social.agora.feed.getMyFeed", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "did:plc:alice", rec.Body.String())
}

func TestHandleLogin_IssuesVerifiableToken(t *testing.T) {
	secret := []byte("dev-secret")
	handler := NewLoginHandler(sessions.NewCookieStore(testSessionKey), secret, time.Hour)

	w := httptest.NewRecorder()
	handler.HandleLogin(w, loginRequest(t, "did:plc:bob"))

	require.Equal(t, http.StatusOK, w.Code)
	var out LoginOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)

	claims, err := auth.NewVerifier(secret, nil).Verify(context.Background(), out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "did:plc:bob", claims.Subject)
}

func TestHandleLogin_RejectsInvalidDID(t *testing.T) {
	handler := NewLoginHandler(sessions.NewCookieStore(testSessionKey), nil, time.Hour)

	w := httptest.NewRecorder()
	handler.HandleLogin(w, loginRequest(t, "alice"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Result().Cookies())
}
