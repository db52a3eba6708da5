package actor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Agora/internal/api/middleware"
	"Agora/internal/core/profiles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProfileService implements profiles.Service for testing
type mockProfileService struct {
	registerFunc func(ctx context.Context, req profiles.RegisterRequest) (*profiles.Profile, error)
	getFunc      func(ctx context.Context, did string) (*profiles.Profile, error)
}

func (m *mockProfileService) Register(ctx context.Context, req profiles.RegisterRequest) (*profiles.Profile, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return &profiles.Profile{DID: req.DID, Username: req.Username, AvatarURL: req.AvatarURL, CreatedAt: time.Now()}, nil
}

func (m *mockProfileService) GetProfile(ctx context.Context, did string) (*profiles.Profile, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, did)
	}
	return nil, nil
}

func (m *mockProfileService) RequireRegistered(ctx context.Context, did string) error {
	return nil
}

func registerRequest(t *testing.T, did string, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/xrpc/social.agora.actor.register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if did != "" {
		req = req.WithContext(middleware.SetTestUserDID(req.Context(), did))
	}
	return req
}

func TestRegisterHandler_Success(t *testing.T) {
	var got profiles.RegisterRequest
	service := &mockProfileService{
		registerFunc: func(ctx context.Context, req profiles.RegisterRequest) (*profiles.Profile, error) {
			got = req
			return &profiles.Profile{DID: req.DID, Username: req.Username, AvatarURL: req.AvatarURL}, nil
		},
	}
	handler := NewRegisterHandler(service)

	w := httptest.NewRecorder()
	handler.HandleRegister(w, registerRequest(t, "did:plc:alice", map[string]string{
		"username":  "alice",
		"avatarUrl": "https://img/a.png",
		"did":       "did:plc:spoofed",
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "did:plc:alice", got.DID, "DID comes from auth, never from the body")

	var profile profiles.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "https://img/a.png", profile.AvatarURL)
}

func TestRegisterHandler_Errors(t *testing.T) {
	tests := []struct {
		name      string
		did       string
		err       error
		wantCode  int
		wantError string
	}{
		{"unauthenticated", "", nil, http.StatusUnauthorized, "AuthRequired"},
		{"already registered", "did:plc:alice", profiles.ErrAlreadyRegistered, http.StatusConflict, "AlreadyRegistered"},
		{"invalid username", "did:plc:alice", profiles.ErrInvalidUsername, http.StatusBadRequest, "InvalidRequest"},
		{"internal", "did:plc:alice", errors.New("disk full"), http.StatusInternalServerError, "InternalServerError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockProfileService{
				registerFunc: func(ctx context.Context, req profiles.RegisterRequest) (*profiles.Profile, error) {
					return nil, tt.err
				},
			}

			w := httptest.NewRecorder()
			NewRegisterHandler(service).HandleRegister(w, registerRequest(t, tt.did, map[string]string{"username": "alice"}))

			assert.Equal(t, tt.wantCode, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/xrpc/social.agora.actor.register", bytes.NewBufferString("{"))
	req = req.WithContext(middleware.SetTestUserDID(req.Context(), "did:plc:alice"))
	w := httptest.NewRecorder()

	NewRegisterHandler(&mockProfileService{}).HandleRegister(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProfileHandler(t *testing.T) {
	service := &mockProfileService{
		getFunc: func(ctx context.Context, did string) (*profiles.Profile, error) {
			if did == "did:plc:alice" {
				return &profiles.Profile{DID: did, Username: "alice"}, nil
			}
			return nil, nil
		},
	}
	handler := NewGetProfileHandler(service)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleGetProfile(w, httptest.NewRequest(http.MethodGet, "/xrpc/social.agora.actor.getProfile?actor=did:plc:alice", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var out GetProfileOutput
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		require.NotNil(t, out.Profile)
		assert.Equal(t, "alice", out.Profile.Username)
	})

	t.Run("absent is null", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleGetProfile(w, httptest.NewRequest(http.MethodGet, "/xrpc/social.agora.actor.getProfile?actor=did:plc:nobody", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"profile":null}`, w.Body.String())
	})

	t.Run("invalid actor", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleGetProfile(w, httptest.NewRequest(http.MethodGet, "/xrpc/social.agora.actor.getProfile?actor=alice", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
