package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusNotFound, "NotFound", "Post not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NotFound", body["error"])
	assert.Equal(t, "Post not found", body["message"])
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDecodeBody(t *testing.T) {
	var v struct {
		Content string `json:"content"`
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`))
	require.True(t, DecodeBody(w, r, 1024, &v))
	assert.Equal(t, "hi", v.Content)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	assert.False(t, DecodeBody(w, r, 1024, &v))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	big := `{"content":"` + strings.Repeat("x", 2048) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(big))
	assert.False(t, DecodeBody(w, r, 1024, &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestParseDIDParam(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   string
		wantOK bool
		code   int
	}{
		{"valid", "?actor=did:plc:alice", "did:plc:alice", true, http.StatusOK},
		{"missing", "", "", false, http.StatusBadRequest},
		{"not a DID", "?actor=alice.example.com", "", false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)

			did, ok := ParseDIDParam(w, r, "actor")

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, did)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
		wantErr    bool
	}{
		{"defaults", "", 0, DefaultPageLimit, false},
		{"explicit", "?offset=5&limit=7", 5, 7, false},
		{"capped", "?limit=1000", 0, MaxPageLimit, false},
		{"negative clamps", "?offset=-3&limit=-1", 0, 0, false},
		{"zero limit", "?limit=0", 0, 0, false},
		{"bad limit", "?limit=ten", 0, 0, true},
		{"bad offset", "?offset=x", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)

			offset, limit, err := ParsePage(r)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
