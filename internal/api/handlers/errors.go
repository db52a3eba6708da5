package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// DefaultPageLimit and MaxPageLimit bound feed page sizes taken from query parameters
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// WriteError writes a standardized JSON error response
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// WriteJSON pre-encodes v so an encoding failure can still become a proper 500
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
		WriteError(w, http.StatusInternalServerError, "InternalServerError", "Failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Printf("ERROR: Failed to write response: %v", err)
	}
}

// DecodeBody limits the body to maxBytes and decodes it into v.
// On failure it writes the error response and returns false.
func DecodeBody(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large")
			return false
		}
		WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return false
	}
	return true
}

// ParseDIDParam reads a required DID from the named query parameter.
// On failure it writes the error response and returns false.
func ParseDIDParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "InvalidRequest", name+" parameter is required")
		return "", false
	}

	did, err := syntax.ParseDID(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "InvalidRequest", name+" must be a valid DID")
		return "", false
	}
	return did.String(), true
}

// ParsePage reads offset and limit query parameters.
// Missing limit defaults to DefaultPageLimit; limit is capped at MaxPageLimit;
// negative values clamp to zero.
func ParsePage(r *http.Request) (offset, limit int, err error) {
	query := r.URL.Query()

	limit = DefaultPageLimit
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("limit must be an integer")
		}
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("offset must be an integer")
		}
	}

	offset = max(offset, 0)
	limit = min(max(limit, 0), MaxPageLimit)
	return offset, limit, nil
}
