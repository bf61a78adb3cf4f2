// Package httpx holds the JSON envelope and request helpers shared by the
// admin and public HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// DefaultMaxBodyBytes caps request bodies when a handler has no own limit.
const DefaultMaxBodyBytes int64 = 64 << 10

var (
	ErrEmptyBody     = errors.New("empty body")
	ErrTrailingData  = errors.New("extra data after JSON object")
	ErrBodyTooLarge  = errors.New("request body too large")
	ErrMalformedJSON = errors.New("malformed JSON body")
)

// Envelope is embedded in every response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON writes v with status. Responses are never cached.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes a bare envelope.
func WriteMessage(w http.ResponseWriter, status int, success bool, msg string) {
	WriteJSON(w, status, Envelope{Success: success, Message: msg})
}

// DecodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields, trailing data and bodies over maxBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	defer func() { _ = r.Body.Close() }()

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		default:
			return errors.Join(ErrMalformedJSON, err)
		}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}
