package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies; public intake forms have no business
// sending more than this.
const maxBodyBytes = 1 << 20

// writeJSON serializes v with the given status. Encoding failures are
// swallowed: by the time Encode fails the status line is already written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the single-message error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeNotFound is the uniform miss response. Missing, cross-tenant and
// malformed-ID lookups all produce this same body so existence never leaks.
func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "Not found.")
}

// fieldErrors collects per-field validation messages.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe fieldErrors) empty() bool {
	return len(fe) == 0
}

// write emits the field-level validation envelope.
func (fe fieldErrors) write(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fe})
}

const msgRequired = "This field is required."

// decodeJSON reads the request body into dst. On failure it writes a 400
// and reports false; callers return immediately.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		// An absent body is the empty object; action endpoints accept both.
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, http.StatusBadRequest, "Malformed JSON body.")
		return false
	}
	return true
}

// strVal unwraps an optional request string; nil reads as empty.
func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// errInvalidID distinguishes unparseable path IDs; handlers treat them as
// not-found.
var errInvalidID = errors.New("invalid id")

// uuidParam parses a UUID path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}
