package http

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// BufferedResponse is an http.ResponseWriter that records the status,
// headers and body instead of writing them to the wire. The pipeline runs
// its response-side steps against the buffer, then flushes; steps may still
// mutate headers after the handler has "written" its response.
type BufferedResponse struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

// NewBufferedResponse creates an empty buffered response defaulting to 200.
func NewBufferedResponse() *BufferedResponse {
	return &BufferedResponse{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

// Header returns the recorded header map.
func (b *BufferedResponse) Header() http.Header {
	return b.header
}

// WriteHeader records the status code. Only the first call wins, matching
// net/http semantics.
func (b *BufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

// Write appends to the recorded body.
func (b *BufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

// Status returns the recorded status code.
func (b *BufferedResponse) Status() int {
	return b.status
}

// Body returns the recorded body bytes.
func (b *BufferedResponse) Body() []byte {
	return b.body.Bytes()
}

// Reset discards everything recorded so far. The recovery step uses this to
// replace a half-written handler response with a clean error envelope.
func (b *BufferedResponse) Reset() {
	b.header = make(http.Header)
	b.status = http.StatusOK
	b.wroteHeader = false
	b.body.Reset()
}

// WriteJSON records a JSON body with the given status.
func (b *BufferedResponse) WriteJSON(status int, v any) {
	b.header.Set("Content-Type", "application/json")
	b.status = status
	b.wroteHeader = true
	_ = json.NewEncoder(&b.body).Encode(v)
}

// flush copies the recorded response to the real writer.
func (b *BufferedResponse) flush(w http.ResponseWriter) {
	for k, vs := range b.header {
		w.Header()[k] = vs
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
