package http

import (
	"crypto/md5" //nolint:gosec // matching the pipeline's entity tag
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/cache"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return NewPipeline(zerolog.Nop(), cache.NewMemory())
}

func TestPipelineSecurityHeaders(t *testing.T) {
	h := newTestPipeline(t).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Server", "leaky")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/models/", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	require.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	require.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	require.Empty(t, rec.Header().Get("Server"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPipelineKeepsHandlerCSP(t *testing.T) {
	h := newTestPipeline(t).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
}

func TestPipelineTimingHeaders(t *testing.T) {
	h := newTestPipeline(t).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Regexp(t, `^\d+\.\d{3}s$`, rec.Header().Get("X-Response-Time"))
	require.Equal(t, rec.Header().Get("X-Response-Time"), rec.Header().Get("X-Request-Duration"))
	require.Empty(t, rec.Header().Get("X-Performance-Warning"))
}

func TestPipelineCacheHints(t *testing.T) {
	body := []byte(`{"id":"abc"}`)
	h := newTestPipeline(t).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))

	t.Run("get 200 is cacheable with etag", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
		sum := md5.Sum(body) //nolint:gosec // content fingerprint only
		require.Equal(t, hex.EncodeToString(sum[:]), rec.Header().Get("ETag"))
	})

	t.Run("post is not cacheable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		require.Empty(t, rec.Header().Get("Cache-Control"))
		require.Empty(t, rec.Header().Get("ETag"))
	})

	t.Run("get error is not cacheable", func(t *testing.T) {
		eh := newTestPipeline(t).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		rec := httptest.NewRecorder()
		eh.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Empty(t, rec.Header().Get("Cache-Control"))
	})
}

func TestPipelineRateLimit(t *testing.T) {
	h := newTestPipeline(t).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < DefaultRateLimit; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:4242"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4242"
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "Rate limit exceeded. Please try again later.", payload["error"])

	// A different client is unaffected.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:4242"
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPipelineRecoversPanic(t *testing.T) {
	h := newTestPipeline(t).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("partial"))
		panic(fmt.Errorf("store exploded"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "Internal server error", payload["error"])
	require.NotContains(t, rec.Body.String(), "partial")
}

func TestPipelinePermissionDenied(t *testing.T) {
	h := newTestPipeline(t).Handler(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(auth.ErrPermissionDenied)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "Permission denied", payload["error"])
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{name: "peer address", remoteAddr: "192.168.1.10:51234", want: "192.168.1.10"},
		{name: "single forwarded", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.5", want: "203.0.113.5"},
		{name: "forwarded chain uses first", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.5, 70.41.3.18, 150.172.238.178", want: "203.0.113.5"},
		{name: "forwarded with spaces", remoteAddr: "10.0.0.1:80", forwarded: " 203.0.113.5 , 70.41.3.18", want: "203.0.113.5"},
		{name: "ipv6 peer", remoteAddr: "[::1]:8080", want: "::1"},
		{name: "ipv6 peer full", remoteAddr: "[2001:db8::42]:443", want: "2001:db8::42"},
		{name: "portless peer kept verbatim", remoteAddr: "192.168.1.10", want: "192.168.1.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			require.Equal(t, tt.want, ExtractClientIP(r))
		})
	}
}
