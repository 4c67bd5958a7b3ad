package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const requestInfoContextKey contextKey = "request_info"

// RequestInfo carries the per-request identity assigned by the pipeline:
// a unique request ID, the start timestamp and the resolved client address.
// It lives in the request context for the lifetime of the call.
type RequestInfo struct {
	ID       string
	Start    time.Time
	ClientIP string
}

// RequestInfoFromContext extracts the pipeline request info.
// Returns nil for requests that did not pass through the pipeline.
func RequestInfoFromContext(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(requestInfoContextKey).(*RequestInfo)
	return info
}

// ClientIPFromContext returns the resolved client address, or "" when the
// request did not pass through the pipeline.
func ClientIPFromContext(ctx context.Context) string {
	if info := RequestInfoFromContext(ctx); info != nil {
		return info.ClientIP
	}
	return ""
}

func withRequestInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoContextKey, info)
}

// ExtractClientIP resolves the client address for rate limiting and audit
// logging. The first X-Forwarded-For entry wins for proxied requests,
// falling back to the direct peer address with the port stripped.
func ExtractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if before, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(before)
		}
		return strings.TrimSpace(xff)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func newRequestInfo(r *http.Request) *RequestInfo {
	return &RequestInfo{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Start:    time.Now(),
		ClientIP: ExtractClientIP(r),
	}
}
