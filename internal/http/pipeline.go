package http

import (
	"crypto/md5" //nolint:gosec // entity tags, not credentials
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/cache"
)

// Rate limiting and caching defaults.
const (
	DefaultRateLimit     = 100
	DefaultRateWindow    = 60 * time.Second
	DefaultCacheMaxAge   = 300 * time.Second
	slowRequestWarnAfter = 1 * time.Second
	slowRequestFlagAfter = 2 * time.Second
)

const defaultCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' 'unsafe-eval'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: https:; " +
	"font-src 'self' data:; " +
	"connect-src 'self' https:; " +
	"frame-ancestors 'none';"

// Step is one response-side stage of the pipeline. Steps run in a fixed
// order after the handler has produced its (buffered) response and may
// mutate headers or inspect the body; they never replace the handler's
// outcome.
type Step func(info *RequestInfo, r *http.Request, resp *BufferedResponse)

// Pipeline wraps every inbound call with cross-cutting policy: request
// identification, rate limiting, panic normalization, and the response-side
// steps (security headers, timing, cache hints). It holds no mutable global
// state; the rate-limit counters live in the injected Cache.
type Pipeline struct {
	logger zerolog.Logger
	cache  cache.Cache

	rateLimit  int64
	rateWindow time.Duration
	steps      []Step
}

// NewPipeline builds a pipeline with the fixed default step order.
func NewPipeline(logger zerolog.Logger, c cache.Cache) *Pipeline {
	p := &Pipeline{
		logger:     logger,
		cache:      c,
		rateLimit:  DefaultRateLimit,
		rateWindow: DefaultRateWindow,
	}
	p.steps = []Step{
		SecurityHeaders(defaultCSP),
		Timing(logger),
		CacheHints(DefaultCacheMaxAge),
	}
	return p
}

// Handler wraps next with the full pipeline. Rate limiting short-circuits
// before any handler work; response-side steps run on every outcome,
// including rate-limited and recovered ones.
func (p *Pipeline) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := newRequestInfo(r)
		r = r.WithContext(withRequestInfo(r.Context(), info))

		resp := NewBufferedResponse()
		resp.Header().Set("X-Request-ID", info.ID)

		if p.allow(r, info) {
			p.invoke(next, resp, r, info)
		} else {
			p.logger.Warn().
				Str("request_id", info.ID).
				Str("client_ip", info.ClientIP).
				Msg("rate limit exceeded")
			RateLimitRejected.Inc()
			resp.WriteJSON(http.StatusTooManyRequests,
				map[string]string{"error": "Rate limit exceeded. Please try again later."})
		}

		for _, step := range p.steps {
			step(info, r, resp)
		}

		resp.flush(w)

		p.logRequest(info, r, resp)
	})
}

// allow consults the shared counter for the client address. The counter is
// created with the window TTL and reset abruptly when it expires; this is a
// windowed approximation, not a continuously decaying limiter.
func (p *Pipeline) allow(r *http.Request, info *RequestInfo) bool {
	count, err := p.cache.Increment(r.Context(), "rate_limit:"+info.ClientIP, p.rateWindow)
	if err != nil {
		// Fail open: a broken counter cache must not take the API down.
		p.logger.Error().Err(err).Msg("rate limit counter unavailable")
		return true
	}
	return count <= p.rateLimit
}

// invoke runs the handler against the buffered response, converting any
// panic into a structured error envelope. Policy denials become an opaque
// 403; everything else is logged with full context and surfaced as an
// opaque 500.
func (p *Pipeline) invoke(next http.Handler, resp *BufferedResponse, r *http.Request, info *RequestInfo) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}

		err, ok := rec.(error)
		if !ok {
			err = fmt.Errorf("%v", rec)
		}

		resp.Reset()
		resp.Header().Set("X-Request-ID", info.ID)

		if errors.Is(err, auth.ErrPermissionDenied) {
			resp.WriteJSON(http.StatusForbidden, map[string]string{"error": "Permission denied"})
			return
		}

		p.logger.Error().
			Err(err).
			Str("request_id", info.ID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("client_ip", info.ClientIP).
			Msg("unhandled error in request handler")
		resp.WriteJSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}()

	next.ServeHTTP(resp, r)
}

func (p *Pipeline) logRequest(info *RequestInfo, r *http.Request, resp *BufferedResponse) {
	duration := time.Since(info.Start)

	evt := p.logger.Info()
	if duration > slowRequestWarnAfter {
		evt = p.logger.Warn()
	}
	evt.
		Str("request_id", info.ID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", resp.Status()).
		Dur("duration", duration).
		Int("size", len(resp.Body())).
		Str("client_ip", info.ClientIP).
		Msg("request completed")

	RequestsTotal.WithLabelValues(r.Method, statusClass(resp.Status())).Inc()
	RequestDuration.WithLabelValues(r.Method).Observe(duration.Seconds())
}

// SecurityHeaders returns the step that applies the standard security
// headers to every response. The content security policy is only applied
// when the handler has not set one; strict transport security only when the
// call arrived over TLS.
func SecurityHeaders(csp string) Step {
	return func(_ *RequestInfo, r *http.Request, resp *BufferedResponse) {
		h := resp.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if h.Get("Content-Security-Policy") == "" {
			h.Set("Content-Security-Policy", csp)
		}

		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		h.Del("Server")
	}
}

// Timing returns the step that attaches elapsed-duration headers and flags
// slow responses.
func Timing(logger zerolog.Logger) Step {
	perf := logger.With().Str("component", "performance").Logger()
	return func(info *RequestInfo, r *http.Request, resp *BufferedResponse) {
		duration := time.Since(info.Start)
		formatted := fmt.Sprintf("%.3fs", duration.Seconds())
		resp.Header().Set("X-Response-Time", formatted)
		resp.Header().Set("X-Request-Duration", formatted)

		if duration > slowRequestFlagAfter {
			resp.Header().Set("X-Performance-Warning", "Slow request detected")
			perf.Warn().
				Str("request_id", info.ID).
				Str("path", r.URL.Path).
				Dur("duration", duration).
				Msg("slow request detected")
		}
	}
}

// CacheHints returns the step that marks successful GET responses publicly
// cacheable with a content-hash entity tag.
func CacheHints(maxAge time.Duration) Step {
	directive := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(_ *RequestInfo, r *http.Request, resp *BufferedResponse) {
		if r.Method != http.MethodGet || resp.Status() != http.StatusOK {
			return
		}
		resp.Header().Set("Cache-Control", directive)

		sum := md5.Sum(resp.Body()) //nolint:gosec // content fingerprint only
		resp.Header().Set("ETag", hex.EncodeToString(sum[:]))
	}
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}
