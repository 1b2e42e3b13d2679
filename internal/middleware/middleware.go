package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	apierrors "escolacli/internal/errors"
	"escolacli/internal/infrastructure"
)

type contextKey string

// RequestIDKey is the context key for request ID
const RequestIDKey contextKey = "request-id"

// RequestID middleware generates a unique request ID for each request.
// An incoming X-Request-ID header is kept. It must be the first middleware
// in the chain.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = infrastructure.GenerateTraceID()
		}

		w.Header().Set("X-Request-ID", requestID)

		// The request id doubles as trace id unless a span is active
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, middleware.RequestIDKey, requestID)
		ctx = infrastructure.WithTraceID(ctx, requestID)
		if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			ctx = infrastructure.WithTraceID(ctx, span.SpanContext().TraceID().String())
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetReqID retrieves the request ID from the context
func GetReqID(ctx context.Context) string {
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// StructuredLogger logs request start and completion with slog.
// It must come after RequestID.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			reqLogger := logger
			if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
				reqLogger = logger.With("trace_id", traceID)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger.DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)

			next.ServeHTTP(ww, r)

			reqLogger.InfoContext(ctx, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}

// Recoverer recovers from panics and answers with a problem document
func Recoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					ctx := r.Context()

					logger.ErrorContext(ctx, "panic recovered",
						"panic", rvr,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)

					writeProblem(w, r, http.StatusInternalServerError, apierrors.TypeInternal,
						"An unexpected error occurred", nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter is a process-wide token bucket
type RateLimiter struct {
	limiter    *rate.Limiter
	retryAfter time.Duration
	logger     *slog.Logger
}

// NewRateLimiter allows rps requests per second with the given burst
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	retryAfter := time.Second
	if rps > 0 && rps < 1 {
		retryAfter = time.Duration(float64(time.Second) / rps)
	}
	return &RateLimiter{
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		retryAfter: retryAfter,
		logger:     logger,
	}
}

// Handler implements rate limiting middleware
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !rl.limiter.Allow() {
			rl.logger.WarnContext(ctx, "rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			seconds := int(rl.retryAfter.Round(time.Second) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			writeProblem(w, r, http.StatusTooManyRequests, apierrors.TypeRateLimit,
				"Rate limit exceeded. Please retry after "+strconv.Itoa(seconds)+" seconds",
				map[string]interface{}{"retry_after": seconds})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
	Logger         *slog.Logger
}

// CORS answers preflight requests and sets the allow headers for known origins
func CORS(config CORSConfig) func(next http.Handler) http.Handler {
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(config.AllowedHeaders) == 0 {
		config.AllowedHeaders = []string{"Accept", "Content-Type", "X-Request-ID"}
	}
	if config.MaxAge == 0 {
		config.MaxAge = 300
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := len(config.AllowedOrigins) == 0
			for _, allowedOrigin := range config.AllowedOrigins {
				if allowedOrigin == "*" || strings.EqualFold(allowedOrigin, origin) {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))

			if r.Method == http.MethodOptions {
				if config.Logger != nil {
					config.Logger.DebugContext(r.Context(), "CORS preflight request",
						"origin", origin,
						"allowed", allowed,
					)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related headers. The page draws its charts
// as inline SVG and uses one inline script for the WebSocket listener.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self' ws: wss:")

		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// RealIP extracts the real client IP using Chi's implementation
func RealIP(next http.Handler) http.Handler {
	return middleware.RealIP(next)
}
