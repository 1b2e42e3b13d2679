package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"escolacli/internal/infrastructure"
)

// OTelMiddleware provides OpenTelemetry instrumentation for HTTP requests
type OTelMiddleware struct {
	tracer  trace.Tracer
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger
}

// NewOTelMiddleware creates the middleware. metrics may be nil.
func NewOTelMiddleware(tracer trace.Tracer, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *OTelMiddleware {
	if tracer == nil {
		tracer = otel.Tracer("escolacli/http")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OTelMiddleware{tracer: tracer, metrics: metrics, logger: logger}
}

// Handler returns the middleware handler function
func (m *OTelMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := m.tracer.Start(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.URLPath(r.URL.Path),
				semconv.ServerAddressKey.String(r.Host),
				semconv.UserAgentOriginalKey.String(r.UserAgent()),
				semconv.ClientAddressKey.String(GetRealIP(r)),
			),
		)
		defer span.End()

		// Log correlation follows the span when one is recording
		if span.SpanContext().IsValid() {
			ctx = infrastructure.WithTraceID(ctx, span.SpanContext().TraceID().String())
		}
		r = r.WithContext(ctx)

		if m.metrics != nil {
			m.metrics.HTTPActiveRequests.Add(ctx, 1)
			defer m.metrics.HTTPActiveRequests.Add(ctx, -1)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := getRoutePattern(r)

		m.metrics.RecordHTTPRequest(ctx, r.Method, route, status, duration)

		span.SetName(fmt.Sprintf("%s %s", r.Method, route))
		span.SetAttributes(
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPResponseStatusCodeKey.Int(status),
			semconv.HTTPResponseBodySizeKey.Int(ww.BytesWritten()),
			attribute.Float64("http.request.duration", duration.Seconds()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

// getRoutePattern extracts the route pattern from request context
func getRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// WebSocketTraceMiddleware traces WebSocket upgrade requests
func WebSocketTraceMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracer := otel.Tracer("escolacli/websocket")
			ctx, span := tracer.Start(r.Context(), "websocket_upgrade",
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String("/ws"),
					attribute.String("connection.type", "websocket"),
					attribute.String("origin", r.Header.Get("Origin")),
				),
			)
			defer span.End()

			logger.InfoContext(ctx, "WebSocket upgrade attempt",
				slog.String("origin", r.Header.Get("Origin")),
				slog.String("remote_addr", GetRealIP(r)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRealIP extracts the real IP address from the request
func GetRealIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
