// Package app wires the dashboard server together and manages its lifecycle.
//
// New builds every component from a config.Config: paths, OpenTelemetry
// providers and instruments, the WebSocket hub, the dashboard and health
// services, and the chi router. The cleaned dataset is loaded once at
// startup; when it is missing the server still starts and answers 503 until
// POST /api/dataset/reload succeeds.
//
// # Middleware Order
//
// /ws only gets RequestID, RealIP and the upgrade tracer so the connection can
// be hijacked. Every other route runs through:
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer → SecurityHeaders → CORS → RateLimit
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts down the HTTP server, the
// hub and the telemetry providers.
package app
