// Package http implements the HTTP handlers of the dashboard server.
//
// Handlers stay thin: they parse the turma/disciplina selection from the
// query string, validate it, call the dashboard service and render either
// JSON, an RFC 7807 problem document, an .xlsx attachment or the HTML page.
//
// # Routes
//
//	GET  /                       dashboard page (PageHandler)
//	GET  /api/options            classes and subjects offered for selection
//	GET  /api/dashboard          computed dashboard for a selection
//	GET  /api/dashboard/export   filtered view as an .xlsx workbook
//	POST /api/dataset/reload     re-read the cleaned CSVs and notify clients
//	POST /api/logs               browser log forwarding
//	GET  /api/health[/ready|/live]
//	GET  /api/version
//	GET  /ws                     dataset:reloaded notifications
//	GET  /metrics                Prometheus scrape endpoint
//
// # Error Handling
//
// JSON endpoints hand every error to errors.ErrorHandler, which maps
// APIError and AppError values to problem documents:
//
//	h.errorHandler.HandleError(w, r, err)
//
// The page handler renders the same template with a message instead, using
// 400 for an invalid selection and 503 while no dataset is loaded.
//
// # Charts
//
// Bar and scatter charts are drawn as inline SVG. The grade axis starts at a
// 0-10 scale and the attendance axis at 0-100, and both grow when the data
// exceeds them.
package http
