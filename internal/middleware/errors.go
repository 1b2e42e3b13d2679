package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "escolacli/internal/errors"
	"escolacli/internal/infrastructure"
)

const problemContentType = "application/problem+json"

// writeProblem answers with an RFC 7807 document for failures raised by the
// middleware chain itself, before any handler and its ErrorHandler run.
// extensions are flattened next to the standard members.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, detail string, extensions map[string]interface{}) {
	problem := apierrors.NewProblemDetails(status, problemType, http.StatusText(status), detail, r.URL.Path)
	if traceID := infrastructure.GetTraceID(r.Context()); traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	for k, v := range extensions {
		problem.WithExtension(k, v)
	}

	body, err := json.Marshal(problem)
	if err != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
