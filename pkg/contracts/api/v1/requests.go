// Package api contains API contract definitions for the dashboard server.
// Version v1 represents the current stable API version.
package api

import (
	"net/url"
	"strings"

	"escolacli/pkg/contracts/domain"
)

// Query parameter names shared by the HTML page and the JSON API
const (
	QueryClass   = "turma"
	QuerySubject = "disciplina"
)

// SelectionRequest represents the class/subject selection of a dashboard request
type SelectionRequest struct {
	Class   string `json:"turma" query:"turma" validate:"required,max=128,printable"`
	Subject string `json:"disciplina" query:"disciplina" validate:"required,max=128,printable"`
}

// SelectionFromQuery reads a selection from URL query parameters
func SelectionFromQuery(q url.Values) SelectionRequest {
	return SelectionRequest{
		Class:   strings.TrimSpace(q.Get(QueryClass)),
		Subject: strings.TrimSpace(q.Get(QuerySubject)),
	}
}

// ToDomain converts the request to a domain selection
func (r SelectionRequest) ToDomain() domain.Selection {
	return domain.Selection{Class: r.Class, Subject: r.Subject}
}

// ReloadResponse is returned by the dataset reload endpoint
type ReloadResponse struct {
	Summary domain.DatasetSummary `json:"summary"`
	Options domain.Options        `json:"options"`
}
