package http

import (
	"context"
	"io"

	"escolacli/internal/services"
	"escolacli/pkg/contracts/domain"
	"escolacli/pkg/contracts/events"
)

// DashboardServiceInterface defines the dashboard operations used by the handlers
type DashboardServiceInterface interface {
	Options(ctx context.Context) (domain.Options, error)
	DefaultSelection(ctx context.Context) (domain.Selection, error)
	Dashboard(ctx context.Context, sel domain.Selection) (domain.Dashboard, error)
	Export(ctx context.Context, sel domain.Selection, w io.Writer) (string, error)
	Reload(ctx context.Context) (events.DatasetReloaded, error)
}

// HealthServiceInterface defines the health operations used by the handlers
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

// StructValidator validates request structs
type StructValidator interface {
	ValidateStruct(v interface{}) error
}

var (
	_ DashboardServiceInterface = (*services.DashboardService)(nil)
	_ HealthServiceInterface    = (*services.HealthService)(nil)
)
