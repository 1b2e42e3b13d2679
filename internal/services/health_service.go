package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"escolacli/internal/websocket"
	"escolacli/pkg/contracts"
	"escolacli/pkg/contracts/domain"
)

// Health status values
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// DatasetProvider exposes the active dataset
type DatasetProvider interface {
	Dataset() *domain.Dataset
}

// HealthService provides health check functionality
type HealthService struct {
	dataset   DatasetProvider
	hub       websocket.Broadcaster
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. hub may be nil.
func NewHealthService(dataset DatasetProvider, hub websocket.Broadcaster, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.String("build_time", contracts.BuildTime))

	return &HealthService{
		dataset:   dataset,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports ready once a dataset is loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]interface{}{
			"dataset":   hs.checkDatasetHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"data_format":  info.DataFormat,
		"api_version":  info.APIVersion,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dataset service not initialized"}
	}

	ds := hs.dataset.Dataset()
	if ds == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dataset not loaded"}
	}

	summary := ds.Summary()
	return ServiceHealth{
		Status: StatusReady,
		Message: fmt.Sprintf("%d students, %d subjects, %d grades, %d attendance records",
			summary.Students, summary.Subjects, summary.Grades, summary.Attendance),
		Uptime: time.Since(summary.LoadedAt).Round(time.Second).String(),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: StatusReady, Message: "WebSocket notifications disabled"}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}
