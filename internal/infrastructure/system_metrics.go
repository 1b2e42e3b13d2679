package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of process resource usage
type RuntimeStats struct {
	Goroutines    int64
	HeapAllocated int64
	Uptime        time.Duration
}

// ReadRuntimeStats samples the Go runtime
func ReadRuntimeStats(startTime time.Time) RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		Goroutines:    int64(runtime.NumGoroutine()),
		HeapAllocated: int64(m.HeapAlloc),
		Uptime:        time.Since(startTime),
	}
}

// RegisterRuntimeMetrics registers observable gauges sampled on each scrape
func RegisterRuntimeMetrics(meter metric.Meter, startTime time.Time) (metric.Registration, error) {
	goroutines, err := meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heap, err := meter.Int64ObservableGauge(
		"system_memory_heap_bytes",
		metric.WithDescription("Heap memory allocated in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64ObservableGauge(
		"system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := ReadRuntimeStats(startTime)
		o.ObserveInt64(goroutines, stats.Goroutines)
		o.ObserveInt64(heap, stats.HeapAllocated)
		o.ObserveFloat64(uptime, stats.Uptime.Seconds())
		return nil
	}, goroutines, heap, uptime)
}
