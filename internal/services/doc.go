// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the analytics and data processing
// packages so that handlers stay thin and the rules stay testable.
//
// # Application state
//
// DashboardService owns the loaded dataset. The dataset is an immutable
// snapshot held behind an atomic pointer: every request works on the
// snapshot it read, and a reload swaps in a freshly decoded dataset.
// Concurrent reloads are collapsed into one.
//
//	ds, err := services.LoadDataset(paths, logger)
//	if err != nil {
//	    return err
//	}
//	svc := services.NewDashboardService(paths, cfg.Dashboard, logger,
//	    services.WithMetrics(metrics),
//	    services.WithBroadcaster(hub))
//	svc.SetDataset(ds)
//
//	dash, err := svc.Dashboard(ctx, domain.Selection{Class: "2025B", Subject: "Português"})
//
// # Available Services
//
//   - DashboardService: dataset lifecycle, filtered views, charts and export
//   - HealthService: health, readiness, liveness and version information
//
// # Error Handling
//
// Services return errors from the internal/errors package that the HTTP
// layer turns into problem documents:
//
//   - VALIDATION for an unknown class or subject
//   - MISSING_INPUT and SCHEMA when the cleaned files cannot be loaded
//   - DATASET_UNAVAILABLE when no dataset has been loaded yet
package services
