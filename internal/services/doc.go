// Package services implements the business logic layer of Combine Pulse. It
// sits between the transports (HTTP, WebSocket, CLI) and the dataset, so the
// rules about which dataset is current and how views are cached live in one
// place.
//
// # Dashboard service
//
// DashboardService owns the active dataset. The dataset is immutable and held
// behind an atomic pointer: readers never lock, and Reload builds a complete
// replacement before swapping it in. A failed reload leaves the previous
// dataset in place.
//
//	svc := services.NewDashboardService(source, viewCache, metrics, policy, logger)
//	if _, err := svc.Reload(ctx); err != nil {
//	    return err
//	}
//	view, err := svc.Render(ctx, dashboard.State{Position: domain.PositionWR, Test: domain.TestForty, Round: 1})
//
// Rendered views are cached under a key that includes the dataset
// fingerprint, and identical concurrent renders share one computation.
//
// # Health service
//
// HealthService answers liveness, readiness and version probes. Readiness
// fails until a dataset has been loaded and while any registered dependency
// (database, view cache) does not answer its ping.
//
// # Errors
//
// Services return domain errors unchanged (EmptyAggregateError,
// InvalidSelectionError, MissingColumnError, dataset.ErrNotLoaded) so the
// HTTP layer can map them to problem responses.
package services
