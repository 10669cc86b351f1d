package http

import (
	"context"

	"combinepulse/internal/analytics"
	"combinepulse/internal/dashboard"
	"combinepulse/internal/dataset"
	"combinepulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	Render(ctx context.Context, state dashboard.State) (*dashboard.View, error)
	Options(selected domain.Position) dashboard.Options
	Players(ctx context.Context, pos domain.Position, round int) (dashboard.TableView, error)
	Table(ctx context.Context, pos domain.Position, round int) (*analytics.Table, error)
	Summary(ctx context.Context, pos domain.Position, test domain.Test, round int) (dashboard.SummaryView, error)
	Percentile(ctx context.Context, state dashboard.State) (*dashboard.PercentileView, error)
	Recommend(ctx context.Context, pos domain.Position, round, limit int) (dashboard.RecommendationView, error)
	Info() (dataset.Info, error)
	Reload(ctx context.Context) (dataset.Info, error)
}
