package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"combinepulse/internal/analytics"
	"combinepulse/internal/cache"
	"combinepulse/internal/dashboard"
	"combinepulse/internal/dataset"
	"combinepulse/internal/infrastructure"
	"combinepulse/pkg/contracts/domain"
)

// Render outcomes reported on the dashboard_renders_total metric
const (
	OutcomeOK               = "ok"
	OutcomeCacheHit         = "cache_hit"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeInvalidSelection = "invalid_selection"
	OutcomeError            = "error"
)

// ReloadListener is called after a new dataset has been swapped in
type ReloadListener func(ctx context.Context, info dataset.Info)

// DashboardService serves dashboard computations over the current dataset
type DashboardService struct {
	source  dataset.Source
	current atomic.Pointer[dataset.Dataset]
	cache   cache.ViewCache
	metrics *infrastructure.BusinessMetrics
	policy  dashboard.Policy
	tracer  trace.Tracer
	logger  *slog.Logger

	group    singleflight.Group
	reloadMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []ReloadListener
}

// NewDashboardService creates a dashboard service. Nothing is served until
// the first successful Reload. A nil cache disables caching and nil metrics
// record nothing.
func NewDashboardService(source dataset.Source, viewCache cache.ViewCache, metrics *infrastructure.BusinessMetrics, policy dashboard.Policy, logger *slog.Logger) *DashboardService {
	if viewCache == nil {
		viewCache = cache.Noop{}
	}
	if metrics == nil {
		metrics = infrastructure.NewNoopBusinessMetrics()
	}
	if policy.TopPicks <= 0 {
		policy.TopPicks = analytics.DefaultTopPicks
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DashboardService{
		source:  source,
		cache:   viewCache,
		metrics: metrics,
		policy:  policy,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  infrastructure.WithComponent(logger, "dashboard_service"),
	}
}

// OnReload registers a listener for successful reloads
func (s *DashboardService) OnReload(fn ReloadListener) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

// Reload reads the source again and swaps in the new dataset. On failure the
// previous dataset keeps being served.
func (s *DashboardService) Reload(ctx context.Context) (dataset.Info, error) {
	if !s.reloadMu.TryLock() {
		return dataset.Info{}, ErrReloadInProgress
	}
	defer s.reloadMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "dataset.Reload",
		trace.WithAttributes(attribute.String("source", s.source.String())))
	defer span.End()

	ds, err := dataset.Load(ctx, s.source, s.logger)
	if err != nil {
		s.metrics.DatasetReloads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "failed")))
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "dataset reload failed",
			slog.String("error", err.Error()),
			slog.Bool("serving_previous", s.current.Load() != nil))
		return dataset.Info{}, err
	}

	previous := s.current.Swap(ds)
	info := ds.Info()

	s.metrics.DatasetReloads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	s.metrics.DatasetRecords.Record(ctx, int64(info.Drafted))

	if previous != nil {
		purged, err := s.cache.Purge(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to purge view cache", slog.String("error", err.Error()))
		} else if purged > 0 {
			s.logger.InfoContext(ctx, "view cache purged", slog.Int64("views", purged))
		}
	}

	s.listenersMu.RLock()
	listeners := append([]ReloadListener(nil), s.listeners...)
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, info)
	}

	return info, nil
}

// Dataset returns the dataset currently served
func (s *DashboardService) Dataset() (*dataset.Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, dataset.ErrNotLoaded
	}
	return ds, nil
}

// Info describes the dataset currently served
func (s *DashboardService) Info() (dataset.Info, error) {
	ds, err := s.Dataset()
	if err != nil {
		return dataset.Info{}, err
	}
	return ds.Info(), nil
}

// Policy returns the dashboard policy in effect
func (s *DashboardService) Policy() dashboard.Policy {
	return s.policy
}

// Options lists the valid selections with the tests of selected
func (s *DashboardService) Options(selected domain.Position) dashboard.Options {
	return dashboard.RenderOptions(selected)
}

// Render computes the full dashboard view for a state. Views are cached per
// dataset and identical concurrent renders share one computation.
func (s *DashboardService) Render(ctx context.Context, state dashboard.State) (*dashboard.View, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "dashboard.Render", trace.WithAttributes(
		attribute.String("position", string(state.Position)),
		attribute.String("test", string(state.Test)),
		attribute.Int("round", state.Round),
	))
	defer span.End()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	if err := state.Validate(); err != nil {
		s.observe(ctx, state.Position, start, err)
		return nil, err
	}

	key := cache.ViewKey(ds.Fingerprint(), state, s.policy)
	view, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "view cache read failed", slog.String("error", err.Error()))
	}
	if ok {
		s.metrics.CacheHits.Add(ctx, 1)
		s.metrics.RecordRender(ctx, string(state.Position), OutcomeCacheHit, time.Since(start))
		return view, nil
	}
	s.metrics.CacheMisses.Add(ctx, 1)

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		view, err := dashboard.Render(ds, state, s.policy)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, view); err != nil {
			s.logger.WarnContext(ctx, "view cache write failed", slog.String("error", err.Error()))
		}
		return view, nil
	})
	span.SetAttributes(attribute.Bool("shared", shared))

	s.observe(ctx, state.Position, start, err)
	if err != nil {
		return nil, err
	}
	return v.(*dashboard.View), nil
}

// Players returns the rows of a position, optionally narrowed to one round
func (s *DashboardService) Players(ctx context.Context, pos domain.Position, round int) (dashboard.TableView, error) {
	table, err := s.Table(ctx, pos, round)
	if err != nil {
		return dashboard.TableView{}, err
	}
	return dashboard.RenderTable(table), nil
}

// Table returns the position table, filtered to round when round is not 0
func (s *DashboardService) Table(ctx context.Context, pos domain.Position, round int) (*analytics.Table, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	table, err := ds.Table(pos)
	if err != nil {
		s.observe(ctx, pos, time.Time{}, err)
		return nil, err
	}
	if round == 0 {
		return table, nil
	}
	if err := domain.ValidateRound(round); err != nil {
		s.observe(ctx, pos, time.Time{}, err)
		return nil, err
	}
	return table.FilterRound(round), nil
}

// Summary aggregates a test over a position, or over one round when round is
// not 0
func (s *DashboardService) Summary(ctx context.Context, pos domain.Position, test domain.Test, round int) (dashboard.SummaryView, error) {
	table, err := s.Table(ctx, pos, round)
	if err != nil {
		return dashboard.SummaryView{}, err
	}
	summary, err := dashboard.RenderSummary(table, test)
	if err != nil {
		s.observe(ctx, pos, time.Time{}, err)
		return dashboard.SummaryView{}, err
	}
	return summary, nil
}

// Percentile ranks a candidate value within a round
func (s *DashboardService) Percentile(ctx context.Context, state dashboard.State) (*dashboard.PercentileView, error) {
	s.metrics.PercentileRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("position", string(state.Position))))

	if err := state.Validate(); err != nil {
		s.observe(ctx, state.Position, time.Time{}, err)
		return nil, err
	}
	table, err := s.Table(ctx, state.Position, 0)
	if err != nil {
		return nil, err
	}
	p, err := dashboard.RenderPercentile(table, state)
	if err != nil {
		s.observe(ctx, state.Position, time.Time{}, err)
		return nil, err
	}
	return p, nil
}

// Recommend averages the designated tests of the earliest complete picks of
// a round. A limit of 0 uses the policy.
func (s *DashboardService) Recommend(ctx context.Context, pos domain.Position, round, limit int) (dashboard.RecommendationView, error) {
	if limit <= 0 {
		limit = s.policy.TopPicks
	}
	table, err := s.Table(ctx, pos, 0)
	if err != nil {
		return dashboard.RecommendationView{}, err
	}
	rec, err := dashboard.RenderRecommendations(table, round, limit)
	if err != nil {
		s.observe(ctx, pos, time.Time{}, err)
		return dashboard.RecommendationView{}, err
	}
	return rec, nil
}

// observe classifies a result for the metrics. A zero start skips the render
// counters.
func (s *DashboardService) observe(ctx context.Context, pos domain.Position, start time.Time, err error) {
	outcome := OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyAggregate):
		outcome = OutcomeInsufficientData
		s.metrics.InsufficientData.Add(ctx, 1, metric.WithAttributes(attribute.String("position", string(pos))))
	case errors.Is(err, domain.ErrInvalidSelection):
		outcome = OutcomeInvalidSelection
		s.metrics.InvalidSelections.Add(ctx, 1)
	default:
		outcome = OutcomeError
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "dashboard computation failed",
			slog.String("position", string(pos)),
			slog.String("error", err.Error()))
	}

	if !start.IsZero() {
		s.metrics.RecordRender(ctx, string(pos), outcome, time.Since(start))
	}
}

func (s *DashboardService) String() string {
	return fmt.Sprintf("dashboard service (source %s)", s.source)
}
