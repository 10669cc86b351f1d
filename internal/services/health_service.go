package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"combinepulse/internal/dataset"
	"combinepulse/internal/infrastructure"
	"combinepulse/pkg/contracts"
)

const pingTimeout = 2 * time.Second

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// Pinger is a dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatasetInfoProvider reports the dataset currently served
type DatasetInfoProvider interface {
	Info() (dataset.Info, error)
}

// HealthService provides health check functionality
type HealthService struct {
	datasets  DatasetInfoProvider
	startTime time.Time
	logger    *slog.Logger

	mu     sync.RWMutex
	checks map[string]Pinger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth     `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(datasets DatasetInfoProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		datasets:  datasets,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
		checks:    make(map[string]Pinger),
	}
}

// AddCheck registers a dependency that readiness pings
func (hs *HealthService) AddCheck(name string, p Pinger) {
	hs.mu.Lock()
	hs.checks[name] = p
	hs.mu.Unlock()
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports whether a dataset is served and every registered
// dependency answers
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Services:  make(map[string]ServiceHealth),
	}

	status.Services["dataset"] = hs.checkDataset()

	hs.mu.RLock()
	names := make([]string, 0, len(hs.checks))
	for name := range hs.checks {
		names = append(names, name)
	}
	hs.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		hs.mu.RLock()
		p := hs.checks[name]
		hs.mu.RUnlock()
		status.Services[name] = hs.ping(ctx, name, p)
	}

	for _, sh := range status.Services {
		if sh.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status with runtime counters
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.CollectRuntimeStats(hs.startTime)
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Runtime:   &stats,
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) checkDataset() ServiceHealth {
	if hs.datasets == nil {
		return ServiceHealth{Status: StatusNotReady, Message: dataset.ErrNotLoaded.Error()}
	}
	info, err := hs.datasets.Info()
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}
	fp := info.Fingerprint
	if len(fp) > 12 {
		fp = fp[:12]
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d drafted players from %s (%s)", info.Drafted, info.Source, fp),
	}
}

func (hs *HealthService) ping(ctx context.Context, name string, p Pinger) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)
	if err != nil {
		hs.logger.WarnContext(ctx, "dependency not ready",
			slog.String("dependency", name),
			slog.String("error", err.Error()))
		return ServiceHealth{Status: StatusNotReady, Message: err.Error(), Latency: latency.String()}
	}
	return ServiceHealth{Status: StatusReady, Latency: latency.String()}
}
