package services

import (
	"context"
	"sync"

	"combinepulse/internal/dashboard"
	"combinepulse/internal/dataset"
	"combinepulse/pkg/contracts/domain"
)

func wideReceiver(name string, year, round, pick int, forty, shuttle, vertical float64) domain.PlayerRecord {
	return domain.PlayerRecord{
		Name:     name,
		Position: "WR",
		Height:   domain.Float(72),
		Weight:   domain.Float(200),
		Team:     "Team",
		Year:     year,
		Round:    domain.Int(round),
		Pick:     domain.Int(pick),
		Forty:    domain.Float(forty),
		Shuttle:  domain.Float(shuttle),
		Vertical: domain.Float(vertical),
	}
}

func combineRecords() []domain.PlayerRecord {
	return []domain.PlayerRecord{
		wideReceiver("A", 2001, 1, 1, 4.4, 4.0, 40),
		wideReceiver("B", 2005, 1, 2, 4.5, 4.1, 38),
		wideReceiver("C", 2010, 1, 3, 4.6, 4.2, 36),
		wideReceiver("D", 2016, 2, 40, 4.3, 4.3, 34),
		{Name: "QB", Position: "QB", Team: "Team", Year: 2003, Round: domain.Int(3), Pick: domain.Int(70), Forty: domain.Float(4.9)},
		{Name: "Undrafted", Position: "WR", Year: 2017, Forty: domain.Float(4.2)},
	}
}

// stubSource serves canned records. When gate is set, Records blocks until
// the gate is closed and signals started first.
type stubSource struct {
	mu      sync.Mutex
	records []domain.PlayerRecord
	err     error
	calls   int
	started chan struct{}
	gate    chan struct{}
}

func (s *stubSource) Records(ctx context.Context) ([]domain.PlayerRecord, *dataset.LoadReport, error) {
	s.mu.Lock()
	s.calls++
	records, err, gate, started := s.records, s.err, s.gate, s.started
	s.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, nil, err
	}
	return records, &dataset.LoadReport{Source: "stub", RowsRead: len(records)}, nil
}

func (s *stubSource) String() string { return "stub" }

func (s *stubSource) set(records []domain.PlayerRecord, err error) {
	s.mu.Lock()
	s.records, s.err = records, err
	s.mu.Unlock()
}

// memoryCache is a ViewCache backed by a map
type memoryCache struct {
	mu    sync.Mutex
	views map[string]*dashboard.View
	gets  int
	sets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{views: make(map[string]*dashboard.View)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*dashboard.View, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.views[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, view *dashboard.View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.views[key] = view
	return nil
}

func (c *memoryCache) Purge(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int64(len(c.views))
	c.views = make(map[string]*dashboard.View)
	return n, nil
}

func (c *memoryCache) Close() error { return nil }

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.views)
}
