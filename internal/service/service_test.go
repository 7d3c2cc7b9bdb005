package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/messaging/kafka"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/repository/memory"
)

var testNow = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestEngine(t *testing.T) *intelligence.Engine {
	t.Helper()
	e, err := intelligence.New(intelligence.DefaultConfig())
	require.NoError(t, err)
	return e
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// mapCache is an in-process AnalyticsCache with generation semantics.
type mapCache struct {
	mu             sync.Mutex
	gen            int64
	entries        map[int64]map[string][]byte
	gets           int
	invalidated    int
	failReads      bool
	failGeneration bool
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[int64]map[string][]byte)}
}

func (c *mapCache) Generation(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGeneration {
		return 0, errors.New("cache down")
	}
	return c.gen, nil
}

func (c *mapCache) Get(ctx context.Context, gen int64, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failReads {
		return false, errors.New("cache down")
	}
	data, ok := c.entries[gen][key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *mapCache) Set(ctx context.Context, gen int64, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[gen] == nil {
		c.entries[gen] = make(map[string][]byte)
	}
	c.entries[gen][key] = data
	return nil
}

func (c *mapCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries = make(map[int64]map[string][]byte)
	c.invalidated++
	return nil
}

// keys lists the entries visible in the current generation
func (c *mapCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries[c.gen]))
	for k := range c.entries[c.gen] {
		out = append(out, k)
	}
	return out
}

type failingRepo struct {
	*memory.MemoryRepository
}

func (failingRepo) Snapshot(ctx context.Context) ([]domain.Issue, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) ListNearby(ctx context.Context, lat, lon, radius float64) ([]domain.Issue, error) {
	return nil, errors.New("connection refused")
}

func report(title, description string, lat, lon float64) domain.IssueReport {
	return domain.IssueReport{
		Title:       title,
		Description: description,
		Location:    domain.Location{Latitude: lat, Longitude: lon},
		Reporter:    domain.Reporter{Name: "Asha"},
	}
}
