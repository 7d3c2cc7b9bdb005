// Package memory is an in-process issue store used when no database is
// configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
)

// MemoryRepository implements domain.IssueRepository in memory
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	nextHist int64
	issues   map[int64]domain.Issue
	history  map[int64][]domain.StatusChange
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		issues:  make(map[int64]domain.Issue),
		history: make(map[int64][]domain.StatusChange),
	}
}

var _ domain.IssueRepository = (*MemoryRepository)(nil)

// Create assigns the next ID and stores a copy of the issue
func (r *MemoryRepository) Create(ctx context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	issue.ID = r.nextID
	r.issues[issue.ID] = clone(*issue)
	return nil
}

// Get returns a copy of the issue
func (r *MemoryRepository) Get(ctx context.Context, id int64) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	is, ok := r.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	out := clone(is)
	return &out, nil
}

// List returns matching issues, newest first
func (r *MemoryRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Issue, 0)
	for _, is := range r.issues {
		if filter.Status != "" && is.Status != filter.Status {
			continue
		}
		if filter.Category != "" && is.Category() != filter.Category {
			continue
		}
		if filter.PriorityLevel != "" && is.Insights.Priority.Level != filter.PriorityLevel {
			continue
		}
		out = append(out, clone(is))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListNearby returns issues within radiusMeters, ordered by ID
func (r *MemoryRepository) ListNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	center := geo.Point{Latitude: lat, Longitude: lon}
	box := geo.BoundingBox(center, radiusMeters)

	out := make([]domain.Issue, 0)
	for _, is := range r.issues {
		p := is.Location.Point()
		if !box.Contains(p) || geo.Distance(center, p) > radiusMeters {
			continue
		}
		out = append(out, clone(is))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Snapshot returns every issue, oldest first
func (r *MemoryRepository) Snapshot(ctx context.Context) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Issue, 0, len(r.issues))
	for _, is := range r.issues {
		out = append(out, clone(is))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateStatus applies the update and records history atomically
func (r *MemoryRepository) UpdateStatus(ctx context.Context, id int64, update domain.StatusUpdate, at time.Time) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}

	next, change := domain.ApplyStatusUpdate(current, update, at)
	r.issues[id] = next
	if change != nil {
		r.nextHist++
		change.ID = r.nextHist
		r.history[id] = append(r.history[id], *change)
	}

	out := clone(next)
	return &out, nil
}

// UpdateInsights replaces the stored insights and department
func (r *MemoryRepository) UpdateInsights(ctx context.Context, id int64, insights domain.Insights, department string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	is, ok := r.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	is.Insights = insights
	is.Department = department
	r.issues[id] = is

	out := clone(is)
	return &out, nil
}

// History returns the status changes of an issue, oldest first
func (r *MemoryRepository) History(ctx context.Context, id int64) ([]domain.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.issues[id]; !ok {
		return nil, domain.ErrIssueNotFound
	}
	out := make([]domain.StatusChange, len(r.history[id]))
	copy(out, r.history[id])
	return out, nil
}

// Health always returns nil in memory mode
func (r *MemoryRepository) Health(ctx context.Context) error {
	return nil
}

// clone copies the slices of an issue so callers cannot alias stored state.
// Insight maps are replaced wholesale on update and never mutated in place.
func clone(is domain.Issue) domain.Issue {
	if is.Images != nil {
		is.Images = append([]float64(nil), is.Images...)
	}
	if s := is.Insights.Duplicate.SimilarIssues; s != nil {
		is.Insights.Duplicate.SimilarIssues = append([]domain.SimilarIssue(nil), s...)
	}
	return is
}
