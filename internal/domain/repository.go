package domain

import (
	"context"
	"time"
)

// IssueRepository defines the interface for issue persistence.
// The domain defines the interface, storage packages implement it.
type IssueRepository interface {
	// Create assigns the ID and stores the issue
	Create(ctx context.Context, issue *Issue) error

	// Get returns ErrIssueNotFound for unknown IDs
	Get(ctx context.Context, id int64) (*Issue, error)

	// List returns issues matching the filter, newest first
	List(ctx context.Context, filter IssueFilter) ([]Issue, error)

	// ListNearby returns issues within radiusMeters of the point
	ListNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]Issue, error)

	// Snapshot returns every stored issue, oldest first
	Snapshot(ctx context.Context) ([]Issue, error)

	// UpdateStatus applies the triage change and records history
	UpdateStatus(ctx context.Context, id int64, update StatusUpdate, at time.Time) (*Issue, error)

	// UpdateInsights replaces the stored AI insights and department
	UpdateInsights(ctx context.Context, id int64, insights Insights, department string) (*Issue, error)

	// History returns the status changes of an issue, oldest first
	History(ctx context.Context, id int64) ([]StatusChange, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
