// Package service holds the application use cases: issue intake and triage,
// and the analytics views built over the issue store.
package service

import (
	"context"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/messaging/kafka"
)

// IssueRepository is re-exported from domain for convenience
type IssueRepository = domain.IssueRepository

// Publisher sends issue lifecycle events
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// AnalyticsCache stores computed analytics until the next store write.
// Invalidate must advance Generation, and entries are only visible to
// readers of the generation they were stored under.
type AnalyticsCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, gen int64, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// Recorder receives service level measurements
type Recorder interface {
	IssueSubmitted(category, priority string, duplicate bool)
	StatusChanged(status string)
	CacheLookup(hit bool)
	EventPublished(eventType string, err error)
	ObserveAnalysis(pass string, d time.Duration)
}

type options struct {
	logger    logging.Logger
	publisher Publisher
	cache     AnalyticsCache
	recorder  Recorder
	now       func() time.Time
}

// Option configures IssueService and AnalyticsService
type Option func(*options)

// WithLogger sets the logger; the default discards output
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPublisher sets the event publisher; the default drops events
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithCache enables the analytics cache
func WithCache(c AnalyticsCache) Option {
	return func(o *options) { o.cache = c }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:    logging.NewNopLogger(),
		publisher: kafka.NopPublisher{},
		recorder:  nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type nopRecorder struct{}

func (nopRecorder) IssueSubmitted(string, string, bool) {}

func (nopRecorder) StatusChanged(string) {}

func (nopRecorder) CacheLookup(bool) {}

func (nopRecorder) EventPublished(string, error) {}

func (nopRecorder) ObserveAnalysis(string, time.Duration) {}
