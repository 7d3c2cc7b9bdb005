package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/messaging/kafka"
)

// IssueService runs the intake pipeline and the triage workflow
type IssueService struct {
	repo   IssueRepository
	engine *intelligence.Engine
	opts   options
	log    logging.Logger

	wgBg sync.WaitGroup // tracks event publishing for graceful shutdown
}

// NewIssueService creates a new issue service
func NewIssueService(repo IssueRepository, engine *intelligence.Engine, opts ...Option) *IssueService {
	o := buildOptions(opts)
	return &IssueService{
		repo:   repo,
		engine: engine,
		opts:   o,
		log:    o.logger.Named("issues"),
	}
}

// WaitBackground blocks until all pending event publishes complete.
// Call during graceful shutdown to avoid dropped events.
func (s *IssueService) WaitBackground() {
	s.wgBg.Wait()
}

// Prediction is the pipeline output for a report that is not stored
type Prediction struct {
	Insights   domain.Insights `json:"ai_insights"`
	Department string          `json:"department"`
}

// Submit validates the report, runs the pipeline against nearby stored
// issues and persists the result
func (s *IssueService) Submit(ctx context.Context, report domain.IssueReport) (*domain.Issue, error) {
	if err := report.Validate(); err != nil {
		return nil, err
	}
	now := s.opts.now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.CreatedAt = report.CreatedAt.UTC()

	insights, err := s.assess(ctx, report, now)
	if err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		Title:       report.Title,
		Description: report.Description,
		Location:    report.Location,
		Reporter:    report.Reporter,
		Images:      report.ImageFeatures,
		Status:      domain.StatusPending,
		Department:  DepartmentFor(insights.Classification.Category),
		Insights:    insights,
		CreatedAt:   report.CreatedAt,
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, fmt.Errorf("service: failed to store issue: %w", err)
	}

	s.invalidate(ctx)
	s.opts.recorder.IssueSubmitted(string(issue.Category()), string(insights.Priority.Level), insights.Duplicate.IsDuplicate)
	s.log.Info("issue submitted",
		logging.Int64("issue_id", issue.ID),
		logging.String("category", string(issue.Category())),
		logging.String("priority", string(insights.Priority.Level)),
		logging.Bool("duplicate", insights.Duplicate.IsDuplicate),
	)
	s.publish(kafka.NewIssueCreated(issue))
	return issue, nil
}

// Predict runs the pipeline without storing anything
func (s *IssueService) Predict(ctx context.Context, report domain.IssueReport) (*Prediction, error) {
	if err := report.Validate(); err != nil {
		return nil, err
	}
	now := s.opts.now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}

	insights, err := s.assess(ctx, report, now)
	if err != nil {
		return nil, err
	}
	return &Prediction{
		Insights:   insights,
		Department: DepartmentFor(insights.Classification.Category),
	}, nil
}

func (s *IssueService) assess(ctx context.Context, report domain.IssueReport, now time.Time) (domain.Insights, error) {
	nearby, err := s.repo.ListNearby(ctx, report.Location.Latitude, report.Location.Longitude, s.engine.CandidateRadius())
	if err != nil {
		return domain.Insights{}, fmt.Errorf("service: failed to load nearby issues: %w", err)
	}
	return s.engine.Assess(report, nearby, now), nil
}

// Get returns one issue
func (s *IssueService) Get(ctx context.Context, id int64) (*domain.Issue, error) {
	return s.repo.Get(ctx, id)
}

// List returns issues matching filter, newest first
func (s *IssueService) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Kind: domain.KindInvalidStatus, Value: string(filter.Status)}
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, &domain.ValidationError{Field: "category", Kind: domain.KindInvalidCategoryFilter, Value: string(filter.Category)}
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus applies an administrator's triage change
func (s *IssueService) UpdateStatus(ctx context.Context, id int64, update domain.StatusUpdate) (*domain.Issue, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	at := s.opts.now().UTC()
	updated, err := s.repo.UpdateStatus(ctx, id, update, at)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	if _, change := domain.ApplyStatusUpdate(*before, update, at); change != nil {
		s.opts.recorder.StatusChanged(string(change.NewStatus))
		s.log.Info("issue status changed",
			logging.Int64("issue_id", id),
			logging.String("from", string(change.OldStatus)),
			logging.String("to", string(change.NewStatus)),
		)
		s.publish(kafka.NewStatusChanged(*change))
	}
	return updated, nil
}

// History returns the status changes of an issue, oldest first
func (s *IssueService) History(ctx context.Context, id int64) ([]domain.StatusChange, error) {
	return s.repo.History(ctx, id)
}

// Reclassify reruns the pipeline for a stored issue against the current
// store and replaces its insights and department
func (s *IssueService) Reclassify(ctx context.Context, id int64) (*domain.Issue, error) {
	issue, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	nearby, err := s.repo.ListNearby(ctx, issue.Location.Latitude, issue.Location.Longitude, s.engine.CandidateRadius())
	if err != nil {
		return nil, fmt.Errorf("service: failed to load nearby issues: %w", err)
	}

	insights := s.engine.Reassess(*issue, nearby, s.opts.now().UTC())
	updated, err := s.repo.UpdateInsights(ctx, id, insights, DepartmentFor(insights.Classification.Category))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	if updated.Category() != issue.Category() {
		s.log.Info("issue reclassified",
			logging.Int64("issue_id", id),
			logging.String("from", string(issue.Category())),
			logging.String("to", string(updated.Category())),
		)
	}
	return updated, nil
}

// Models names the active classifier and priority scorers
func (s *IssueService) Models() map[string]string {
	cls, prio := s.engine.Models()
	return map[string]string{"classifier": cls, "priority": prio}
}

// Health checks the store
func (s *IssueService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

func (s *IssueService) invalidate(ctx context.Context) {
	if s.opts.cache == nil {
		return
	}
	if err := s.opts.cache.Invalidate(ctx); err != nil {
		s.log.Warn("failed to invalidate analytics cache", logging.Err(err))
	}
}

func (s *IssueService) publish(event kafka.Event) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.opts.publisher.Publish(ctx, event)
		s.opts.recorder.EventPublished(event.Type, err)
		if err != nil {
			s.log.Error("failed to publish event",
				logging.String("type", event.Type),
				logging.Int64("issue_id", event.IssueID),
				logging.Err(err),
			)
		}
	}()
}
