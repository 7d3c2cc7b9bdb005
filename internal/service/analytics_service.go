package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/trend"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

const recentIssuesLimit = 10

// criticalShareAlert is the share of critical issues above which the summary
// calls for immediate attention.
const criticalShareAlert = 0.2

// AnalyticsService serves the read-only views over the issue store
type AnalyticsService struct {
	repo   IssueRepository
	engine *intelligence.Engine
	opts   options
	log    logging.Logger

	flight singleflight.Group
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo IssueRepository, engine *intelligence.Engine, opts ...Option) *AnalyticsService {
	o := buildOptions(opts)
	return &AnalyticsService{
		repo:   repo,
		engine: engine,
		opts:   o,
		log:    o.logger.Named("analytics"),
	}
}

// Hotspots returns the hotspot report for the whole store
func (s *AnalyticsService) Hotspots(ctx context.Context) (domain.HotspotReport, error) {
	var out domain.HotspotReport
	err := s.cached(ctx, "hotspots", &out, func(issues []domain.Issue) interface{} {
		return s.engine.Hotspots(issues)
	})
	return out, err
}

// Trends forecasts the current week
func (s *AnalyticsService) Trends(ctx context.Context) (domain.TrendPrediction, error) {
	asOf := s.opts.now().UTC()
	key := "trends:" + trend.WeekStart(asOf).Format("2006-01-02")

	var out domain.TrendPrediction
	err := s.cached(ctx, key, &out, func(issues []domain.Issue) interface{} {
		return s.engine.Trends(issues, asOf)
	})
	return out, err
}

// Summary returns the dashboard counters
func (s *AnalyticsService) Summary(ctx context.Context) (domain.Summary, error) {
	var out domain.Summary
	err := s.cached(ctx, "summary", &out, func(issues []domain.Issue) interface{} {
		return Summarize(issues)
	})
	return out, err
}

// Dashboard computes summary, hotspots and trends concurrently
func (s *AnalyticsService) Dashboard(ctx context.Context) (domain.DashboardData, error) {
	var data domain.DashboardData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sum, err := s.Summary(gctx)
		data.Summary = sum
		return err
	})
	g.Go(func() error {
		hs, err := s.Hotspots(gctx)
		data.Hotspots = hs
		return err
	})
	g.Go(func() error {
		tr, err := s.Trends(gctx)
		data.Trends = tr
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.DashboardData{}, err
	}
	data.Timestamp = s.opts.now().UTC()
	return data, nil
}

// cached fills dest from the cache, or from compute over a fresh snapshot.
// dest must be a pointer to the type compute returns. The generation is read
// before the snapshot, so a result that raced with a write is stored under a
// generation the write has already retired.
func (s *AnalyticsService) cached(ctx context.Context, key string, dest interface{}, compute func([]domain.Issue) interface{}) error {
	gen, useCache := int64(0), s.opts.cache != nil
	if useCache {
		var err error
		if gen, err = s.opts.cache.Generation(ctx); err != nil {
			s.log.Warn("analytics cache unavailable", logging.String("key", key), logging.Err(err))
			useCache = false
		}
	}

	if useCache {
		hit, err := s.opts.cache.Get(ctx, gen, key, dest)
		if err != nil {
			s.log.Warn("analytics cache read failed", logging.String("key", key), logging.Err(err))
		}
		s.opts.recorder.CacheLookup(hit)
		if hit {
			return nil
		}
	}

	issues, err := s.snapshot(ctx, gen)
	if err != nil {
		return err
	}

	start := time.Now()
	result := compute(issues)
	s.opts.recorder.ObserveAnalysis(analysisPass(key), time.Since(start))

	if err := assign(dest, result); err != nil {
		return err
	}

	if useCache {
		if err := s.opts.cache.Set(ctx, gen, key, result); err != nil {
			s.log.Warn("analytics cache write failed", logging.String("key", key), logging.Err(err))
		}
	}
	return nil
}

// snapshot coalesces concurrent reads of the full store within one cache
// generation
func (s *AnalyticsService) snapshot(ctx context.Context, gen int64) ([]domain.Issue, error) {
	v, err, _ := s.flight.Do("snapshot:"+strconv.FormatInt(gen, 10), func() (interface{}, error) {
		return s.repo.Snapshot(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to load issue snapshot: %w", err)
	}
	return v.([]domain.Issue), nil
}

func analysisPass(key string) string {
	pass, _, _ := strings.Cut(key, ":")
	return pass
}

func assign(dest, value interface{}) error {
	switch d := dest.(type) {
	case *domain.HotspotReport:
		*d = value.(domain.HotspotReport)
	case *domain.TrendPrediction:
		*d = value.(domain.TrendPrediction)
	case *domain.Summary:
		*d = value.(domain.Summary)
	default:
		return fmt.Errorf("service: unsupported analytics result %T", dest)
	}
	return nil
}

// Summarize counts a snapshot for the dashboard
func Summarize(issues []domain.Issue) domain.Summary {
	sum := domain.Summary{
		TotalIssues:  len(issues),
		ByStatus:     make(map[domain.Status]int),
		ByCategory:   make(map[domain.Category]int),
		ByPriority:   make(map[domain.PriorityLevel]int),
		ByDepartment: make(map[string]int),
		RecentIssues: make([]domain.RecentIssue, 0, recentIssuesLimit),
	}

	var resolutionHours []float64
	for _, is := range issues {
		sum.ByStatus[is.Status]++
		if is.Status.Open() {
			sum.OpenIssues++
		}
		if cat := is.Category(); cat != "" {
			sum.ByCategory[cat]++
		}
		if lvl := is.Insights.Priority.Level; lvl != "" {
			sum.ByPriority[lvl]++
		}
		if is.Department != "" {
			sum.ByDepartment[is.Department]++
		}
		if is.Insights.Duplicate.IsDuplicate {
			sum.DuplicateCount++
		}
		if is.Status == domain.StatusResolved && is.ResolvedAt != nil {
			resolutionHours = append(resolutionHours, is.ResolvedAt.Sub(is.CreatedAt).Hours())
		}
	}

	if sum.TotalIssues > 0 {
		sum.ResolutionRate = utils.RoundTo(float64(sum.ByStatus[domain.StatusResolved])/float64(sum.TotalIssues), 4)
	}
	if len(resolutionHours) > 0 {
		avg := utils.RoundTo(utils.Mean(resolutionHours), 2)
		sum.AvgResolution = &avg
	}

	recent := make([]domain.Issue, len(issues))
	copy(recent, issues)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		}
		return recent[i].ID > recent[j].ID
	})
	if len(recent) > recentIssuesLimit {
		recent = recent[:recentIssuesLimit]
	}
	for _, is := range recent {
		sum.RecentIssues = append(sum.RecentIssues, domain.RecentIssue{
			ID:            is.ID,
			Title:         is.Title,
			Category:      is.Category(),
			PriorityLevel: is.Insights.Priority.Level,
			Status:        is.Status,
			CreatedAt:     is.CreatedAt,
		})
	}
	sum.Insights = summaryInsights(sum)
	return sum
}

// summaryInsights phrases the headline numbers of a summary. Ties for the
// most reported category go to the first in identifier order.
func summaryInsights(sum domain.Summary) []string {
	out := []string{}
	if sum.TotalIssues == 0 {
		return out
	}

	var top domain.Category
	for _, cat := range domain.Categories() {
		if n := sum.ByCategory[cat]; n > 0 && n > sum.ByCategory[top] {
			top = cat
		}
	}
	if top != "" {
		out = append(out, fmt.Sprintf("Most reported issue type: %s", top.DisplayName()))
	}

	out = append(out, fmt.Sprintf("Current resolution rate: %.1f%%", sum.ResolutionRate*100))

	if critical := sum.ByPriority[domain.PriorityCritical]; float64(critical) > float64(sum.TotalIssues)*criticalShareAlert {
		out = append(out, fmt.Sprintf("High number of critical issues (%d) requires immediate attention", critical))
	}
	return out
}
