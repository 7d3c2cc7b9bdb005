package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/repository/memory"
)

func seedStore(t *testing.T, repo *memory.MemoryRepository) {
	t.Helper()
	ctx := context.Background()
	add := func(title string, cat domain.Category, lvl domain.PriorityLevel, status domain.Status, lat, lon float64, age time.Duration) {
		is := &domain.Issue{
			Title:       title,
			Description: title,
			Location:    domain.Location{Latitude: lat, Longitude: lon},
			Status:      status,
			Department:  DepartmentFor(cat),
			CreatedAt:   testNow.Add(-age),
		}
		is.Insights.Classification.Category = cat
		is.Insights.Priority.Level = lvl
		if status == domain.StatusResolved {
			resolved := is.CreatedAt.Add(10 * time.Hour)
			is.ResolvedAt = &resolved
		}
		require.NoError(t, repo.Create(ctx, is))
	}

	// Five issues packed into one cell, one each in two others.
	for i := 0; i < 5; i++ {
		add("pothole", domain.CategoryRoadInfrastructure, domain.PriorityHigh, domain.StatusPending, 23.21505, 72.63605, time.Duration(i+1)*24*time.Hour)
	}
	add("streetlight", domain.CategoryElectricity, domain.PriorityMedium, domain.StatusResolved, 23.22505, 72.64505, 9*24*time.Hour)
	add("garbage", domain.CategoryGarbageSanitation, domain.PriorityLow, domain.StatusInProgress, 23.23505, 72.65505, 16*24*time.Hour)
}

func TestSummarize(t *testing.T) {
	repo := memory.NewMemoryRepository()
	seedStore(t, repo)
	issues, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	issues[0].Insights.Duplicate.IsDuplicate = true

	sum := Summarize(issues)
	assert.Equal(t, 7, sum.TotalIssues)
	assert.Equal(t, 6, sum.OpenIssues)
	assert.Equal(t, 5, sum.ByStatus[domain.StatusPending])
	assert.Equal(t, 5, sum.ByCategory[domain.CategoryRoadInfrastructure])
	assert.Equal(t, 5, sum.ByPriority[domain.PriorityHigh])
	assert.Equal(t, 5, sum.ByDepartment["Public Works Department (PWD)"])
	assert.Equal(t, 1, sum.DuplicateCount)
	assert.Equal(t, 0.1429, sum.ResolutionRate)
	require.NotNil(t, sum.AvgResolution)
	assert.Equal(t, 10.0, *sum.AvgResolution)

	require.Len(t, sum.RecentIssues, 7)
	assert.Equal(t, testNow.Add(-24*time.Hour), sum.RecentIssues[0].CreatedAt)
	assert.Equal(t, "garbage", sum.RecentIssues[6].Title)

	assert.Equal(t, []string{
		"Most reported issue type: Road & Infrastructure",
		"Current resolution rate: 14.3%",
	}, sum.Insights)
}

func TestSummarize_CriticalShareInsight(t *testing.T) {
	issue := func(cat domain.Category, lvl domain.PriorityLevel) domain.Issue {
		is := domain.Issue{Status: domain.StatusPending, CreatedAt: testNow}
		is.Insights.Classification.Category = cat
		is.Insights.Priority.Level = lvl
		return is
	}
	issues := []domain.Issue{
		issue(domain.CategoryWaterSupply, domain.PriorityCritical),
		issue(domain.CategoryElectricity, domain.PriorityLow),
		issue(domain.CategoryWaterSupply, domain.PriorityLow),
		issue(domain.CategoryElectricity, domain.PriorityLow),
		issue(domain.CategoryPublicSafety, domain.PriorityLow),
	}

	// One in five is exactly the threshold and does not alert.
	sum := Summarize(issues)
	assert.Equal(t, "Most reported issue type: Electricity", sum.Insights[0])
	assert.Len(t, sum.Insights, 2)

	issues[4].Insights.Priority.Level = domain.PriorityCritical
	sum = Summarize(issues)
	require.Len(t, sum.Insights, 3)
	assert.Equal(t, "High number of critical issues (2) requires immediate attention", sum.Insights[2])
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Zero(t, sum.TotalIssues)
	assert.Zero(t, sum.ResolutionRate)
	assert.Nil(t, sum.AvgResolution)
	assert.NotNil(t, sum.RecentIssues)
	assert.Empty(t, sum.Insights)
	assert.NotNil(t, sum.Insights)
}

func TestAnalyticsService_HotspotsAndTrends(t *testing.T) {
	repo := memory.NewMemoryRepository()
	seedStore(t, repo)
	svc := NewAnalyticsService(repo, newTestEngine(t), WithClock(fixedClock))

	hs, err := svc.Hotspots(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, hs.Hotspots)
	assert.Equal(t, 5, hs.Hotspots[0].IssueCount)
	assert.Equal(t, domain.CategoryRoadInfrastructure, hs.Hotspots[0].DominantCategory)

	tr, err := svc.Trends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), tr.TimeBucket)
	assert.Equal(t, "weighted_moving_average", tr.Method)
	assert.GreaterOrEqual(t, tr.ExpectedIssueCount, 0.0)
}

func TestAnalyticsService_CacheHitAndInvalidate(t *testing.T) {
	repo := memory.NewMemoryRepository()
	seedStore(t, repo)
	cache := newMapCache()
	engine := newTestEngine(t)
	analytics := NewAnalyticsService(repo, engine, WithCache(cache), WithClock(fixedClock))
	issues := NewIssueService(repo, engine, WithCache(cache), WithClock(fixedClock))
	ctx := context.Background()

	first, err := analytics.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, first.TotalIssues)
	assert.Contains(t, cache.keys(), "summary")

	// A write behind the cache's back is not visible until invalidation.
	require.NoError(t, repo.Create(ctx, &domain.Issue{Title: "x", Description: "x", Status: domain.StatusPending, CreatedAt: testNow}))
	cached, err := analytics.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, cached.TotalIssues)

	_, err = issues.Submit(ctx, report("Pothole", "Pothole on the road", 23.2156, 72.6369))
	require.NoError(t, err)
	issues.WaitBackground()

	fresh, err := analytics.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, fresh.TotalIssues)
}

func TestAnalyticsService_CacheFailureFallsBack(t *testing.T) {
	repo := memory.NewMemoryRepository()
	seedStore(t, repo)
	cache := newMapCache()
	cache.failReads = true
	svc := NewAnalyticsService(repo, newTestEngine(t), WithCache(cache), WithClock(fixedClock))

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, sum.TotalIssues)
}

// writeAfterSnapshot runs write once, right after the first snapshot is read.
type writeAfterSnapshot struct {
	*memory.MemoryRepository
	once  sync.Once
	write func()
}

func (r *writeAfterSnapshot) Snapshot(ctx context.Context) ([]domain.Issue, error) {
	issues, err := r.MemoryRepository.Snapshot(ctx)
	r.once.Do(r.write)
	return issues, err
}

func TestAnalyticsService_WriteDuringComputeIsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	engine := newTestEngine(t)
	repo := &writeAfterSnapshot{MemoryRepository: memory.NewMemoryRepository()}
	issues := NewIssueService(repo, engine, WithCache(cache), WithClock(fixedClock))
	analytics := NewAnalyticsService(repo, engine, WithCache(cache), WithClock(fixedClock))
	repo.write = func() {
		_, err := issues.Submit(ctx, report("Streetlight not working", "Dark lane behind the park", 23.2156, 72.6369))
		require.NoError(t, err)
	}

	first, err := analytics.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, first.TotalIssues)
	assert.Empty(t, cache.keys())

	second, err := analytics.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalIssues)
	issues.WaitBackground()
}

func TestAnalyticsService_GenerationFailureBypassesCache(t *testing.T) {
	repo := memory.NewMemoryRepository()
	seedStore(t, repo)
	cache := newMapCache()
	cache.failGeneration = true
	svc := NewAnalyticsService(repo, newTestEngine(t), WithCache(cache), WithClock(fixedClock))

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, sum.TotalIssues)
	assert.Equal(t, 0, cache.gets)
	assert.Empty(t, cache.keys())
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	repo := memory.NewMemoryRepository()
	seedStore(t, repo)
	cache := newMapCache()
	svc := NewAnalyticsService(repo, newTestEngine(t), WithCache(cache), WithClock(fixedClock))

	data, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, data.Summary.TotalIssues)
	assert.NotEmpty(t, data.Hotspots.Hotspots)
	assert.Equal(t, testNow, data.Timestamp)
	assert.ElementsMatch(t, []string{"summary", "hotspots", "trends:2024-03-11"}, cache.keys())
}

func TestAnalyticsService_StoreFailure(t *testing.T) {
	svc := NewAnalyticsService(failingRepo{memory.NewMemoryRepository()}, newTestEngine(t))

	_, err := svc.Dashboard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot")
}

func TestAnalyticsService_EmptyStore(t *testing.T) {
	svc := NewAnalyticsService(memory.NewMemoryRepository(), newTestEngine(t), WithClock(fixedClock))

	data, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, data.Summary.TotalIssues)
	assert.Empty(t, data.Hotspots.Hotspots)
	assert.Zero(t, data.Trends.ExpectedIssueCount)
}
