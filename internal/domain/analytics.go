package domain

import (
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
)

// RiskLevel buckets a hotspot's density
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Hotspot is a grid cell whose issue density is at or above the hotspot
// percentile of all non-empty cells
type Hotspot struct {
	CellID            string           `json:"cell_id"`
	Center            geo.Point        `json:"center"`
	Bounds            geo.Bounds       `json:"bounds"`
	IssueCount        int              `json:"issue_count"`
	DominantCategory  Category         `json:"dominant_category"`
	RiskLevel         RiskLevel        `json:"risk_level"`
	CategoryBreakdown map[Category]int `json:"category_breakdown"`
}

// HotspotReport is the self-contained result of a hotspot analysis
type HotspotReport struct {
	Hotspots        []Hotspot   `json:"hotspots"`
	TotalHotspots   int         `json:"total_hotspots"`
	HighRiskAreas   int         `json:"high_risk_areas"`
	CellsAnalyzed   int         `json:"cells_analyzed"`
	Threshold       float64     `json:"threshold"`
	CellSizeDegrees float64     `json:"cell_size_degrees"`
	Extent          *geo.Bounds `json:"extent,omitempty"`
}

// BucketCount is the number of issues reported in one time bucket
type BucketCount struct {
	Start      time.Time        `json:"start"`
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category,omitempty"`
}

// CategoryTrend is the per-category projection and growth
type CategoryTrend struct {
	Category    Category `json:"category"`
	Expected    float64  `json:"expected_issue_count"`
	RecentCount int      `json:"recent_count"`
	GrowthRate  float64  `json:"growth_rate"`
	HighRisk    bool     `json:"high_risk"`
}

// TrendPrediction projects the next bucket's load from history
type TrendPrediction struct {
	TimeBucket         time.Time       `json:"time_bucket"`
	Granularity        string          `json:"granularity"`
	ExpectedIssueCount float64         `json:"expected_issue_count"`
	HighRiskCategories []Category      `json:"high_risk_categories"`
	Categories         []CategoryTrend `json:"categories,omitempty"`
	History            []BucketCount   `json:"history"`
	WindowUsed         int             `json:"window_used"`
	Method             string          `json:"method"`
}

// RecentIssue is the short form used by dashboard summaries
type RecentIssue struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Category      Category      `json:"category"`
	PriorityLevel PriorityLevel `json:"priority_level"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Summary is the dashboard counter block
type Summary struct {
	TotalIssues    int                   `json:"total_issues"`
	OpenIssues     int                   `json:"open_issues"`
	ByStatus       map[Status]int        `json:"by_status"`
	ByCategory     map[Category]int      `json:"by_category"`
	ByPriority     map[PriorityLevel]int `json:"by_priority"`
	ByDepartment   map[string]int        `json:"by_department"`
	DuplicateCount int                   `json:"duplicate_count"`
	ResolutionRate float64               `json:"resolution_rate"`
	AvgResolution  *float64              `json:"avg_resolution_hours,omitempty"`
	RecentIssues   []RecentIssue         `json:"recent_issues"`
	Insights       []string              `json:"insights"`
}

// DashboardData aggregates all analytics views
type DashboardData struct {
	Summary   Summary         `json:"summary"`
	Hotspots  HotspotReport   `json:"hotspots"`
	Trends    TrendPrediction `json:"trends"`
	Timestamp time.Time       `json:"timestamp"`
}
