package domain

import "time"

// Classification is the category decision made once at issue creation
type Classification struct {
	Category    Category             `json:"category"`
	Subcategory string               `json:"subcategory,omitempty"`
	Confidence  float64              `json:"confidence"`
	Scores      map[Category]float64 `json:"scores,omitempty"`
	Model       string               `json:"model,omitempty"`
}

// PriorityLevel is the discretised urgency tier
type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "critical"
	PriorityHigh     PriorityLevel = "high"
	PriorityMedium   PriorityLevel = "medium"
	PriorityLow      PriorityLevel = "low"
)

// Rank orders levels from low (0) to critical (3); unknown levels are -1.
func (l PriorityLevel) Rank() int {
	switch l {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	}
	return -1
}

// PriorityResult is the urgency assessment of an issue
type PriorityResult struct {
	Score                 float64            `json:"priority_score"`
	Level                 PriorityLevel      `json:"priority_level"`
	Urgency               string             `json:"urgency"`
	EstimatedResponseTime string             `json:"estimated_response_time"`
	Factors               map[string]float64 `json:"factors,omitempty"`
	Explanation           map[string]string  `json:"explanation,omitempty"`
	Model                 string             `json:"model,omitempty"`
}

// SimilarIssue is one candidate linked by the duplicate detector
type SimilarIssue struct {
	IssueID         int64     `json:"issue_id"`
	SimilarityScore float64   `json:"similarity_score"`
	DistanceMeters  float64   `json:"distance_meters"`
	TextSimilarity  float64   `json:"text_similarity"`
	ReportedAt      time.Time `json:"reported_at"`
}

// DuplicateCheckResult links a new issue to likely duplicates
type DuplicateCheckResult struct {
	IsDuplicate    bool           `json:"is_duplicate"`
	SimilarIssues  []SimilarIssue `json:"similar_issues"`
	MaxSimilarity  float64        `json:"max_similarity"`
	Recommendation string         `json:"recommendation"`
}

// Deterioration describes how an unattended issue tends to get worse
type Deterioration struct {
	Timeline         string   `json:"timeline"`
	SeverityIncrease string   `json:"severity_increase"`
	RiskFactors      []string `json:"risk_factors"`
	Warning          string   `json:"warning"`
}

// PastResolutions summarises resolved issues of the same category nearby
type PastResolutions struct {
	Resolved           int      `json:"similar_issues_resolved"`
	AvgResolutionHours *float64 `json:"average_resolution_hours,omitempty"`
}

// Solution is the suggested remedy for an issue
type Solution struct {
	Summary            string          `json:"solution"`
	Severity           string          `json:"severity,omitempty"`
	EstimatedCost      string          `json:"estimated_cost"`
	TimeRequired       string          `json:"time_required"`
	Materials          []string        `json:"materials"`
	Steps              []string        `json:"steps"`
	PreventiveMeasures []string        `json:"preventive_measures"`
	Deterioration      Deterioration   `json:"deterioration_prediction"`
	PastResolutions    PastResolutions `json:"similar_past_resolutions"`
}

// Insights is the AI block persisted with every issue
type Insights struct {
	Classification Classification       `json:"classification"`
	Priority       PriorityResult       `json:"priority"`
	Duplicate      DuplicateCheckResult `json:"duplicate_check"`
	Solution       Solution             `json:"solution"`
}
