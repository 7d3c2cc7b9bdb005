package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
)

// Event types published on the issues topic
const (
	EventIssueCreated       = "issue.created"
	EventIssueStatusChanged = "issue.status_changed"
)

// Event is the envelope written to Kafka as JSON
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	IssueID    int64       `json:"issue_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// IssueCreatedPayload summarises a newly stored issue
type IssueCreatedPayload struct {
	Title         string               `json:"title"`
	Category      domain.Category      `json:"category"`
	PriorityLevel domain.PriorityLevel `json:"priority_level"`
	PriorityScore float64              `json:"priority_score"`
	IsDuplicate   bool                 `json:"is_duplicate"`
	Department    string               `json:"department"`
	Location      domain.Location      `json:"location"`
}

// NewIssueCreated builds the event for a stored issue
func NewIssueCreated(issue *domain.Issue) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       EventIssueCreated,
		IssueID:    issue.ID,
		OccurredAt: issue.CreatedAt.UTC(),
		Payload: IssueCreatedPayload{
			Title:         issue.Title,
			Category:      issue.Category(),
			PriorityLevel: issue.Insights.Priority.Level,
			PriorityScore: issue.Insights.Priority.Score,
			IsDuplicate:   issue.Insights.Duplicate.IsDuplicate,
			Department:    issue.Department,
			Location:      issue.Location,
		},
	}
}

// NewStatusChanged builds the event for a recorded status transition
func NewStatusChanged(change domain.StatusChange) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       EventIssueStatusChanged,
		IssueID:    change.IssueID,
		OccurredAt: change.Timestamp.UTC(),
		Payload:    change,
	}
}
