package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
)

// scanIssue reads one row selected with issueColumns.
func scanIssue(row pgx.Row) (domain.Issue, error) {
	var (
		is                  domain.Issue
		status              string
		images, insights    []byte
		updatedAt, resolved *time.Time
	)

	err := row.Scan(
		&is.ID, &is.Title, &is.Description, &is.Location.Latitude, &is.Location.Longitude, &is.Location.Address,
		&is.Reporter.Name, &is.Reporter.Contact, &images, &status,
		&is.Department, &is.AssignedTo, &is.AdminNotes, &insights,
		&is.CreatedAt, &updatedAt, &resolved,
	)
	if err != nil {
		return domain.Issue{}, err
	}

	is.Status = domain.Status(status)
	is.UpdatedAt = updatedAt
	is.ResolvedAt = resolved

	if err := decodeIssueJSON(&is, images, insights); err != nil {
		return domain.Issue{}, err
	}
	return is, nil
}

func decodeIssueJSON(is *domain.Issue, images, insights []byte) error {
	if len(images) > 0 {
		if err := json.Unmarshal(images, &is.Images); err != nil {
			return fmt.Errorf("decode image features of issue %d: %w", is.ID, err)
		}
	}
	if len(insights) > 0 {
		if err := json.Unmarshal(insights, &is.Insights); err != nil {
			return fmt.Errorf("decode insights of issue %d: %w", is.ID, err)
		}
	}
	return nil
}

// encodeImages returns nil for SQL NULL when there are no features.
func encodeImages(images []float64) (interface{}, error) {
	if len(images) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to encode image features: %w", err)
	}
	return string(body), nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func withinRadius(center geo.Point, radiusMeters float64, issues []domain.Issue) []domain.Issue {
	out := issues[:0]
	for _, is := range issues {
		if geo.Distance(center, is.Location.Point()) <= radiusMeters {
			out = append(out, is)
		}
	}
	return out
}
