package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

const issueColumns = `
	id, title, description, latitude, longitude, address,
	reporter_name, reporter_contact, image_features, status,
	department, assigned_to, admin_notes, insights,
	created_at, updated_at, resolved_at`

// PostgresRepository implements domain.IssueRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ domain.IssueRepository = (*PostgresRepository)(nil)

// Create inserts the issue and sets its ID
func (r *PostgresRepository) Create(ctx context.Context, issue *domain.Issue) error {
	insights, err := json.Marshal(issue.Insights)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode insights: %w", err)
	}
	images, err := encodeImages(issue.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO issues (
			title, description, latitude, longitude, address,
			reporter_name, reporter_contact, image_features, status,
			category, priority_level, priority_score, is_duplicate,
			department, assigned_to, admin_notes, insights, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11, $12, $13, $14, $15, $16, $17::jsonb, $18)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		issue.Title, issue.Description, issue.Location.Latitude, issue.Location.Longitude, issue.Location.Address,
		issue.Reporter.Name, issue.Reporter.Contact, images, string(issue.Status),
		string(issue.Category()), string(issue.Insights.Priority.Level), issue.Insights.Priority.Score,
		issue.Insights.Duplicate.IsDuplicate,
		issue.Department, issue.AssignedTo, issue.AdminNotes, string(insights), issue.CreatedAt,
	).Scan(&issue.ID)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert issue: %w", err)
	}

	return nil
}

// Get retrieves one issue by ID
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*domain.Issue, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)
	is, err := scanIssue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get issue %d: %w", id, err)
	}
	return &is, nil
}

// List retrieves issues matching the filter, newest first
func (r *PostgresRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	query := `SELECT ` + issueColumns + `
		FROM issues
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR priority_level = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query,
		string(filter.Status), string(filter.Category), string(filter.PriorityLevel), listLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query issues: %w", err)
	}
	return collectIssues(rows)
}

// ListNearby uses a bounding box to narrow the scan, then keeps issues
// within the exact great-circle radius
func (r *PostgresRepository) ListNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]domain.Issue, error) {
	center := geo.Point{Latitude: lat, Longitude: lon}
	box := geo.BoundingBox(center, radiusMeters)

	query := `SELECT ` + issueColumns + `
		FROM issues
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query nearby issues: %w", err)
	}
	issues, err := collectIssues(rows)
	if err != nil {
		return nil, err
	}

	return withinRadius(center, radiusMeters, issues), nil
}

// Snapshot retrieves every issue, oldest first
func (r *PostgresRepository) Snapshot(ctx context.Context) ([]domain.Issue, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+issueColumns+` FROM issues ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query snapshot: %w", err)
	}
	return collectIssues(rows)
}

// UpdateStatus applies the triage change and appends status history in one
// transaction
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, update domain.StatusUpdate, at time.Time) (*domain.Issue, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1 FOR UPDATE`, id)
	current, err := scanIssue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to lock issue %d: %w", id, err)
	}

	next, change := domain.ApplyStatusUpdate(current, update, at)

	_, err = tx.Exec(ctx, `
		UPDATE issues
		SET status = $2, assigned_to = $3, admin_notes = $4, updated_at = $5, resolved_at = $6
		WHERE id = $1
	`, id, string(next.Status), next.AssignedTo, next.AdminNotes, next.UpdatedAt, next.ResolvedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to update issue %d: %w", id, err)
	}

	if change != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO status_history (issue_id, old_status, new_status, updated_by, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, string(change.OldStatus), string(change.NewStatus), change.UpdatedBy, change.Notes, change.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to record status history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("postgres: failed to commit status update: %w", err)
	}
	return &next, nil
}

// UpdateInsights replaces the stored AI insights of an issue
func (r *PostgresRepository) UpdateInsights(ctx context.Context, id int64, insights domain.Insights, department string) (*domain.Issue, error) {
	body, err := json.Marshal(insights)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to encode insights: %w", err)
	}

	query := `
		UPDATE issues
		SET insights = $2::jsonb, category = $3, priority_level = $4, priority_score = $5,
		    is_duplicate = $6, department = $7
		WHERE id = $1
		RETURNING ` + issueColumns

	row := r.pool.QueryRow(ctx, query, id, string(body),
		string(insights.Classification.Category), string(insights.Priority.Level), insights.Priority.Score,
		insights.Duplicate.IsDuplicate, department)
	is, err := scanIssue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to update insights of issue %d: %w", id, err)
	}
	return &is, nil
}

// History retrieves the status changes of an issue, oldest first
func (r *PostgresRepository) History(ctx context.Context, id int64) ([]domain.StatusChange, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM issues WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("postgres: failed to check issue %d: %w", id, err)
	}
	if !exists {
		return nil, domain.ErrIssueNotFound
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, issue_id, old_status, new_status, updated_by, notes, created_at
		FROM status_history
		WHERE issue_id = $1
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query status history: %w", err)
	}
	defer rows.Close()

	results := make([]domain.StatusChange, 0)
	for rows.Next() {
		var c domain.StatusChange
		var oldStatus, newStatus string
		if err := rows.Scan(&c.ID, &c.IssueID, &oldStatus, &newStatus, &c.UpdatedBy, &c.Notes, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan status history row: %w", err)
		}
		c.OldStatus = domain.Status(oldStatus)
		c.NewStatus = domain.Status(newStatus)
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read status history: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

func collectIssues(rows pgx.Rows) ([]domain.Issue, error) {
	defer rows.Close()

	results := make([]domain.Issue, 0)
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan issue row: %w", err)
		}
		results = append(results, is)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read issue rows: %w", err)
	}
	return results, nil
}
