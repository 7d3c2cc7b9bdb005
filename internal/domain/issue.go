package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
)

// Location is where an issue was reported
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Point converts the location to a geo.Point
func (l Location) Point() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Reporter is the citizen who filed the issue
type Reporter struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// IssueReport is the raw citizen submission consumed by the pipeline
type IssueReport struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      Location  `json:"location"`
	ImageFeatures []float64 `json:"image_features,omitempty"`
	Reporter      Reporter  `json:"reporter"`
	CreatedAt     time.Time `json:"created_at"`

	// locationMissing is set when a decoded body lacks either coordinate,
	// which would otherwise read as (0, 0).
	locationMissing bool
}

// UnmarshalJSON decodes a report and remembers whether both coordinates were
// present.
func (r *IssueReport) UnmarshalJSON(data []byte) error {
	type plain IssueReport
	var raw struct {
		plain
		Location *struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
			Address   string   `json:"address"`
		} `json:"location"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = IssueReport(raw.plain)
	r.Location = Location{}
	r.locationMissing = true
	if loc := raw.Location; loc != nil {
		r.Location.Address = loc.Address
		if loc.Latitude != nil {
			r.Location.Latitude = *loc.Latitude
		}
		if loc.Longitude != nil {
			r.Location.Longitude = *loc.Longitude
		}
		r.locationMissing = loc.Latitude == nil || loc.Longitude == nil
	}
	return nil
}

// Text returns title and description joined for text analysis
func (r IssueReport) Text() string {
	return r.Title + " " + r.Description
}

// Validate rejects reports the pipeline must never see. It returns the first
// failing rule as a *ValidationError.
func (r IssueReport) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Kind: KindMissingTitle}
	}
	if strings.TrimSpace(r.Description) == "" {
		return &ValidationError{Field: "description", Kind: KindMissingDescription}
	}
	if r.locationMissing {
		return &ValidationError{Field: "location", Kind: KindMissingLocation}
	}
	if !geo.ValidLatitude(r.Location.Latitude) {
		return &ValidationError{Field: "location.latitude", Kind: KindLatitudeOutOfRange, Value: r.Location.Latitude}
	}
	if !geo.ValidLongitude(r.Location.Longitude) {
		return &ValidationError{Field: "location.longitude", Kind: KindLongitudeOutOfRange, Value: r.Location.Longitude}
	}
	for _, f := range r.ImageFeatures {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &ValidationError{Field: "image_features", Kind: KindInvalidImageFeatures}
		}
	}
	return nil
}

// Status is the triage state of an issue
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Open reports whether the issue still needs work
func (s Status) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

// Issue is a persisted report together with its AI insights
type Issue struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    Location   `json:"location"`
	Reporter    Reporter   `json:"reporter"`
	Images      []float64  `json:"image_features,omitempty"`
	Status      Status     `json:"status"`
	Department  string     `json:"department"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	Insights    Insights   `json:"ai_insights"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Text returns title and description joined for text analysis
func (i Issue) Text() string {
	return i.Title + " " + i.Description
}

// Category is a shortcut for the stored classification
func (i Issue) Category() Category {
	return i.Insights.Classification.Category
}

// StatusUpdate is an administrator's triage change
type StatusUpdate struct {
	Status     Status `json:"status,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
	AdminNotes string `json:"admin_notes,omitempty"`
	UpdatedBy  string `json:"updated_by,omitempty"`
}

// Validate checks the requested status, if any
func (u StatusUpdate) Validate() error {
	if u.Status != "" && !u.Status.Valid() {
		return &ValidationError{Field: "status", Kind: KindInvalidStatus, Value: string(u.Status)}
	}
	return nil
}

// StatusChange is one entry of an issue's status history
type StatusChange struct {
	ID        int64     `json:"id"`
	IssueID   int64     `json:"issue_id"`
	OldStatus Status    `json:"old_status,omitempty"`
	NewStatus Status    `json:"new_status"`
	UpdatedBy string    `json:"updated_by"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IssueFilter narrows issue listings. Zero values mean "any".
type IssueFilter struct {
	Status        Status
	Category      Category
	PriorityLevel PriorityLevel
	Limit         int
}
