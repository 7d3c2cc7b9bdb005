// Package seed generates synthetic civic issue reports around Gandhinagar
// for demos, load tests and analytics fixtures.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

// Gandhinagar is the default centre of generated reports
var Gandhinagar = geo.Point{Latitude: 23.2156, Longitude: 72.6369}

// Config controls a generation run
type Config struct {
	Count int
	// Days is how far back creation times are spread.
	Days   int
	Center geo.Point
	// SpreadDegrees is the maximum offset from Center on each axis.
	SpreadDegrees float64
	Seed          int64
	Now           time.Time
}

// DefaultConfig returns 200 reports over 60 days within about 16 km
func DefaultConfig() Config {
	return Config{
		Count:         200,
		Days:          60,
		Center:        Gandhinagar,
		SpreadDegrees: 0.15,
		Seed:          1,
		Now:           time.Now().UTC(),
	}
}

// Record is one generated report and the triage state it should reach
type Record struct {
	Report     domain.IssueReport
	Status     domain.Status
	ResolvedAt *time.Time
}

type template struct {
	weight       float64
	titles       []string
	descriptions []string
}

var templates = []template{
	{0.30, []string{
		"Large pothole on main road",
		"Dangerous crater near intersection",
		"Multiple potholes causing traffic issues",
		"Deep pothole damaging vehicles",
	}, []string{
		"There is a large pothole that has been growing for weeks. It is damaging vehicles.",
		"Deep crater formed after recent rains on the road. Very dangerous for two-wheelers.",
		"Pothole has expanded and the road is now a major hazard.",
	}},
	{0.20, []string{
		"Streetlight not working",
		"Multiple streetlights failed",
		"Flickering streetlight",
	}, []string{
		"Streetlight has been dark for over a week. Area is unsafe at night.",
		"Light on the pole is flickering continuously. Needs attention.",
		"Several lamps in this lane are not working after the storm.",
	}},
	{0.25, []string{
		"Overflowing garbage bin",
		"Garbage not collected for days",
		"Waste accumulating on street",
	}, []string{
		"Garbage bin is overflowing and waste is spilling onto the street.",
		"Collection has not happened for 3 days. Bad smell near the dustbin.",
		"Trash scattered around the dump, attracting stray animals.",
	}},
	{0.10, []string{
		"Water logging after rain",
		"Drainage system blocked",
		"Sewage overflow near homes",
	}, []string{
		"Water standing for hours after the rain. Drainage seems blocked.",
		"Sewage backing up into the lane due to a blocked drain.",
		"Pipe leak flooding the street every morning.",
	}},
	{0.05, []string{
		"Bus stop shelter damaged",
		"Illegal parking near station",
	}, []string{
		"Bus stop roof is broken and commuters have no shade.",
		"Parking on both sides blocks traffic near the station.",
	}},
	{0.05, []string{
		"Fallen tree in park",
		"Park playground neglected",
	}, []string{
		"A tree fell across the park path after the storm.",
		"Playground equipment in the garden is rusted and unsafe.",
	}},
	{0.03, []string{
		"Unsafe abandoned building",
		"Illegal construction on footpath",
	}, []string{
		"Wall of an abandoned building is cracking and may collapse.",
		"Construction material encroaching on the footpath.",
	}},
	{0.02, []string{
		"Theft reported near market",
		"Harassment at bus stand",
	}, []string{
		"Repeated theft incidents near the market at night. Police presence needed.",
		"Women report harassment near the stand after dark. Security needed.",
	}},
}

var areas = []string{
	"Sector 1", "Sector 5", "Sector 7", "Sector 11", "Sector 16", "Sector 21",
	"Sector 28", "Kudasan", "Sargasan", "Infocity", "GIFT City", "Raysan",
}

// Generator produces deterministic records for a given seed
type Generator struct {
	cfg Config
	rnd *rand.Rand
}

// NewGenerator validates cfg and seeds the source
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Count < 0 {
		return nil, fmt.Errorf("seed: negative count %d", cfg.Count)
	}
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("seed: days must be positive, got %d", cfg.Days)
	}
	if cfg.SpreadDegrees < 0 {
		return nil, fmt.Errorf("seed: negative spread %v", cfg.SpreadDegrees)
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	return &Generator{cfg: cfg, rnd: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Generate returns cfg.Count records ordered by creation time
func (g *Generator) Generate() []Record {
	out := make([]Record, 0, g.cfg.Count)
	for i := 0; i < g.cfg.Count; i++ {
		out = append(out, g.record())
	}
	sortByCreated(out)
	return out
}

func (g *Generator) record() Record {
	t := g.pickTemplate()
	age := time.Duration(g.rnd.Float64() * float64(g.cfg.Days) * float64(24*time.Hour))
	created := g.cfg.Now.Add(-age).Truncate(time.Second)

	lat := utils.Clamp(g.cfg.Center.Latitude+g.offset(), -90, 90)
	lon := utils.Clamp(g.cfg.Center.Longitude+g.offset(), -180, 180)

	rec := Record{
		Report: domain.IssueReport{
			Title:       t.titles[g.rnd.Intn(len(t.titles))],
			Description: t.descriptions[g.rnd.Intn(len(t.descriptions))],
			Location: domain.Location{
				Latitude:  utils.RoundTo(lat, 6),
				Longitude: utils.RoundTo(lon, 6),
				Address:   areas[g.rnd.Intn(len(areas))] + ", Gandhinagar, Gujarat",
			},
			Reporter:  domain.Reporter{Name: fmt.Sprintf("citizen-%03d", g.rnd.Intn(1000))},
			CreatedAt: created,
		},
		Status: g.pickStatus(age),
	}

	if rec.Status == domain.StatusResolved {
		days := age.Hours() / 24
		maxDays := utils.Clamp(days, 0, 20)
		resolveAfter := time.Duration((0.1 + g.rnd.Float64()*maxDays) * float64(24*time.Hour))
		resolved := created.Add(resolveAfter)
		if resolved.After(g.cfg.Now) {
			resolved = g.cfg.Now
		}
		rec.ResolvedAt = &resolved
	}
	return rec
}

func (g *Generator) offset() float64 {
	return (g.rnd.Float64()*2 - 1) * g.cfg.SpreadDegrees
}

func (g *Generator) pickTemplate() template {
	r := g.rnd.Float64()
	cum := 0.0
	for _, t := range templates {
		cum += t.weight
		if r <= cum {
			return t
		}
	}
	return templates[0]
}

// Older issues are more likely to be resolved.
func (g *Generator) pickStatus(age time.Duration) domain.Status {
	days := age.Hours() / 24
	var weights [4]float64
	switch {
	case days > 30:
		weights = [4]float64{0.10, 0.15, 0.70, 0.05}
	case days > 14:
		weights = [4]float64{0.20, 0.35, 0.43, 0.02}
	case days > 7:
		weights = [4]float64{0.40, 0.40, 0.19, 0.01}
	default:
		weights = [4]float64{0.60, 0.35, 0.05, 0}
	}
	statuses := [4]domain.Status{domain.StatusPending, domain.StatusInProgress, domain.StatusResolved, domain.StatusRejected}

	r := g.rnd.Float64()
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r <= cum {
			return statuses[i]
		}
	}
	return domain.StatusPending
}

func sortByCreated(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Report.CreatedAt.Before(recs[j].Report.CreatedAt)
	})
}

// Submitter runs a report through the intake pipeline
type Submitter interface {
	Submit(ctx context.Context, report domain.IssueReport) (*domain.Issue, error)
}

// StatusWriter applies a status change at a given time
type StatusWriter interface {
	UpdateStatus(ctx context.Context, id int64, update domain.StatusUpdate, at time.Time) (*domain.Issue, error)
}

// Load submits every record in order and then moves it to its target status.
// It returns the number of issues stored.
func Load(ctx context.Context, records []Record, sub Submitter, status StatusWriter, log logging.Logger) (int, error) {
	stored := 0
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		issue, err := sub.Submit(ctx, rec.Report)
		if err != nil {
			return stored, fmt.Errorf("seed: record %d: %w", i, err)
		}
		stored++

		if rec.Status == domain.StatusPending {
			continue
		}
		at := rec.Report.CreatedAt.Add(time.Hour)
		if rec.ResolvedAt != nil {
			at = *rec.ResolvedAt
		}
		update := domain.StatusUpdate{Status: rec.Status, UpdatedBy: "seed"}
		if _, err := status.UpdateStatus(ctx, issue.ID, update, at); err != nil {
			return stored, fmt.Errorf("seed: record %d status: %w", i, err)
		}
	}
	log.Info("seed data loaded", logging.Int("issues", stored))
	return stored, nil
}
