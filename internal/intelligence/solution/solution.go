// Package solution suggests a remedy for a classified issue: the repair plan
// for its kind and severity, how it deteriorates if left alone, preventive
// measures, and how similar issues nearby were resolved.
package solution

import (
	"math"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

// Input is what a recommendation is based on.
type Input struct {
	Category    domain.Category
	Subcategory string
	Level       domain.PriorityLevel
	// Self is skipped in Nearby; zero for a report that is not stored yet.
	Self   int64
	Nearby []domain.Issue
}

// Recommend looks up the plan for the subcategory, falling back to the
// category and then to a generic procedure. The severity variant follows the
// priority level. The result never aliases the catalog.
func Recommend(in Input) domain.Solution {
	p, severity := lookup(in.Category, in.Subcategory, in.Level)

	d, ok := deterioration[in.Subcategory]
	if !ok {
		d = defaultDeterioration
	}
	d.RiskFactors = clone(d.RiskFactors)

	measures, ok := preventive[in.Subcategory]
	if !ok {
		measures = defaultPreventive
	}

	return domain.Solution{
		Summary:            p.summary,
		Severity:           severity,
		EstimatedCost:      p.cost,
		TimeRequired:       p.time,
		Materials:          clone(p.materials),
		Steps:              clone(p.steps),
		PreventiveMeasures: clone(measures),
		Deterioration:      d,
		PastResolutions:    pastResolutions(in),
	}
}

func lookup(cat domain.Category, sub string, level domain.PriorityLevel) (plan, string) {
	if vs := variants[sub]; len(vs) > 0 {
		v := vs[variantIndex(len(vs), level)]
		return v.plan, v.severity
	}
	if p, ok := categoryPlans[cat]; ok {
		return p, ""
	}
	return defaultPlan, ""
}

// variantIndex spreads the four priority ranks over n variants.
func variantIndex(n int, level domain.PriorityLevel) int {
	rank := level.Rank()
	if rank < 0 {
		rank = 1
	}
	return int(math.Round(float64(rank) * float64(n-1) / 3))
}

func pastResolutions(in Input) domain.PastResolutions {
	var out domain.PastResolutions
	if in.Category == domain.CategoryUncategorized || in.Category == "" {
		return out
	}

	var hours []float64
	for _, is := range in.Nearby {
		if in.Self != 0 && is.ID == in.Self {
			continue
		}
		if is.Category() != in.Category || is.Status != domain.StatusResolved || is.ResolvedAt == nil {
			continue
		}
		out.Resolved++
		hours = append(hours, is.ResolvedAt.Sub(is.CreatedAt).Hours())
	}
	if len(hours) > 0 {
		avg := utils.RoundTo(utils.Mean(hours), 2)
		out.AvgResolutionHours = &avg
	}
	return out
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
