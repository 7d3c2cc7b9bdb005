package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/app"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run an analytics pass over the stored issues",
	}
	cmd.AddCommand(
		newAnalyzeSubCmd("hotspots", "Detect geographic hotspots", func(ctx context.Context, deps *app.Dependencies) (interface{}, error) {
			return deps.Analytics.Hotspots(ctx)
		}),
		newAnalyzeSubCmd("trends", "Project next week's issue load", func(ctx context.Context, deps *app.Dependencies) (interface{}, error) {
			return deps.Analytics.Trends(ctx)
		}),
		newAnalyzeSubCmd("summary", "Count issues by status, category, priority and department", func(ctx context.Context, deps *app.Dependencies) (interface{}, error) {
			return deps.Analytics.Summary(ctx)
		}),
		newAnalyzeSubCmd("dashboard", "Run every analytics pass", func(ctx context.Context, deps *app.Dependencies) (interface{}, error) {
			return deps.Analytics.Dashboard(ctx)
		}),
	)
	return cmd
}

func newAnalyzeSubCmd(use, short string, run func(context.Context, *app.Dependencies) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(cmd, func(ctx context.Context, cliCtx *CLIContext, deps *app.Dependencies) error {
				result, err := run(ctx, deps)
				if err != nil {
					return fmt.Errorf("%s analysis failed: %w", use, err)
				}
				if cliCtx.OutputFormat == "text" {
					return render(cmd.OutOrStdout(), result)
				}
				return PrintJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func render(w io.Writer, result interface{}) error {
	switch v := result.(type) {
	case domain.HotspotReport:
		return renderHotspots(w, v)
	case domain.TrendPrediction:
		return renderTrends(w, v)
	case domain.Summary:
		return renderSummary(w, v)
	case domain.DashboardData:
		if err := renderSummary(w, v.Summary); err != nil {
			return err
		}
		fmt.Fprintln(w)
		if err := renderHotspots(w, v.Hotspots); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return renderTrends(w, v.Trends)
	default:
		return PrintJSON(w, v)
	}
}

func renderHotspots(w io.Writer, r domain.HotspotReport) error {
	fmt.Fprintf(w, "hotspots: %d (high risk: %d, cells analyzed: %d, threshold: %.2f)\n",
		r.TotalHotspots, r.HighRiskAreas, r.CellsAnalyzed, r.Threshold)
	if len(r.Hotspots) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CELL\tLAT\tLON\tISSUES\tCATEGORY\tRISK")
	for _, h := range r.Hotspots {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%d\t%s\t%s\n",
			h.CellID, h.Center.Latitude, h.Center.Longitude, h.IssueCount, h.DominantCategory, h.RiskLevel)
	}
	return tw.Flush()
}

func renderTrends(w io.Writer, t domain.TrendPrediction) error {
	fmt.Fprintf(w, "next %s from %s: %.1f expected issues (%s, window %d)\n",
		t.Granularity, t.TimeBucket.Format("2006-01-02"), t.ExpectedIssueCount, t.Method, t.WindowUsed)
	if len(t.Categories) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tEXPECTED\tRECENT\tGROWTH\tHIGH RISK")
	for _, c := range t.Categories {
		fmt.Fprintf(tw, "%s\t%.1f\t%d\t%+.2f\t%t\n", c.Category, c.Expected, c.RecentCount, c.GrowthRate, c.HighRisk)
	}
	return tw.Flush()
}

func renderSummary(w io.Writer, s domain.Summary) error {
	fmt.Fprintf(w, "issues: %d total, %d open, %d duplicates, resolution rate %.1f%%\n",
		s.TotalIssues, s.OpenIssues, s.DuplicateCount, s.ResolutionRate*100)
	if s.AvgResolution != nil {
		fmt.Fprintf(w, "average resolution: %.1f hours\n", *s.AvgResolution)
	}
	for _, line := range s.Insights {
		fmt.Fprintf(w, "- %s\n", line)
	}
	if len(s.ByDepartment) == 0 {
		return nil
	}
	depts := make([]string, 0, len(s.ByDepartment))
	for d := range s.ByDepartment {
		depts = append(depts, d)
	}
	sort.Strings(depts)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPARTMENT\tISSUES")
	for _, d := range depts {
		fmt.Fprintf(tw, "%s\t%d\n", d, s.ByDepartment[d])
	}
	return tw.Flush()
}
