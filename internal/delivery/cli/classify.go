package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/app"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/seed"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/service"
)

func newClassifyCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:     "classify <title> [description]",
		Short:   "Preview the insights a report would receive without storing it",
		Example: `  civicctl classify "Streetlight not working" "Dark lane near the school" --lat 23.22 --lon 72.64`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := domain.IssueReport{
				Title:       args[0],
				Description: args[0],
				Location:    domain.Location{Latitude: lat, Longitude: lon},
			}
			if len(args) == 2 {
				report.Description = args[1]
			}

			return withDependencies(cmd, func(ctx context.Context, cliCtx *CLIContext, deps *app.Dependencies) error {
				pred, err := deps.Issues.Predict(ctx, report)
				if err != nil {
					return err
				}
				if cliCtx.OutputFormat == "json" {
					return PrintJSON(cmd.OutOrStdout(), pred)
				}
				ins := pred.Insights
				_, err = fmt.Fprintf(cmd.OutOrStdout(),
					"category:   %s (confidence %.2f)\npriority:   %s (score %.1f, respond within %s)\nduplicate:  %t\ndepartment: %s\n",
					ins.Classification.Category, ins.Classification.Confidence,
					ins.Priority.Level, ins.Priority.Score, ins.Priority.EstimatedResponseTime,
					ins.Duplicate.IsDuplicate, pred.Department)
				return err
			})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", seed.Gandhinagar.Latitude, "report latitude")
	cmd.Flags().Float64Var(&lon, "lon", seed.Gandhinagar.Longitude, "report longitude")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <partial text>",
		Short: "List common issue titles matching the partial text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			suggestions := service.Suggest(strings.Join(args, " "))
			if cliCtx.OutputFormat == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string][]string{"suggestions": suggestions})
			}
			for _, s := range suggestions {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
