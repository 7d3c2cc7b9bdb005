package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/app"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/config"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/service"
)

// inMemory builds dependencies with every external backend disabled.
func inMemory(ctx context.Context, cfg *config.Config, log logging.Logger) (*app.Dependencies, error) {
	cfg.DatabaseURL = ""
	cfg.RedisAddr = ""
	cfg.KafkaBrokers = nil
	return app.Build(ctx, cfg, log)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(inMemory)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedCommand_Text(t *testing.T) {
	out, err := run(t, "seed", "--count", "12", "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "seeded 12 issues\n", out)
}

func TestSeedCommand_Report(t *testing.T) {
	out, err := run(t, "seed", "--count", "30", "--days", "14", "--report")
	require.NoError(t, err)

	var got struct {
		Seeded  int `json:"seeded"`
		Summary struct {
			TotalIssues int            `json:"total_issues"`
			ByStatus    map[string]int `json:"by_status"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 30, got.Seeded)
	assert.Equal(t, 30, got.Summary.TotalIssues)

	total := 0
	for _, n := range got.Summary.ByStatus {
		total += n
	}
	assert.Equal(t, 30, total)
}

func TestSeedCommand_InvalidConfig(t *testing.T) {
	_, err := run(t, "seed", "--days", "0")
	assert.Error(t, err)
}

func TestAnalyzeCommands(t *testing.T) {
	out, err := run(t, "analyze", "summary")
	require.NoError(t, err)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.EqualValues(t, 0, summary["total_issues"])

	out, err = run(t, "analyze", "hotspots", "-o", "text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hotspots: 0"), out)

	out, err = run(t, "analyze", "trends", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "expected issues")

	out, err = run(t, "analyze", "dashboard")
	require.NoError(t, err)
	var dash map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Contains(t, dash, "summary")
	assert.Contains(t, dash, "hotspots")
	assert.Contains(t, dash, "trends")
	assert.Contains(t, dash, "timestamp")

	_, err = run(t, "analyze", "summary", "extra")
	assert.Error(t, err)
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, "classify", "Streetlight not working", "The pole light near the school is dark", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "category:")
	assert.Contains(t, out, "priority:")
	assert.Contains(t, out, "duplicate:  false")

	out, err = run(t, "classify", "Water leakage from pipe")
	require.NoError(t, err)
	var pred service.Prediction
	require.NoError(t, json.Unmarshal([]byte(out), &pred))
	assert.NotEmpty(t, pred.Department)
	assert.NotEmpty(t, pred.Insights.Classification.Category)

	_, err = run(t, "classify", "Pothole", "--lat", "120")
	assert.Error(t, err)
}

func TestSuggestCommand(t *testing.T) {
	out, err := run(t, "suggest", "road", "-o", "text")
	require.NoError(t, err)
	want := strings.Join(service.Suggest("road"), "\n") + "\n"
	assert.Equal(t, want, out)

	out, err = run(t, "suggest", "water")
	require.NoError(t, err)
	var got map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, service.Suggest("water"), got["suggestions"])
}

func TestRootCommand_RejectsUnknownOutput(t *testing.T) {
	_, err := run(t, "suggest", "road", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestGetCLIContext_NotInitialized(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestRootCommand_Version(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "civicctl", cmd.Use)
	assert.Contains(t, cmd.Version, Version)

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"seed", "analyze", "classify", "suggest"})
}
