package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStatusUpdate(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	issue := Issue{ID: 3, Status: StatusPending, AssignedTo: "crew-1"}

	next, change := ApplyStatusUpdate(issue, StatusUpdate{Status: StatusInProgress, UpdatedBy: "officer"}, at)
	require.NotNil(t, change)
	assert.Equal(t, StatusInProgress, next.Status)
	assert.Equal(t, "crew-1", next.AssignedTo)
	assert.Equal(t, at, *next.UpdatedAt)
	assert.Nil(t, next.ResolvedAt)
	assert.Equal(t, StatusPending, change.OldStatus)
	assert.Equal(t, "officer", change.UpdatedBy)

	resolved, change := ApplyStatusUpdate(next, StatusUpdate{Status: StatusResolved, AdminNotes: "patched"}, at.Add(time.Hour))
	require.NotNil(t, change)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, at.Add(time.Hour), *resolved.ResolvedAt)
	assert.Equal(t, "patched", resolved.AdminNotes)
	assert.Equal(t, "admin", change.UpdatedBy)

	reopened, _ := ApplyStatusUpdate(resolved, StatusUpdate{Status: StatusPending}, at.Add(2*time.Hour))
	assert.Nil(t, reopened.ResolvedAt)

	// The input is not modified.
	assert.Equal(t, StatusPending, issue.Status)
	assert.Nil(t, issue.UpdatedAt)
}

func TestApplyStatusUpdate_NoStatusChange(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	issue := Issue{ID: 3, Status: StatusPending}

	next, change := ApplyStatusUpdate(issue, StatusUpdate{AssignedTo: "crew-2"}, at)
	assert.Nil(t, change)
	assert.Equal(t, "crew-2", next.AssignedTo)
	assert.Equal(t, StatusPending, next.Status)

	_, change = ApplyStatusUpdate(issue, StatusUpdate{Status: StatusPending}, at)
	assert.Nil(t, change)
}
