package domain

import "time"

// ApplyStatusUpdate returns issue with update applied at the given time.
// Empty fields of update leave the issue unchanged. A StatusChange is
// returned only when the status actually moves; resolving stamps ResolvedAt
// and leaving the resolved state clears it.
func ApplyStatusUpdate(issue Issue, update StatusUpdate, at time.Time) (Issue, *StatusChange) {
	next := issue
	stamp := at
	next.UpdatedAt = &stamp

	if update.AssignedTo != "" {
		next.AssignedTo = update.AssignedTo
	}
	if update.AdminNotes != "" {
		next.AdminNotes = update.AdminNotes
	}

	if update.Status == "" || update.Status == issue.Status {
		return next, nil
	}

	next.Status = update.Status
	switch {
	case update.Status == StatusResolved:
		resolved := at
		next.ResolvedAt = &resolved
	case issue.Status == StatusResolved:
		next.ResolvedAt = nil
	}

	by := update.UpdatedBy
	if by == "" {
		by = "admin"
	}
	return next, &StatusChange{
		IssueID:   issue.ID,
		OldStatus: issue.Status,
		NewStatus: update.Status,
		UpdatedBy: by,
		Notes:     update.AdminNotes,
		Timestamp: at,
	}
}
