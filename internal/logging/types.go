package logging

import "time"

// #region entry
// Entry is one appended decision-log row: who did what to which track,
// with the full machine-readable detail the submission collaborator
// persisted alongside it.
type Entry struct {
	CaseID     string
	Track      string // empty for case-level events
	Actor      string // "claimant" | "approver" | "system"
	Action     string // e.g. "submit", "withdraw", "respond_deadline"
	Outcome    string // e.g. a result code or cascade reason
	Reason     string
	DetailJSON string // verbatim evaluation or cascade record
	CreatedAt  time.Time
}

// #endregion entry
