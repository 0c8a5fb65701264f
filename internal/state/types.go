package state

import "time"

// #region case-summary
// CaseSummary is one row of the case listing.
type CaseSummary struct {
	CaseID    string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// #endregion case-summary
