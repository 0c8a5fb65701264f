package permissions

// #region track-actions
// TrackActions is the capability set for one track. Every field is derived
// from case state alone; callers must recompute after any mutation and
// never cache a set across a state change.
type TrackActions struct {
	CanSubmit         bool
	CanResubmit       bool
	CanWithdraw       bool
	CanRespond        bool
	CanUpdateResponse bool
	CanAcceptResponse bool
}

// #endregion track-actions

// #region action-set
// ActionSet is the full capability map for one role against one case.
type ActionSet struct {
	Liability    TrackActions
	Compensation TrackActions
	Deadline     TrackActions

	// CanEscalateToForcing is the claimant's cross-track right to pursue
	// forcing after an adverse deadline or liability adjudication.
	CanEscalateToForcing bool

	// CanIssueChangeOrder mirrors an externally computed eligibility flag
	// carried on the case; the evaluator passes it through unchanged.
	CanIssueChangeOrder bool
}

// #endregion action-set
