// Package claim holds the shared claim-track vocabulary: per-track status,
// version bookkeeping, approver response metadata, and the lifecycle
// mutators that enforce the model invariants. Permission derivation and
// adjudication live in their own packages and only read this model.
package claim

import "time"

// #region track
// Track identifies one of the three claim dimensions of a case.
type Track string

const (
	TrackLiability    Track = "liability"
	TrackCompensation Track = "compensation"
	TrackDeadline     Track = "deadline"
)

// Tracks lists all tracks in canonical order.
func Tracks() []Track {
	return []Track{TrackLiability, TrackCompensation, TrackDeadline}
}

// #endregion track

// #region status
// Status is the lifecycle position of one track.
type Status string

const (
	StatusNotApplicable     Status = "not_applicable"
	StatusDraft             Status = "draft"
	StatusSubmitted         Status = "submitted"
	StatusUnderReview       Status = "under_review"
	StatusApproved          Status = "approved"
	StatusPartiallyApproved Status = "partially_approved"
	StatusRejected          Status = "rejected"
	StatusWithdrawn         Status = "withdrawn"
)

// #endregion status

// #region role
// Role is the acting party: the contractor submitting claims (TE) or the
// client adjudicating them (BH).
type Role string

const (
	RoleClaimant Role = "claimant"
	RoleApprover Role = "approver"
)

// #endregion role

// #region result
// Result is an approver's adjudication outcome for one track.
type Result string

const (
	ResultApproved          Result = "approved"
	ResultRejected          Result = "rejected"
	ResultPartiallyApproved Result = "partially_approved"
	ResultWaived            Result = "waived"
)

// #endregion result

// #region notice-kind
// NoticeKind classifies the deadline-extension notice.
type NoticeKind string

const (
	NoticeNeutral      NoticeKind = "neutral"
	NoticeSpecified    NoticeKind = "specified"
	NoticeForceMajeure NoticeKind = "force_majeure"
)

// #endregion notice-kind

// #region category
// LiabilityCategory classifies the legal basis invoked on the liability
// track. Only the compensation-eligibility consequence matters to the
// engine; the full legal classification belongs to the capture UI.
type LiabilityCategory string

const (
	CategoryClientChange       LiabilityCategory = "client_change"
	CategoryClientCircumstance LiabilityCategory = "client_circumstance"
	CategoryForceMajeure       LiabilityCategory = "force_majeure"
)

// CompensationEligible reports whether the category can carry a payment
// compensation claim. Force majeure gives deadline relief only.
func (c LiabilityCategory) CompensationEligible() bool {
	return c != CategoryForceMajeure
}

// #endregion category

// #region track-state
// TrackState is the versioned lifecycle state of one track of one case.
type TrackState struct {
	Status           Status
	VersionCount     int     // 0 while draft; 1 after the original submission
	RespondedVersion *int    // version index the latest approver response targeted
	Result           *Result // latest approver result, nil before any response
	Accepted         bool    // claimant has irrevocably accepted the current response
	Locked           bool    // liability only, set when a change order freezes the basis
}

// CurrentVersion returns the current version index, max(0, count-1).
func (ts TrackState) CurrentVersion() int {
	if ts.VersionCount <= 0 {
		return 0
	}
	return ts.VersionCount - 1
}

// HasResponse reports whether any approver response exists.
func (ts TrackState) HasResponse() bool {
	return ts.Result != nil
}

// HasCurrentResponse reports whether the latest approver response targets
// the current version. A stale or absent response both report false.
func (ts TrackState) HasCurrentResponse() bool {
	return ts.RespondedVersion != nil && *ts.RespondedVersion == ts.CurrentVersion()
}

// Active reports whether the track carries a live claim: anything other
// than not_applicable, draft, or withdrawn.
func (ts TrackState) Active() bool {
	switch ts.Status {
	case StatusNotApplicable, StatusDraft, StatusWithdrawn:
		return false
	}
	return true
}

// #endregion track-state

// #region deadline-facts
// DeadlineFacts are the claimant-submitted facts of a deadline-extension
// claim, consumed by the response evaluator.
type DeadlineFacts struct {
	RequestedDays int
	Notice        NoticeKind
	ReceivedAt    time.Time // date the specified or force-majeure claim was received
}

// #endregion deadline-facts

// #region case-state
// CaseState is the full snapshot one case presents to the evaluators.
type CaseState struct {
	CaseID              string
	Category            LiabilityCategory
	ChangeOrderEligible bool // externally computed, passed through to the capability map

	Liability    TrackState
	Compensation TrackState
	Deadline     TrackState

	DeadlineFacts *DeadlineFacts
}

// TrackState returns a pointer to the named track's state, or nil for an
// unknown track.
func (cs *CaseState) TrackState(t Track) *TrackState {
	switch t {
	case TrackLiability:
		return &cs.Liability
	case TrackCompensation:
		return &cs.Compensation
	case TrackDeadline:
		return &cs.Deadline
	}
	return nil
}

// NewCase opens a case with every track in draft.
func NewCase(caseID string, category LiabilityCategory) CaseState {
	cs := CaseState{
		CaseID:       caseID,
		Category:     category,
		Liability:    TrackState{Status: StatusDraft},
		Compensation: TrackState{Status: StatusDraft},
		Deadline:     TrackState{Status: StatusDraft},
	}
	if !category.CompensationEligible() {
		cs.Compensation.Status = StatusNotApplicable
	}
	return cs
}

// #endregion case-state
