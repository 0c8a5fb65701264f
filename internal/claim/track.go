package claim

import (
	"fmt"

	"github.com/khjohns/unified-timeline-sub004/internal/faults"
)

// The mutators below are the only way a TrackState changes. Each enforces
// the lifecycle invariants and refuses with a faults error instead of
// silently no-opping. Permission derivation (who may call which mutator
// when) is the permissions package's job; these checks are the floor the
// model guarantees regardless of caller.

// #region submit
// Submit moves a draft track to submitted and records the original
// submission as version 0 (version count 1).
func (cs *CaseState) Submit(t Track) error {
	ts := cs.TrackState(t)
	if ts == nil {
		return faults.Precondition(fmt.Sprintf("unknown track %q", t))
	}
	if ts.Status != StatusDraft {
		return faults.WithMetadata(faults.KindPreconditionFailed,
			fmt.Sprintf("submit requires draft status, track %s is %s", t, ts.Status),
			map[string]string{"track": string(t), "status": string(ts.Status)})
	}
	if t == TrackCompensation && !cs.Category.CompensationEligible() {
		return faults.Precondition(fmt.Sprintf("category %s carries no compensation claim", cs.Category))
	}
	ts.Status = StatusSubmitted
	ts.VersionCount = 1
	return nil
}

// #endregion submit

// #region resubmit
// Resubmit records a new claimant version on a previously submitted track.
// The prior approver response, if any, becomes stale rather than being
// cleared: staleness is detected by comparing RespondedVersion to the new
// current version index.
func (cs *CaseState) Resubmit(t Track) error {
	ts := cs.TrackState(t)
	if ts == nil {
		return faults.Precondition(fmt.Sprintf("unknown track %q", t))
	}
	if t == TrackLiability && ts.Locked {
		return faults.Precondition("liability track is locked against resubmission")
	}
	switch ts.Status {
	case StatusSubmitted, StatusUnderReview, StatusRejected, StatusPartiallyApproved:
	default:
		return faults.WithMetadata(faults.KindPreconditionFailed,
			fmt.Sprintf("resubmit not allowed from status %s on track %s", ts.Status, t),
			map[string]string{"track": string(t), "status": string(ts.Status)})
	}
	ts.VersionCount++
	ts.Status = StatusSubmitted
	return nil
}

// #endregion resubmit

// #region respond
// Respond records the approver's first response to the current version of
// a pending track. targetVersion is the version index the approver read
// before deciding; a target behind the current index is a stale-version
// conflict, ahead of it an invariant violation.
func (cs *CaseState) Respond(t Track, result Result, targetVersion int) error {
	ts := cs.TrackState(t)
	if ts == nil {
		return faults.Precondition(fmt.Sprintf("unknown track %q", t))
	}
	switch ts.Status {
	case StatusSubmitted, StatusUnderReview:
	default:
		return faults.WithMetadata(faults.KindPreconditionFailed,
			fmt.Sprintf("respond requires a pending track, track %s is %s", t, ts.Status),
			map[string]string{"track": string(t), "status": string(ts.Status)})
	}
	if ts.HasCurrentResponse() {
		return faults.Precondition(fmt.Sprintf("track %s already has a response to the current version", t))
	}
	cur := ts.CurrentVersion()
	if targetVersion > cur {
		return faults.Precondition(fmt.Sprintf(
			"responded version %d ahead of current version %d on track %s", targetVersion, cur, t))
	}
	if targetVersion < cur {
		return faults.Stale(fmt.Sprintf(
			"response targets version %d but track %s is at version %d", targetVersion, t, cur))
	}
	ts.Result = &result
	ts.RespondedVersion = &targetVersion
	ts.Status = statusForResult(result)
	return nil
}

// UpdateResponse replaces the approver's existing current-version response.
func (cs *CaseState) UpdateResponse(t Track, result Result) error {
	ts := cs.TrackState(t)
	if ts == nil {
		return faults.Precondition(fmt.Sprintf("unknown track %q", t))
	}
	if ts.Status == StatusDraft || ts.Status == StatusNotApplicable {
		return faults.Precondition(fmt.Sprintf("track %s has no response to update", t))
	}
	if !ts.HasResponse() {
		return faults.Precondition(fmt.Sprintf("track %s has no response to update", t))
	}
	if !ts.HasCurrentResponse() {
		return faults.Stale(fmt.Sprintf(
			"response on track %s targets version %d, claimant is at version %d",
			t, *ts.RespondedVersion, ts.CurrentVersion()))
	}
	ts.Result = &result
	ts.Status = statusForResult(result)
	return nil
}

// statusForResult maps an adjudication result onto the track status. A
// waived result only withdraws the approver's objection, so the track
// stays under review.
func statusForResult(r Result) Status {
	switch r {
	case ResultApproved:
		return StatusApproved
	case ResultRejected:
		return StatusRejected
	case ResultPartiallyApproved:
		return StatusPartiallyApproved
	}
	return StatusUnderReview
}

// #endregion respond

// #region begin-review
// BeginReview marks a submitted track as under review without consuming
// the approver's response slot. Already-reviewing tracks are left as is.
func (cs *CaseState) BeginReview(t Track) error {
	ts := cs.TrackState(t)
	if ts == nil {
		return faults.Precondition(fmt.Sprintf("unknown track %q", t))
	}
	switch ts.Status {
	case StatusSubmitted:
		ts.Status = StatusUnderReview
		return nil
	case StatusUnderReview:
		return nil
	}
	return faults.Precondition(fmt.Sprintf("review requires a pending track, track %s is %s", t, ts.Status))
}

// #endregion begin-review

// #region accept
// Accept records the claimant's irrevocable acceptance of the approver's
// current response. Fully approved tracks need no acceptance.
func (cs *CaseState) Accept(t Track) error {
	ts := cs.TrackState(t)
	if ts == nil {
		return faults.Precondition(fmt.Sprintf("unknown track %q", t))
	}
	if !ts.HasResponse() {
		return faults.Precondition(fmt.Sprintf("track %s has no response to accept", t))
	}
	if *ts.Result == ResultApproved {
		return faults.Precondition("a fully approved response needs no acceptance")
	}
	if ts.Accepted {
		return faults.Precondition(fmt.Sprintf("track %s response already accepted", t))
	}
	if ts.Status == StatusApproved || ts.Status == StatusWithdrawn {
		return faults.Precondition(fmt.Sprintf("accept not allowed from status %s on track %s", ts.Status, t))
	}
	if t == TrackLiability && ts.Locked {
		return faults.Precondition("liability track is locked")
	}
	ts.Accepted = true
	return nil
}

// #endregion accept

// #region withdraw
// Withdraw moves a track to withdrawn. Withdrawn is terminal: the domain
// does not allow re-submission of a withdrawn track.
func (cs *CaseState) Withdraw(t Track) error {
	ts := cs.TrackState(t)
	if ts == nil {
		return faults.Precondition(fmt.Sprintf("unknown track %q", t))
	}
	switch ts.Status {
	case StatusNotApplicable, StatusDraft, StatusApproved, StatusWithdrawn:
		return faults.WithMetadata(faults.KindPreconditionFailed,
			fmt.Sprintf("withdraw not allowed from status %s on track %s", ts.Status, t),
			map[string]string{"track": string(t), "status": string(ts.Status)})
	}
	if t == TrackLiability && ts.Locked {
		return faults.Precondition("liability track is locked")
	}
	ts.Status = StatusWithdrawn
	return nil
}

// #endregion withdraw

// #region lock
// SetLocked sets the liability lock flag, orthogonal to status.
func (cs *CaseState) SetLocked(locked bool) error {
	if cs.Liability.Status == StatusNotApplicable {
		return faults.Precondition("liability track not applicable")
	}
	cs.Liability.Locked = locked
	return nil
}

// #endregion lock
