// Package permissions derives the set of currently legal actions for a
// role from a full case snapshot. It is a pure function of its input: no
// I/O, no internal state, safe to call redundantly on every state change.
package permissions

import (
	"github.com/khjohns/unified-timeline-sub004/internal/claim"
)

// #region evaluate
// Evaluate computes the full capability map for the given role. An absent
// approver result is treated as "no response yet", never as a rejection.
func Evaluate(cs claim.CaseState, role claim.Role) ActionSet {
	return ActionSet{
		Liability:            evaluateTrack(cs, claim.TrackLiability, role),
		Compensation:         evaluateTrack(cs, claim.TrackCompensation, role),
		Deadline:             evaluateTrack(cs, claim.TrackDeadline, role),
		CanEscalateToForcing: canEscalate(cs, role),
		CanIssueChangeOrder:  cs.ChangeOrderEligible,
	}
}

// ForTrack returns the per-track capability set for t.
func (as ActionSet) ForTrack(t claim.Track) TrackActions {
	switch t {
	case claim.TrackLiability:
		return as.Liability
	case claim.TrackCompensation:
		return as.Compensation
	case claim.TrackDeadline:
		return as.Deadline
	}
	return TrackActions{}
}

// #endregion evaluate

// #region track-rules
func evaluateTrack(cs claim.CaseState, t claim.Track, role claim.Role) TrackActions {
	ts := *cs.TrackState(t)
	locked := t == claim.TrackLiability && ts.Locked

	var a TrackActions

	if role == claim.RoleClaimant {
		a.CanSubmit = ts.Status == claim.StatusDraft
		if t == claim.TrackCompensation && !cs.Category.CompensationEligible() {
			a.CanSubmit = false
		}

		a.CanResubmit = !locked && statusIn(ts.Status,
			claim.StatusSubmitted, claim.StatusUnderReview,
			claim.StatusRejected, claim.StatusPartiallyApproved)

		a.CanWithdraw = !locked && !statusIn(ts.Status,
			claim.StatusNotApplicable, claim.StatusDraft,
			claim.StatusApproved, claim.StatusWithdrawn)

		a.CanAcceptResponse = !locked &&
			ts.HasResponse() &&
			*ts.Result != claim.ResultApproved &&
			!ts.Accepted &&
			!statusIn(ts.Status, claim.StatusApproved, claim.StatusWithdrawn)
	}

	if role == claim.RoleApprover {
		pending := statusIn(ts.Status, claim.StatusSubmitted, claim.StatusUnderReview)

		// Respond requires a stale-or-absent response; update-response
		// requires a current one. The two can never both hold.
		a.CanRespond = pending && !ts.HasCurrentResponse()

		a.CanUpdateResponse = ts.HasResponse() &&
			!statusIn(ts.Status, claim.StatusDraft, claim.StatusNotApplicable) &&
			ts.HasCurrentResponse()
	}

	return a
}

// #endregion track-rules

// #region escalation
// canEscalate implements the claimant's cross-track forcing predicate: an
// adverse current adjudication on the deadline claim, or a rejected
// liability basis, while neither track has been withdrawn.
func canEscalate(cs claim.CaseState, role claim.Role) bool {
	if role != claim.RoleClaimant {
		return false
	}
	if cs.Deadline.Status == claim.StatusWithdrawn || cs.Liability.Status == claim.StatusWithdrawn {
		return false
	}
	if !cs.Deadline.HasResponse() {
		return false
	}
	deadlineAdverse := *cs.Deadline.Result == claim.ResultRejected ||
		*cs.Deadline.Result == claim.ResultPartiallyApproved
	liabilityRejected := cs.Liability.HasResponse() && *cs.Liability.Result == claim.ResultRejected
	return deadlineAdverse || liabilityRejected
}

// #endregion escalation

func statusIn(s claim.Status, set ...claim.Status) bool {
	for _, c := range set {
		if s == c {
			return true
		}
	}
	return false
}
