// Package deadline adjudicates a deadline-extension claim through the
// four-gate sequence: notice timeliness, hindrance, day calculation, and
// aggregation into a principal outcome with a mandatory subsidiary
// fallback whenever the principal outcome is a rejection.
package deadline

import (
	"fmt"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/faults"
)

// nearFullApproval absorbs rounding noise from fractional day arithmetic:
// a concession of at least 99% of the requested days counts as a full
// approval. Flagged for domain-expert confirmation before being treated
// as load-bearing legal policy.
const nearFullApproval = 0.99

// #region default
// DefaultAssessment pre-fills the documented gate 3 default, approved
// days equal to requested days, leaving gates 1 and 2 unanswered.
func DefaultAssessment(facts claim.DeadlineFacts) Assessment {
	days := facts.RequestedDays
	return Assessment{ApprovedDays: &days}
}

// #endregion default

// #region notice-gate
// ResolveNoticeGate computes the explicit gate 1 state from the notice
// classification and the approver's timeliness judgment.
func ResolveNoticeGate(facts claim.DeadlineFacts, a Assessment) (NoticeGateState, error) {
	if a.RequestSpecification && facts.Notice != claim.NoticeNeutral {
		return GateUndetermined, faults.Precondition(fmt.Sprintf(
			"a specification request applies only to neutral notices, not %s", facts.Notice))
	}
	if a.NoticeTimely == nil {
		return GateUndetermined, nil
	}
	if !*a.NoticeTimely {
		return GatePrecluded, nil
	}
	if facts.Notice == claim.NoticeNeutral && a.RequestSpecification {
		return GateAwaitingSpecification, nil
	}
	return GateNotPrecluded, nil
}

// #endregion notice-gate

// #region evaluate
// Evaluate runs the full gate sequence and aggregates the principal and
// subsidiary outcomes. Gates 2 and 3 are required even when gate 1 found
// preclusion, because they feed the subsidiary position; only a
// specification request parks them, since an awaiting principal result
// carries no subsidiary at all.
func Evaluate(facts claim.DeadlineFacts, a Assessment) (Evaluation, error) {
	if facts.RequestedDays < 0 {
		return Evaluation{}, faults.Precondition(fmt.Sprintf(
			"requested days must be non-negative, got %d", facts.RequestedDays))
	}

	gate, err := ResolveNoticeGate(facts, a)
	if err != nil {
		return Evaluation{}, err
	}
	if gate == GateUndetermined {
		return Evaluation{}, faults.Incomplete("notice timeliness has not been judged")
	}

	if gate == GateAwaitingSpecification {
		return Evaluation{
			NoticeGate:            gate,
			Principal:             ResultAwaiting,
			RequestedDays:         facts.RequestedDays,
			SpecificationDeadline: a.SpecificationDeadline,
		}, nil
	}

	if a.HindranceOccurred == nil {
		return Evaluation{}, faults.Incomplete("hindrance has not been judged")
	}
	if a.ApprovedDays == nil {
		return Evaluation{}, faults.Incomplete("approved days have not been entered")
	}
	if *a.ApprovedDays < 0 {
		return Evaluation{}, faults.Precondition(fmt.Sprintf(
			"approved days must be non-negative, got %d", *a.ApprovedDays))
	}

	hindrance := *a.HindranceOccurred
	approved := *a.ApprovedDays
	requested := facts.RequestedDays

	ev := Evaluation{
		NoticeGate:    gate,
		RequestedDays: requested,
		ApprovedDays:  approved,
	}
	if approved < requested {
		ev.DeniedDays = requested - approved
	}

	switch {
	case gate == GatePrecluded:
		ev.Principal = ResultRejected
	case !hindrance:
		ev.Principal = ResultRejected
	default:
		ev.Principal = dayResult(requested, approved)
	}

	if ev.Principal == ResultRejected {
		sub := subsidiaryResult(hindrance, requested, approved)
		ev.Subsidiary = &sub
		ev.Triggers = triggers(facts.Notice, gate, hindrance)
	}

	ev.ForcingRisk = (ev.Principal == ResultRejected || ev.Principal == ResultPartiallyApproved) &&
		approved < requested

	return ev, nil
}

// #endregion evaluate

// #region aggregation
// dayResult applies the day-calculation outcome shared by the principal
// and subsidiary tracks: a zero-day request or a near-full concession is
// an approval, anything smaller a partial approval.
func dayResult(requested, approved int) ResultCode {
	if requested == 0 {
		return ResultApproved
	}
	if float64(approved)/float64(requested) >= nearFullApproval {
		return ResultApproved
	}
	return ResultPartiallyApproved
}

// subsidiaryResult is the fallback position computed as if preclusion did
// not apply: a missing hindrance still rejects, otherwise the day
// calculation decides.
func subsidiaryResult(hindrance bool, requested, approved int) ResultCode {
	if !hindrance {
		return ResultRejected
	}
	return dayResult(requested, approved)
}

// triggers registers which legal grounds forced the subsidiary evaluation.
func triggers(notice claim.NoticeKind, gate NoticeGateState, hindrance bool) []Trigger {
	var ts []Trigger
	if gate == GatePrecluded {
		if notice == claim.NoticeNeutral {
			ts = append(ts, TriggerLateNeutralNotice)
		} else {
			ts = append(ts, TriggerLateSpecifiedNotice)
		}
	}
	if !hindrance {
		ts = append(ts, TriggerNoHindrance)
	}
	return ts
}

// #endregion aggregation
