// Package orchestrator is the submitting party above the pure core: per
// action it loads fresh case state, re-derives permissions, applies the
// lifecycle mutation, persists it under the optimistic precondition, and
// appends the decision log entry. Withdrawals carry their cascade in one
// atomic write.
package orchestrator

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/khjohns/unified-timeline-sub004/internal/cascade"
	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/deadline"
	"github.com/khjohns/unified-timeline-sub004/internal/faults"
	"github.com/khjohns/unified-timeline-sub004/internal/logging"
	"github.com/khjohns/unified-timeline-sub004/internal/permissions"
	"github.com/khjohns/unified-timeline-sub004/internal/state"
)

// #region orchestrator
// Orchestrator applies claim actions against a store.
type Orchestrator struct {
	store *state.Store
}

// New creates an orchestrator backed by the given store.
func New(store *state.Store) *Orchestrator {
	return &Orchestrator{store: store}
}

// Actions returns the fresh capability map for one role. Callers must not
// cache the result across any mutation.
func (o *Orchestrator) Actions(caseID string, role claim.Role) (permissions.ActionSet, error) {
	cs, err := o.store.GetCase(caseID)
	if err != nil {
		return permissions.ActionSet{}, err
	}
	return permissions.Evaluate(cs, role), nil
}

// #endregion orchestrator

// #region track-actions
// Submit submits a draft track for the claimant.
func (o *Orchestrator) Submit(caseID string, t claim.Track) error {
	return o.applyTrack(caseID, t, claim.RoleClaimant, "submit",
		func(a permissions.TrackActions) bool { return a.CanSubmit },
		func(cs *claim.CaseState) error { return cs.Submit(t) })
}

// Resubmit records a new claimant version on a pending or adversely
// adjudicated track.
func (o *Orchestrator) Resubmit(caseID string, t claim.Track) error {
	return o.applyTrack(caseID, t, claim.RoleClaimant, "resubmit",
		func(a permissions.TrackActions) bool { return a.CanResubmit },
		func(cs *claim.CaseState) error { return cs.Resubmit(t) })
}

// Respond records the approver's response to the current version of a
// track. The targeted version is the one read inside this operation; the
// store's optimistic precondition rejects the write if it advances.
func (o *Orchestrator) Respond(caseID string, t claim.Track, result claim.Result) error {
	return o.applyTrack(caseID, t, claim.RoleApprover, "respond",
		func(a permissions.TrackActions) bool { return a.CanRespond },
		func(cs *claim.CaseState) error {
			return cs.Respond(t, result, cs.TrackState(t).CurrentVersion())
		})
}

// UpdateResponse replaces the approver's current response.
func (o *Orchestrator) UpdateResponse(caseID string, t claim.Track, result claim.Result) error {
	return o.applyTrack(caseID, t, claim.RoleApprover, "update_response",
		func(a permissions.TrackActions) bool { return a.CanUpdateResponse },
		func(cs *claim.CaseState) error { return cs.UpdateResponse(t, result) })
}

// Accept records the claimant's acceptance of the current response.
func (o *Orchestrator) Accept(caseID string, t claim.Track) error {
	return o.applyTrack(caseID, t, claim.RoleClaimant, "accept_response",
		func(a permissions.TrackActions) bool { return a.CanAcceptResponse },
		func(cs *claim.CaseState) error { return cs.Accept(t) })
}

// applyTrack is the shared load, permission-check, mutate, persist, log
// sequence for single-track actions. A stale persist is retried once
// against refetched state.
func (o *Orchestrator) applyTrack(
	caseID string,
	t claim.Track,
	role claim.Role,
	verb string,
	allowed func(permissions.TrackActions) bool,
	mutate func(*claim.CaseState) error,
) error {
	return withRetry(func() error {
		cs, err := o.store.GetCase(caseID)
		if err != nil {
			return err
		}
		if !allowed(permissions.Evaluate(cs, role).ForTrack(t)) {
			return faults.Precondition(fmt.Sprintf(
				"%s may not %s track %s of case %s", role, verb, t, caseID))
		}
		prev := *cs.TrackState(t)
		if err := mutate(&cs); err != nil {
			return err
		}
		if err := o.store.UpdateTrack(caseID, t, prev, *cs.TrackState(t)); err != nil {
			return err
		}
		return logging.LogDecision(o.store.DB(), logging.Entry{
			CaseID:  caseID,
			Track:   string(t),
			Actor:   string(role),
			Action:  verb,
			Outcome: string(cs.TrackState(t).Status),
		})
	})
}

// #endregion track-actions

// #region withdraw
// WithdrawOutcome reports which tracks one withdrawal action took down.
type WithdrawOutcome struct {
	Withdrawn []claim.Track  `json:"withdrawn"`
	Reason    cascade.Reason `json:"reason,omitempty"`
}

// Withdraw withdraws a track together with its resolved cascade, all in
// one transaction: either every member commits or none does.
func (o *Orchestrator) Withdraw(caseID string, t claim.Track) (WithdrawOutcome, error) {
	var out WithdrawOutcome
	err := withRetry(func() error {
		cs, err := o.store.GetCase(caseID)
		if err != nil {
			return err
		}
		if !permissions.Evaluate(cs, claim.RoleClaimant).ForTrack(t).CanWithdraw {
			return faults.Precondition(fmt.Sprintf(
				"claimant may not withdraw track %s of case %s", t, caseID))
		}

		res := cascade.Resolve(cs, t)
		tracks := append([]claim.Track{t}, res.Additional...)

		prev := make(map[claim.Track]claim.TrackState, len(tracks))
		for _, tr := range tracks {
			prev[tr] = *cs.TrackState(tr)
			if err := cs.Withdraw(tr); err != nil {
				return err
			}
		}
		if err := o.store.WithdrawTracks(caseID, prev); err != nil {
			return err
		}

		out = WithdrawOutcome{Withdrawn: tracks, Reason: res.Reason}
		detail, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshal withdrawal: %w", err)
		}
		return logging.LogDecision(o.store.DB(), logging.Entry{
			CaseID:     caseID,
			Track:      string(t),
			Actor:      string(claim.RoleClaimant),
			Action:     "withdraw",
			Outcome:    string(res.Reason),
			DetailJSON: string(detail),
		})
	})
	if err != nil {
		return WithdrawOutcome{}, err
	}
	return out, nil
}

// #endregion withdraw

// #region deadline-claim
// SubmitDeadlineClaim records the claim facts and submits (or resubmits)
// the deadline track.
func (o *Orchestrator) SubmitDeadlineClaim(caseID string, facts claim.DeadlineFacts) error {
	return withRetry(func() error {
		cs, err := o.store.GetCase(caseID)
		if err != nil {
			return err
		}
		a := permissions.Evaluate(cs, claim.RoleClaimant).Deadline

		prev := cs.Deadline
		verb := "submit_deadline_claim"
		switch {
		case a.CanSubmit:
			err = cs.Submit(claim.TrackDeadline)
		case a.CanResubmit:
			verb = "resubmit_deadline_claim"
			err = cs.Resubmit(claim.TrackDeadline)
		default:
			return faults.Precondition(fmt.Sprintf(
				"claimant may not submit a deadline claim on case %s", caseID))
		}
		if err != nil {
			return err
		}

		if err := o.store.UpdateTrack(caseID, claim.TrackDeadline, prev, cs.Deadline); err != nil {
			return err
		}
		if err := o.store.SetDeadlineFacts(caseID, facts); err != nil {
			return err
		}
		return logging.LogDecision(o.store.DB(), logging.Entry{
			CaseID:  caseID,
			Track:   string(claim.TrackDeadline),
			Actor:   string(claim.RoleClaimant),
			Action:  verb,
			Outcome: fmt.Sprintf("%d days, %s notice", facts.RequestedDays, facts.Notice),
		})
	})
}

// RespondDeadline runs the four-gate adjudication and persists its
// consequence on the deadline track. The full evaluation record is
// embedded verbatim in the logged event. An awaiting principal result
// parks the track under review without consuming the response slot.
func (o *Orchestrator) RespondDeadline(caseID string, a deadline.Assessment) (deadline.Evaluation, error) {
	var ev deadline.Evaluation
	err := withRetry(func() error {
		cs, err := o.store.GetCase(caseID)
		if err != nil {
			return err
		}
		if cs.DeadlineFacts == nil {
			return faults.Precondition(fmt.Sprintf("case %s has no deadline claim on record", caseID))
		}
		acts := permissions.Evaluate(cs, claim.RoleApprover).Deadline
		if !acts.CanRespond && !acts.CanUpdateResponse {
			return faults.Precondition(fmt.Sprintf(
				"approver may not respond to the deadline claim of case %s", caseID))
		}

		ev, err = deadline.Evaluate(*cs.DeadlineFacts, a)
		if err != nil {
			return err
		}

		prev := cs.Deadline
		if ev.Principal == deadline.ResultAwaiting {
			err = cs.BeginReview(claim.TrackDeadline)
		} else if acts.CanUpdateResponse {
			err = cs.UpdateResponse(claim.TrackDeadline, trackResult(ev.Principal))
		} else {
			err = cs.Respond(claim.TrackDeadline, trackResult(ev.Principal), cs.Deadline.CurrentVersion())
		}
		if err != nil {
			return err
		}

		if err := o.store.UpdateTrack(caseID, claim.TrackDeadline, prev, cs.Deadline); err != nil {
			return err
		}

		detail, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal evaluation: %w", err)
		}
		return logging.LogDecision(o.store.DB(), logging.Entry{
			CaseID:     caseID,
			Track:      string(claim.TrackDeadline),
			Actor:      string(claim.RoleApprover),
			Action:     "respond_deadline",
			Outcome:    string(ev.Principal),
			DetailJSON: string(detail),
		})
	})
	if err != nil {
		return deadline.Evaluation{}, err
	}
	return ev, nil
}

// trackResult maps a conclusive principal outcome onto the track result.
func trackResult(r deadline.ResultCode) claim.Result {
	switch r {
	case deadline.ResultApproved:
		return claim.ResultApproved
	case deadline.ResultPartiallyApproved:
		return claim.ResultPartiallyApproved
	}
	return claim.ResultRejected
}

// #endregion deadline-claim

// #region change-order
// IssueChangeOrder locks the liability basis once the externally computed
// eligibility flag allows a change order.
func (o *Orchestrator) IssueChangeOrder(caseID string) error {
	return withRetry(func() error {
		cs, err := o.store.GetCase(caseID)
		if err != nil {
			return err
		}
		if !permissions.Evaluate(cs, claim.RoleApprover).CanIssueChangeOrder {
			return faults.Precondition(fmt.Sprintf("case %s is not change-order eligible", caseID))
		}
		prev := cs.Liability
		if err := cs.SetLocked(true); err != nil {
			return err
		}
		if err := o.store.UpdateTrack(caseID, claim.TrackLiability, prev, cs.Liability); err != nil {
			return err
		}
		return logging.LogDecision(o.store.DB(), logging.Entry{
			CaseID:  caseID,
			Track:   string(claim.TrackLiability),
			Actor:   string(claim.RoleApprover),
			Action:  "issue_change_order",
			Outcome: "liability_locked",
		})
	})
}

// #endregion change-order
