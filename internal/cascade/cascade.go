// Package cascade resolves which additional tracks a withdrawal must take
// with it. The resolver is advisory and pure: it computes what would be
// withdrawn, and the caller applies every resulting mutation as a single
// atomic transaction.
package cascade

import (
	"github.com/khjohns/unified-timeline-sub004/internal/claim"
)

// #region reason
// Reason is the human-facing code attached to a cascade for messaging.
type Reason string

const (
	// ReasonForward marks withdrawal of the liability basis dragging its
	// dependent claims with it.
	ReasonForward Reason = "forward_cascade"

	// ReasonReverse marks withdrawal of the last active dependent claim
	// dragging the now-purposeless liability basis with it.
	ReasonReverse Reason = "reverse_cascade"
)

// #endregion reason

// #region resolution
// Resolution lists the additional tracks that must join the withdrawal.
// Additional is empty when the withdrawal stands alone.
type Resolution struct {
	Additional []claim.Track
	Reason     Reason
}

// #endregion resolution

// #region resolve
// Resolve computes the single-hop cascade for withdrawing one track.
// Liability is the necessary predicate for the other two: withdrawing it
// cascades forward to every active dependent, and withdrawing the last
// active dependent cascades back to liability. The resolver never chases
// cascades transitively.
func Resolve(cs claim.CaseState, withdrawing claim.Track) Resolution {
	switch withdrawing {
	case claim.TrackLiability:
		var additional []claim.Track
		if cs.Compensation.Active() {
			additional = append(additional, claim.TrackCompensation)
		}
		if cs.Deadline.Active() {
			additional = append(additional, claim.TrackDeadline)
		}
		if len(additional) == 0 {
			return Resolution{}
		}
		return Resolution{Additional: additional, Reason: ReasonForward}

	case claim.TrackCompensation:
		return reverse(cs, cs.Deadline)

	case claim.TrackDeadline:
		return reverse(cs, cs.Compensation)
	}
	return Resolution{}
}

// reverse handles withdrawal of a dependent track: when liability is
// active and the other dependent is already inactive, no active claim
// would remain to rest on the basis, so liability joins the withdrawal.
func reverse(cs claim.CaseState, other claim.TrackState) Resolution {
	if cs.Liability.Active() && !other.Active() {
		return Resolution{
			Additional: []claim.Track{claim.TrackLiability},
			Reason:     ReasonReverse,
		}
	}
	return Resolution{}
}

// #endregion resolve
