package deadline

import "time"

// #region gate-state
// NoticeGateState is the explicit finite state of the notice-timeliness
// gate. Aggregation is driven by this enumeration, never by recombining
// the raw boolean judgments, so impossible states cannot arise.
type NoticeGateState string

const (
	GateUndetermined          NoticeGateState = "undetermined"
	GatePrecluded             NoticeGateState = "precluded"
	GateNotPrecluded          NoticeGateState = "not_precluded"
	GateAwaitingSpecification NoticeGateState = "awaiting_specification"
)

// #endregion gate-state

// #region assessment
// Assessment carries the approver's gate judgments. Nil pointers mean the
// gate has not been answered yet; the evaluator refuses to aggregate
// around a missing answer rather than guessing.
type Assessment struct {
	// Gate 1. For a neutral notice, a timely finding may additionally be
	// answered with a request for a specified claim, which parks the
	// principal adjudication until the claimant responds.
	NoticeTimely          *bool
	RequestSpecification  bool
	SpecificationDeadline *time.Time

	// Gate 2, judged independently of liability or fault.
	HindranceOccurred *bool

	// Gate 3, the days the approver concedes. Always recorded, even under
	// a principal rejection, because it caps the subsidiary exposure.
	ApprovedDays *int
}

// #endregion assessment

// #region result
// ResultCode is an adjudication outcome of the deadline claim.
type ResultCode string

const (
	ResultAwaiting          ResultCode = "awaiting"
	ResultApproved          ResultCode = "approved"
	ResultPartiallyApproved ResultCode = "partially_approved"
	ResultRejected          ResultCode = "rejected"
)

// #endregion result

// #region trigger
// Trigger names a legal ground that forced the subsidiary evaluation.
type Trigger string

const (
	TriggerLateNeutralNotice   Trigger = "late_neutral_notice"
	TriggerLateSpecifiedNotice Trigger = "late_specified_notice"
	TriggerNoHindrance         Trigger = "no_hindrance"
)

// #endregion trigger

// #region evaluation
// Evaluation is the full adjudication record the submission collaborator
// persists verbatim.
type Evaluation struct {
	NoticeGate NoticeGateState `json:"notice_gate"`

	// Principal is the approver's primary outcome. Subsidiary is present
	// iff Principal is rejected: the fallback position capping exposure
	// should the principal rejection be overturned.
	Principal  ResultCode  `json:"principal_result"`
	Subsidiary *ResultCode `json:"subsidiary_result,omitempty"`
	Triggers   []Trigger   `json:"subsidiary_triggers,omitempty"`

	RequestedDays int `json:"requested_days"`
	ApprovedDays  int `json:"approved_days"`
	DeniedDays    int `json:"denied_days"`

	// ForcingRisk is an advisory annotation: the claimant may be entitled
	// to treat the day shortfall as authorization to accelerate at the
	// approver's cost. The cost-ratio cap belongs to the forcing feature.
	ForcingRisk bool `json:"forcing_risk"`

	SpecificationDeadline *time.Time `json:"specification_deadline,omitempty"`
}

// ForcingBaselineDays returns the day figure the forcing feature must use
// as its cost-cap baseline: the subsidiary concession under a principal
// rejection, the principally approved days otherwise. Both resolve to the
// gate 3 figure, which is recorded unconditionally for exactly this reason.
func (e Evaluation) ForcingBaselineDays() int {
	return e.ApprovedDays
}

// #endregion evaluation
