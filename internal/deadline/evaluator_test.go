package deadline

import (
	"testing"
	"time"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/faults"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func facts(notice claim.NoticeKind, requested int) claim.DeadlineFacts {
	return claim.DeadlineFacts{
		RequestedDays: requested,
		Notice:        notice,
		ReceivedAt:    time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
}

func assessment(timely, hindrance bool, approved int) Assessment {
	return Assessment{
		NoticeTimely:      boolPtr(timely),
		HindranceOccurred: boolPtr(hindrance),
		ApprovedDays:      intPtr(approved),
	}
}

// Late specified notice, but hindrance and full days conceded: principally
// precluded, subsidiarily approved.
func TestLateSpecifiedNoticeFullSubsidiaryApproval(t *testing.T) {
	ev, err := Evaluate(facts(claim.NoticeSpecified, 20), assessment(false, true, 20))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Principal != ResultRejected {
		t.Fatalf("expected principal rejected, got %s", ev.Principal)
	}
	if ev.Subsidiary == nil || *ev.Subsidiary != ResultApproved {
		t.Fatalf("expected subsidiary approved, got %v", ev.Subsidiary)
	}
	if len(ev.Triggers) != 1 || ev.Triggers[0] != TriggerLateSpecifiedNotice {
		t.Fatalf("expected late_specified_notice trigger, got %v", ev.Triggers)
	}
}

// Timely neutral notice answered with a specification request parks the
// principal adjudication without any subsidiary position.
func TestSpecificationRequestParksAdjudication(t *testing.T) {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	a := Assessment{
		NoticeTimely:          boolPtr(true),
		RequestSpecification:  true,
		SpecificationDeadline: &due,
	}
	ev, err := Evaluate(facts(claim.NoticeNeutral, 15), a)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Principal != ResultAwaiting {
		t.Fatalf("expected awaiting, got %s", ev.Principal)
	}
	if ev.NoticeGate != GateAwaitingSpecification {
		t.Fatalf("expected awaiting_specification gate, got %s", ev.NoticeGate)
	}
	if ev.Subsidiary != nil {
		t.Fatalf("awaiting must carry no subsidiary, got %v", *ev.Subsidiary)
	}
	if ev.ForcingRisk {
		t.Fatal("awaiting must not raise forcing risk")
	}
	if ev.SpecificationDeadline == nil || !ev.SpecificationDeadline.Equal(due) {
		t.Fatalf("expected specification deadline carried through, got %v", ev.SpecificationDeadline)
	}
}

// A specification request does not need gates 2 and 3 answered: the
// principal result is awaiting and no subsidiary exists to feed.
func TestSpecificationRequestNeedsNoLaterGates(t *testing.T) {
	a := Assessment{NoticeTimely: boolPtr(true), RequestSpecification: true}
	ev, err := Evaluate(facts(claim.NoticeNeutral, 15), a)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Principal != ResultAwaiting {
		t.Fatalf("expected awaiting, got %s", ev.Principal)
	}
}

// No hindrance rejects both principally and subsidiarily regardless of the
// day concession.
func TestNoHindranceRejectsBothTracks(t *testing.T) {
	for _, approved := range []int{0, 5, 10} {
		ev, err := Evaluate(facts(claim.NoticeSpecified, 10), assessment(true, false, approved))
		if err != nil {
			t.Fatalf("Evaluate(approved=%d): %v", approved, err)
		}
		if ev.Principal != ResultRejected {
			t.Fatalf("approved=%d: expected principal rejected, got %s", approved, ev.Principal)
		}
		if ev.Subsidiary == nil || *ev.Subsidiary != ResultRejected {
			t.Fatalf("approved=%d: expected subsidiary rejected, got %v", approved, ev.Subsidiary)
		}
		if len(ev.Triggers) != 1 || ev.Triggers[0] != TriggerNoHindrance {
			t.Fatalf("approved=%d: expected no_hindrance trigger, got %v", approved, ev.Triggers)
		}
	}
}

// Partial day concession: partial approval, forcing risk, denied days.
func TestPartialApprovalRaisesForcingRisk(t *testing.T) {
	ev, err := Evaluate(facts(claim.NoticeSpecified, 10), assessment(true, true, 7))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Principal != ResultPartiallyApproved {
		t.Fatalf("expected partially_approved, got %s", ev.Principal)
	}
	if ev.Subsidiary != nil {
		t.Fatal("partial approval must carry no subsidiary")
	}
	if !ev.ForcingRisk {
		t.Fatal("expected forcing risk on a day shortfall")
	}
	if ev.DeniedDays != 3 {
		t.Fatalf("expected 3 denied days, got %d", ev.DeniedDays)
	}
}

func TestLateNeutralNoticeTrigger(t *testing.T) {
	ev, err := Evaluate(facts(claim.NoticeNeutral, 10), assessment(false, true, 10))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Principal != ResultRejected {
		t.Fatalf("expected rejected, got %s", ev.Principal)
	}
	if len(ev.Triggers) != 1 || ev.Triggers[0] != TriggerLateNeutralNotice {
		t.Fatalf("expected late_neutral_notice trigger, got %v", ev.Triggers)
	}
}

func TestPreclusionAndNoHindranceBothRegistered(t *testing.T) {
	ev, err := Evaluate(facts(claim.NoticeForceMajeure, 10), assessment(false, false, 10))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(ev.Triggers) != 2 {
		t.Fatalf("expected both triggers, got %v", ev.Triggers)
	}
	if ev.Triggers[0] != TriggerLateSpecifiedNotice || ev.Triggers[1] != TriggerNoHindrance {
		t.Fatalf("unexpected triggers: %v", ev.Triggers)
	}
}

func TestZeroDayRequestApproves(t *testing.T) {
	ev, err := Evaluate(facts(claim.NoticeSpecified, 0), assessment(true, true, 0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Principal != ResultApproved {
		t.Fatalf("expected approved, got %s", ev.Principal)
	}
	if ev.ForcingRisk {
		t.Fatal("no shortfall, no forcing risk")
	}
}

// The 99% threshold is a deliberate near-equality tolerance: 99/100 is a
// full approval, 98/100 a partial one.
func TestNearFullApprovalBoundary(t *testing.T) {
	ev, err := Evaluate(facts(claim.NoticeSpecified, 100), assessment(true, true, 99))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Principal != ResultApproved {
		t.Fatalf("99/100: expected approved, got %s", ev.Principal)
	}
	if !ev.ForcingRisk {
		t.Fatal("99/100 still leaves a day shortfall, forcing risk applies")
	}

	ev, err = Evaluate(facts(claim.NoticeSpecified, 100), assessment(true, true, 98))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Principal != ResultPartiallyApproved {
		t.Fatalf("98/100: expected partially_approved, got %s", ev.Principal)
	}
}

// For a fixed positive hindrance the principal result is strictly monotone
// in approved days: partial below the 99% line, approved at or above it.
func TestDayResultMonotone(t *testing.T) {
	const requested = 200
	crossed := false
	for approved := 0; approved <= requested; approved++ {
		ev, err := Evaluate(facts(claim.NoticeSpecified, requested), assessment(true, true, approved))
		if err != nil {
			t.Fatalf("Evaluate(approved=%d): %v", approved, err)
		}
		atOrAbove := float64(approved)/float64(requested) >= 0.99
		switch {
		case atOrAbove && ev.Principal != ResultApproved:
			t.Fatalf("approved=%d: expected approved, got %s", approved, ev.Principal)
		case !atOrAbove && ev.Principal != ResultPartiallyApproved:
			t.Fatalf("approved=%d: expected partially_approved, got %s", approved, ev.Principal)
		}
		if crossed && !atOrAbove {
			t.Fatalf("approved=%d: result regressed after crossing the threshold", approved)
		}
		crossed = crossed || atOrAbove
	}
}

// Subsidiary activation law: a subsidiary position exists iff the
// principal result is a rejection.
func TestSubsidiaryPresentIffPrincipalRejected(t *testing.T) {
	cases := []struct {
		name string
		f    claim.DeadlineFacts
		a    Assessment
	}{
		{"precluded", facts(claim.NoticeSpecified, 10), assessment(false, true, 10)},
		{"no hindrance", facts(claim.NoticeSpecified, 10), assessment(true, false, 10)},
		{"approved", facts(claim.NoticeSpecified, 10), assessment(true, true, 10)},
		{"partial", facts(claim.NoticeSpecified, 10), assessment(true, true, 4)},
		{"awaiting", facts(claim.NoticeNeutral, 10), Assessment{NoticeTimely: boolPtr(true), RequestSpecification: true}},
	}
	for _, tc := range cases {
		ev, err := Evaluate(tc.f, tc.a)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if (ev.Principal == ResultRejected) != (ev.Subsidiary != nil) {
			t.Fatalf("%s: principal=%s subsidiary=%v violates activation law", tc.name, ev.Principal, ev.Subsidiary)
		}
		if ev.Principal != ResultRejected && len(ev.Triggers) != 0 {
			t.Fatalf("%s: triggers without a principal rejection: %v", tc.name, ev.Triggers)
		}
	}
}

func TestIncompleteGatesRefused(t *testing.T) {
	f := facts(claim.NoticeSpecified, 10)

	_, err := Evaluate(f, Assessment{})
	if !faults.IsKind(err, faults.KindIncompleteEvaluation) {
		t.Fatalf("missing gate 1: expected incomplete, got %v", err)
	}

	_, err = Evaluate(f, Assessment{NoticeTimely: boolPtr(true), ApprovedDays: intPtr(10)})
	if !faults.IsKind(err, faults.KindIncompleteEvaluation) {
		t.Fatalf("missing gate 2: expected incomplete, got %v", err)
	}

	_, err = Evaluate(f, Assessment{NoticeTimely: boolPtr(true), HindranceOccurred: boolPtr(true)})
	if !faults.IsKind(err, faults.KindIncompleteEvaluation) {
		t.Fatalf("missing gate 3: expected incomplete, got %v", err)
	}
}

func TestSpecificationRequestOnSpecifiedNoticeRefused(t *testing.T) {
	a := Assessment{NoticeTimely: boolPtr(true), RequestSpecification: true}
	_, err := Evaluate(facts(claim.NoticeSpecified, 10), a)
	if !faults.IsKind(err, faults.KindPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

func TestNegativeDaysRefused(t *testing.T) {
	_, err := Evaluate(facts(claim.NoticeSpecified, -1), assessment(true, true, 0))
	if !faults.IsKind(err, faults.KindPreconditionFailed) {
		t.Fatalf("negative request: expected precondition failure, got %v", err)
	}

	_, err = Evaluate(facts(claim.NoticeSpecified, 10), assessment(true, true, -1))
	if !faults.IsKind(err, faults.KindPreconditionFailed) {
		t.Fatalf("negative concession: expected precondition failure, got %v", err)
	}
}

func TestDefaultAssessmentConcedesRequestedDays(t *testing.T) {
	a := DefaultAssessment(facts(claim.NoticeSpecified, 14))
	if a.ApprovedDays == nil || *a.ApprovedDays != 14 {
		t.Fatalf("expected 14 days pre-filled, got %v", a.ApprovedDays)
	}
	if a.NoticeTimely != nil || a.HindranceOccurred != nil {
		t.Fatal("gates 1 and 2 must stay unanswered")
	}
}

// The forcing baseline is the gate 3 figure under both a rejection (the
// subsidiary concession) and an adverse day calculation.
func TestForcingBaselineDays(t *testing.T) {
	ev, err := Evaluate(facts(claim.NoticeSpecified, 20), assessment(false, true, 12))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.ForcingBaselineDays() != 12 {
		t.Fatalf("expected baseline 12, got %d", ev.ForcingBaselineDays())
	}
}
