// Package replay runs recorded case snapshots through the three
// evaluators and checks the outcomes against a fixture's expectations.
// Everything happens in memory: fixtures exercise the decision logic
// without persistence or user-input capture.
package replay

import (
	"fmt"
	"sort"
	"strings"

	"github.com/khjohns/unified-timeline-sub004/internal/cascade"
	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/deadline"
	"github.com/khjohns/unified-timeline-sub004/internal/faults"
	"github.com/khjohns/unified-timeline-sub004/internal/permissions"
)

// #region types
// StepResult captures the outcome of replaying one step.
type StepResult struct {
	Name   string
	Op     string
	Passed bool
	Detail string // mismatch description when failed
}

// Summary aggregates a replay run.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// #endregion types

// #region run
// Run replays every step of the fixture against its case snapshot.
func Run(fix Fixture) ([]StepResult, Summary, error) {
	cs, err := BuildCase(fix.Case)
	if err != nil {
		return nil, Summary{}, err
	}

	results := make([]StepResult, 0, len(fix.Steps))
	var sum Summary

	for _, step := range fix.Steps {
		res := runStep(cs, step)
		results = append(results, res)
		sum.Total++
		if res.Passed {
			sum.Passed++
		} else {
			sum.Failed++
		}
	}
	return results, sum, nil
}

func runStep(cs claim.CaseState, step FixtureStep) StepResult {
	res := StepResult{Name: step.Name, Op: step.Op}

	switch step.Op {
	case "actions":
		as := permissions.Evaluate(cs, claim.Role(step.Role))
		res.Passed, res.Detail = checkCapabilities(as, step.Expect.Capabilities)

	case "cascade":
		r := cascade.Resolve(cs, claim.Track(step.Track))
		res.Passed, res.Detail = checkCascade(r, step.Expect.Cascade)

	case "evaluate":
		if cs.DeadlineFacts == nil {
			res.Detail = "fixture has no deadline facts"
			return res
		}
		ev, err := deadline.Evaluate(*cs.DeadlineFacts, toAssessment(step.Assessment))
		if err != nil {
			res.Passed, res.Detail = checkError(err, step.Expect.ErrorKind)
			return res
		}
		if step.Expect.ErrorKind != "" {
			res.Detail = fmt.Sprintf("expected %s error, evaluation succeeded", step.Expect.ErrorKind)
			return res
		}
		res.Passed, res.Detail = checkEvaluation(ev, step.Expect.Evaluation)

	default:
		res.Detail = fmt.Sprintf("unknown op %q", step.Op)
	}
	return res
}

func toAssessment(fa *FixtureAssessment) deadline.Assessment {
	if fa == nil {
		return deadline.Assessment{}
	}
	return deadline.Assessment{
		NoticeTimely:         fa.NoticeTimely,
		RequestSpecification: fa.RequestSpecification,
		HindranceOccurred:    fa.HindranceOccurred,
		ApprovedDays:         fa.ApprovedDays,
	}
}

// #endregion run

// #region checks
func checkCapabilities(as permissions.ActionSet, expected map[string]bool) (bool, string) {
	var mismatches []string
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		got, ok := capabilityValue(as, key)
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("unknown capability %q", key))
			continue
		}
		if got != expected[key] {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %v, got %v", key, expected[key], got))
		}
	}
	if len(mismatches) > 0 {
		return false, strings.Join(mismatches, "; ")
	}
	return true, ""
}

// capabilityValue resolves "track.capability" keys plus the two
// cross-track capability names.
func capabilityValue(as permissions.ActionSet, key string) (bool, bool) {
	switch key {
	case "can_escalate_to_forcing":
		return as.CanEscalateToForcing, true
	case "can_issue_change_order":
		return as.CanIssueChangeOrder, true
	}

	track, action, ok := strings.Cut(key, ".")
	if !ok {
		return false, false
	}
	ta := as.ForTrack(claim.Track(track))
	switch action {
	case "can_submit":
		return ta.CanSubmit, true
	case "can_resubmit":
		return ta.CanResubmit, true
	case "can_withdraw":
		return ta.CanWithdraw, true
	case "can_respond":
		return ta.CanRespond, true
	case "can_update_response":
		return ta.CanUpdateResponse, true
	case "can_accept_response":
		return ta.CanAcceptResponse, true
	}
	return false, false
}

func checkCascade(got cascade.Resolution, want *FixtureCascade) (bool, string) {
	if want == nil {
		return false, "cascade step without expected cascade"
	}
	if string(got.Reason) != want.Reason {
		return false, fmt.Sprintf("reason: expected %q, got %q", want.Reason, got.Reason)
	}
	if len(got.Additional) != len(want.Additional) {
		return false, fmt.Sprintf("additional: expected %v, got %v", want.Additional, got.Additional)
	}
	for i, tr := range want.Additional {
		if string(got.Additional[i]) != tr {
			return false, fmt.Sprintf("additional[%d]: expected %s, got %s", i, tr, got.Additional[i])
		}
	}
	return true, ""
}

func checkEvaluation(got deadline.Evaluation, want *FixtureEvaluation) (bool, string) {
	if want == nil {
		return false, "evaluate step without expected evaluation"
	}
	if string(got.Principal) != want.Principal {
		return false, fmt.Sprintf("principal: expected %s, got %s", want.Principal, got.Principal)
	}
	switch {
	case want.Subsidiary == nil && got.Subsidiary != nil:
		return false, fmt.Sprintf("subsidiary: expected absent, got %s", *got.Subsidiary)
	case want.Subsidiary != nil && got.Subsidiary == nil:
		return false, fmt.Sprintf("subsidiary: expected %s, got absent", *want.Subsidiary)
	case want.Subsidiary != nil && string(*got.Subsidiary) != *want.Subsidiary:
		return false, fmt.Sprintf("subsidiary: expected %s, got %s", *want.Subsidiary, *got.Subsidiary)
	}
	if len(got.Triggers) != len(want.Triggers) {
		return false, fmt.Sprintf("triggers: expected %v, got %v", want.Triggers, got.Triggers)
	}
	for i, tr := range want.Triggers {
		if string(got.Triggers[i]) != tr {
			return false, fmt.Sprintf("triggers[%d]: expected %s, got %s", i, tr, got.Triggers[i])
		}
	}
	if got.ForcingRisk != want.ForcingRisk {
		return false, fmt.Sprintf("forcing_risk: expected %v, got %v", want.ForcingRisk, got.ForcingRisk)
	}
	if got.DeniedDays != want.DeniedDays {
		return false, fmt.Sprintf("denied_days: expected %d, got %d", want.DeniedDays, got.DeniedDays)
	}
	return true, ""
}

func checkError(err error, wantKind string) (bool, string) {
	if wantKind == "" {
		return false, fmt.Sprintf("unexpected error: %v", err)
	}
	if faults.IsKind(err, faults.Kind(wantKind)) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %s error, got %v", wantKind, err)
}

// #endregion checks
