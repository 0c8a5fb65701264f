package replay

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: one case
// snapshot plus a sequence of evaluation steps with expected outcomes.
type Fixture struct {
	Description string        `json:"description"`
	Case        FixtureCase   `json:"case"`
	Steps       []FixtureStep `json:"steps"`
}

// FixtureCase is the JSON-serializable case snapshot.
type FixtureCase struct {
	CaseID              string                  `json:"case_id"`
	Category            string                  `json:"category"`
	ChangeOrderEligible bool                    `json:"change_order_eligible,omitempty"`
	Tracks              map[string]FixtureTrack `json:"tracks"`
	DeadlineFacts       *FixtureDeadlineFacts   `json:"deadline_facts,omitempty"`
}

// FixtureTrack mirrors claim.TrackState with JSON tags.
type FixtureTrack struct {
	Status           string  `json:"status"`
	VersionCount     int     `json:"version_count,omitempty"`
	RespondedVersion *int    `json:"responded_version,omitempty"`
	Result           *string `json:"approver_result,omitempty"`
	Accepted         bool    `json:"claimant_accepted,omitempty"`
	Locked           bool    `json:"locked,omitempty"`
}

// FixtureDeadlineFacts mirrors claim.DeadlineFacts with JSON tags.
type FixtureDeadlineFacts struct {
	RequestedDays int    `json:"requested_days"`
	Notice        string `json:"notice"`
	ReceivedAt    string `json:"received_at,omitempty"` // RFC 3339
}

// FixtureStep is one evaluation against the snapshot: a capability
// derivation, a cascade resolution, or a deadline adjudication.
type FixtureStep struct {
	Name       string             `json:"name"`
	Op         string             `json:"op"` // "actions" | "cascade" | "evaluate"
	Role       string             `json:"role,omitempty"`
	Track      string             `json:"track,omitempty"`
	Assessment *FixtureAssessment `json:"assessment,omitempty"`
	Expect     FixtureExpect      `json:"expect"`
}

// FixtureAssessment mirrors deadline.Assessment with JSON tags.
type FixtureAssessment struct {
	NoticeTimely         *bool `json:"notice_timely,omitempty"`
	RequestSpecification bool  `json:"request_specification,omitempty"`
	HindranceOccurred    *bool `json:"hindrance_occurred,omitempty"`
	ApprovedDays         *int  `json:"approved_days,omitempty"`
}

// FixtureExpect captures the expected outcome of one step. Capabilities
// are a sparse map keyed "track.capability" (or a cross-track capability
// name); only listed keys are checked.
type FixtureExpect struct {
	Capabilities map[string]bool    `json:"capabilities,omitempty"`
	Cascade      *FixtureCascade    `json:"cascade,omitempty"`
	Evaluation   *FixtureEvaluation `json:"evaluation,omitempty"`
	ErrorKind    string             `json:"error_kind,omitempty"`
}

// FixtureCascade is the expected cascade resolution.
type FixtureCascade struct {
	Additional []string `json:"additional"`
	Reason     string   `json:"reason,omitempty"`
}

// FixtureEvaluation is the expected deadline adjudication.
type FixtureEvaluation struct {
	Principal   string   `json:"principal_result"`
	Subsidiary  *string  `json:"subsidiary_result,omitempty"`
	Triggers    []string `json:"subsidiary_triggers,omitempty"`
	ForcingRisk bool     `json:"forcing_risk,omitempty"`
	DeniedDays  int      `json:"denied_days,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fix Fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return fix, nil
}

// BuildCase converts the fixture snapshot into a case state.
func BuildCase(fc FixtureCase) (claim.CaseState, error) {
	cs := claim.CaseState{
		CaseID:              fc.CaseID,
		Category:            claim.LiabilityCategory(fc.Category),
		ChangeOrderEligible: fc.ChangeOrderEligible,
		Liability:           claim.TrackState{Status: claim.StatusDraft},
		Compensation:        claim.TrackState{Status: claim.StatusDraft},
		Deadline:            claim.TrackState{Status: claim.StatusDraft},
	}

	for name, ft := range fc.Tracks {
		dst := cs.TrackState(claim.Track(name))
		if dst == nil {
			return claim.CaseState{}, fmt.Errorf("unknown track %q in fixture", name)
		}
		ts := claim.TrackState{
			Status:       claim.Status(ft.Status),
			VersionCount: ft.VersionCount,
			Accepted:     ft.Accepted,
			Locked:       ft.Locked,
		}
		if ft.RespondedVersion != nil {
			v := *ft.RespondedVersion
			ts.RespondedVersion = &v
		}
		if ft.Result != nil {
			r := claim.Result(*ft.Result)
			ts.Result = &r
		}
		*dst = ts
	}

	if fc.DeadlineFacts != nil {
		facts := claim.DeadlineFacts{
			RequestedDays: fc.DeadlineFacts.RequestedDays,
			Notice:        claim.NoticeKind(fc.DeadlineFacts.Notice),
		}
		if fc.DeadlineFacts.ReceivedAt != "" {
			t, err := time.Parse(time.RFC3339, fc.DeadlineFacts.ReceivedAt)
			if err != nil {
				return claim.CaseState{}, fmt.Errorf("parse received_at: %w", err)
			}
			facts.ReceivedAt = t
		}
		cs.DeadlineFacts = &facts
	}

	return cs, nil
}

// FromCase converts a case state into a fixture snapshot, the starting
// point fixture-export writes out.
func FromCase(cs claim.CaseState) FixtureCase {
	fc := FixtureCase{
		CaseID:              cs.CaseID,
		Category:            string(cs.Category),
		ChangeOrderEligible: cs.ChangeOrderEligible,
		Tracks:              make(map[string]FixtureTrack, 3),
	}
	for _, t := range claim.Tracks() {
		ts := cs.TrackState(t)
		ft := FixtureTrack{
			Status:       string(ts.Status),
			VersionCount: ts.VersionCount,
			Accepted:     ts.Accepted,
			Locked:       ts.Locked,
		}
		if ts.RespondedVersion != nil {
			v := *ts.RespondedVersion
			ft.RespondedVersion = &v
		}
		if ts.Result != nil {
			r := string(*ts.Result)
			ft.Result = &r
		}
		fc.Tracks[string(t)] = ft
	}
	if cs.DeadlineFacts != nil {
		fc.DeadlineFacts = &FixtureDeadlineFacts{
			RequestedDays: cs.DeadlineFacts.RequestedDays,
			Notice:        string(cs.DeadlineFacts.Notice),
			ReceivedAt:    cs.DeadlineFacts.ReceivedAt.UTC().Format(time.RFC3339),
		}
	}
	return fc
}

// #endregion fixture-loader
