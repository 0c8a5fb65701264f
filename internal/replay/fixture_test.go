package replay

import (
	"path/filepath"
	"testing"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
)

func TestLoadFixtureFromTestdata(t *testing.T) {
	fix, err := LoadFixture(filepath.Join("testdata", "deadline_adjudication.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if fix.Case.CaseID != "case-fixture-1" {
		t.Fatalf("unexpected case id %q", fix.Case.CaseID)
	}
	if len(fix.Steps) == 0 {
		t.Fatal("expected steps")
	}

	results, sum, err := Run(fix)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Failed != 0 {
		for _, r := range results {
			if !r.Passed {
				t.Errorf("step %q failed: %s", r.Name, r.Detail)
			}
		}
		t.Fatalf("fixture should replay clean, got %+v", sum)
	}
}

func TestBuildCaseRejectsUnknownTrack(t *testing.T) {
	_, err := BuildCase(FixtureCase{
		CaseID:   "case-1",
		Category: "client_change",
		Tracks:   map[string]FixtureTrack{"damages": {Status: "draft"}},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown track")
	}
}

func TestFromCaseRoundTrip(t *testing.T) {
	cs := claim.NewCase("case-1", claim.CategoryClientChange)
	if err := cs.Submit(claim.TrackDeadline); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := cs.Respond(claim.TrackDeadline, claim.ResultRejected, 0); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	rebuilt, err := BuildCase(FromCase(cs))
	if err != nil {
		t.Fatalf("BuildCase: %v", err)
	}
	if rebuilt.Deadline.Status != claim.StatusRejected {
		t.Fatalf("expected rejected, got %s", rebuilt.Deadline.Status)
	}
	if rebuilt.Deadline.Result == nil || *rebuilt.Deadline.Result != claim.ResultRejected {
		t.Fatalf("result lost in round trip: %v", rebuilt.Deadline.Result)
	}
	if rebuilt.Deadline.RespondedVersion == nil || *rebuilt.Deadline.RespondedVersion != 0 {
		t.Fatalf("responded version lost in round trip: %v", rebuilt.Deadline.RespondedVersion)
	}
}
