package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/faults"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seededCase(t *testing.T, s *Store) claim.CaseState {
	t.Helper()
	cs := claim.NewCase("case-1", claim.CategoryClientChange)
	if err := s.CreateCase(cs); err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	return cs
}

func TestCreateAndGetCaseRoundTrip(t *testing.T) {
	s := tempStore(t)
	seededCase(t, s)

	got, err := s.GetCase("case-1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if got.CaseID != "case-1" {
		t.Fatalf("expected case-1, got %s", got.CaseID)
	}
	if got.Category != claim.CategoryClientChange {
		t.Fatalf("unexpected category %s", got.Category)
	}
	for _, tr := range claim.Tracks() {
		if st := got.TrackState(tr).Status; st != claim.StatusDraft {
			t.Fatalf("track %s: expected draft, got %s", tr, st)
		}
	}
	if got.DeadlineFacts != nil {
		t.Fatal("no deadline facts were stored")
	}
}

func TestGetMissingCase(t *testing.T) {
	s := tempStore(t)
	_, err := s.GetCase("nope")
	if !faults.IsKind(err, faults.KindPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

func TestDeadlineFactsRoundTrip(t *testing.T) {
	s := tempStore(t)
	seededCase(t, s)

	received := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	facts := claim.DeadlineFacts{
		RequestedDays: 20,
		Notice:        claim.NoticeSpecified,
		ReceivedAt:    received,
	}
	if err := s.SetDeadlineFacts("case-1", facts); err != nil {
		t.Fatalf("SetDeadlineFacts: %v", err)
	}

	got, err := s.GetCase("case-1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if got.DeadlineFacts == nil {
		t.Fatal("expected deadline facts")
	}
	if got.DeadlineFacts.RequestedDays != 20 || got.DeadlineFacts.Notice != claim.NoticeSpecified {
		t.Fatalf("unexpected facts: %+v", got.DeadlineFacts)
	}
	if !got.DeadlineFacts.ReceivedAt.Equal(received) {
		t.Fatalf("expected %v, got %v", received, got.DeadlineFacts.ReceivedAt)
	}
}

func TestUpdateTrackPersistsMutation(t *testing.T) {
	s := tempStore(t)
	cs := seededCase(t, s)

	prev := cs.Liability
	if err := cs.Submit(claim.TrackLiability); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.UpdateTrack("case-1", claim.TrackLiability, prev, cs.Liability); err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}

	got, err := s.GetCase("case-1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if got.Liability.Status != claim.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", got.Liability.Status)
	}
	if got.Liability.VersionCount != 1 {
		t.Fatalf("expected version count 1, got %d", got.Liability.VersionCount)
	}
}

func TestUpdateTrackResponseFieldsRoundTrip(t *testing.T) {
	s := tempStore(t)
	cs := seededCase(t, s)

	prev := cs.Deadline
	if err := cs.Submit(claim.TrackDeadline); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.UpdateTrack("case-1", claim.TrackDeadline, prev, cs.Deadline); err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}

	prev = cs.Deadline
	if err := cs.Respond(claim.TrackDeadline, claim.ResultPartiallyApproved, 0); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if err := s.UpdateTrack("case-1", claim.TrackDeadline, prev, cs.Deadline); err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}

	got, err := s.GetCase("case-1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if got.Deadline.Result == nil || *got.Deadline.Result != claim.ResultPartiallyApproved {
		t.Fatalf("unexpected result: %v", got.Deadline.Result)
	}
	if got.Deadline.RespondedVersion == nil || *got.Deadline.RespondedVersion != 0 {
		t.Fatalf("unexpected responded version: %v", got.Deadline.RespondedVersion)
	}
	if !got.Deadline.HasCurrentResponse() {
		t.Fatal("round-tripped response should target the current version")
	}
}

func TestUpdateTrackStaleVersionConflict(t *testing.T) {
	s := tempStore(t)
	cs := seededCase(t, s)

	// Two parties read the same snapshot.
	readA := cs
	readB := cs

	prevA := readA.Liability
	if err := readA.Submit(claim.TrackLiability); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.UpdateTrack("case-1", claim.TrackLiability, prevA, readA.Liability); err != nil {
		t.Fatalf("UpdateTrack A: %v", err)
	}

	// The second writer's precondition no longer holds.
	prevB := readB.Liability
	if err := readB.Submit(claim.TrackLiability); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	err := s.UpdateTrack("case-1", claim.TrackLiability, prevB, readB.Liability)
	if !faults.IsStale(err) {
		t.Fatalf("expected stale version, got %v", err)
	}
}

func TestUpdateMissingTrack(t *testing.T) {
	s := tempStore(t)
	err := s.UpdateTrack("case-1", claim.TrackLiability, claim.TrackState{}, claim.TrackState{})
	if !faults.IsKind(err, faults.KindPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

func TestWithdrawTracksAtomic(t *testing.T) {
	s := tempStore(t)
	cs := seededCase(t, s)

	for _, tr := range claim.Tracks() {
		prev := *cs.TrackState(tr)
		if err := cs.Submit(tr); err != nil {
			t.Fatalf("Submit %s: %v", tr, err)
		}
		if err := s.UpdateTrack("case-1", tr, prev, *cs.TrackState(tr)); err != nil {
			t.Fatalf("UpdateTrack %s: %v", tr, err)
		}
	}

	// A stale member must roll back the whole cascade: claim the deadline
	// track was still at version count 0.
	stale := cs.Deadline
	stale.VersionCount = 0
	err := s.WithdrawTracks("case-1", map[claim.Track]claim.TrackState{
		claim.TrackLiability: cs.Liability,
		claim.TrackDeadline:  stale,
	})
	if !faults.IsStale(err) {
		t.Fatalf("expected stale version, got %v", err)
	}

	got, err := s.GetCase("case-1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if got.Liability.Status == claim.StatusWithdrawn {
		t.Fatal("partial cascade leaked: liability withdrawn despite rollback")
	}

	// With current snapshots the whole set commits.
	err = s.WithdrawTracks("case-1", map[claim.Track]claim.TrackState{
		claim.TrackLiability: cs.Liability,
		claim.TrackDeadline:  cs.Deadline,
	})
	if err != nil {
		t.Fatalf("WithdrawTracks: %v", err)
	}
	got, err = s.GetCase("case-1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if got.Liability.Status != claim.StatusWithdrawn || got.Deadline.Status != claim.StatusWithdrawn {
		t.Fatalf("expected both withdrawn, got %s/%s", got.Liability.Status, got.Deadline.Status)
	}
	if got.Compensation.Status == claim.StatusWithdrawn {
		t.Fatal("compensation was not part of the cascade")
	}
}

func TestListCases(t *testing.T) {
	s := tempStore(t)
	for _, id := range []string{"case-1", "case-2"} {
		cs := claim.NewCase(id, claim.CategoryClientCircumstance)
		if err := s.CreateCase(cs); err != nil {
			t.Fatalf("CreateCase %s: %v", id, err)
		}
	}
	list, err := s.ListCases(10)
	if err != nil {
		t.Fatalf("ListCases: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(list))
	}
}
