package orchestrator

import (
	"errors"
	"testing"

	"github.com/khjohns/unified-timeline-sub004/internal/faults"
)

func TestWithRetryPassesThroughSuccess(t *testing.T) {
	calls := 0
	err := withRetry(func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("expected one successful call, got calls=%d err=%v", calls, err)
	}
}

func TestWithRetryRetriesStaleOnce(t *testing.T) {
	calls := 0
	err := withRetry(func() error {
		calls++
		if calls == 1 {
			return faults.Stale("version advanced")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery on second pass, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestWithRetrySurfacesRepeatedConflict(t *testing.T) {
	calls := 0
	err := withRetry(func() error {
		calls++
		return faults.Stale("version advanced")
	})
	if !faults.IsStale(err) {
		t.Fatalf("expected stale error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("a stale conflict is retried exactly once, got %d calls", calls)
	}
}

func TestWithRetryNeverRetriesOtherKinds(t *testing.T) {
	calls := 0
	precondition := faults.Precondition("locked")
	err := withRetry(func() error {
		calls++
		return precondition
	})
	if !errors.Is(err, precondition) || calls != 1 {
		t.Fatalf("precondition failures must not be retried, calls=%d err=%v", calls, err)
	}
}
