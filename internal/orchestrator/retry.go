package orchestrator

import "github.com/khjohns/unified-timeline-sub004/internal/faults"

// A stale-version conflict may be retried exactly once: the operation
// refetches state and re-derives permissions on the second pass. A second
// conflict likely means the other party is editing concurrently, which
// the user should see rather than have retried away.
const maxStaleRetries = 1

// withRetry runs op, retrying once on a stale-version conflict. Every
// other error, and a repeated conflict, is returned as is.
func withRetry(op func() error) error {
	var err error
	for attempt := 0; attempt <= maxStaleRetries; attempt++ {
		err = op()
		if err == nil || !faults.IsStale(err) {
			return err
		}
	}
	return err
}
