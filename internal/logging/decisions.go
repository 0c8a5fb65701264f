// Package logging appends applied actions and adjudications to the
// decision_log table, giving every case a replayable audit trail.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-decision
// LogDecision writes a decision entry to the decision_log table.
func LogDecision(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO decision_log (case_id, track, actor, action, outcome, reason, detail_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.CaseID,
		nullIfEmpty(entry.Track),
		entry.Actor,
		entry.Action,
		nullIfEmpty(entry.Outcome),
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.DetailJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region recent
// RecentDecisions returns the newest entries for one case, newest first.
func RecentDecisions(db *sql.DB, caseID string, limit int) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT case_id, track, actor, action, outcome, reason, detail_json, created_at
		 FROM decision_log WHERE case_id = ? ORDER BY id DESC LIMIT ?`,
		caseID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent decisions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var track, outcome, reason, detail sql.NullString
		var created string
		if err := rows.Scan(&e.CaseID, &track, &e.Actor, &e.Action, &outcome, &reason, &detail, &created); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.Track = track.String
		e.Outcome = outcome.String
		e.Reason = reason.String
		e.DetailJSON = detail.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
