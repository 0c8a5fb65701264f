// Package state is the persistence boundary of the claims engine: a
// SQLite store for case snapshots with the optimistic-concurrency and
// atomic-cascade guarantees the pure core obligates its callers to keep.
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/faults"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS cases (
	case_id               TEXT PRIMARY KEY,
	liability_category    TEXT NOT NULL,
	change_order_eligible INTEGER NOT NULL DEFAULT 0,
	requested_days        INTEGER,
	notice_kind           TEXT,
	claim_received_at     TEXT,
	created_at            TEXT NOT NULL,
	updated_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS track_states (
	case_id            TEXT NOT NULL,
	track              TEXT NOT NULL,
	status             TEXT NOT NULL,
	version_count      INTEGER NOT NULL DEFAULT 0,
	responded_version  INTEGER,
	approver_result    TEXT,
	claimant_accepted  INTEGER NOT NULL DEFAULT 0,
	locked             INTEGER NOT NULL DEFAULT 0,
	updated_at         TEXT NOT NULL,
	PRIMARY KEY (case_id, track),
	FOREIGN KEY (case_id) REFERENCES cases(case_id)
);

CREATE TABLE IF NOT EXISTS decision_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id     TEXT NOT NULL,
	track       TEXT,
	actor       TEXT NOT NULL,
	action      TEXT NOT NULL,
	outcome     TEXT,
	reason      TEXT,
	detail_json TEXT,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (case_id) REFERENCES cases(case_id)
);
`

// #endregion schema

// #region store-struct
// Store manages claim cases in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region create-case
// CreateCase inserts a case and its three track rows in one transaction.
func (s *Store) CreateCase(cs claim.CaseState) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO cases (case_id, liability_category, change_order_eligible, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		cs.CaseID, string(cs.Category), boolInt(cs.ChangeOrderEligible), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}

	for _, t := range claim.Tracks() {
		if err := insertTrack(tx, cs.CaseID, t, *cs.TrackState(t), now); err != nil {
			return err
		}
	}

	if cs.DeadlineFacts != nil {
		if err := writeFacts(tx, cs.CaseID, *cs.DeadlineFacts, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertTrack(tx *sql.Tx, caseID string, t claim.Track, ts claim.TrackState, now string) error {
	_, err := tx.Exec(
		`INSERT INTO track_states (case_id, track, status, version_count, responded_version, approver_result, claimant_accepted, locked, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		caseID, string(t), string(ts.Status), ts.VersionCount,
		nullableInt(ts.RespondedVersion), nullableResult(ts.Result),
		boolInt(ts.Accepted), boolInt(ts.Locked), now,
	)
	if err != nil {
		return fmt.Errorf("insert track %s: %w", t, err)
	}
	return nil
}

// #endregion create-case

// #region get-case
// GetCase reads a full case snapshot.
func (s *Store) GetCase(caseID string) (claim.CaseState, error) {
	var cs claim.CaseState
	var category string
	var eligible int
	var requestedDays sql.NullInt64
	var noticeKind, receivedAt sql.NullString

	err := s.db.QueryRow(
		`SELECT case_id, liability_category, change_order_eligible, requested_days, notice_kind, claim_received_at
		 FROM cases WHERE case_id = ?`, caseID,
	).Scan(&cs.CaseID, &category, &eligible, &requestedDays, &noticeKind, &receivedAt)
	if err == sql.ErrNoRows {
		return claim.CaseState{}, faults.Precondition(fmt.Sprintf("case %s not found", caseID))
	}
	if err != nil {
		return claim.CaseState{}, fmt.Errorf("get case %s: %w", caseID, err)
	}

	cs.Category = claim.LiabilityCategory(category)
	cs.ChangeOrderEligible = eligible != 0

	if requestedDays.Valid && noticeKind.Valid {
		facts := claim.DeadlineFacts{
			RequestedDays: int(requestedDays.Int64),
			Notice:        claim.NoticeKind(noticeKind.String),
		}
		if receivedAt.Valid {
			facts.ReceivedAt, _ = time.Parse(time.RFC3339Nano, receivedAt.String)
		}
		cs.DeadlineFacts = &facts
	}

	rows, err := s.db.Query(
		`SELECT track, status, version_count, responded_version, approver_result, claimant_accepted, locked
		 FROM track_states WHERE case_id = ?`, caseID,
	)
	if err != nil {
		return claim.CaseState{}, fmt.Errorf("get tracks %s: %w", caseID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var track, status string
		var ts claim.TrackState
		var responded sql.NullInt64
		var result sql.NullString
		var accepted, locked int

		if err := rows.Scan(&track, &status, &ts.VersionCount, &responded, &result, &accepted, &locked); err != nil {
			return claim.CaseState{}, fmt.Errorf("scan track: %w", err)
		}
		ts.Status = claim.Status(status)
		if responded.Valid {
			v := int(responded.Int64)
			ts.RespondedVersion = &v
		}
		if result.Valid {
			r := claim.Result(result.String)
			ts.Result = &r
		}
		ts.Accepted = accepted != 0
		ts.Locked = locked != 0

		if dst := cs.TrackState(claim.Track(track)); dst != nil {
			*dst = ts
		}
	}
	return cs, rows.Err()
}

// #endregion get-case

// #region list-cases
// ListCases returns case summaries, most recently updated first.
func (s *Store) ListCases(limit int) ([]CaseSummary, error) {
	rows, err := s.db.Query(
		`SELECT case_id, liability_category, created_at, updated_at
		 FROM cases ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []CaseSummary
	for rows.Next() {
		var cs CaseSummary
		var created, updated string
		if err := rows.Scan(&cs.CaseID, &cs.Category, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cs.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		cs.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, cs)
	}
	return out, rows.Err()
}

// #endregion list-cases

// #region deadline-facts
// SetDeadlineFacts records the claimant-submitted deadline claim facts.
func (s *Store) SetDeadlineFacts(caseID string, facts claim.DeadlineFacts) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeFacts(tx, caseID, facts, now); err != nil {
		return err
	}
	return tx.Commit()
}

func writeFacts(tx *sql.Tx, caseID string, facts claim.DeadlineFacts, now string) error {
	res, err := tx.Exec(
		`UPDATE cases SET requested_days = ?, notice_kind = ?, claim_received_at = ?, updated_at = ?
		 WHERE case_id = ?`,
		facts.RequestedDays, string(facts.Notice),
		facts.ReceivedAt.UTC().Format(time.RFC3339Nano), now, caseID,
	)
	if err != nil {
		return fmt.Errorf("set deadline facts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set deadline facts: %w", err)
	}
	if n == 0 {
		return faults.Precondition(fmt.Sprintf("case %s not found", caseID))
	}
	return nil
}

// #endregion deadline-facts

// #region update-track
// UpdateTrack persists one track mutation, conditioned on the previously
// read version count and status still being current. A conditional-write
// miss on an existing row is a stale-version conflict: the caller must
// refetch and re-derive permissions before trying again.
func (s *Store) UpdateTrack(caseID string, t claim.Track, prev, next claim.TrackState) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := updateTrackTx(tx, caseID, t, prev, next, now); err != nil {
		return err
	}
	if err := touchCase(tx, caseID, now); err != nil {
		return err
	}
	return tx.Commit()
}

func updateTrackTx(tx *sql.Tx, caseID string, t claim.Track, prev, next claim.TrackState, now string) error {
	res, err := tx.Exec(
		`UPDATE track_states
		 SET status = ?, version_count = ?, responded_version = ?, approver_result = ?, claimant_accepted = ?, locked = ?, updated_at = ?
		 WHERE case_id = ? AND track = ? AND version_count = ? AND status = ?`,
		string(next.Status), next.VersionCount,
		nullableInt(next.RespondedVersion), nullableResult(next.Result),
		boolInt(next.Accepted), boolInt(next.Locked), now,
		caseID, string(t), prev.VersionCount, string(prev.Status),
	)
	if err != nil {
		return fmt.Errorf("update track %s: %w", t, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update track %s: %w", t, err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM track_states WHERE case_id = ? AND track = ?`,
		caseID, string(t),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("update track %s: %w", t, err)
	}
	if exists == 0 {
		return faults.Precondition(fmt.Sprintf("case %s has no track %s", caseID, t))
	}
	return faults.WithMetadata(faults.KindStaleVersion,
		fmt.Sprintf("track %s of case %s changed since it was read", t, caseID),
		map[string]string{"case": caseID, "track": string(t)})
}

func touchCase(tx *sql.Tx, caseID string, now string) error {
	if _, err := tx.Exec(`UPDATE cases SET updated_at = ? WHERE case_id = ?`, now, caseID); err != nil {
		return fmt.Errorf("touch case: %w", err)
	}
	return nil
}

// #endregion update-track

// #region withdraw-tracks
// WithdrawTracks applies a withdrawal and its cascade as one transaction.
// Every member write is conditioned on the snapshot it was resolved
// against; a single stale member rolls back the whole set, keeping the
// cross-track invariant intact.
func (s *Store) WithdrawTracks(caseID string, prev map[claim.Track]claim.TrackState) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for t, p := range prev {
		next := p
		next.Status = claim.StatusWithdrawn
		if err := updateTrackTx(tx, caseID, t, p, next, now); err != nil {
			return err
		}
	}
	if err := touchCase(tx, caseID, now); err != nil {
		return err
	}
	return tx.Commit()
}

// #endregion withdraw-tracks

// #region helpers
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableResult(r *claim.Result) interface{} {
	if r == nil {
		return nil
	}
	return string(*r)
}

// #endregion helpers
