package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/lexseg/internal/lexicon"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	output_base   TEXT,
	config_json   TEXT NOT NULL,
	metrics_json  TEXT,
	status        TEXT NOT NULL,
	lex_time      INTEGER NOT NULL DEFAULT 1,
	num_tokens    INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	finished_at   TEXT
);

CREATE TABLE IF NOT EXISTS lexicon_words (
	run_id          TEXT NOT NULL,
	position        INTEGER NOT NULL,
	word_key        TEXT NOT NULL,
	units_json      TEXT NOT NULL,
	stresses        TEXT NOT NULL,
	raw_score       REAL NOT NULL,
	timestamp       INTEGER NOT NULL,
	observed_json   TEXT NOT NULL,
	observed_count  INTEGER NOT NULL,
	PRIMARY KEY (run_id, word_key),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS segmentation_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	utterance_index INTEGER NOT NULL,
	phase           TEXT NOT NULL,
	seg_text        TEXT NOT NULL,
	beam_peak       INTEGER,
	survivors       INTEGER,
	blamed          TEXT,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS active_run (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	run_id        TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store keeps experiment runs and their learned lexicons in SQLite.
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
	// pragmas are per connection and batch runs write concurrently
	db.SetMaxOpenConns(1)
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

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for the segmentation log.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region begin-run
// BeginRun records a new running run and returns it with a fresh ID.
func (s *Store) BeginRun(name, outputBase, configJSON string) (RunRecord, error) {
	rec := RunRecord{
		RunID:      uuid.New().String(),
		Name:       name,
		OutputBase: outputBase,
		ConfigJSON: configJSON,
		Status:     StatusRunning,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, name, output_base, config_json, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Name, nullIfEmpty(rec.OutputBase), rec.ConfigJSON, rec.Status,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// #endregion begin-run

// #region finish-run
// FinishRun stores the metrics and the lexicon snapshot of a run and makes
// it the active run, all in one transaction.
func (s *Store) FinishRun(runID, metricsJSON string, snap lexicon.Snapshot, stressSensitive bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE runs SET metrics_json = ?, status = ?, lex_time = ?, num_tokens = ?, finished_at = ?
		 WHERE run_id = ?`,
		nullIfEmpty(metricsJSON), StatusDone, snap.Time, snap.NumTokens,
		time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO lexicon_words (run_id, position, word_key, units_json, stresses, raw_score, timestamp, observed_json, observed_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare words: %w", err)
	}
	defer stmt.Close()

	for i, w := range snap.Words {
		unitsJSON, err := json.Marshal(w.Units)
		if err != nil {
			return fmt.Errorf("marshal units: %w", err)
		}
		observedJSON, err := json.Marshal(w.ObservedStresses)
		if err != nil {
			return fmt.Errorf("marshal observed stresses: %w", err)
		}
		key := lexicon.Key(w.Units, w.Stresses, stressSensitive)
		if _, err := stmt.Exec(runID, i, key, string(unitsJSON), encodeStresses(w.Stresses),
			w.Score, w.Timestamp, string(observedJSON), w.ObservedCount); err != nil {
			return fmt.Errorf("insert word %s: %w", key, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO active_run (id, run_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET run_id = excluded.run_id`,
		runID,
	); err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return tx.Commit()
}

// #endregion finish-run

// #region get-run
// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, name, output_base, config_json, metrics_json, status, created_at, finished_at
		 FROM runs WHERE run_id = ?`, id,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

// GetActive returns the most recently finished or activated run.
func (s *Store) GetActive() (RunRecord, error) {
	var runID string
	err := s.db.QueryRow(`SELECT run_id FROM active_run WHERE id = 1`).Scan(&runID)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetRun(runID)
}

// Activate points the active run at an existing finished run.
func (s *Store) Activate(runID string) error {
	var status string
	err := s.db.QueryRow(`SELECT status FROM runs WHERE run_id = ?`, runID).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return fmt.Errorf("check run: %w", err)
	}
	if status != StatusDone {
		return fmt.Errorf("run %s is %s", runID, status)
	}
	if _, err := s.db.Exec(
		`INSERT INTO active_run (id, run_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET run_id = excluded.run_id`, runID,
	); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	return nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs with their lexicon sizes.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	rows, err := s.db.Query(
		`SELECT r.run_id, r.name, r.output_base, r.config_json, r.metrics_json, r.status, r.created_at, r.finished_at,
		        r.num_tokens, (SELECT COUNT(*) FROM lexicon_words w WHERE w.run_id = r.run_id)
		 FROM runs r ORDER BY r.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var sum RunSummary
		var outputBase, metricsJSON, finished sql.NullString
		var created string
		if err := rows.Scan(&sum.RunID, &sum.Name, &outputBase, &sum.ConfigJSON, &metricsJSON,
			&sum.Status, &created, &finished, &sum.NumTokens, &sum.Words); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		fillRun(&sum.RunRecord, outputBase, metricsJSON, created, finished)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// #endregion list-runs

// #region load-snapshot
// LoadSnapshot reads the stored lexicon of a run in its original insertion
// order.
func (s *Store) LoadSnapshot(runID string) (lexicon.Snapshot, error) {
	var snap lexicon.Snapshot
	err := s.db.QueryRow(`SELECT lex_time, num_tokens FROM runs WHERE run_id = ?`, runID).
		Scan(&snap.Time, &snap.NumTokens)
	if err != nil {
		return lexicon.Snapshot{}, fmt.Errorf("get run %s: %w", runID, err)
	}

	rows, err := s.db.Query(
		`SELECT units_json, stresses, raw_score, timestamp, observed_json, observed_count
		 FROM lexicon_words WHERE run_id = ? ORDER BY position`, runID,
	)
	if err != nil {
		return lexicon.Snapshot{}, fmt.Errorf("load words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w lexicon.WordRecord
		var unitsJSON, stresses, observedJSON string
		if err := rows.Scan(&unitsJSON, &stresses, &w.Score, &w.Timestamp, &observedJSON, &w.ObservedCount); err != nil {
			return lexicon.Snapshot{}, fmt.Errorf("scan word: %w", err)
		}
		if err := json.Unmarshal([]byte(unitsJSON), &w.Units); err != nil {
			return lexicon.Snapshot{}, fmt.Errorf("unmarshal units: %w", err)
		}
		if err := json.Unmarshal([]byte(observedJSON), &w.ObservedStresses); err != nil {
			return lexicon.Snapshot{}, fmt.Errorf("unmarshal observed stresses: %w", err)
		}
		w.Stresses = decodeStresses(stresses)
		snap.Words = append(snap.Words, w)
	}
	return snap, rows.Err()
}

// #endregion load-snapshot

// #region helpers
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var rec RunRecord
	var outputBase, metricsJSON, finished sql.NullString
	var created string
	if err := row.Scan(&rec.RunID, &rec.Name, &outputBase, &rec.ConfigJSON, &metricsJSON,
		&rec.Status, &created, &finished); err != nil {
		return RunRecord{}, err
	}
	fillRun(&rec, outputBase, metricsJSON, created, finished)
	return rec, nil
}

func fillRun(rec *RunRecord, outputBase, metricsJSON sql.NullString, created string, finished sql.NullString) {
	if outputBase.Valid {
		rec.OutputBase = outputBase.String
	}
	if metricsJSON.Valid {
		rec.MetricsJSON = metricsJSON.String
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// encodeStresses packs a stress pattern as a string of '1' and '0'.
func encodeStresses(stresses []bool) string {
	var b strings.Builder
	for _, s := range stresses {
		if s {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func decodeStresses(s string) []bool {
	out := make([]bool, len(s))
	for i := range s {
		out[i] = s[i] == '1'
	}
	return out
}

// #endregion helpers
