package logging

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

// #region log-segmentation
// LogSegmentation writes one segmented utterance to the segmentation_log
// table. Zero counts and empty strings are stored as NULL.
func LogSegmentation(db *sql.DB, entry SegmentationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO segmentation_log (run_id, utterance_index, phase, seg_text, beam_peak, survivors, blamed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.UtteranceIndex,
		entry.Phase,
		entry.SegText,
		nullIfZero(entry.BeamPeak),
		nullIfZero(entry.Survivors),
		nullIfEmpty(entry.Blamed),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log segmentation: %w", err)
	}
	return nil
}

// #endregion log-segmentation

// #region sink
// Sink logs segmentations for one run. Write failures are reported once per
// sink and never interrupt the run.
type Sink struct {
	db     *sql.DB
	runID  string
	failed bool
}

// NewSink returns a sink for runID, or nil when db is nil.
func NewSink(db *sql.DB, runID string) *Sink {
	if db == nil {
		return nil
	}
	return &Sink{db: db, runID: runID}
}

// Log records one utterance. A nil sink does nothing.
func (s *Sink) Log(entry SegmentationEntry) {
	if s == nil {
		return
	}
	entry.RunID = s.runID
	if err := LogSegmentation(s.db, entry); err != nil && !s.failed {
		s.failed = true
		log.Printf("logging: segmentation log disabled for run %s: %v", s.runID, err)
	}
}

// Failed reports whether any write failed.
func (s *Sink) Failed() bool {
	return s != nil && s.failed
}

// #endregion sink

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

// #endregion helpers
