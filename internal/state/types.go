package state

import "time"

// #region run-record
// RunRecord is one stored experiment run. The lexicon words live in
// lexicon_words and are read with LoadSnapshot.
type RunRecord struct {
	RunID       string
	Name        string
	OutputBase  string
	ConfigJSON  string
	MetricsJSON string
	Status      string // "running" | "done"
	CreatedAt   time.Time
	FinishedAt  time.Time
}

const (
	StatusRunning = "running"
	StatusDone    = "done"
)

// #endregion run-record

// #region run-summary
// RunSummary is a listed run with the size of its stored lexicon.
type RunSummary struct {
	RunRecord
	Words     int
	NumTokens int64
}

// #endregion run-summary
