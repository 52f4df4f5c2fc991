package lexicon

import (
	"math"

	"github.com/danielpatrickdp/lexseg/internal/counter"
)

// #region constants
const (
	// Penalty is subtracted from a blamed word's score.
	Penalty = 1.0
	// InitScore is the score of a newly created word.
	InitScore = 1.0
	// UnknownWordScore stands in for words missing from the lexicon when a
	// hypothesis is scored.
	UnknownWordScore = 0.5
	// SmoothingMin is the floor applied to known word scores.
	SmoothingMin = 1.0
)

// #endregion constants

// #region decay
// DecayPolicy describes lazy score decay. Decay is applied when a score is
// read, never written back.
type DecayPolicy struct {
	Enabled bool
	Amount  float64
}

// NewDecayPolicy enables decay for any non-zero amount.
func NewDecayPolicy(amount float64) DecayPolicy {
	return DecayPolicy{Enabled: amount != 0, Amount: amount}
}

// Apply decays raw by elapsed ticks.
func (d DecayPolicy) Apply(raw float64, elapsed int64) float64 {
	if !d.Enabled {
		return raw
	}
	return raw * math.Exp(-float64(elapsed)*d.Amount)
}

// #endregion decay

// #region config
// Config bundles the per-condition lexicon parameters.
type Config struct {
	StressSensitive bool
	UseTrust        bool
	UseProbMem      bool
	ProbAmount      float64
	Normalize       bool
	DecayAmount     float64
	// Counter, when set, discounts scores by subsequence frequency.
	Counter *counter.SubSeq
	Seed    int64
	Trace   bool
}

// #endregion config

// #region word-record
// WordRecord is the persisted form of a Word.
type WordRecord struct {
	Units            []string `json:"units"`
	Stresses         []bool   `json:"stresses"`
	Score            float64  `json:"score"`
	Timestamp        int64    `json:"timestamp"`
	ObservedStresses []int    `json:"observed_stresses"`
	ObservedCount    int      `json:"observed_count"`
}

// Snapshot is the persisted form of a Lexicon.
type Snapshot struct {
	Time      int64        `json:"time"`
	NumTokens int64        `json:"num_tokens"`
	Words     []WordRecord `json:"words"`
}

// #endregion word-record
