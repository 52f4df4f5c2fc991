package lexicon

import (
	"slices"
	"strings"

	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region word
// Word is one lexical entry. Units and Stresses identify the word and never
// change; the raw score and timestamp move with rewards and penalties.
type Word struct {
	Units    []string
	Stresses []bool

	score            float64
	timestamp        int64
	observedStresses []int
	observedCount    int
}

func newWord(units []string, stresses []bool, score float64, timestamp int64) *Word {
	return &Word{
		Units:            slices.Clone(units),
		Stresses:         slices.Clone(stresses),
		score:            score,
		timestamp:        timestamp,
		observedStresses: make([]int, len(stresses)),
	}
}

// Len returns the number of units in the word.
func (w *Word) Len() int {
	return len(w.Units)
}

// RawScore returns the stored, undecayed score.
func (w *Word) RawScore() float64 {
	return w.score
}

// Timestamp returns the lexicon time of the last reward.
func (w *Word) Timestamp() int64 {
	return w.timestamp
}

// ScoreAt returns the score as seen at time under the decay policy.
func (w *Word) ScoreAt(time int64, d DecayPolicy) float64 {
	return d.Apply(w.score, time-w.timestamp)
}

func (w *Word) increment(time int64) {
	w.score++
	w.timestamp = time
}

func (w *Word) decrement(amount float64) {
	w.score -= amount
}

// #endregion word

// #region stress
// CountStress records one observed stress pattern for the word.
func (w *Word) CountStress(stresses []bool) {
	for i, s := range stresses {
		if s && i < len(w.observedStresses) {
			w.observedStresses[i]++
		}
	}
	w.observedCount++
}

// IsStressInitial reports whether the first unit was stressed in more than
// half of the observations.
func (w *Word) IsStressInitial() bool {
	if w.observedCount == 0 || len(w.observedStresses) == 0 {
		return false
	}
	return float64(w.observedStresses[0])/float64(w.observedCount) > 0.5
}

// #endregion stress

// #region render
// Text concatenates the unit text without separators or stress marks.
func (w *Word) Text() string {
	return strings.Join(w.Units, "")
}

func (w *Word) String() string {
	return utterance.FormatUnits(w.Units, w.Stresses)
}

func (w *Word) record() WordRecord {
	obs := make([]int, len(w.observedStresses))
	copy(obs, w.observedStresses)
	return WordRecord{
		Units:            w.Units,
		Stresses:         w.Stresses,
		Score:            w.score,
		Timestamp:        w.timestamp,
		ObservedStresses: obs,
		ObservedCount:    w.observedCount,
	}
}

// #endregion render
