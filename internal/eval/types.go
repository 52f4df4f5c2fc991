package eval

import (
	"fmt"
	"io"
)

// IntervalSize is the number of scored utterances per interval line in the
// boundary performance log.
const IntervalSize = 500

// #region method
// Method selects what Utterances compares.
type Method int

const (
	// Boundaries compares every boundary slot.
	Boundaries Method = iota
	// Words compares the word predicted to start at every slot.
	Words
)

func (m Method) String() string {
	switch m {
	case Boundaries:
		return "boundaries"
	case Words:
		return "words"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ErrorType classifies a wrong word token.
type ErrorType string

const (
	UnderSeg ErrorType = "UNDERSEG"
	OverSeg  ErrorType = "OVERSEG"
)

// #endregion method

// #region logs
// Logs are the optional evaluation sinks. Nil writers are skipped.
type Logs struct {
	// Seg receives one CSV line per scored utterance.
	Seg io.Writer
	// Perf receives interval results (Boundaries) or word errors (Words).
	Perf io.Writer
}

// #endregion logs

// #region result
// Result is one set of detection scores. NaN values are reported as 0.
type Result struct {
	Precision    float64
	Recall       float64
	FScore       float64
	HitRate      float64
	FARate       float64
	APrime       float64
	BDoublePrime float64
}

// LexResult is a lexicon comparison together with the stress-initial rates
// of both sides.
type LexResult struct {
	Result
	SegStressInitial  Rate
	GoldStressInitial Rate
}

// Rate is a share of multi-unit words.
type Rate struct {
	Value   float64
	Initial int
	Total   int
}

func (r Rate) String() string {
	return fmt.Sprintf("%g (%d/%d total)", r.Value, r.Initial, r.Total)
}

// #endregion result
