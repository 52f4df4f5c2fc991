package segmenter

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/lexseg/internal/lexicon"
)

var (
	// ErrUnknownKind is returned for a segmenter name that is not recognised.
	ErrUnknownKind = errors.New("unknown segmenter")
	// ErrInvariant marks a search state that must never occur. Runs that hit
	// it are aborted.
	ErrInvariant = errors.New("segmenter invariant violated")
)

// #region kind
// Kind selects the segmentation strategy.
type Kind string

const (
	BeamSubtractive Kind = "BeamSubtractive"
	Unit            Kind = "Unit"
	Utterance       Kind = "Utterance"
	Random          Kind = "Random"
	Subtractive     Kind = "Subtractive"
	GambellYang     Kind = "GambellYang"
	Trough          Kind = "Trough"
	AdjacentStress  Kind = "AdjacentStress"
)

// Kinds lists every strategy in a stable order.
var Kinds = []Kind{BeamSubtractive, Unit, Utterance, Random, Subtractive, GambellYang, Trough, AdjacentStress}

// ParseKind maps a configured name onto a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// #endregion kind

// #region config
// Config holds the per-condition segmenter parameters. BeamSize only applies
// to BeamSubtractive, RandomSegRate only to Random.
type Config struct {
	Kind          Kind
	BeamSize      int
	UseStress     bool
	Longest       bool
	Randomize     bool
	RandomSegRate float64
	Trace         bool
}

// DefaultConfig returns the beam search with a beam of two.
func DefaultConfig() Config {
	return Config{
		Kind:          BeamSubtractive,
		BeamSize:      2,
		RandomSegRate: 0.5,
	}
}

// #endregion config

// #region outcome
// Outcome is the result of segmenting one utterance.
type Outcome struct {
	Boundaries []bool
	// Trusts is set by BeamSubtractive only.
	Trusts []bool
	// BeamPeak is the largest beam seen while searching.
	BeamPeak int
	// Survivors is the number of complete hypotheses the winner was picked from.
	Survivors int
	// Blamed is the losing word that was penalized, if any.
	Blamed *lexicon.Word
}

// #endregion outcome

// #region stats
// Stats accumulates counts across a run.
type Stats struct {
	Utterances      int
	Segs            int
	StressSegs      int
	SubtractionSegs int
	TotalPeakBeam   int
	Penalties       int
}

// AverageBeam is the mean of the per-utterance peak beam sizes.
func (s Stats) AverageBeam() float64 {
	if s.Utterances == 0 {
		return 0
	}
	return float64(s.TotalPeakBeam) / float64(s.Utterances)
}

// #endregion stats
