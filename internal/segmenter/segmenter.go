package segmenter

import (
	"fmt"

	"github.com/danielpatrickdp/lexseg/internal/counter"
	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region segmenter
// Segmenter segments utterances one at a time against a single lexicon. All
// random draws come from the lexicon's seeded source.
type Segmenter struct {
	cfg   Config
	lex   *lexicon.Lexicon
	stats Stats

	// transition counts for Trough
	sylls     *counter.FreqDist
	syllPairs *counter.FreqDist
}

// New validates cfg and binds the segmenter to lex.
func New(cfg Config, lex *lexicon.Lexicon) (*Segmenter, error) {
	if lex == nil {
		return nil, fmt.Errorf("new segmenter: nil lexicon")
	}
	if _, err := ParseKind(string(cfg.Kind)); err != nil {
		return nil, fmt.Errorf("new segmenter: %w", err)
	}
	if cfg.Kind == BeamSubtractive && cfg.BeamSize < 1 {
		return nil, fmt.Errorf("new segmenter: beam size %d < 1", cfg.BeamSize)
	}
	if cfg.Kind == Random && (cfg.RandomSegRate < 0 || cfg.RandomSegRate > 1) {
		return nil, fmt.Errorf("new segmenter: random seg rate %g outside [0,1]", cfg.RandomSegRate)
	}
	s := &Segmenter{cfg: cfg, lex: lex}
	if cfg.Kind == Trough {
		s.sylls = counter.NewFreqDist()
		s.syllPairs = counter.NewFreqDist()
	}
	return s, nil
}

// Config returns the segmenter parameters.
func (s *Segmenter) Config() Config { return s.cfg }

// Lexicon returns the bound lexicon.
func (s *Segmenter) Lexicon() *lexicon.Lexicon { return s.lex }

// Stats returns the counts accumulated so far.
func (s *Segmenter) Stats() Stats { return s.stats }

// #endregion segmenter

// #region dispatch
// Segment returns boundaries for u. When training is set the implied words
// are committed to the lexicon; otherwise the lexicon is only read. The
// caller advances the lexicon clock.
func (s *Segmenter) Segment(u *utterance.Utterance, training bool) (Outcome, error) {
	switch s.cfg.Kind {
	case BeamSubtractive:
		return s.segmentBeam(u, training)
	case Unit:
		return s.segmentUnit(u, training), nil
	case Utterance:
		return s.segmentUtterance(u, training), nil
	case Random:
		return s.segmentRandom(u, training), nil
	case Subtractive:
		return s.segmentSubtractive(u, training)
	case GambellYang:
		return s.segmentGambellYang(u, training)
	case Trough:
		return s.segmentTrough(u, training), nil
	case AdjacentStress:
		return s.segmentAdjacentStress(u, training)
	default:
		return Outcome{}, fmt.Errorf("segment: %w: %q", ErrUnknownKind, s.cfg.Kind)
	}
}

// #endregion dispatch

// #region stats-string
// StatsString renders the run counters for the configured kind.
func (s *Segmenter) StatsString() string {
	st := s.stats
	switch s.cfg.Kind {
	case BeamSubtractive:
		return fmt.Sprintf("USC Segs: %d\nSub. segs: %d\nPenalties: %d\nAverage highest beam: %g",
			st.StressSegs, st.SubtractionSegs, st.Penalties, st.AverageBeam())
	case Subtractive:
		return fmt.Sprintf("Subtractive segs: %d", st.SubtractionSegs)
	case GambellYang:
		return fmt.Sprintf("Subtractive segs: %d\nUSC segs: %d", st.SubtractionSegs, st.StressSegs)
	case AdjacentStress:
		return fmt.Sprintf("USC segs: %d", st.StressSegs)
	case Trough:
		return fmt.Sprintf("Trough segs: %d", st.Segs)
	default:
		return fmt.Sprintf("Segs: %d", st.Segs)
	}
}

// #endregion stats-string

func (s *Segmenter) score(w *lexicon.Word) float64 {
	return s.lex.Score(w, s.lex.Counter())
}

// undiscountedScore ignores the subsequence counter; the greedy baselines
// rank prefixes on lexicon scores alone.
func (s *Segmenter) undiscountedScore(w *lexicon.Word) float64 {
	return s.lex.Score(w, nil)
}
