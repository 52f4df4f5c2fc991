package segmenter

import (
	"fmt"
	"log"
	"math"
	"slices"

	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/segutil"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region hypothesis
// hypothesis is one partial segmentation. Every successor gets its own
// copies of bounds and trusts.
type hypothesis struct {
	bounds     []bool
	trusts     []bool
	index      int
	seenStress bool
}

func (h hypothesis) clone() hypothesis {
	return hypothesis{
		bounds:     slices.Clone(h.bounds),
		trusts:     slices.Clone(h.trusts),
		index:      h.index,
		seenStress: h.seenStress,
	}
}

// #endregion hypothesis

// #region search
func (s *Segmenter) segmentBeam(u *utterance.Utterance, training bool) (Outcome, error) {
	n := u.Len()
	if n == 0 {
		return Outcome{}, nil
	}
	beam := []hypothesis{{
		bounds: u.BoundariesCopy(),
		trusts: make([]bool, n-1),
	}}
	peak := 0

	for {
		allDone := true
		var candidates []hypothesis
		for _, h := range beam {
			if len(beam) > peak {
				peak = len(beam)
			}
			if h.index == n {
				candidates = append(candidates, h)
				continue
			}
			allDone = false
			// The lock reads the beam as it stood at the start of the round,
			// so candidates may outgrow BeamSize before pruning.
			beamLock := len(beam) == s.cfg.BeamSize
			next, err := s.extend(u, h, beamLock)
			if err != nil {
				return Outcome{}, err
			}
			candidates = append(candidates, next...)
		}
		beam = s.prune(candidates)

		if allDone {
			return s.finish(u, beam, peak, training)
		}
	}
}

// prune keeps the first BeamSize candidates.
// TODO: rank candidates by score before truncating once experiments can
// absorb the change in outputs.
func (s *Segmenter) prune(candidates []hypothesis) []hypothesis {
	if len(candidates) <= s.cfg.BeamSize {
		return candidates
	}
	return candidates[:s.cfg.BeamSize]
}

func (s *Segmenter) finish(u *utterance.Utterance, beam []hypothesis, peak int, training bool) (Outcome, error) {
	best, blamed, err := s.pickBest(u, beam, training)
	if err != nil {
		return Outcome{}, err
	}
	if training {
		s.lex.IncUtteranceWords(u.Units, u.Stresses, best.bounds, best.trusts)
	}
	s.stats.Utterances++
	s.stats.TotalPeakBeam += peak
	return Outcome{
		Boundaries: best.bounds,
		Trusts:     best.trusts,
		BeamPeak:   peak,
		Survivors:  len(beam),
		Blamed:     blamed,
	}, nil
}

// #endregion search

// #region extend
// extend advances h by one decision. The stress rule and an empty prefix
// set give one successor; subtraction gives one successor per recalled
// prefix, or a single chosen one while the beam is locked.
func (s *Segmenter) extend(u *utterance.Utterance, h hypothesis, beamLock bool) ([]hypothesis, error) {
	n := u.Len()
	i := h.index
	seen := h.seenStress || u.Stresses[i]

	if s.cfg.UseStress && i < n-1 && seen && u.Stresses[i+1] {
		next := h.clone()
		next.bounds[i] = true
		next.trusts[i] = true
		next.seenStress = false
		next.index = i + 1
		s.stats.StressSegs++
		return []hypothesis{next}, nil
	}

	prefixes, err := s.lex.PrefixWords(u, i)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	if len(prefixes) == 0 {
		next := h.clone()
		next.seenStress = seen
		next.index = i + 1
		return []hypothesis{next}, nil
	}

	s.stats.SubtractionSegs++
	if beamLock {
		prefixes = []*lexicon.Word{s.lockedChoice(prefixes)}
	} else if s.cfg.Trace && len(prefixes) > 1 {
		log.Printf("segmenter: beam split of size %d", len(prefixes))
	}

	out := make([]hypothesis, 0, len(prefixes))
	for _, w := range prefixes {
		next := h.clone()
		if i > 0 {
			next.bounds[i-1] = true
		}
		final := i + w.Len() - 1
		switch {
		case final == len(next.bounds):
			// word runs to the end of the utterance
		case final > len(next.bounds):
			return nil, fmt.Errorf("%w: word %s at %d overruns %d units", ErrInvariant, w, i, n)
		default:
			next.bounds[final] = true
			next.trusts[final] = true
		}
		next.seenStress = false
		next.index = i + w.Len()
		out = append(out, next)
	}
	return out, nil
}

func (s *Segmenter) lockedChoice(prefixes []*lexicon.Word) *lexicon.Word {
	switch {
	case s.cfg.Longest:
		return prefixes[len(prefixes)-1]
	case s.cfg.Randomize:
		return segutil.ChooseSampledBestScore(prefixes, s.score, s.lex.Float64())
	default:
		return segutil.ChooseBestScore(prefixes, s.score)
	}
}

// #endregion extend

// #region pick-best
// pickBest chooses the survivor with the highest geometric mean word score,
// first one winning ties. With exactly two survivors the loser's first
// diverging word is penalized when training.
func (s *Segmenter) pickBest(u *utterance.Utterance, beam []hypothesis, training bool) (hypothesis, *lexicon.Word, error) {
	if len(beam) == 1 {
		return beam[0], nil, nil
	}
	if s.cfg.Trace {
		log.Printf("segmenter: choosing from beam of size %d", len(beam))
	}

	scores := make([]float64, len(beam))
	best := 0
	bestScore := math.Inf(-1)
	for k, h := range beam {
		scores[k] = segutil.GeometricMean(s.lex.UtteranceWordsScores(u.Units, u.Stresses, h.bounds, s.lex.Counter()))
		if s.cfg.Trace {
			log.Printf("segmenter: %s score: %g", utterance.SegText(u.Units, u.Stresses, h.bounds), scores[k])
		}
		if scores[k] > bestScore {
			best = k
			bestScore = scores[k]
		}
	}
	if s.cfg.Randomize {
		best = segutil.SampleScores(scores, s.lex.Float64())
	}
	if s.cfg.Trace {
		log.Printf("segmenter: chose %d", best)
	}

	var blamed *lexicon.Word
	if len(beam) == 2 && training {
		w, err := s.lex.SplitWord(u, beam[best].bounds, beam[1-best].bounds)
		if err != nil {
			return hypothesis{}, nil, fmt.Errorf("%w: %w", ErrInvariant, err)
		}
		if w != nil {
			s.lex.PenalizeWord(w)
			s.stats.Penalties++
			blamed = w
		}
	}
	return beam[best], blamed, nil
}

// #endregion pick-best
