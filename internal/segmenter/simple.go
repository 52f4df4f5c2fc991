package segmenter

import (
	"fmt"

	"github.com/danielpatrickdp/lexseg/internal/segutil"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region unit
// segmentUnit breaks at every slot.
func (s *Segmenter) segmentUnit(u *utterance.Utterance, training bool) Outcome {
	bounds := u.BoundariesCopy()
	for i := range bounds {
		bounds[i] = true
	}
	s.stats.Segs += len(bounds)
	return s.commit(u, bounds, training)
}

// #endregion unit

// #region utterance
// segmentUtterance treats the whole utterance as one word.
func (s *Segmenter) segmentUtterance(u *utterance.Utterance, training bool) Outcome {
	bounds := make([]bool, len(u.Boundaries))
	return s.commit(u, bounds, training)
}

// #endregion utterance

// #region random
// segmentRandom breaks each slot independently at RandomSegRate.
func (s *Segmenter) segmentRandom(u *utterance.Utterance, training bool) Outcome {
	bounds := make([]bool, len(u.Boundaries))
	for i := range bounds {
		if s.lex.Float64() < s.cfg.RandomSegRate {
			bounds[i] = true
			s.stats.Segs++
		}
	}
	return s.commit(u, bounds, training)
}

// #endregion random

// #region subtractive
// segmentSubtractive walks left to right, removing the best scoring
// recalled prefix wherever one exists.
func (s *Segmenter) segmentSubtractive(u *utterance.Utterance, training bool) (Outcome, error) {
	bounds := u.BoundariesCopy()
	for i := 0; i < u.Len(); {
		prefixes, err := s.lex.PrefixWords(u, i)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: %w", ErrInvariant, err)
		}
		if len(prefixes) == 0 {
			i++
			continue
		}
		w := segutil.ChooseBestScore(prefixes, s.undiscountedScore)
		s.stats.SubtractionSegs++
		if i != 0 {
			bounds[i-1] = true
		}
		if final := i + w.Len() - 1; final != len(bounds) {
			bounds[final] = true
		}
		i += w.Len()
	}
	return s.commit(u, bounds, training), nil
}

// #endregion subtractive

// #region adjacent-stress
// segmentAdjacentStress breaks between every pair of stressed units and
// rewards each word as it is closed off.
func (s *Segmenter) segmentAdjacentStress(u *utterance.Utterance, training bool) (Outcome, error) {
	bounds := u.BoundariesCopy()
	for i := 0; i < u.Len()-1; i++ {
		if !(u.Stresses[i] && u.Stresses[i+1]) {
			continue
		}
		bounds[i] = true
		s.stats.StressSegs++
		if training {
			if err := s.rewardLast(u, bounds); err != nil {
				return Outcome{}, err
			}
		}
	}
	if training {
		s.lex.RewardWord(segutil.SliceFromFinalBoundary(u.Units, bounds),
			segutil.SliceFromFinalBoundary(u.Stresses, bounds))
	}
	s.stats.Utterances++
	return Outcome{Boundaries: bounds, BeamPeak: 1, Survivors: 1}, nil
}

// #endregion adjacent-stress

// #region helpers
func (s *Segmenter) commit(u *utterance.Utterance, bounds []bool, training bool) Outcome {
	if training {
		s.lex.IncUtteranceWords(u.Units, u.Stresses, bounds, nil)
	}
	s.stats.Utterances++
	return Outcome{Boundaries: bounds, BeamPeak: 1, Survivors: 1}
}

// rewardLast rewards the word closed by the last placed boundary.
func (s *Segmenter) rewardLast(u *utterance.Utterance, bounds []bool) error {
	units, err := segutil.SliceFromLastBoundary(u.Units, bounds)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	stresses, err := segutil.SliceFromLastBoundary(u.Stresses, bounds)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	s.lex.RewardWord(units, stresses)
	return nil
}

func countTrue(b []bool) int {
	n := 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}

// #endregion helpers
