package segmenter

import (
	"fmt"

	"github.com/danielpatrickdp/lexseg/internal/segutil"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region gambell-yang
// segmentGambellYang is greedy subtraction that rewards words as they are
// cut and, with stress on, breaks between adjacent stresses when no prefix
// is known. Words with more than one primary stress are not rewarded while
// stress is in use.
func (s *Segmenter) segmentGambellYang(u *utterance.Utterance, training bool) (Outcome, error) {
	bounds := u.BoundariesCopy()
	n := u.Len()
	lastSeg := 0
	i := 0
	for i < n {
		prefixes, err := s.lex.PrefixWords(u, i)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: %w", ErrInvariant, err)
		}
		switch {
		case len(prefixes) > 0:
			w := segutil.ChooseBestScore(prefixes, s.undiscountedScore)
			s.stats.SubtractionSegs++
			if i != 0 {
				bounds[i-1] = true
				if training && i != lastSeg {
					prev, err := segutil.SliceFromLastBoundary(u.Stresses, bounds)
					if err != nil {
						return Outcome{}, fmt.Errorf("%w: %w", ErrInvariant, err)
					}
					if !s.cfg.UseStress || countTrue(prev) <= 1 {
						if err := s.rewardLast(u, bounds); err != nil {
							return Outcome{}, err
						}
					}
				}
			}
			if final := i + w.Len() - 1; final != len(bounds) {
				bounds[final] = true
				if training {
					if err := s.rewardLast(u, bounds); err != nil {
						return Outcome{}, err
					}
				}
			} else if training {
				s.lex.RewardWord(segutil.SliceFromFinalBoundary(u.Units, bounds),
					segutil.SliceFromFinalBoundary(u.Stresses, bounds))
			}
			i += w.Len()
			lastSeg = i
		case s.cfg.UseStress && i < n-1 && u.Stresses[i] && u.Stresses[i+1]:
			bounds[i] = true
			if training {
				word, err := segutil.SliceFromLastBoundary(u.Stresses, bounds)
				if err != nil {
					return Outcome{}, fmt.Errorf("%w: %w", ErrInvariant, err)
				}
				if countTrue(word) <= 1 {
					if err := s.rewardLast(u, bounds); err != nil {
						return Outcome{}, err
					}
				}
			}
			s.stats.StressSegs++
			i++
			lastSeg = i
		default:
			i++
		}
	}

	if lastSeg == 0 && training && (!s.cfg.UseStress || countTrue(u.Stresses) <= 1) {
		s.lex.RewardWord(u.Units, u.Stresses)
	}
	s.stats.Utterances++
	return Outcome{Boundaries: bounds, BeamPeak: 1, Survivors: 1}, nil
}

// #endregion gambell-yang

// #region trough
// segmentTrough breaks wherever the unit transition probability dips below
// both neighbours. Transition counts are updated from the utterance first
// when training.
func (s *Segmenter) segmentTrough(u *utterance.Utterance, training bool) Outcome {
	if training {
		for i := 0; i < u.Len()-1; i++ {
			s.sylls.Inc(u.Units[i])
			s.syllPairs.Inc(pairKey(u.Units[i], u.Units[i+1]))
		}
	}
	bounds := u.BoundariesCopy()
	for i := 1; i < u.Len()-2; i++ {
		prev := s.transProb(u.Units[i-1], u.Units[i])
		curr := s.transProb(u.Units[i], u.Units[i+1])
		next := s.transProb(u.Units[i+1], u.Units[i+2])
		if prev > curr && next > curr {
			bounds[i] = true
			s.stats.Segs++
		}
	}
	return s.commit(u, bounds, training)
}

func (s *Segmenter) transProb(a, b string) float64 {
	fa := s.sylls.Freq(a)
	if fa == 0 {
		return 0
	}
	return s.syllPairs.Freq(pairKey(a, b)) / fa
}

func pairKey(a, b string) string {
	return a + string(utterance.SyllBoundary) + b
}

// #endregion trough
