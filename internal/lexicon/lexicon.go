package lexicon

import (
	"cmp"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/lexseg/internal/counter"
	"github.com/danielpatrickdp/lexseg/internal/segutil"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

var (
	// ErrIndexOutOfRange is returned by PrefixWords for a cursor outside the utterance.
	ErrIndexOutOfRange = errors.New("starting index out of range")
	// ErrNoDifference is returned by SplitWord when both segmentations give the same words.
	ErrNoDifference = errors.New("failed to find difference between segmentations")
)

const keyDelim = "|"

// #region key
// Key builds the lookup key for a unit sequence. Stress-sensitive keys carry
// one '1' or '0' per unit after the joined units.
func Key(units []string, stresses []bool, stressSensitive bool) string {
	k := strings.Join(units, keyDelim)
	if !stressSensitive {
		return k
	}
	var b strings.Builder
	b.Grow(len(k) + len(stresses))
	b.WriteString(k)
	for _, s := range stresses {
		if s {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// #endregion key

// #region lexicon
// Lexicon maps keys to Words. Time starts at 1 and advances once per
// processed utterance through Tick. A Lexicon is not safe for concurrent use.
type Lexicon struct {
	cfg        Config
	decay      DecayPolicy
	probAmount float64

	words     map[string]*Word
	order     []*Word
	time      int64
	numTokens int64
	rand      *rand.Rand
}

// New returns an empty lexicon for one condition.
func New(cfg Config) *Lexicon {
	l := &Lexicon{
		cfg:   cfg,
		decay: NewDecayPolicy(cfg.DecayAmount),
		words: make(map[string]*Word),
		time:  1,
		rand:  rand.New(rand.NewSource(cfg.Seed)),
	}
	if cfg.UseProbMem {
		l.probAmount = cfg.ProbAmount
	}
	return l
}

// FromUtterances builds a plain lexicon from gold utterances: every word is
// rewarded, no trust gating, no probabilistic recall, no decay.
func FromUtterances(utts []*utterance.Utterance, stressSensitive bool) *Lexicon {
	lex := New(Config{StressSensitive: stressSensitive})
	for _, u := range utts {
		lex.IncUtteranceWords(u.Units, u.Stresses, u.Boundaries, nil)
	}
	return lex
}

// Config returns the parameters the lexicon was built with.
func (l *Lexicon) Config() Config { return l.cfg }

// Decay returns the decay policy in force.
func (l *Lexicon) Decay() DecayPolicy { return l.decay }

// Counter returns the subsequence counter, nil when discounting is off.
func (l *Lexicon) Counter() *counter.SubSeq { return l.cfg.Counter }

// Time returns the current lexicon clock.
func (l *Lexicon) Time() int64 { return l.time }

// NumTokens returns the net number of rewarded tokens.
func (l *Lexicon) NumTokens() int64 { return l.numTokens }

// Len returns the number of stored words.
func (l *Lexicon) Len() int { return len(l.order) }

// Words returns the stored words in insertion order.
func (l *Lexicon) Words() []*Word { return slices.Clone(l.order) }

// Tick advances the clock. Call exactly once per processed utterance, after
// its rewards and penalties.
func (l *Lexicon) Tick() { l.time++ }

// Float64 draws from the lexicon's seeded source.
func (l *Lexicon) Float64() float64 { return l.rand.Float64() }

// #endregion lexicon

// #region lookup
// GetWord returns the word for units/stresses, nil when absent.
func (l *Lexicon) GetWord(units []string, stresses []bool) *Word {
	return l.words[Key(units, stresses, l.cfg.StressSensitive)]
}

// RecallWord reports whether w counts as known right now. With probabilistic
// memory the word is recalled with probability 1-exp(-probAmount*score);
// otherwise any positive score recalls it.
func (l *Lexicon) RecallWord(w *Word) bool {
	if w == nil {
		return false
	}
	score := w.ScoreAt(l.time, l.decay)
	if l.cfg.UseProbMem {
		return l.probMemRecallRate(score) > l.rand.Float64()
	}
	return score > 0
}

// IsEvalWord reports whether w counts as a word for evaluation.
func (l *Lexicon) IsEvalWord(w *Word) bool {
	return l.RecallWord(w)
}

// IsEvalUnits looks units/stresses up and applies IsEvalWord.
func (l *Lexicon) IsEvalUnits(units []string, stresses []bool) bool {
	return l.IsEvalWord(l.GetWord(units, stresses))
}

func (l *Lexicon) probMemRecallRate(score float64) float64 {
	return 1.0 - math.Exp(-l.probAmount*score)
}

// #endregion lookup

// #region reward
// RewardWord creates the word at InitScore or increments an existing one,
// then counts the token and its stress pattern.
func (l *Lexicon) RewardWord(units []string, stresses []bool) {
	key := Key(units, stresses, l.cfg.StressSensitive)
	w, ok := l.words[key]
	if !ok {
		w = newWord(units, stresses, InitScore, l.time)
		l.words[key] = w
		l.order = append(l.order, w)
		if l.cfg.Trace {
			log.Printf("lexicon: added %s %g%s", w, w.ScoreAt(l.time, l.decay), l.traceCount(w))
		}
	} else {
		w.increment(l.time)
		if l.cfg.Trace {
			log.Printf("lexicon: incremented %s %g%s", w, w.ScoreAt(l.time, l.decay), l.traceCount(w))
		}
	}
	l.numTokens++
	w.CountStress(stresses)
}

// PenalizeWord subtracts Penalty from w and uncounts one token.
func (l *Lexicon) PenalizeWord(w *Word) {
	w.decrement(Penalty)
	l.numTokens -= int64(Penalty)
	if l.cfg.Trace {
		log.Printf("lexicon: penalized %s %g", w, w.ScoreAt(l.time, l.decay))
	}
}

// IncUtteranceWords rewards the words implied by boundaries. When trust
// gating is on and trusts is non-nil only trusted words are rewarded.
func (l *Lexicon) IncUtteranceWords(units []string, stresses []bool, boundaries []bool, trusts []bool) {
	var wordTrusts []bool
	if l.cfg.UseTrust && trusts != nil {
		wordTrusts = segutil.WordsTrusts(trusts, boundaries)
	}
	wordUnits := segutil.SlicesFromAllBoundaries(units, boundaries)
	wordStresses := segutil.SlicesFromAllBoundaries(stresses, boundaries)
	for i := range wordUnits {
		if wordTrusts == nil || wordTrusts[i] {
			l.RewardWord(wordUnits[i], wordStresses[i])
		}
	}
}

func (l *Lexicon) traceCount(w *Word) string {
	if l.cfg.Counter == nil {
		return ""
	}
	return " " + strconv.Itoa(l.cfg.Counter.Get(w.Units))
}

// #endregion reward

// #region scoring
// Score is the ranking score of w: the current score floored at
// SmoothingMin, divided by the token count when normalizing and by the
// subsequence count when c is non-nil.
func (l *Lexicon) Score(w *Word, c *counter.SubSeq) float64 {
	score := math.Max(w.ScoreAt(l.time, l.decay), SmoothingMin)
	if l.cfg.Normalize {
		score /= float64(l.numTokens)
	}
	if c != nil {
		score /= float64(c.Get(w.Units))
	}
	return score
}

func (l *Lexicon) newWordScore() float64 {
	if l.cfg.Normalize {
		return UnknownWordScore / float64(l.numTokens)
	}
	return UnknownWordScore
}

// UtteranceWordsScores scores each word implied by boundaries. Words missing
// from the lexicon get the unknown-word score.
func (l *Lexicon) UtteranceWordsScores(units []string, stresses []bool, boundaries []bool, c *counter.SubSeq) []float64 {
	wordUnits := segutil.SlicesFromAllBoundaries(units, boundaries)
	wordStresses := segutil.SlicesFromAllBoundaries(stresses, boundaries)
	scores := make([]float64, len(wordUnits))
	for i := range wordUnits {
		if w := l.GetWord(wordUnits[i], wordStresses[i]); w != nil {
			scores[i] = l.Score(w, c)
		} else {
			scores[i] = l.newWordScore()
		}
	}
	return scores
}

// #endregion scoring

// #region prefixes
// PrefixWords returns the recalled words that start at index, shortest
// first. Each candidate is checked with RecallWord in length order, so the
// number of random draws consumed is stable for a given lexicon state.
func (l *Lexicon) PrefixWords(u *utterance.Utterance, index int) ([]*Word, error) {
	n := u.Len()
	if index < 0 || index >= n {
		return nil, fmt.Errorf("prefix words at %d of %d: %w", index, n, ErrIndexOutOfRange)
	}
	var out []*Word
	for end := index + 1; end <= n; end++ {
		w := l.GetWord(u.Units[index:end], u.Stresses[index:end])
		if w != nil && l.RecallWord(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

// SplitWord finds the first word at which the bad segmentation departs from
// the good one and returns the bad side's word as stored in the lexicon (nil
// when it is not stored).
func (l *Lexicon) SplitWord(u *utterance.Utterance, good, bad []bool) (*Word, error) {
	goodUnits := segutil.SlicesFromAllBoundaries(u.Units, good)
	badUnits := segutil.SlicesFromAllBoundaries(u.Units, bad)
	badStresses := segutil.SlicesFromAllBoundaries(u.Stresses, bad)
	for i := 0; i < min(len(goodUnits), len(badUnits)); i++ {
		if !slices.Equal(goodUnits[i], badUnits[i]) {
			return l.GetWord(badUnits[i], badStresses[i]), nil
		}
	}
	return nil, ErrNoDifference
}

// #endregion prefixes

// #region dump
// SortedByScore returns the words ordered by descending current score,
// insertion order breaking ties.
func (l *Lexicon) SortedByScore() []*Word {
	out := slices.Clone(l.order)
	slices.SortStableFunc(out, func(a, b *Word) int {
		return cmp.Compare(b.ScoreAt(l.time, l.decay), a.ScoreAt(l.time, l.decay))
	})
	return out
}

// DumpWord renders "<score> <units>" for the lexicon output file.
func (l *Lexicon) DumpWord(w *Word) string {
	return strconv.FormatFloat(w.ScoreAt(l.time, l.decay), 'f', -1, 64) + " " + w.String()
}

// #endregion dump

// #region snapshot
// Snapshot captures the clock, token count and every word in insertion order.
func (l *Lexicon) Snapshot() Snapshot {
	s := Snapshot{Time: l.time, NumTokens: l.numTokens, Words: make([]WordRecord, 0, len(l.order))}
	for _, w := range l.order {
		s.Words = append(s.Words, w.record())
	}
	return s
}

// Restore rebuilds a lexicon from a snapshot under cfg.
func Restore(cfg Config, s Snapshot) *Lexicon {
	l := New(cfg)
	if s.Time > 0 {
		l.time = s.Time
	}
	l.numTokens = s.NumTokens
	for _, r := range s.Words {
		w := newWord(r.Units, r.Stresses, r.Score, r.Timestamp)
		copy(w.observedStresses, r.ObservedStresses)
		w.observedCount = r.ObservedCount
		key := Key(r.Units, r.Stresses, cfg.StressSensitive)
		if _, dup := l.words[key]; dup {
			continue
		}
		l.words[key] = w
		l.order = append(l.order, w)
	}
	return l
}

// #endregion snapshot
