package utterance

// #region separators
const (
	// WordBoundary separates words in corpus text.
	WordBoundary = ' '
	// SyllBoundary separates units inside a word.
	SyllBoundary = '|'
)

// #endregion separators

// #region utterance
// Utterance is one parsed corpus line. Units and Stresses are fixed at
// parse time; Boundaries has len(Units)-1 slots, slot i lying between unit i
// and unit i+1. Gold utterances carry the corpus word breaks, seg utterances
// start with every slot cleared and are filled in by a segmenter.
type Utterance struct {
	Units      []string
	Stresses   []bool
	Boundaries []bool
}

// New builds an utterance from already-split parts. The slices are owned by
// the returned utterance.
func New(units []string, stresses []bool, boundaries []bool) *Utterance {
	return &Utterance{Units: units, Stresses: stresses, Boundaries: boundaries}
}

// Len returns the number of units.
func (u *Utterance) Len() int {
	return len(u.Units)
}

// BoundariesCopy returns an owned copy of the boundary slots.
func (u *Utterance) BoundariesCopy() []bool {
	out := make([]bool, len(u.Boundaries))
	copy(out, u.Boundaries)
	return out
}

// SetBoundaries replaces the boundary slots.
func (u *Utterance) SetBoundaries(b []bool) {
	u.Boundaries = b
}

// Clone deep-copies the utterance, boundaries included.
func (u *Utterance) Clone() *Utterance {
	units := make([]string, len(u.Units))
	copy(units, u.Units)
	stresses := make([]bool, len(u.Stresses))
	copy(stresses, u.Stresses)
	return &Utterance{Units: units, Stresses: stresses, Boundaries: u.BoundariesCopy()}
}

// SegCopy deep-copies units and stresses and clears every boundary.
func (u *Utterance) SegCopy() *Utterance {
	c := u.Clone()
	for i := range c.Boundaries {
		c.Boundaries[i] = false
	}
	return c
}

// ReduceStresses applies look-ahead stress reduction: when unit i and unit
// i+1 are both stressed, unit i loses its stress.
func (u *Utterance) ReduceStresses() {
	for i := 0; i < len(u.Stresses)-1; i++ {
		if u.Stresses[i] && u.Stresses[i+1] {
			u.Stresses[i] = false
		}
	}
}

// NumWords counts the words implied by the current boundaries.
func (u *Utterance) NumWords() int {
	n := 1
	for _, b := range u.Boundaries {
		if b {
			n++
		}
	}
	return n
}

// #endregion utterance
