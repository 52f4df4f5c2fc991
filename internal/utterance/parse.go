package utterance

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrEmptyLine is returned for blank corpus lines.
	ErrEmptyLine = errors.New("empty line")
	// ErrMalformed is returned when a line has a separator with no unit after it.
	ErrMalformed = errors.New("malformed utterance")
)

// #region parse
// Parse turns a corpus line into an utterance. Units are separated by a
// space (word boundary) or '|' (unit boundary inside a word). Digits inside a
// unit are stress marks: the unit is stressed when it carries a '1', and all
// digits are removed from the unit text. When gold is false every boundary
// is left cleared.
func Parse(line string, gold bool) (*Utterance, error) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	if line == "" {
		return nil, ErrEmptyLine
	}

	var (
		units      []string
		stresses   []bool
		boundaries []bool
	)
	start := -1
	for i, r := range line {
		if r == WordBoundary || r == SyllBoundary {
			if start == -1 {
				continue
			}
			text, stressed := parseUnit(line[start:i])
			units = append(units, text)
			stresses = append(stresses, stressed)
			boundaries = append(boundaries, gold && r == WordBoundary)
			start = -1
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("parse %q: %w", line, ErrMalformed)
	}
	text, stressed := parseUnit(line[start:])
	units = append(units, text)
	stresses = append(stresses, stressed)

	return New(units, stresses, boundaries), nil
}

func parseUnit(raw string) (string, bool) {
	stressed := strings.ContainsRune(raw, '1')
	text := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, raw)
	return text, stressed
}

// #endregion parse

// #region seg-copies
// SegCopies makes the learner copies of a gold corpus: same units and
// stresses, all boundaries cleared, stresses reduced when requested.
func SegCopies(gold []*Utterance, reduceStress bool) []*Utterance {
	out := make([]*Utterance, len(gold))
	for i, g := range gold {
		c := g.SegCopy()
		if reduceStress {
			c.ReduceStresses()
		}
		out[i] = c
	}
	return out
}

// #endregion seg-copies

// #region render
// FormatUnits joins units with '|', marking stressed units with "(1)".
func FormatUnits(units []string, stresses []bool) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteByte(SyllBoundary)
		}
		b.WriteString(u)
		if stresses[i] {
			b.WriteString("(1)")
		}
	}
	return b.String()
}

// SegText renders units joined by ' ' at placed boundaries and '|' elsewhere,
// marking stressed units with "(1)".
func SegText(units []string, stresses []bool, boundaries []bool) string {
	var b strings.Builder
	for i, u := range units {
		b.WriteString(u)
		if stresses[i] {
			b.WriteString("(1)")
		}
		if i < len(boundaries) {
			if boundaries[i] {
				b.WriteByte(WordBoundary)
			} else {
				b.WriteByte(SyllBoundary)
			}
		}
	}
	return b.String()
}

// SegText renders the utterance with its current boundaries.
func (u *Utterance) SegText() string {
	return SegText(u.Units, u.Stresses, u.Boundaries)
}

func (u *Utterance) String() string {
	return FormatUnits(u.Units, u.Stresses)
}

// #endregion render

// #region words-predicted
// WordsPredicted reconstructs the words implied by the boundaries, indexed by
// the position of each word's first unit. Positions inside a word are empty
// and flagged false in the second return value. Multi-unit words are joined
// with '|', so units the/do/ggie/ran with boundaries [true false true] give
// ["the", "do|ggie", "", "ran"] with present [true true false true].
func (u *Utterance) WordsPredicted() ([]string, []bool) {
	words := make([]string, len(u.Boundaries)+1)
	present := make([]bool, len(words))
	if len(u.Units) == 0 {
		return words, present
	}
	curr := 0
	words[0] = u.Units[0]
	present[0] = true
	for i, b := range u.Boundaries {
		if b {
			curr = i + 1
			words[curr] = u.Units[i+1]
			present[curr] = true
			continue
		}
		words[curr] += string(SyllBoundary) + u.Units[i+1]
	}
	return words, present
}

// #endregion words-predicted
