package segutil

import "errors"

// ErrNoBoundary is returned when a slice needs a placed boundary and there is none.
var ErrNoBoundary = errors.New("boundary array contains no boundaries")

// #region slicing
// SliceFromLastBoundary returns the word that ends at the last placed
// boundary, i.e. the span between the second-to-last boundary (or the start
// of the sequence) and the last boundary.
func SliceFromLastBoundary[T any](seq []T, boundaries []bool) ([]T, error) {
	start, end := -1, -1
	for i, b := range boundaries {
		if b {
			start = end
			end = i
		}
	}
	if end == -1 {
		return nil, ErrNoBoundary
	}
	return clone(seq[start+1 : end+1]), nil
}

// SliceFromFinalBoundary returns the span after the last placed boundary, or
// the whole sequence when no boundary is placed.
func SliceFromFinalBoundary[T any](seq []T, boundaries []bool) []T {
	last := -1
	for i, b := range boundaries {
		if b {
			last = i
		}
	}
	return clone(seq[last+1:])
}

// SlicesFromAllBoundaries cuts seq at every placed boundary. N placed
// boundaries always give N+1 slices; with none the single slice is the
// whole sequence.
func SlicesFromAllBoundaries[T any](seq []T, boundaries []bool) [][]T {
	var out [][]T
	end := -1
	for i, b := range boundaries {
		if b {
			out = append(out, clone(seq[end+1:i+1]))
			end = i
		}
	}
	return append(out, clone(seq[end+1:]))
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// #endregion slicing

// #region trusts
// WordsTrusts maps per-boundary trust flags onto the words the boundaries
// imply. Each word takes the trust of the boundary that closes it; the final
// word is closed by the end of the utterance and is always trusted.
func WordsTrusts(trusts, boundaries []bool) []bool {
	if len(boundaries) == 0 {
		return []bool{true}
	}
	var out []bool
	for i, b := range boundaries {
		if b {
			out = append(out, trusts[i])
		}
	}
	return append(out, true)
}

// #endregion trusts
