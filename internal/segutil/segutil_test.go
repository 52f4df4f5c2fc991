package segutil

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

var pieSent = []string{"I", "like", "pie."}

func TestSliceFromLastBoundary(t *testing.T) {
	tests := []struct {
		name       string
		boundaries []bool
		want       []string
	}{
		{"first word", []bool{true, false}, []string{"I"}},
		{"second word", []bool{true, true}, []string{"like"}},
		{"first two words", []bool{false, true}, []string{"I", "like"}},
	}
	for _, tt := range tests {
		got, err := SliceFromLastBoundary(pieSent, tt.boundaries)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := SliceFromLastBoundary(pieSent, []bool{false, false}); !errors.Is(err, ErrNoBoundary) {
		t.Errorf("no boundary: got %v, want ErrNoBoundary", err)
	}
}

func TestSliceFromFinalBoundary(t *testing.T) {
	if got := SliceFromFinalBoundary(pieSent, []bool{true, true}); !reflect.DeepEqual(got, []string{"pie."}) {
		t.Errorf("got %v, want [pie.]", got)
	}
	if got := SliceFromFinalBoundary(pieSent, []bool{false, true}); !reflect.DeepEqual(got, []string{"pie."}) {
		t.Errorf("got %v, want [pie.]", got)
	}
	if got := SliceFromFinalBoundary(pieSent, []bool{false, false}); !reflect.DeepEqual(got, pieSent) {
		t.Errorf("got %v, want whole sentence", got)
	}
}

func TestSlicesFromAllBoundaries(t *testing.T) {
	tests := []struct {
		boundaries []bool
		want       [][]string
	}{
		{[]bool{true, true}, [][]string{{"I"}, {"like"}, {"pie."}}},
		{[]bool{false, true}, [][]string{{"I", "like"}, {"pie."}}},
		{[]bool{true, false}, [][]string{{"I"}, {"like", "pie."}}},
		{[]bool{false, false}, [][]string{{"I", "like", "pie."}}},
	}
	for _, tt := range tests {
		got := SlicesFromAllBoundaries(pieSent, tt.boundaries)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SlicesFromAllBoundaries(%v) = %v, want %v", tt.boundaries, got, tt.want)
		}
	}
}

func TestSlicesFromAllBoundaries_Concatenation(t *testing.T) {
	units := strings.Split("a b c d e f", " ")
	// every boundary pattern over five slots
	for mask := 0; mask < 1<<5; mask++ {
		bounds := make([]bool, 5)
		placed := 0
		for i := range bounds {
			if mask&(1<<i) != 0 {
				bounds[i] = true
				placed++
			}
		}
		slices := SlicesFromAllBoundaries(units, bounds)
		if len(slices) != placed+1 {
			t.Fatalf("mask %b: %d slices, want %d", mask, len(slices), placed+1)
		}
		var joined []string
		for _, s := range slices {
			joined = append(joined, s...)
		}
		if !reflect.DeepEqual(joined, units) {
			t.Fatalf("mask %b: concatenation %v != %v", mask, joined, units)
		}
	}

	single := SlicesFromAllBoundaries([]string{"x"}, nil)
	if len(single) != 1 || single[0][0] != "x" {
		t.Errorf("single unit: got %v", single)
	}
}

func TestSlicesAreCopies(t *testing.T) {
	units := []string{"a", "b"}
	slices := SlicesFromAllBoundaries(units, []bool{true})
	slices[0][0] = "z"
	if units[0] != "a" {
		t.Error("slices must not alias the input")
	}
}

func TestWordsTrusts(t *testing.T) {
	tests := []struct {
		trusts, boundaries, want []bool
	}{
		{nil, nil, []bool{true}},
		{[]bool{false, false}, []bool{false, false}, []bool{true}},
		{[]bool{false, true}, []bool{true, true}, []bool{false, true, true}},
		{[]bool{true, false, false}, []bool{true, false, true}, []bool{true, false, true}},
	}
	for _, tt := range tests {
		if got := WordsTrusts(tt.trusts, tt.boundaries); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("WordsTrusts(%v, %v) = %v, want %v", tt.trusts, tt.boundaries, got, tt.want)
		}
	}
}

func TestGeometricMean(t *testing.T) {
	if got := GeometricMean([]float64{2, 8}); math.Abs(got-4) > 1e-12 {
		t.Errorf("GeometricMean(2,8) = %f, want 4", got)
	}
	if got := GeometricMean([]float64{3}); math.Abs(got-3) > 1e-12 {
		t.Errorf("GeometricMean(3) = %f, want 3", got)
	}
}

func TestAggregates(t *testing.T) {
	nums := []float64{1, 3, 1, 5}
	if got := CountOnes(nums); got != -2 {
		t.Errorf("CountOnes = %f, want -2", got)
	}
	if got := Alternation(nums); got != 8 {
		t.Errorf("Alternation = %f, want 8", got)
	}
	if got := Variance([]float64{2, 4}); math.Abs(got-1) > 1e-12 {
		t.Errorf("Variance = %f, want 1", got)
	}
	if got := LogProb([]float64{1, math.E}); math.Abs(got-1) > 1e-12 {
		t.Errorf("LogProb = %f, want 1", got)
	}
	if got := MeanEntropy([]float64{1, math.E}); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("MeanEntropy = %f, want 0.5", got)
	}
}

func TestSampleScores(t *testing.T) {
	scores := []float64{1, 1}
	if got := SampleScores(scores, 0.0); got != 0 {
		t.Errorf("draw 0: got %d, want 0", got)
	}
	if got := SampleScores(scores, 0.49); got != 0 {
		t.Errorf("draw 0.49: got %d, want 0", got)
	}
	if got := SampleScores(scores, 0.51); got != 1 {
		t.Errorf("draw 0.51: got %d, want 1", got)
	}
	if got := SampleScores(scores, 0.999999999); got != 1 {
		t.Errorf("draw near 1: got %d, want 1", got)
	}
	if got := SampleScores(nil, 0.5); got != -1 {
		t.Errorf("empty: got %d, want -1", got)
	}
}

func TestSampleScores_Biased(t *testing.T) {
	// Normalized [0.75, 0.25] tilt to e^0.375 and e^0.125.
	a, b := math.Exp(0.375), math.Exp(0.125)
	split := a / (a + b)
	scores := []float64{3, 1}
	if got := SampleScores(scores, split-0.001); got != 0 {
		t.Errorf("below split: got %d, want 0", got)
	}
	if got := SampleScores(scores, split+0.001); got != 1 {
		t.Errorf("above split: got %d, want 1", got)
	}
}

func TestChooseBestScore(t *testing.T) {
	words := []string{"a", "bb", "cc", "d"}
	score := func(s string) float64 { return float64(len(s)) }
	if got := ChooseBestScore(words, score); got != "bb" {
		t.Errorf("got %q, want first max %q", got, "bb")
	}
	if got := ChooseBestScore(words, func(string) float64 { return 0 }); got != "a" {
		t.Errorf("all zero: got %q, want %q", got, "a")
	}
	if got := ChooseBestScore([]string{}, score); got != "" {
		t.Errorf("empty: got %q", got)
	}
	if got := ChooseSampledBestScore(words, score, 0.0); got != "a" {
		t.Errorf("sampled draw 0: got %q, want %q", got, "a")
	}
}
