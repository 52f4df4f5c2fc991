package segutil

import "math"

// Peakiness is the exponential tilt applied by the biased sampler.
const Peakiness = 0.5

// #region aggregates
// GeometricMean returns prod(nums)^(1/len(nums)).
func GeometricMean(nums []float64) float64 {
	prod := 1.0
	for _, n := range nums {
		prod *= n
	}
	return math.Pow(prod, 1.0/float64(len(nums)))
}

// LogProb sums the natural logs of nums.
func LogProb(nums []float64) float64 {
	sum := 0.0
	for _, n := range nums {
		sum += math.Log(n)
	}
	return sum
}

// MeanEntropy is LogProb averaged over the number of terms.
func MeanEntropy(nums []float64) float64 {
	return LogProb(nums) / float64(len(nums))
}

// CountOnes returns the negated number of entries equal to 1 so that a
// hypothesis can still be picked by maximum.
func CountOnes(nums []float64) float64 {
	count := 0
	for _, n := range nums {
		if n == 1.0 {
			count++
		}
	}
	return -float64(count)
}

// Variance is the population variance of nums.
func Variance(nums []float64) float64 {
	var sum, sumSqrs float64
	for _, n := range nums {
		sum += n
		sumSqrs += n * n
	}
	mean := sum / float64(len(nums))
	return (sumSqrs - sum*mean) / float64(len(nums))
}

// Alternation sums the absolute differences between neighbours.
func Alternation(nums []float64) float64 {
	sum := 0.0
	for i := 1; i < len(nums); i++ {
		sum += math.Abs(nums[i] - nums[i-1])
	}
	return sum
}

// #endregion aggregates

// #region sampling
// BiasProb tilts a probability exponentially by Peakiness.
func BiasProb(p float64) float64 {
	return math.Exp(Peakiness * p)
}

// SampleScores normalizes scores, tilts them with BiasProb, renormalizes and
// returns the index whose cumulative mass first exceeds draw. draw must be in
// [0, 1).
func SampleScores(scores []float64, draw float64) int {
	if len(scores) == 0 {
		return -1
	}
	total := 0.0
	for _, s := range scores {
		total += s
	}
	biased := make([]float64, len(scores))
	biasedTotal := 0.0
	for i, s := range scores {
		biased[i] = BiasProb(s / total)
		biasedTotal += biased[i]
	}
	cum := 0.0
	for i, b := range biased {
		cum += b / biasedTotal
		if cum > draw {
			return i
		}
	}
	return len(scores) - 1
}

// #endregion sampling

// #region choose
// ChooseBestScore returns the item with the highest score, first one winning
// ties. Scores must beat a zero baseline; when none does the first item is
// returned. The zero value is returned for an empty slice.
func ChooseBestScore[T any](items []T, score func(T) float64) T {
	var best T
	if len(items) == 0 {
		return best
	}
	best = items[0]
	bestScore := 0.0
	for _, it := range items {
		if s := score(it); s > bestScore {
			best = it
			bestScore = s
		}
	}
	return best
}

// ChooseSampledBestScore draws one item with probability given by the biased
// sampler over the items' scores.
func ChooseSampledBestScore[T any](items []T, score func(T) float64, draw float64) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	scores := make([]float64, len(items))
	for i, it := range items {
		scores[i] = score(it)
	}
	return items[SampleScores(scores, draw)]
}

// #endregion choose
