package counter

import "strings"

const keyDelim = "|"

func key(units []string) string {
	return strings.Join(units, keyDelim)
}

// #region subseq
// SubSeq counts unit subsequences.
type SubSeq struct {
	counts map[string]int
}

// NewSubSeq returns an empty counter.
func NewSubSeq() *SubSeq {
	return &SubSeq{counts: make(map[string]int)}
}

// Inc counts one occurrence of units.
func (c *SubSeq) Inc(units []string) {
	c.counts[key(units)]++
}

// Get returns how often units was counted.
func (c *SubSeq) Get(units []string) int {
	return c.counts[key(units)]
}

// IncAllSubSeqs counts every contiguous subsequence of units.
func (c *SubSeq) IncAllSubSeqs(units []string) {
	for length := 1; length <= len(units); length++ {
		for i := 0; i+length <= len(units); i++ {
			c.Inc(units[i : i+length])
		}
	}
}

// Len returns the number of distinct subsequences seen.
func (c *SubSeq) Len() int {
	return len(c.counts)
}

// #endregion subseq

// #region freqdist
// FreqDist is a frequency distribution over string events.
type FreqDist struct {
	counts map[string]int64
	total  int64
}

// NewFreqDist returns an empty distribution.
func NewFreqDist() *FreqDist {
	return &FreqDist{counts: make(map[string]int64)}
}

// Inc counts one occurrence of event and returns its new count.
func (d *FreqDist) Inc(event string) int64 {
	d.total++
	d.counts[event]++
	return d.counts[event]
}

// Count returns the raw count of event.
func (d *FreqDist) Count(event string) int64 {
	return d.counts[event]
}

// Freq returns the relative frequency of event, 0 when nothing was counted.
func (d *FreqDist) Freq(event string) float64 {
	if d.total == 0 {
		return 0
	}
	return float64(d.counts[event]) / float64(d.total)
}

// Total returns the number of counted occurrences.
func (d *FreqDist) Total() int64 {
	return d.total
}

// Len returns the number of distinct events.
func (d *FreqDist) Len() int {
	return len(d.counts)
}

// #endregion freqdist
