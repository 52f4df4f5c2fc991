package eval

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/danielpatrickdp/lexseg/internal/goldlex"
	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region result
// CalcResult derives all scores from the confusion counts.
func CalcResult(tp, fp, fn, tn int) Result {
	precision := float64(tp) / float64(tp+fp)
	recall := float64(tp) / float64(tp+fn)
	fScore := 2 * ((precision * recall) / (precision + recall))
	hitRate := recall
	faRate := float64(fp) / float64(tn+fp)
	aPrime := .5 + ((hitRate-faRate)*(1+hitRate-faRate))/(4*hitRate*(1-faRate))
	bdp := ((1-hitRate)*(1-faRate) - hitRate*faRate) / ((1-hitRate)*(1-faRate) + hitRate*faRate)

	return Result{
		Precision:    finite(precision),
		Recall:       finite(recall),
		FScore:       finite(fScore),
		HitRate:      finite(hitRate),
		FARate:       finite(faRate),
		APrime:       finite(aPrime),
		BDoublePrime: finite(bdp),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CSV renders every score as comma separated values.
func (r Result) CSV() string {
	return fmt.Sprintf("%4f,%4f,%4f,%4f,%4f,%4f,%4f",
		r.Precision, r.Recall, r.FScore, r.HitRate, r.FARate, r.APrime, r.BDoublePrime)
}

// PRFCSV renders precision, recall and F-score as comma separated values.
func (r Result) PRFCSV() string {
	return fmt.Sprintf("%4f,%4f,%4f", r.Precision, r.Recall, r.FScore)
}

func (r Result) String() string {
	return fmt.Sprintf("Precision: %4f, Recall: %4f, F-Score: %4f\nHit Rate: %.4f, FA Rate: %.4f, A': %.4f, B''D: %.4f",
		r.Precision, r.Recall, r.FScore, r.HitRate, r.FARate, r.APrime, r.BDoublePrime)
}

// PRF renders precision, recall and F-score only.
func (r Result) PRF() string {
	return fmt.Sprintf("Precision: %4f, Recall: %4f, F-Score: %4f", r.Precision, r.Recall, r.FScore)
}

// #endregion result

// #region utterances
type counts struct{ tp, fp, fn, tn int }

func (c *counts) add(o counts) {
	c.tp += o.tp
	c.fp += o.fp
	c.fn += o.fn
	c.tn += o.tn
}

func (c counts) result() Result { return CalcResult(c.tp, c.fp, c.fn, c.tn) }

// Utterances compares seg against gold pairwise. Utterances without any
// boundary slot are skipped.
func Utterances(gold, seg []*utterance.Utterance, method Method, logs Logs) (Result, error) {
	if len(gold) != len(seg) {
		return Result{}, fmt.Errorf("eval utterances: %d gold vs %d segmented", len(gold), len(seg))
	}

	if logs.Perf != nil {
		switch method {
		case Boundaries:
			fmt.Fprintln(logs.Perf, "Interval,Precision,Recall,F1,HR,FAR,Aprime,BDoublePrime")
		case Words:
			fmt.Fprintln(logs.Perf, "Utt,Error,Type")
		}
	}
	if logs.Seg != nil {
		fmt.Fprintln(logs.Seg, "Gold,Seg,TP,FP,FN,Prec,Recall,Fscore")
	}

	var total, interval counts
	nUtts, nInterval := 0, 0
	for i := range gold {
		g, s := gold[i], seg[i]
		if len(g.Boundaries) == 0 {
			continue
		}
		if len(s.Boundaries) != len(g.Boundaries) {
			return Result{}, fmt.Errorf("eval utterances: utterance %d has %d gold slots vs %d", i, len(g.Boundaries), len(s.Boundaries))
		}
		nUtts++
		nInterval++

		var utt counts
		switch method {
		case Boundaries:
			utt = compareBoundaries(g.Boundaries, s.Boundaries)
		case Words:
			utt = compareWords(g, s, nUtts, logs.Perf)
		default:
			return Result{}, fmt.Errorf("eval utterances: unknown method %v", method)
		}
		total.add(utt)
		interval.add(utt)

		if logs.Seg != nil {
			fmt.Fprintf(logs.Seg, "%s,%s,%d,%d,%d,%s\n",
				g.SegText(), s.SegText(), utt.tp, utt.fp, utt.fn, utt.result().PRFCSV())
		}
		if logs.Perf != nil && method == Boundaries && nInterval%IntervalSize == 0 {
			fmt.Fprintf(logs.Perf, "%d,%s\n", nUtts, interval.result().CSV())
			interval = counts{}
			nInterval = 0
		}
	}

	final := total.result()
	if logs.Perf != nil && method == Boundaries {
		fmt.Fprintf(logs.Perf, "Final,%s\n", final.CSV())
	}
	return final, nil
}

func compareBoundaries(gold, seg []bool) counts {
	var c counts
	for i := range gold {
		switch {
		case gold[i] && seg[i]:
			c.tp++
		case gold[i]:
			c.fn++
		case seg[i]:
			c.fp++
		default:
			c.tn++
		}
	}
	return c
}

// compareWords scores the word predicted at each slot. A slot holding a
// wrong word counts against both precision and recall.
func compareWords(gold, seg *utterance.Utterance, nUtts int, errLog io.Writer) counts {
	var c counts
	goldWords, goldPresent := gold.WordsPredicted()
	segWords, segPresent := seg.WordsPredicted()
	for i := range goldWords {
		switch {
		case goldPresent[i] && segPresent[i] && goldWords[i] == segWords[i]:
			c.tp++
		case !goldPresent[i] && !segPresent[i]:
			c.tn++
		default:
			if segPresent[i] {
				c.fp++
			}
			if goldPresent[i] {
				c.fn++
			}
			if errLog != nil && segPresent[i] && goldPresent[i] {
				kind := UnderSeg
				if len(segWords[i]) < len(goldWords[i]) {
					kind = OverSeg
				}
				fmt.Fprintf(errLog, "%d,%s,%s\n", nUtts, segWords[i], kind)
			}
		}
	}
	return c
}

// #endregion utterances

// #region lexicons
// Lexicons compares a learned lexicon with a gold one. Precision runs over
// the seg words that currently count as words; recall counts the gold words
// the seg lexicon does not know. Misses and false positives go to w.
func Lexicons(gold *goldlex.Lexicon, seg *lexicon.Lexicon, w io.Writer) (LexResult, error) {
	var c counts
	var segRate Rate
	for _, word := range seg.Words() {
		if !seg.IsEvalWord(word) {
			continue
		}
		known, err := gold.Contains(word.Units, word.Stresses)
		if err != nil {
			return LexResult{}, fmt.Errorf("eval lexicon: %w", err)
		}
		if known {
			c.tp++
		} else {
			c.fp++
			if w != nil {
				fmt.Fprintf(w, "FP: %s\n", word)
			}
		}
		if word.Len() > 1 {
			segRate.Total++
			if word.IsStressInitial() {
				segRate.Initial++
			}
		}
	}
	if segRate.Total > 0 {
		segRate.Value = float64(segRate.Initial) / float64(segRate.Total)
	}

	for _, e := range gold.Entries() {
		if !seg.IsEvalUnits(e.Units, e.Stresses) {
			c.fn++
			if w != nil {
				fmt.Fprintf(w, "Miss: %s\n", utterance.FormatUnits(e.Units, e.Stresses))
			}
		}
	}
	var goldRate Rate
	goldRate.Value, goldRate.Initial, goldRate.Total = gold.StressInitialRate()

	return LexResult{Result: c.result(), SegStressInitial: segRate, GoldStressInitial: goldRate}, nil
}

// WordTypes compares the word types of two utterance sets.
func WordTypes(gold, seg []*utterance.Utterance, stressSensitive bool) (LexResult, error) {
	goldLex, err := goldlex.Build(gold, stressSensitive)
	if err != nil {
		return LexResult{}, fmt.Errorf("eval word types: %w", err)
	}
	defer goldLex.Close()
	return Lexicons(goldLex, lexicon.FromUtterances(seg, stressSensitive), nil)
}

// LogStressRates prints both stress-initial rates of a lexicon comparison.
func LogStressRates(r LexResult) {
	log.Printf("Learner's lexicon stress-initial rate: %s", r.SegStressInitial)
	log.Printf("Gold lexicon stress-initial rate: %s", r.GoldStressInitial)
}

// #endregion lexicons
