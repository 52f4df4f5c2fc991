package lexicon

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/lexseg/internal/counter"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

var (
	i             = []string{"I"}
	iStress       = []bool{false}
	like          = []string{"like"}
	likeStress    = []bool{true}
	pie           = []string{"pie"}
	pieStress     = []bool{true}
	likePie       = []string{"like", "pie"}
	likePieStress = []bool{true, true}
	iLikePie      = []string{"I", "like", "pie"}
	iLikePieStr   = []bool{false, true, true}
)

func mustParse(t *testing.T, line string) *utterance.Utterance {
	t.Helper()
	u, err := utterance.Parse(line, false)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return u
}

func stressLex() *Lexicon {
	return New(Config{StressSensitive: true})
}

func assertWords(t *testing.T, got []*Word, want ...*Word) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d words %v, want %d %v", len(got), got, len(want), want)
	}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("word %d = %v, want %v", k, got[k], want[k])
		}
	}
}

func TestKey(t *testing.T) {
	if got := Key(likePie, likePieStress, false); got != "like|pie" {
		t.Errorf("insensitive key = %q", got)
	}
	if got := Key(likePie, []bool{true, false}, true); got != "like|pie10" {
		t.Errorf("sensitive key = %q", got)
	}
}

func TestPrefixWords_Basic(t *testing.T) {
	lex := stressLex()
	lex.RewardWord(i, iStress)
	lex.RewardWord(iLikePie, iLikePieStr)
	pieUtt := mustParse(t, "I0 like1 pie1")

	got, err := lex.PrefixWords(pieUtt, 0)
	if err != nil {
		t.Fatal(err)
	}
	assertWords(t, got, lex.GetWord(i, iStress), lex.GetWord(iLikePie, iLikePieStr))

	got, err = lex.PrefixWords(pieUtt, 1)
	if err != nil {
		t.Fatal(err)
	}
	assertWords(t, got)
}

func TestPrefixWords_Indices(t *testing.T) {
	lex := stressLex()
	lex.RewardWord(like, likeStress)
	lex.RewardWord(likePie, likePieStress)
	lex.RewardWord(pie, pieStress)
	pieUtt := mustParse(t, "I0 like1 pie1")

	got, _ := lex.PrefixWords(pieUtt, 0)
	assertWords(t, got)

	got, _ = lex.PrefixWords(pieUtt, 1)
	assertWords(t, got, lex.GetWord(like, likeStress), lex.GetWord(likePie, likePieStress))
	if got[1].Text() != "likepie" {
		t.Errorf("Text = %q, want likepie", got[1].Text())
	}

	got, _ = lex.PrefixWords(pieUtt, 2)
	assertWords(t, got, lex.GetWord(pie, pieStress))
}

func TestPrefixWords_OneUnitUtterance(t *testing.T) {
	lex := stressLex()
	lex.RewardWord(i, iStress)
	lex.RewardWord(iLikePie, iLikePieStr)

	got, _ := lex.PrefixWords(mustParse(t, "I0"), 0)
	assertWords(t, got, lex.GetWord(i, iStress))

	got, _ = lex.PrefixWords(mustParse(t, "aldkjasldkja0"), 0)
	assertWords(t, got)
}

func TestPrefixWords_BadIndices(t *testing.T) {
	lex := stressLex()
	iUtt := mustParse(t, "I0")
	for _, idx := range []int{-1, 1} {
		if _, err := lex.PrefixWords(iUtt, idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("index %d: got %v, want ErrIndexOutOfRange", idx, err)
		}
	}
}

func TestPrefixWords_StressSensitivity(t *testing.T) {
	pieUtt := mustParse(t, "I0 like1 pie1")

	sensitive := stressLex()
	sensitive.RewardWord(like, []bool{false})
	got, _ := sensitive.PrefixWords(pieUtt, 1)
	assertWords(t, got)

	merged := New(Config{})
	merged.RewardWord(like, []bool{false})
	got, _ = merged.PrefixWords(pieUtt, 1)
	assertWords(t, got, merged.GetWord(like, []bool{false}))
}

func TestRewardWord_SingleEntry(t *testing.T) {
	lex := New(Config{})
	lex.RewardWord(like, likeStress)
	lex.RewardWord(like, likeStress)
	if lex.Len() != 1 {
		t.Fatalf("expected one entry, got %d", lex.Len())
	}
	w := lex.GetWord(like, likeStress)
	if w.RawScore() != InitScore+1 {
		t.Errorf("score = %f, want %f", w.RawScore(), InitScore+1)
	}
	if lex.NumTokens() != 2 {
		t.Errorf("tokens = %d, want 2", lex.NumTokens())
	}
	if !w.IsStressInitial() {
		t.Error("expected stress-initial word")
	}
}

func TestPenalizeWord(t *testing.T) {
	lex := New(Config{})
	lex.RewardWord(like, likeStress)
	w := lex.GetWord(like, likeStress)
	lex.PenalizeWord(w)
	if w.RawScore() != InitScore-Penalty {
		t.Errorf("score = %f, want %f", w.RawScore(), InitScore-Penalty)
	}
	if lex.NumTokens() != 0 {
		t.Errorf("tokens = %d, want 0", lex.NumTokens())
	}
	if lex.RecallWord(w) {
		t.Error("zero-score word must not be recalled")
	}
	if lex.RecallWord(nil) {
		t.Error("nil word must not be recalled")
	}
}

func TestDecay(t *testing.T) {
	lex := New(Config{StressSensitive: true, DecayAmount: 0.1})
	for n := 0; n < 4; n++ {
		lex.IncUtteranceWords(i, iStress, []bool{}, nil)
	}
	w := lex.GetWord(i, iStress)
	prev := lex.Score(w, nil)
	raw := w.ScoreAt(lex.Time(), lex.Decay())
	for tick := 0; tick < 3; tick++ {
		lex.Tick()
		score := lex.Score(w, nil)
		if score >= prev {
			t.Fatalf("tick %d: score %f did not decrease from %f", tick, score, prev)
		}
		prev = score
	}
	if got := w.ScoreAt(lex.Time(), lex.Decay()); math.Abs(got-raw*math.Exp(-0.3)) > 1e-9 {
		t.Errorf("decayed score = %f, want %f", got, raw*math.Exp(-0.3))
	}
	if w.RawScore() != 4 {
		t.Errorf("stored score changed: %f", w.RawScore())
	}
}

func TestNoDecayWhenZero(t *testing.T) {
	lex := New(Config{})
	lex.RewardWord(like, likeStress)
	lex.Tick()
	lex.Tick()
	if got := lex.GetWord(like, likeStress).ScoreAt(lex.Time(), lex.Decay()); got != InitScore {
		t.Errorf("score = %f, want %f", got, InitScore)
	}
}

func TestScore_SmoothingAndNormalization(t *testing.T) {
	lex := New(Config{Normalize: true})
	lex.RewardWord(like, likeStress)
	lex.RewardWord(pie, pieStress)
	lex.RewardWord(pie, pieStress)
	lex.RewardWord(pie, pieStress)
	w := lex.GetWord(pie, pieStress)
	if got := lex.Score(w, nil); math.Abs(got-3.0/4.0) > 1e-12 {
		t.Errorf("normalized score = %f, want 0.75", got)
	}
	lex.PenalizeWord(lex.GetWord(like, likeStress))
	// raw 0 is floored to SmoothingMin before normalizing.
	if got := lex.Score(lex.GetWord(like, likeStress), nil); math.Abs(got-1.0/3.0) > 1e-12 {
		t.Errorf("smoothed score = %f, want 1/3", got)
	}
}

func TestScore_SubSeqDiscount(t *testing.T) {
	c := counter.NewSubSeq()
	c.IncAllSubSeqs(iLikePie)
	c.IncAllSubSeqs(like)
	lex := New(Config{Counter: c})
	lex.RewardWord(like, likeStress)
	lex.RewardWord(like, likeStress)
	lex.RewardWord(like, likeStress)
	if got := lex.Score(lex.GetWord(like, likeStress), lex.Counter()); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("discounted score = %f, want 1.5", got)
	}
}

func TestUtteranceWordsScores(t *testing.T) {
	lex := New(Config{})
	lex.RewardWord(like, likeStress)
	lex.RewardWord(like, likeStress)
	scores := lex.UtteranceWordsScores(iLikePie, iLikePieStr, []bool{true, true}, nil)
	want := []float64{UnknownWordScore, 2, UnknownWordScore}
	for k := range want {
		if scores[k] != want[k] {
			t.Errorf("scores = %v, want %v", scores, want)
			break
		}
	}
}

func TestIncUtteranceWords_Trust(t *testing.T) {
	bounds := []bool{true, true}
	trusts := []bool{false, true}

	gated := New(Config{UseTrust: true})
	gated.IncUtteranceWords(iLikePie, iLikePieStr, bounds, trusts)
	if gated.GetWord(i, iStress) != nil {
		t.Error("untrusted word was rewarded")
	}
	if gated.GetWord(like, likeStress) == nil || gated.GetWord(pie, pieStress) == nil {
		t.Error("trusted words missing")
	}

	ungated := New(Config{UseTrust: false})
	ungated.IncUtteranceWords(iLikePie, iLikePieStr, bounds, trusts)
	if ungated.Len() != 3 {
		t.Errorf("trust off: %d words, want 3", ungated.Len())
	}

	nilTrusts := New(Config{UseTrust: true})
	nilTrusts.IncUtteranceWords(iLikePie, iLikePieStr, bounds, nil)
	if nilTrusts.Len() != 3 {
		t.Errorf("nil trusts: %d words, want 3", nilTrusts.Len())
	}
}

func TestRecall_ProbMemDeterministic(t *testing.T) {
	run := func() []bool {
		lex := New(Config{UseProbMem: true, ProbAmount: 0.3, Seed: 7})
		lex.RewardWord(like, likeStress)
		w := lex.GetWord(like, likeStress)
		out := make([]bool, 50)
		for k := range out {
			out[k] = lex.RecallWord(w)
		}
		return out
	}
	a, b := run(), run()
	hits := 0
	for k := range a {
		if a[k] != b[k] {
			t.Fatalf("draw %d differs between runs", k)
		}
		if a[k] {
			hits++
		}
	}
	if hits == 0 || hits == len(a) {
		t.Errorf("expected mixed recall at rate %.2f, got %d/%d", 1-math.Exp(-0.3), hits, len(a))
	}
}

func TestSplitWord(t *testing.T) {
	lex := New(Config{})
	lex.RewardWord(likePie, likePieStress)
	u := mustParse(t, "I0 like1 pie1")

	w, err := lex.SplitWord(u, []bool{true, true}, []bool{true, false})
	if err != nil {
		t.Fatal(err)
	}
	if w != lex.GetWord(likePie, likePieStress) {
		t.Errorf("blamed %v, want like|pie", w)
	}

	w, err = lex.SplitWord(u, []bool{true, false}, []bool{true, true})
	if err != nil {
		t.Fatal(err)
	}
	if w != nil {
		t.Errorf("blamed %v, want nil for unstored word", w)
	}

	if _, err := lex.SplitWord(u, []bool{true, false}, []bool{true, false}); !errors.Is(err, ErrNoDifference) {
		t.Errorf("identical segmentations: got %v, want ErrNoDifference", err)
	}
}

func TestFromUtterances(t *testing.T) {
	a, _ := utterance.Parse("I0 like1 pie1", true)
	b, _ := utterance.Parse("like1 pie1|crust0", true)
	lex := FromUtterances([]*utterance.Utterance{a, b}, false)
	if lex.Len() != 4 {
		t.Fatalf("expected 4 gold words, got %d", lex.Len())
	}
	if got := lex.GetWord(like, likeStress).RawScore(); got != 2 {
		t.Errorf("like score = %f, want 2", got)
	}
	if !lex.IsEvalUnits([]string{"pie", "crust"}, []bool{true, false}) {
		t.Error("pie|crust should be an eval word")
	}
}

func TestSortedByScoreAndDump(t *testing.T) {
	lex := New(Config{})
	lex.RewardWord(i, iStress)
	lex.RewardWord(like, likeStress)
	lex.RewardWord(like, likeStress)
	lex.RewardWord(pie, pieStress)
	sorted := lex.SortedByScore()
	if sorted[0] != lex.GetWord(like, likeStress) {
		t.Errorf("first = %v, want like", sorted[0])
	}
	if sorted[1] != lex.GetWord(i, iStress) || sorted[2] != lex.GetWord(pie, pieStress) {
		t.Error("ties must keep insertion order")
	}
	if got := lex.DumpWord(sorted[0]); got != "2 like(1)" {
		t.Errorf("DumpWord = %q", got)
	}
}

func TestWordsIsACopy(t *testing.T) {
	lex := New(Config{})
	lex.RewardWord(like, likeStress)
	lex.RewardWord(likePie, likePieStress)

	words := lex.Words()
	words[0], words[1] = words[1], nil
	got := lex.Words()
	want := []*Word{lex.GetWord(like, likeStress), lex.GetWord(likePie, likePieStress)}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Words after caller edit = %v, want %v", got, want)
	}
}

func TestSnapshotRestore(t *testing.T) {
	lex := New(Config{})
	lex.RewardWord(like, likeStress)
	lex.RewardWord(likePie, likePieStress)
	lex.Tick()
	lex.RewardWord(like, likeStress)

	restored := Restore(Config{}, lex.Snapshot())
	if restored.Len() != 2 || restored.Time() != lex.Time() || restored.NumTokens() != lex.NumTokens() {
		t.Fatalf("restored len=%d time=%d tokens=%d", restored.Len(), restored.Time(), restored.NumTokens())
	}
	w := restored.GetWord(like, likeStress)
	if w.RawScore() != 2 || w.Timestamp() != 2 || !w.IsStressInitial() {
		t.Errorf("restored like: score=%f ts=%d", w.RawScore(), w.Timestamp())
	}
}
