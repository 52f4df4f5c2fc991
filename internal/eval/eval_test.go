package eval

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/lexseg/internal/goldlex"
	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

func gold(t *testing.T, lines ...string) []*utterance.Utterance {
	t.Helper()
	out := make([]*utterance.Utterance, 0, len(lines))
	for _, line := range lines {
		u, err := utterance.Parse(line, true)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		out = append(out, u)
	}
	return out
}

func segWith(u *utterance.Utterance, bounds ...bool) *utterance.Utterance {
	s := u.SegCopy()
	s.SetBoundaries(bounds)
	return s
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestCalcResult(t *testing.T) {
	tests := []struct {
		name           string
		tp, fp, fn, tn int
		want           Result
	}{
		{"mixed", 2, 1, 1, 4, Result{
			Precision: 2.0 / 3, Recall: 2.0 / 3, FScore: 2.0 / 3,
			HitRate: 2.0 / 3, FARate: 0.2, APrime: 0.820833, BDoublePrime: 1.0 / 3,
		}},
		{"perfect", 3, 0, 0, 2, Result{
			Precision: 1, Recall: 1, FScore: 1, HitRate: 1, FARate: 0, APrime: 1, BDoublePrime: 0,
		}},
		{"empty", 0, 0, 0, 0, Result{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcResult(tt.tp, tt.fp, tt.fn, tt.tn)
			pairs := [][2]float64{
				{got.Precision, tt.want.Precision}, {got.Recall, tt.want.Recall},
				{got.FScore, tt.want.FScore}, {got.HitRate, tt.want.HitRate},
				{got.FARate, tt.want.FARate}, {got.APrime, tt.want.APrime},
				{got.BDoublePrime, tt.want.BDoublePrime},
			}
			for k, p := range pairs {
				if !near(p[0], p[1]) {
					t.Errorf("field %d = %f, want %f (%+v)", k, p[0], p[1], got)
				}
			}
		})
	}
}

func TestResultFormatting(t *testing.T) {
	r := CalcResult(1, 1, 1, 1)
	if got := r.PRFCSV(); got != "0.500000,0.500000,0.500000" {
		t.Errorf("PRFCSV = %q", got)
	}
	if n := strings.Count(r.CSV(), ","); n != 6 {
		t.Errorf("CSV has %d commas, want 6", n)
	}
	if !strings.HasPrefix(r.String(), "Precision: 0.500000") {
		t.Errorf("String = %q", r.String())
	}
}

func TestUtterances_Boundaries(t *testing.T) {
	g := gold(t, "the dog|gie ran", "hi")
	s := []*utterance.Utterance{segWith(g[0], true, true, false), g[1].SegCopy()}

	var segLog, perf bytes.Buffer
	r, err := Utterances(g, s, Boundaries, Logs{Seg: &segLog, Perf: &perf})
	if err != nil {
		t.Fatal(err)
	}
	if !near(r.Precision, 0.5) || !near(r.Recall, 0.5) {
		t.Errorf("P=%f R=%f, want 0.5/0.5", r.Precision, r.Recall)
	}

	lines := strings.Split(strings.TrimSpace(segLog.String()), "\n")
	// header plus one scored utterance; "hi" has no slots
	if len(lines) != 2 {
		t.Fatalf("seg log lines = %d: %q", len(lines), segLog.String())
	}
	if !strings.HasPrefix(lines[1], "the dog|gie ran,the dog gie|ran,1,1,1,") {
		t.Errorf("seg log row = %q", lines[1])
	}
	if !strings.Contains(perf.String(), "Final,0.500000,0.500000") {
		t.Errorf("perf log = %q", perf.String())
	}
}

func TestUtterances_Words(t *testing.T) {
	g := gold(t, "the dog|gie ran")
	s := []*utterance.Utterance{segWith(g[0], true, true, true)}

	var perf bytes.Buffer
	r, err := Utterances(g, s, Words, Logs{Perf: &perf})
	if err != nil {
		t.Fatal(err)
	}
	// the, ran right; dog wrong; gie spurious
	if !near(r.Precision, 0.5) || !near(r.Recall, 2.0/3) {
		t.Errorf("P=%f R=%f, want 0.5/0.667", r.Precision, r.Recall)
	}
	if got := perf.String(); got != "Utt,Error,Type\n1,dog,OVERSEG\n" {
		t.Errorf("word log = %q", got)
	}
}

func TestUtterances_UnderSeg(t *testing.T) {
	g := gold(t, "the dog")
	s := []*utterance.Utterance{g[0].SegCopy()}
	var perf bytes.Buffer
	r, err := Utterances(g, s, Words, Logs{Perf: &perf})
	if err != nil {
		t.Fatal(err)
	}
	if r.Precision != 0 || !near(r.Recall, 0) {
		t.Errorf("P=%f R=%f", r.Precision, r.Recall)
	}
	if !strings.Contains(perf.String(), "1,the|dog,UNDERSEG") {
		t.Errorf("word log = %q", perf.String())
	}
}

func TestUtterances_Intervals(t *testing.T) {
	lines := make([]string, IntervalSize+1)
	for k := range lines {
		lines[k] = "a b"
	}
	g := gold(t, lines...)
	s := make([]*utterance.Utterance, len(g))
	for k, u := range g {
		s[k] = u.Clone()
	}
	var perf bytes.Buffer
	if _, err := Utterances(g, s, Boundaries, Logs{Perf: &perf}); err != nil {
		t.Fatal(err)
	}
	out := strings.Split(strings.TrimSpace(perf.String()), "\n")
	if len(out) != 3 {
		t.Fatalf("perf lines = %d, want header, one interval, final", len(out))
	}
	if !strings.HasPrefix(out[1], "500,1.000000") || !strings.HasPrefix(out[2], "Final,1.000000") {
		t.Errorf("perf log = %q", out)
	}
}

func TestUtterances_LengthMismatch(t *testing.T) {
	g := gold(t, "a b", "c d")
	if _, err := Utterances(g, g[:1], Boundaries, Logs{}); err == nil {
		t.Fatal("expected error for differing corpus lengths")
	}
}

func TestLexicons(t *testing.T) {
	gl, err := goldlex.Build(gold(t, "the dog", "the cat"), false)
	if err != nil {
		t.Fatal(err)
	}
	defer gl.Close()

	seg := lexicon.New(lexicon.Config{})
	for _, w := range []string{"the", "dog", "do"} {
		seg.RewardWord([]string{w}, []bool{false})
	}

	var w bytes.Buffer
	r, err := Lexicons(gl, seg, &w)
	if err != nil {
		t.Fatal(err)
	}
	if !near(r.Precision, 2.0/3) || !near(r.Recall, 2.0/3) {
		t.Errorf("P=%f R=%f, want 2/3 each", r.Precision, r.Recall)
	}
	if !strings.Contains(w.String(), "FP: do") || !strings.Contains(w.String(), "Miss: cat") {
		t.Errorf("lexicon log = %q", w.String())
	}
}

func TestLexicons_StressRates(t *testing.T) {
	gl, err := goldlex.Build(gold(t, "ba1|by0 ba1|by0 mo0|ney1"), false)
	if err != nil {
		t.Fatal(err)
	}
	defer gl.Close()

	seg := lexicon.New(lexicon.Config{})
	seg.RewardWord([]string{"ba", "by"}, []bool{true, false})

	r, err := Lexicons(gl, seg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.GoldStressInitial.Initial != 1 || r.GoldStressInitial.Total != 2 || !near(r.GoldStressInitial.Value, 0.5) {
		t.Errorf("gold rate = %+v", r.GoldStressInitial)
	}
	if r.SegStressInitial.Initial != 1 || r.SegStressInitial.Total != 1 {
		t.Errorf("seg rate = %+v", r.SegStressInitial)
	}
}

func TestLexicons_ClosedGold(t *testing.T) {
	gl, err := goldlex.Build(gold(t, "the dog"), false)
	if err != nil {
		t.Fatal(err)
	}
	gl.Close()

	seg := lexicon.New(lexicon.Config{})
	seg.RewardWord([]string{"the"}, []bool{false})
	if _, err := Lexicons(gl, seg, nil); !errors.Is(err, goldlex.ErrClosed) {
		t.Errorf("Lexicons on closed gold: err = %v, want ErrClosed", err)
	}
}

func TestWordTypes(t *testing.T) {
	g := gold(t, "the dog", "the cat")
	s := []*utterance.Utterance{g[0].Clone(), segWith(g[1], false)}
	r, err := WordTypes(g, s, false)
	if err != nil {
		t.Fatal(err)
	}
	// seg types: the, dog, the|cat
	if !near(r.Precision, 2.0/3) || !near(r.Recall, 2.0/3) {
		t.Errorf("P=%f R=%f", r.Precision, r.Recall)
	}
}
