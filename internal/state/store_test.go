package state

import (
	"path/filepath"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/lexseg/internal/lexicon"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleLexicon() *lexicon.Lexicon {
	lex := lexicon.New(lexicon.Config{UseTrust: true})
	lex.RewardWord([]string{"dog", "gie"}, []bool{true, false})
	lex.RewardWord([]string{"the"}, []bool{false})
	lex.Tick()
	lex.RewardWord([]string{"dog", "gie"}, []bool{true, false})
	w := lex.GetWord([]string{"the"}, []bool{false})
	lex.PenalizeWord(w)
	lex.Tick()
	return lex
}

func TestBeginAndFinishRun(t *testing.T) {
	s := tempDB(t)

	rec, err := s.BeginRun("beam2", "out/beam2_BeamSubtractive_2", `{"beam_size":2}`)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if rec.RunID == "" || rec.Status != StatusRunning {
		t.Fatalf("unexpected record %+v", rec)
	}

	lex := sampleLexicon()
	if err := s.FinishRun(rec.RunID, `{"bf":0.5}`, lex.Snapshot(), false); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusDone || got.MetricsJSON != `{"bf":0.5}` || got.FinishedAt.IsZero() {
		t.Errorf("finished run = %+v", got)
	}
	if got.Name != "beam2" || got.OutputBase != "out/beam2_BeamSubtractive_2" {
		t.Errorf("run identity = %+v", got)
	}

	active, err := s.GetActive()
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active.RunID != rec.RunID {
		t.Errorf("active = %s, want %s", active.RunID, rec.RunID)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := tempDB(t)
	rec, _ := s.BeginRun("r", "", "{}")
	lex := sampleLexicon()
	want := lex.Snapshot()
	if err := s.FinishRun(rec.RunID, "", want, false); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := s.LoadSnapshot(rec.RunID)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot mismatch:\n got %+v\nwant %+v", got, want)
	}

	restored := lexicon.Restore(lexicon.Config{UseTrust: true}, got)
	if restored.Len() != lex.Len() || restored.Time() != lex.Time() || restored.NumTokens() != lex.NumTokens() {
		t.Errorf("restored lexicon differs: len=%d time=%d tokens=%d", restored.Len(), restored.Time(), restored.NumTokens())
	}
}

func TestFinishRunUnknown(t *testing.T) {
	s := tempDB(t)
	if err := s.FinishRun("missing", "", lexicon.Snapshot{}, false); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestActivate(t *testing.T) {
	s := tempDB(t)
	first, _ := s.BeginRun("first", "", "{}")
	if err := s.FinishRun(first.RunID, "", lexicon.Snapshot{Time: 1}, false); err != nil {
		t.Fatal(err)
	}
	second, _ := s.BeginRun("second", "", "{}")
	if err := s.FinishRun(second.RunID, "", lexicon.Snapshot{Time: 1}, false); err != nil {
		t.Fatal(err)
	}

	if err := s.Activate(first.RunID); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	active, _ := s.GetActive()
	if active.RunID != first.RunID {
		t.Errorf("active = %s, want %s", active.RunID, first.RunID)
	}

	pending, _ := s.BeginRun("pending", "", "{}")
	if err := s.Activate(pending.RunID); err == nil {
		t.Error("expected error activating an unfinished run")
	}
	if err := s.Activate("nonexistent-id"); err == nil {
		t.Error("expected error for non-existent run")
	}
}

func TestListRuns(t *testing.T) {
	s := tempDB(t)
	a, _ := s.BeginRun("a", "", "{}")
	s.FinishRun(a.RunID, "", sampleLexicon().Snapshot(), false)
	s.BeginRun("b", "", "{}")

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	byName := map[string]RunSummary{}
	for _, r := range runs {
		byName[r.Name] = r
	}
	if byName["a"].Words != 2 || byName["a"].NumTokens != 2 {
		t.Errorf("run a summary = %+v", byName["a"])
	}
	if byName["b"].Words != 0 || byName["b"].Status != StatusRunning {
		t.Errorf("run b summary = %+v", byName["b"])
	}
}

func TestStressEncoding(t *testing.T) {
	in := []bool{true, false, false, true}
	if got := encodeStresses(in); got != "1001" {
		t.Errorf("encode = %q", got)
	}
	if got := decodeStresses("1001"); !reflect.DeepEqual(got, in) {
		t.Errorf("decode = %v", got)
	}
}
