package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

func parse(t *testing.T, line string) *utterance.Utterance {
	t.Helper()
	u, err := utterance.Parse(line, true)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestWriteSegmentation(t *testing.T) {
	utts := []*utterance.Utterance{parse(t, "the dog1|gie0"), parse(t, "hi1")}
	var buf bytes.Buffer
	if err := WriteSegmentation(&buf, utts); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "the dog(1)|gie\nhi(1)\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteLexicon_BestFirst(t *testing.T) {
	lex := lexicon.New(lexicon.Config{})
	lex.RewardWord([]string{"a"}, []bool{false})
	for k := 0; k < 3; k++ {
		lex.RewardWord([]string{"b", "c"}, []bool{true, false})
	}
	var buf bytes.Buffer
	if err := WriteLexicon(&buf, lex); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "3 b(1)|c\n1 a\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	lex := lexicon.New(lexicon.Config{})
	lex.RewardWord([]string{"hi"}, []bool{false})
	if err := WriteFiles(base, []*utterance.Utterance{parse(t, "hi there")}, lex); err != nil {
		t.Fatal(err)
	}
	seg, err := os.ReadFile(base + SegSuffix)
	if err != nil || string(seg) != "hi there\n" {
		t.Errorf("seg file = %q, %v", seg, err)
	}
	lx, err := os.ReadFile(base + LexSuffix)
	if err != nil || string(lx) != "1 hi\n" {
		t.Errorf("lex file = %q, %v", lx, err)
	}
}

func TestOpenEvalLogs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	logs := OpenEvalLogs(base, true, false)
	if logs.SegEval == nil || logs.Perf == nil || logs.Word == nil {
		t.Fatal("segmentation logs not opened")
	}
	if logs.LexEval != nil || Writer(logs.LexEval) != nil {
		t.Error("lexicon log opened without lex logging")
	}
	logs.Close()
	if _, err := os.Stat(base + PerfSuffix); err != nil {
		t.Errorf("perf log missing: %v", err)
	}

	missing := OpenEvalLogs(filepath.Join(t.TempDir(), "no", "such", "dir"), true, true)
	if missing.SegEval != nil || missing.LexEval != nil {
		t.Error("expected nil logs for an unwritable base")
	}
	missing.Close()
}
