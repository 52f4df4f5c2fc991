package output

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// File suffixes appended to an output base.
const (
	SegSuffix     = "_seg.txt"
	LexSuffix     = "_lex.txt"
	SegEvalSuffix = "_segeval.csv"
	PerfSuffix    = "_perflog.csv"
	WordSuffix    = "_word.csv"
	LexEvalSuffix = "_lexeval.txt"
)

// #region writers
// WriteSegmentation writes one segmented utterance per line.
func WriteSegmentation(w io.Writer, utts []*utterance.Utterance) error {
	bw := bufio.NewWriter(w)
	for _, u := range utts {
		if _, err := bw.WriteString(u.SegText() + "\n"); err != nil {
			return fmt.Errorf("write segmentation: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write segmentation: %w", err)
	}
	return nil
}

// WriteLexicon writes every word as "<score> <units>", best first.
func WriteLexicon(w io.Writer, lex *lexicon.Lexicon) error {
	bw := bufio.NewWriter(w)
	for _, word := range lex.SortedByScore() {
		if _, err := bw.WriteString(lex.DumpWord(word) + "\n"); err != nil {
			return fmt.Errorf("write lexicon: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write lexicon: %w", err)
	}
	return nil
}

// WriteFiles writes <base>_seg.txt and <base>_lex.txt.
func WriteFiles(base string, utts []*utterance.Utterance, lex *lexicon.Lexicon) error {
	if err := writeFile(base+SegSuffix, func(w io.Writer) error { return WriteSegmentation(w, utts) }); err != nil {
		return err
	}
	return writeFile(base+LexSuffix, func(w io.Writer) error { return WriteLexicon(w, lex) })
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// #endregion writers

// #region eval-logs
// EvalLogs are the optional evaluation log files of one run. A log that
// could not be opened is nil.
type EvalLogs struct {
	SegEval *os.File
	Perf    *os.File
	Word    *os.File
	LexEval *os.File
}

// OpenEvalLogs opens the segmentation logs when segLogging is set and the
// lexicon log when lexLogging is set. Open failures are logged and the run
// continues without that log.
func OpenEvalLogs(base string, segLogging, lexLogging bool) *EvalLogs {
	l := &EvalLogs{}
	if segLogging {
		l.SegEval = create(base + SegEvalSuffix)
		l.Perf = create(base + PerfSuffix)
		l.Word = create(base + WordSuffix)
	}
	if lexLogging {
		l.LexEval = create(base + LexEvalSuffix)
	}
	return l
}

func create(path string) *os.File {
	f, err := os.Create(path)
	if err != nil {
		log.Printf("output: couldn't open evaluation log %s: %v", path, err)
		return nil
	}
	return f
}

// Writer returns f as an io.Writer, nil when f is nil.
func Writer(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}

// Close closes every open log.
func (l *EvalLogs) Close() {
	for _, f := range []*os.File{l.SegEval, l.Perf, l.Word, l.LexEval} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			log.Printf("output: close %s: %v", f.Name(), err)
		}
	}
}

// #endregion eval-logs
