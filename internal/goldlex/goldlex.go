package goldlex

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/blevesearch/vellum"

	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/segutil"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// ErrClosed is returned by lookups on a closed Lexicon.
var ErrClosed = errors.New("gold lexicon closed")

// #region types
// Entry is one gold word type with its observed stress statistics.
type Entry struct {
	Key      string
	Units    []string
	Stresses []bool
	Count    uint64

	stressInitial int
}

// IsStressInitial reports whether the first unit was stressed in more than
// half of the word's tokens.
func (e Entry) IsStressInitial() bool {
	if e.Count == 0 {
		return false
	}
	return float64(e.stressInitial)/float64(e.Count) > 0.5
}

// Lexicon is a read-only gold lexicon. Keys live in an FST mapping each key
// to its token frequency. It is safe for concurrent readers.
type Lexicon struct {
	fst             *vellum.FST
	data            []byte
	entries         []Entry
	stressSensitive bool
}

// #endregion types

// #region build
// Build collects every gold word from utts and compiles the key set into an
// FST. Keys use the same scheme as lexicon.Key.
func Build(utts []*utterance.Utterance, stressSensitive bool) (*Lexicon, error) {
	byKey := make(map[string]*Entry)
	for _, u := range utts {
		units := segutil.SlicesFromAllBoundaries(u.Units, u.Boundaries)
		stresses := segutil.SlicesFromAllBoundaries(u.Stresses, u.Boundaries)
		for i := range units {
			k := lexicon.Key(units[i], stresses[i], stressSensitive)
			e, ok := byKey[k]
			if !ok {
				e = &Entry{Key: k, Units: units[i], Stresses: stresses[i]}
				byKey[k] = e
			}
			e.Count++
			if len(stresses[i]) > 0 && stresses[i][0] {
				e.stressInitial++
			}
		}
	}

	entries := make([]Entry, 0, len(byKey))
	for _, e := range byKey {
		entries = append(entries, *e)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return bytes.Compare([]byte(a.Key), []byte(b.Key))
	})

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("build gold lexicon: %w", err)
	}
	for _, e := range entries {
		if err := builder.Insert([]byte(e.Key), e.Count); err != nil {
			builder.Close()
			return nil, fmt.Errorf("build gold lexicon: insert %q: %w", e.Key, err)
		}
	}
	if err := builder.Close(); err != nil {
		return nil, fmt.Errorf("build gold lexicon: %w", err)
	}

	data := buf.Bytes()
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, fmt.Errorf("load gold lexicon: %w", err)
	}
	return &Lexicon{fst: fst, data: data, entries: entries, stressSensitive: stressSensitive}, nil
}

// #endregion build

// #region lookup
// Contains reports whether the word is in the gold lexicon.
func (l *Lexicon) Contains(units []string, stresses []bool) (bool, error) {
	_, ok, err := l.lookup(units, stresses)
	return ok, err
}

// Frequency returns the gold token count of the word, 0 when absent.
func (l *Lexicon) Frequency(units []string, stresses []bool) (uint64, error) {
	n, _, err := l.lookup(units, stresses)
	return n, err
}

func (l *Lexicon) lookup(units []string, stresses []bool) (uint64, bool, error) {
	key := lexicon.Key(units, stresses, l.stressSensitive)
	if l.fst == nil {
		return 0, false, fmt.Errorf("gold lookup %q: %w", key, ErrClosed)
	}
	v, exists, err := l.fst.Get([]byte(key))
	if err != nil {
		return 0, false, fmt.Errorf("gold lookup %q: %w", key, err)
	}
	return v, exists, nil
}

// Len returns the number of word types.
func (l *Lexicon) Len() int { return len(l.entries) }

// Entries returns the word types in key order.
func (l *Lexicon) Entries() []Entry { return l.entries }

// StressSensitive reports the key scheme the lexicon was built with.
func (l *Lexicon) StressSensitive() bool { return l.stressSensitive }

// StressInitialRate returns the share of multi-unit word types that are
// stress-initial, with the counts it was computed from.
func (l *Lexicon) StressInitialRate() (rate float64, initial, total int) {
	for _, e := range l.entries {
		if len(e.Units) < 2 {
			continue
		}
		total++
		if e.IsStressInitial() {
			initial++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	return float64(initial) / float64(total), initial, total
}

// #endregion lookup

// #region persist
// Save writes the compiled FST to path.
func (l *Lexicon) Save(path string) error {
	if err := os.WriteFile(path, l.data, 0o644); err != nil {
		return fmt.Errorf("save gold lexicon: %w", err)
	}
	return nil
}

// Close releases the FST.
func (l *Lexicon) Close() error {
	if l.fst == nil {
		return nil
	}
	err := l.fst.Close()
	l.fst = nil
	return err
}

// #endregion persist
