package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/lexseg/internal/config"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region fixture-types

// Fixture is a small gold corpus with conditions and their expected
// outcomes. It is the regression baseline for the experiment loop.
type Fixture struct {
	Description string             `json:"description"`
	Train       []string           `json:"train"`
	Test        []string           `json:"test,omitempty"`
	Conditions  []FixtureCondition `json:"conditions"`
}

// FixtureCondition is one condition. Config holds condition-file keys over
// the defaults.
type FixtureCondition struct {
	Name     string          `json:"name"`
	Config   json.RawMessage `json:"config"`
	Expected FixtureExpected `json:"expected"`
}

// FixtureExpected captures the expected outcome of a condition.
type FixtureExpected struct {
	Seg               []string `json:"seg"`
	Lexicon           []string `json:"lexicon"`
	BoundaryPrecision float64  `json:"boundary_precision"`
	BoundaryRecall    float64  `json:"boundary_recall"`
	BoundaryF         float64  `json:"boundary_f"`
	LexiconPrecision  float64  `json:"lexicon_precision"`
	LexiconRecall     float64  `json:"lexicon_recall"`
	Penalties         int      `json:"penalties"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Corpus parses the fixture lines as gold utterances.
func (f *Fixture) Corpus() (Corpus, error) {
	train, err := parseLines(f.Train)
	if err != nil {
		return Corpus{}, fmt.Errorf("fixture train: %w", err)
	}
	test, err := parseLines(f.Test)
	if err != nil {
		return Corpus{}, fmt.Errorf("fixture test: %w", err)
	}
	return Corpus{Train: train, Test: test}, nil
}

func parseLines(lines []string) ([]*utterance.Utterance, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	out := make([]*utterance.Utterance, 0, len(lines))
	for i, line := range lines {
		u, err := utterance.Parse(line, true)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// ToCondition decodes the condition config over the defaults. JSON objects
// are valid condition files, so the YAML loader reads them as is.
func (fc *FixtureCondition) ToCondition() (Condition, error) {
	cfg := config.Default()
	if len(fc.Config) > 0 {
		var err error
		cfg, err = config.Parse(fc.Config)
		if err != nil {
			return Condition{}, fmt.Errorf("fixture condition %s: %w", fc.Name, err)
		}
	}
	return Condition{Name: fc.Name, Config: cfg}, nil
}

// #endregion fixture-loader
