package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/lexseg/internal/counter"
	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/segmenter"
)

// ErrInvalid marks a configuration that must not be run.
var ErrInvalid = errors.New("invalid configuration")

// #region config
// Config is one experimental condition.
type Config struct {
	Segmenter             string  `yaml:"segmenter" json:"segmenter"`
	StressSensitiveLookup bool    `yaml:"stress_sensitive_lookup" json:"stress_sensitive_lookup"`
	UseTrust              bool    `yaml:"use_trust" json:"use_trust"`
	DropStress            bool    `yaml:"drop_stress" json:"drop_stress"`
	UseStress             bool    `yaml:"use_stress" json:"use_stress"`
	UseProbMem            bool    `yaml:"use_prob_mem" json:"use_prob_mem"`
	ProbMemAmount         float64 `yaml:"prob_mem_amount" json:"prob_mem_amount"`
	DecayAmount           float64 `yaml:"decay_amount" json:"decay_amount"`
	LexNormalization      bool    `yaml:"lex_normalization" json:"lex_normalization"`
	UseRandomization      bool    `yaml:"use_randomization" json:"use_randomization"`
	UseSubseqDiscount     bool    `yaml:"use_subseqdiscount" json:"use_subseqdiscount"`
	Longest               bool    `yaml:"longest" json:"longest"`
	BeamSize              int     `yaml:"beam_size" json:"beam_size"`
	RandomSegRate         float64 `yaml:"random_seg_rate" json:"random_seg_rate"`
	LexTrace              bool    `yaml:"lex_trace" json:"lex_trace"`
	SegTrace              bool    `yaml:"seg_trace" json:"seg_trace"`
	SegLogging            bool    `yaml:"seg_logging" json:"seg_logging"`
	LexLogging            bool    `yaml:"lex_logging" json:"lex_logging"`
	Seed                  int64   `yaml:"seed" json:"seed"`
}

// Default returns the stock condition: a beam of two with trust, stress
// reduction and perfect memory.
func Default() Config {
	return Config{
		Segmenter:     string(segmenter.BeamSubtractive),
		UseTrust:      true,
		DropStress:    true,
		ProbMemAmount: 0.05,
		BeamSize:      2,
		RandomSegRate: 0.5,
		SegLogging:    true,
		LexLogging:    true,
	}
}

// #endregion config

// #region load
// Load reads the condition file at path over the defaults and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be run.
func (c Config) Validate() error {
	kind, err := segmenter.ParseKind(c.Segmenter)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch {
	case kind == segmenter.BeamSubtractive && c.BeamSize < 1:
		return fmt.Errorf("%w: beam_size %d < 1", ErrInvalid, c.BeamSize)
	case c.ProbMemAmount < 0:
		return fmt.Errorf("%w: prob_mem_amount %g < 0", ErrInvalid, c.ProbMemAmount)
	case c.DecayAmount < 0:
		return fmt.Errorf("%w: decay_amount %g < 0", ErrInvalid, c.DecayAmount)
	case c.RandomSegRate < 0 || c.RandomSegRate > 1:
		return fmt.Errorf("%w: random_seg_rate %g outside [0,1]", ErrInvalid, c.RandomSegRate)
	}
	return nil
}

// Dump writes c as YAML.
func (c Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("dump config: %w", err)
	}
	return enc.Close()
}

// #endregion load

// #region naming
// Name is the condition name for a condition file: its base name without
// extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputBase appends the condition suffix to base, e.g.
// "out_BeamSubtractive_2_stress_perfectmem_trustreduced".
func (c Config) OutputBase(base string) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("_" + c.Segmenter)
	if c.Segmenter == string(segmenter.BeamSubtractive) {
		b.WriteString("_" + strconv.Itoa(c.BeamSize))
	}
	if c.UseStress {
		b.WriteString("_stress")
	} else {
		b.WriteString("_nostress")
	}
	if c.UseProbMem {
		b.WriteString("_probmem")
	} else {
		b.WriteString("_perfectmem")
	}
	if c.UseTrust {
		b.WriteString("_trust")
	} else {
		b.WriteString("_notrust")
	}
	if c.UseStress && c.DropStress {
		b.WriteString("reduced")
	}
	return b.String()
}

// #endregion naming

// #region bundles
// LexiconConfig builds the lexicon parameters. sub is the subsequence counter,
// nil unless discounting is on.
func (c Config) LexiconConfig(sub *counter.SubSeq) lexicon.Config {
	return lexicon.Config{
		StressSensitive: c.StressSensitiveLookup,
		UseTrust:        c.UseTrust,
		UseProbMem:      c.UseProbMem,
		ProbAmount:      c.ProbMemAmount,
		Normalize:       c.LexNormalization,
		DecayAmount:     c.DecayAmount,
		Counter:         sub,
		Seed:            c.Seed,
		Trace:           c.LexTrace,
	}
}

// SegmenterConfig builds the segmenter parameters. Call after Validate.
func (c Config) SegmenterConfig() segmenter.Config {
	return segmenter.Config{
		Kind:          segmenter.Kind(c.Segmenter),
		BeamSize:      c.BeamSize,
		UseStress:     c.UseStress,
		Longest:       c.Longest,
		Randomize:     c.UseRandomization,
		RandomSegRate: c.RandomSegRate,
		Trace:         c.SegTrace,
	}
}

// #endregion bundles
