package experiment

import (
	"fmt"

	"github.com/danielpatrickdp/lexseg/internal/config"
	"github.com/danielpatrickdp/lexseg/internal/eval"
	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/metrics"
	"github.com/danielpatrickdp/lexseg/internal/segmenter"
	"github.com/danielpatrickdp/lexseg/internal/state"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region corpus
// Corpus is the gold data shared by every condition of a batch. It is only
// read.
type Corpus struct {
	Train []*utterance.Utterance
	// Test is optional. When set, evaluation runs on the test pass.
	Test []*utterance.Utterance
}

// #endregion corpus

// #region condition
// Condition is one configured run.
type Condition struct {
	Name   string
	Config config.Config
	// OutputPrefix is where result files go; the condition suffix is
	// appended. Empty means no files are written.
	OutputPrefix string
}

// Env carries the optional collaborators of a run.
type Env struct {
	Store   *state.Store
	Metrics *metrics.Recorder
	Verbose bool
}

// #endregion condition

// #region report
// Report is the outcome of one condition.
type Report struct {
	Name       string
	RunID      string
	OutputBase string

	Boundaries    eval.Result
	WordTokens    eval.Result
	WordTypes     eval.LexResult
	LexiconResult eval.LexResult

	Stats       segmenter.Stats
	StatsString string

	// Segmented copies of the training (and test) utterances.
	TrainSeg []*utterance.Utterance
	TestSeg  []*utterance.Utterance
	Lex      *lexicon.Lexicon
}

// CSVHeader names the columns of CSVRow.
const CSVHeader = "Condition,BP,BR,BF,BH,BFA,BAP,BBDP,ToP,ToR,ToF,TyP,TyR,TyF,LP,LR,LF"

// CSVRow renders the report under CSVHeader.
func (r Report) CSVRow() string {
	return fmt.Sprintf("%s,%s,%s,%s,%s",
		r.Name, r.Boundaries.CSV(), r.WordTokens.PRFCSV(), r.WordTypes.PRFCSV(), r.LexiconResult.PRFCSV())
}

// Summary is the metrics record stored with a finished run.
type Summary struct {
	BoundaryF   float64 `json:"boundary_f"`
	BoundaryP   float64 `json:"boundary_p"`
	BoundaryR   float64 `json:"boundary_r"`
	TokenF      float64 `json:"token_f"`
	TypeF       float64 `json:"type_f"`
	LexiconF    float64 `json:"lexicon_f"`
	Utterances  int     `json:"utterances"`
	Penalties   int     `json:"penalties"`
	AverageBeam float64 `json:"average_beam"`
}

// Summary condenses the report for storage.
func (r Report) Summary() Summary {
	return Summary{
		BoundaryF:   r.Boundaries.FScore,
		BoundaryP:   r.Boundaries.Precision,
		BoundaryR:   r.Boundaries.Recall,
		TokenF:      r.WordTokens.FScore,
		TypeF:       r.WordTypes.FScore,
		LexiconF:    r.LexiconResult.FScore,
		Utterances:  r.Stats.Utterances,
		Penalties:   r.Stats.Penalties,
		AverageBeam: r.Stats.AverageBeam(),
	}
}

// #endregion report
