package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/lexseg/internal/config"
	"github.com/danielpatrickdp/lexseg/internal/counter"
	"github.com/danielpatrickdp/lexseg/internal/eval"
	"github.com/danielpatrickdp/lexseg/internal/goldlex"
	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/logging"
	"github.com/danielpatrickdp/lexseg/internal/output"
	"github.com/danielpatrickdp/lexseg/internal/segmenter"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

const (
	phaseTrain = "train"
	phaseTest  = "test"
)

// #region run
// Run executes one condition. The corpus is not modified; segmentation works
// on copies.
func Run(ctx context.Context, corpus Corpus, cond Condition, env Env) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
	}
	cfg := cond.Config
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
	}
	if len(corpus.Train) == 0 {
		return Report{}, fmt.Errorf("run %s: empty training corpus", cond.Name)
	}

	rep := Report{Name: cond.Name}
	if cond.OutputPrefix != "" {
		rep.OutputBase = cfg.OutputBase(cond.OutputPrefix)
	}

	if env.Store != nil {
		cfgJSON, err := json.Marshal(cfg)
		if err != nil {
			return Report{}, fmt.Errorf("run %s: marshal config: %w", cond.Name, err)
		}
		rec, err := env.Store.BeginRun(cond.Name, rep.OutputBase, string(cfgJSON))
		if err != nil {
			return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
		}
		rep.RunID = rec.RunID
	}

	var sub *counter.SubSeq
	if cfg.UseSubseqDiscount {
		sub = counter.NewSubSeq()
	}
	lex := lexicon.New(cfg.LexiconConfig(sub))
	seg, err := segmenter.New(cfg.SegmenterConfig(), lex)
	if err != nil {
		return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
	}

	r := &runner{
		name:    cond.Name,
		cfg:     cfg,
		seg:     seg,
		lex:     lex,
		sub:     sub,
		env:     env,
		sink:    newSink(env, rep.RunID),
		verbose: env.Verbose,
	}

	rep.TrainSeg = utterance.SegCopies(corpus.Train, cfg.DropStress)
	if err := r.pass(ctx, rep.TrainSeg, true); err != nil {
		return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
	}
	if len(corpus.Test) > 0 {
		rep.TestSeg = utterance.SegCopies(corpus.Test, cfg.DropStress)
		if err := r.pass(ctx, rep.TestSeg, false); err != nil {
			return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
		}
	}
	env.Metrics.SetLexiconWords(cond.Name, lex.Len())
	rep.Stats = seg.Stats()
	rep.StatsString = seg.StatsString()
	rep.Lex = lex

	if err := r.evaluate(corpus, &rep); err != nil {
		return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
	}

	if rep.OutputBase != "" {
		if err := output.WriteFiles(rep.OutputBase, rep.TrainSeg, lex); err != nil {
			return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
		}
	}

	if env.Store != nil {
		metricsJSON, err := json.Marshal(rep.Summary())
		if err != nil {
			return Report{}, fmt.Errorf("run %s: marshal metrics: %w", cond.Name, err)
		}
		if err := env.Store.FinishRun(rep.RunID, string(metricsJSON), lex.Snapshot(), cfg.StressSensitiveLookup); err != nil {
			return Report{}, fmt.Errorf("run %s: %w", cond.Name, err)
		}
	}
	return rep, nil
}

func newSink(env Env, runID string) *logging.Sink {
	if env.Store == nil {
		return nil
	}
	return logging.NewSink(env.Store.DB(), runID)
}

// #endregion run

// #region pass
type runner struct {
	name    string
	cfg     config.Config
	seg     *segmenter.Segmenter
	lex     *lexicon.Lexicon
	sub     *counter.SubSeq
	env     Env
	sink    *logging.Sink
	verbose bool
}

// pass segments utts in place. Training passes commit words and advance the
// lexicon clock after every utterance.
func (r *runner) pass(ctx context.Context, utts []*utterance.Utterance, training bool) error {
	phase := phaseTest
	if training {
		phase = phaseTrain
	}
	start := time.Now()
	for i, u := range utts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if training && r.sub != nil {
			r.sub.IncAllSubSeqs(u.Units)
		}
		out, err := r.seg.Segment(u, training)
		if err != nil {
			return fmt.Errorf("%s utterance %d: %w", phase, i, err)
		}
		u.SetBoundaries(out.Boundaries)
		if r.cfg.SegTrace {
			log.Printf("Segmentation:%s", u.SegText())
		}
		if training {
			r.lex.Tick()
		}

		entry := logging.SegmentationEntry{
			UtteranceIndex: i,
			Phase:          phase,
			SegText:        u.SegText(),
			BeamPeak:       out.BeamPeak,
			Survivors:      out.Survivors,
		}
		if out.Blamed != nil {
			entry.Blamed = out.Blamed.String()
		}
		r.sink.Log(entry)
		r.env.Metrics.ObserveUtterance(r.name, phase, out.BeamPeak, out.Blamed != nil)
	}
	if r.verbose {
		log.Printf("[%s] %s", r.name, r.seg.StatsString())
		label := "Testing"
		if training {
			label = "Training"
		}
		log.Printf("[%s] %s took %g seconds.", r.name, label, time.Since(start).Seconds())
	}
	return nil
}

// #endregion pass

// #region evaluate
// evaluate scores the test pass when there is one and the training pass
// otherwise. The lexicon is always compared with the gold training lexicon.
func (r *runner) evaluate(corpus Corpus, rep *Report) error {
	useTest := len(corpus.Test) > 0
	goldEval, segEval := corpus.Train, rep.TrainSeg
	if useTest {
		goldEval, segEval = corpus.Test, rep.TestSeg
	}

	logs := &output.EvalLogs{}
	if rep.OutputBase != "" {
		logs = output.OpenEvalLogs(rep.OutputBase, r.cfg.SegLogging, r.cfg.LexLogging)
	}
	defer logs.Close()
	segLog := output.Writer(logs.SegEval)
	perfLog := output.Writer(logs.Perf)

	if r.verbose {
		log.Printf("[%s] Evaluating...", r.name)
	}

	boundaryLogs := eval.Logs{Seg: segLog, Perf: perfLog}
	if useTest {
		boundaryLogs.Perf = nil
	}
	var err error
	rep.Boundaries, err = eval.Utterances(goldEval, segEval, eval.Boundaries, boundaryLogs)
	if err != nil {
		return fmt.Errorf("evaluate boundaries: %w", err)
	}
	if useTest && perfLog != nil {
		if _, err := eval.Utterances(corpus.Train, rep.TrainSeg, eval.Boundaries, eval.Logs{Perf: perfLog}); err != nil {
			return fmt.Errorf("evaluate training boundaries: %w", err)
		}
	}

	rep.WordTokens, err = eval.Utterances(goldEval, segEval, eval.Words,
		eval.Logs{Seg: segLog, Perf: output.Writer(logs.Word)})
	if err != nil {
		return fmt.Errorf("evaluate word tokens: %w", err)
	}

	stressSensitive := r.cfg.StressSensitiveLookup
	rep.WordTypes, err = eval.WordTypes(goldEval, segEval, stressSensitive)
	if err != nil {
		return err
	}

	goldLex, err := goldlex.Build(corpus.Train, stressSensitive)
	if err != nil {
		return fmt.Errorf("evaluate lexicon: %w", err)
	}
	defer goldLex.Close()
	rep.LexiconResult, err = eval.Lexicons(goldLex, r.lex, output.Writer(logs.LexEval))
	if err != nil {
		return err
	}

	if r.verbose {
		log.Printf("[%s] Boundaries:\n%s", r.name, rep.Boundaries)
		log.Printf("[%s] Word tokens:\n%s", r.name, rep.WordTokens.PRF())
		log.Printf("[%s] Word types:\n%s", r.name, rep.WordTypes.PRF())
		log.Printf("[%s] Lexicon:\n%s", r.name, rep.LexiconResult.PRF())
		eval.LogStressRates(rep.LexiconResult)
	}
	return nil
}

// #endregion evaluate
