package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/danielpatrickdp/lexseg/internal/config"
	"github.com/danielpatrickdp/lexseg/internal/experiment"
	"github.com/danielpatrickdp/lexseg/internal/metrics"
	"github.com/danielpatrickdp/lexseg/internal/state"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region main
func main() {
	trainPath := flag.String("train", "", "gold training corpus")
	testPath := flag.String("test", "", "gold test corpus (optional)")
	outBase := flag.String("out", "", "output base path; the condition suffix is appended")
	cfgPath := flag.String("config", "", "condition file (YAML); defaults when empty")
	dumpDefaults := flag.Bool("dump-defaults", false, "print the default condition and exit")
	dbPath := flag.String("db", envOr("LEXSEG_DB", ""), "run store (optional)")
	quiet := flag.Bool("quiet", false, "only print the result row")
	flag.Parse()

	if *dumpDefaults {
		if err := config.Default().Dump(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if *trainPath == "" || *outBase == "" {
		fmt.Fprintln(os.Stderr, "usage: segment --train gold.txt --out out/base [--test test.txt] [--config cond.yaml] [--db runs.db]")
		fmt.Fprintln(os.Stderr, "       segment --dump-defaults")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, *trainPath, *testPath, *outBase, *cfgPath, *dbPath, !*quiet); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run
func run(ctx context.Context, trainPath, testPath, outBase, cfgPath, dbPath string, verbose bool) error {
	cfg := config.Default()
	name := "default"
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
		name = config.Name(cfgPath)
	}

	corpus, err := loadCorpus(trainPath, testPath)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("Loaded %d training utterances", len(corpus.Train))
	}

	env := experiment.Env{Metrics: metrics.NewRecorder(), Verbose: verbose}
	if dbPath != "" {
		store, err := state.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
		env.Store = store
	}

	rep, err := experiment.Run(ctx, corpus, experiment.Condition{Name: name, Config: cfg, OutputPrefix: outBase}, env)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("Output written to %s", rep.OutputBase)
		if rep.RunID != "" {
			log.Printf("Run stored as %s", rep.RunID)
		}
	}
	fmt.Println(experiment.CSVHeader)
	fmt.Println(rep.CSVRow())
	return nil
}

func loadCorpus(trainPath, testPath string) (experiment.Corpus, error) {
	train, err := utterance.LoadFile(trainPath)
	if err != nil {
		return experiment.Corpus{}, err
	}
	var test []*utterance.Utterance
	if testPath != "" {
		if test, err = utterance.LoadFile(testPath); err != nil {
			return experiment.Corpus{}, err
		}
	}
	return experiment.Corpus{Train: train, Test: test}, nil
}

// #endregion run

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
