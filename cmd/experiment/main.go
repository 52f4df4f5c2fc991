package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/lexseg/internal/config"
	"github.com/danielpatrickdp/lexseg/internal/experiment"
	"github.com/danielpatrickdp/lexseg/internal/metrics"
	"github.com/danielpatrickdp/lexseg/internal/output"
	"github.com/danielpatrickdp/lexseg/internal/state"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

// #region main

func main() {
	trainPath := flag.String("train", "", "gold training corpus (batch mode)")
	testPath := flag.String("test", "", "gold test corpus (optional)")
	outDir := flag.String("out", "", "directory for per-condition output files (optional)")
	csvPath := flag.String("csv", "", "write the result table here instead of stdout")
	workers := flag.Int("workers", 0, "conditions run in parallel (0 = NumCPU)")
	dbPath := flag.String("db", envOr("LEXSEG_DB", ""), "run store (optional)")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics here while running")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	verbose := flag.Bool("v", false, "log per-condition progress")
	flag.Parse()

	if (*trainPath == "") == (*fixturePath == "") {
		fmt.Fprintln(os.Stderr, "usage: experiment --train gold.txt [--test test.txt] [--out dir] [--csv results.csv] cond.yaml...")
		fmt.Fprintln(os.Stderr, "       experiment --fixture path/to/fixture.json")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(ctx, *fixturePath)
	} else {
		exitCode = runBatchMode(ctx, batchArgs{
			trainPath:   *trainPath,
			testPath:    *testPath,
			outDir:      *outDir,
			csvPath:     *csvPath,
			workers:     *workers,
			dbPath:      *dbPath,
			metricsAddr: *metricsAddr,
			verbose:     *verbose,
			condPaths:   flag.Args(),
		})
	}
	os.Exit(exitCode)
}

// #endregion main

// #region batch-mode

type batchArgs struct {
	trainPath, testPath string
	outDir, csvPath     string
	workers             int
	dbPath              string
	metricsAddr         string
	verbose             bool
	condPaths           []string
}

func runBatchMode(ctx context.Context, args batchArgs) int {
	conds, err := loadConditions(args.condPaths, args.outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load conditions: %v\n", err)
		return 2
	}

	train, err := utterance.LoadFile(args.trainPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load corpus: %v\n", err)
		return 2
	}
	corpus := experiment.Corpus{Train: train}
	if args.testPath != "" {
		if corpus.Test, err = utterance.LoadFile(args.testPath); err != nil {
			fmt.Fprintf(os.Stderr, "load test corpus: %v\n", err)
			return 2
		}
	}

	env := experiment.Env{Metrics: metrics.NewRecorder(), Verbose: args.verbose}
	if args.metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(args.metricsAddr, env.Metrics.Handler()); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}
	if args.dbPath != "" {
		store, err := state.NewStore(args.dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open store: %v\n", err)
			return 2
		}
		defer store.Close()
		env.Store = store
	}

	reports, runErr := experiment.RunBatch(ctx, corpus, conds, env, args.workers)

	var w io.Writer = os.Stdout
	if args.csvPath != "" {
		f, err := os.Create(args.csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create csv: %v\n", err)
			return 2
		}
		defer f.Close()
		w = f
	}
	fmt.Fprintln(w, experiment.CSVHeader)
	for _, rep := range reports {
		if rep.Name == "" {
			// failed condition
			continue
		}
		fmt.Fprintln(w, rep.CSVRow())
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		return 1
	}
	return 0
}

// loadConditions reads condition files; no files means the default
// condition. Output files go to outDir/<condition> when outDir is set.
func loadConditions(paths []string, outDir string) ([]experiment.Condition, error) {
	if len(paths) == 0 {
		c := experiment.Condition{Name: "default", Config: config.Default()}
		if outDir != "" {
			c.OutputPrefix = filepath.Join(outDir, c.Name)
		}
		return []experiment.Condition{c}, nil
	}
	seen := make(map[string]bool, len(paths))
	conds := make([]experiment.Condition, 0, len(paths))
	for _, p := range paths {
		cfg, err := config.Load(p)
		if err != nil {
			return nil, err
		}
		name := config.Name(p)
		if seen[name] {
			return nil, fmt.Errorf("duplicate condition name %q", name)
		}
		seen[name] = true
		c := experiment.Condition{Name: name, Config: cfg}
		if outDir != "" {
			c.OutputPrefix = filepath.Join(outDir, name)
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// #endregion batch-mode

// #region fixture-mode

func runFixtureMode(ctx context.Context, path string) int {
	f, err := experiment.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	corpus, err := f.Corpus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	fmt.Printf("%-14s| %-10s| %-10s| %-10s| %s\n", "Condition", "Expected F", "Got F", "Lexicon", "Match")
	fmt.Printf("%-14s+%-11s+%-11s+%-11s+%s\n",
		"--------------", "-----------", "-----------", "-----------", "------")

	matches := 0
	for i := range f.Conditions {
		fc := &f.Conditions[i]
		cond, err := fc.ToCondition()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 2
		}
		rep, err := experiment.Run(ctx, corpus, cond, experiment.Env{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 2
		}

		lexMatch := lexiconMatches(rep, fc.Expected.Lexicon)
		match := "DIFF"
		if lexMatch && math.Abs(rep.Boundaries.FScore-fc.Expected.BoundaryF) < 1e-5 {
			match = "OK"
			matches++
		}
		lexCol := "same"
		if !lexMatch {
			lexCol = "differs"
		}
		fmt.Printf("%-14s| %-10.4f| %-10.4f| %-10s| %s\n", fc.Name, fc.Expected.BoundaryF, rep.Boundaries.FScore, lexCol, match)
	}

	diverge := len(f.Conditions) - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", len(f.Conditions), matches, diverge)
	if diverge > 0 {
		return 1
	}
	return 0
}

func lexiconMatches(rep experiment.Report, want []string) bool {
	var b strings.Builder
	if err := output.WriteLexicon(&b, rep.Lex); err != nil {
		return false
	}
	return strings.TrimSuffix(b.String(), "\n") == strings.Join(want, "\n")
}

// #endregion fixture-mode

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
