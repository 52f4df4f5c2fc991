package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/lexseg/internal/config"
	"github.com/danielpatrickdp/lexseg/internal/experiment"
	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", envOr("LEXSEG_DB", ""), "path to the run store")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	top := flag.Int("top", 20, "lexicon words shown in run detail (0 = all)")
	activate := flag.String("activate", "", "make a finished run the active one")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db runs.db [--last N] [--run id [--top N]] [--activate id] [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *activate != "":
		err = store.Activate(*activate)
		if err == nil {
			fmt.Printf("Active run: %s\n", *activate)
		}
	case *runID != "":
		err = runDetailMode(store, *runID, *top, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string  `json:"run_id"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Active    bool    `json:"active"`
	Words     int     `json:"words"`
	Tokens    int64   `json:"tokens"`
	BoundaryF float64 `json:"boundary_f"`
	LexiconF  float64 `json:"lexicon_f"`
	CreatedAt string  `json:"created_at"`
}

func runListMode(store *state.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}
	var activeID string
	if active, err := store.GetActive(); err == nil {
		activeID = active.RunID
	}

	// store returns newest first, print chronologically
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		sum := parseSummary(r.MetricsJSON)
		rows[len(runs)-1-i] = listRow{
			RunID:     r.RunID,
			Name:      r.Name,
			Status:    r.Status,
			Active:    r.RunID == activeID,
			Words:     r.Words,
			Tokens:    r.NumTokens,
			BoundaryF: sum.BoundaryF,
			LexiconF:  sum.LexiconF,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-10s  %-20s  %-8s  %6s  %8s  %6s  %6s  %s\n",
		"Run", "Name", "Status", "Words", "Tokens", "BF", "LF", "Time")
	fmt.Printf("%-10s+-%-20s+-%-8s+-%6s+-%8s+-%6s+-%6s+-%s\n",
		"----------", "--------------------", "--------", "------", "--------", "------", "------", "--------------------")
	for _, r := range rows {
		id := shortID(r.RunID)
		if r.Active {
			id += " *"
		}
		fmt.Printf("%-10s  %-20s  %-8s  %6d  %8d  %6.4f  %6.4f  %s\n",
			id, r.Name, r.Status, r.Words, r.Tokens, r.BoundaryF, r.LexiconF, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID      string             `json:"run_id"`
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	OutputBase string             `json:"output_base,omitempty"`
	CreatedAt  string             `json:"created_at"`
	Config     config.Config      `json:"config"`
	Metrics    experiment.Summary `json:"metrics"`
	Words      []string           `json:"words"`
}

func runDetailMode(store *state.Store, runID string, top int, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	cfg, err := config.Parse([]byte(run.ConfigJSON))
	if err != nil {
		return fmt.Errorf("stored config: %w", err)
	}
	snap, err := store.LoadSnapshot(runID)
	if err != nil {
		return err
	}
	lex := lexicon.Restore(cfg.LexiconConfig(nil), snap)

	out := detailOutput{
		RunID:      run.RunID,
		Name:       run.Name,
		Status:     run.Status,
		OutputBase: run.OutputBase,
		CreatedAt:  run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Config:     cfg,
		Metrics:    parseSummary(run.MetricsJSON),
	}
	for i, w := range lex.SortedByScore() {
		if top > 0 && i == top {
			break
		}
		out.Words = append(out.Words, lex.DumpWord(w))
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:        %s\n", out.RunID)
	fmt.Printf("Name:       %s\n", out.Name)
	fmt.Printf("Status:     %s\n", out.Status)
	fmt.Printf("Output:     %s\n", out.OutputBase)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Segmenter:  %s\n", cfg.Segmenter)
	fmt.Printf("Lexicon:    %d words, %d tokens, time %d\n", lex.Len(), lex.NumTokens(), lex.Time())

	m := out.Metrics
	fmt.Printf("\nResults:\n")
	fmt.Printf("  Boundaries:  P %.4f  R %.4f  F %.4f\n", m.BoundaryP, m.BoundaryR, m.BoundaryF)
	fmt.Printf("  Tokens F:    %.4f\n", m.TokenF)
	fmt.Printf("  Types F:     %.4f\n", m.TypeF)
	fmt.Printf("  Lexicon F:   %.4f\n", m.LexiconF)
	fmt.Printf("  Penalties:   %d\n", m.Penalties)
	fmt.Printf("  Avg. beam:   %.2f\n", m.AverageBeam)

	fmt.Printf("\nTop words:\n")
	for _, w := range out.Words {
		fmt.Printf("  %s\n", w)
	}
	return nil
}

// #endregion detail-mode

// #region output

func parseSummary(metricsJSON string) experiment.Summary {
	var s experiment.Summary
	if metricsJSON != "" {
		json.Unmarshal([]byte(metricsJSON), &s)
	}
	return s
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion output
