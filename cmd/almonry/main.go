// cmd/almonry/main.go
//
// Entry point for the almonry CLI. It loads an allocation request and a fund
// snapshot from YAML, runs the three-evaluator consensus engine, and either
// prints the resolved summary or opens the interactive inspector.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kingrea/The-Almonry/internal/allocation"
	"github.com/kingrea/The-Almonry/internal/config"
	"github.com/kingrea/The-Almonry/internal/consensus"
	"github.com/kingrea/The-Almonry/internal/evaluator"
	"github.com/kingrea/The-Almonry/internal/ledger"
	"github.com/kingrea/The-Almonry/internal/logbook"
	"github.com/kingrea/The-Almonry/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "almonry: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("almonry", flag.ContinueOnError)
	requestPath := flags.String("request", "", "path to the allocation request YAML (required)")
	fundPath := flags.String("fund", "", "path to the fund state YAML (required)")
	configPath := flags.String("config", "", "path to an optional run configuration YAML")
	timeout := flags.Duration("timeout", 2*time.Minute, "overall evaluation deadline")
	inspect := flags.Bool("tui", false, "open the interactive result inspector")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *requestPath == "" || *fundPath == "" {
		flags.Usage()
		return fmt.Errorf("both -request and -fund are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	req, err := allocation.LoadRequest(*requestPath)
	if err != nil {
		return err
	}
	fund, err := allocation.LoadFundState(*fundPath)
	if err != nil {
		return err
	}

	log, err := logbook.New(cfg.LogPath)
	if err != nil {
		return err
	}
	store, err := ledger.NewFileStore(cfg.LedgerDir)
	if err != nil {
		return err
	}
	recorder := ledger.NewRecorder(store, log)
	defer recorder.Close()

	panel := evaluator.Panel{
		Financial: evaluator.NewFitAnalyzer(),
		Risk:      evaluator.NewRiskAnalyzer(),
		Meta:      evaluator.NewMetaAnalyzer(),
	}
	engine, err := consensus.New(panel,
		consensus.WithConfig(cfg.Consensus),
		consensus.WithRecordSink(recorder),
		consensus.WithLogbook(log),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	result, err := engine.Run(ctx, req, fund)
	if err != nil {
		return err
	}

	if *inspect {
		return tui.Run(result)
	}
	fmt.Println(tui.RenderSummary(result))
	return nil
}
