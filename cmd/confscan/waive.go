package confscan

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/confscan/confscan/internal/engine"
	"github.com/confscan/confscan/internal/report"
	"github.com/confscan/confscan/internal/rules"
	"github.com/spf13/cobra"
)

var waiveOutput string

func init() {
	cmd := &cobra.Command{
		Use:   "waive",
		Short: "Accept the current failures by writing them to a waiver file",
		Long:  "Waive re-audits the cached configurations and records every noncompliant verdict as accepted, so subsequent runs stop failing on them.",
		RunE:  runWaive,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagChecks, "checks", "", "checks file (default: confscan.checks.yml in cwd)")
	cmd.Flags().StringVarP(&flagFilter, "filter", "f", "", "comma-separated hostname globs")
	cmd.Flags().StringVar(&waiveOutput, "output", "confscan.waivers.json", "waiver file to write")
}

func runWaive(_ *cobra.Command, _ []string) error {
	s := resolveSettings()

	checksPath := s.Checks
	if checksPath == "" {
		checksPath = rules.Discover(".")
	}
	if checksPath == "" {
		return fmt.Errorf("no checks file found; run 'confscan checks init' or pass --checks")
	}
	checks, err := rules.Load(checksPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Replays the cache so the waiver set matches the last audited state.
	res, err := engine.Run(ctx, engine.Config{Filter: s.Filter, CachedOnly: true}, nil, checks)
	if err != nil {
		return err
	}
	if res.FromCache == 0 {
		return fmt.Errorf("download cache is empty; run 'confscan audit' first")
	}

	nok := 0
	for _, v := range res.Verdicts {
		if !v.Present {
			nok++
		}
	}
	if err := report.SaveWaivers(waiveOutput, res.Verdicts); err != nil {
		return err
	}
	fmt.Printf("Waived %d noncompliant verdicts across %d cached hosts -> %s\n", nok, res.FromCache, waiveOutput)
	return nil
}
