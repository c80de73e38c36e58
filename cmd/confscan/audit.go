package confscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/confscan/confscan/internal/audit"
	"github.com/confscan/confscan/internal/config"
	"github.com/confscan/confscan/internal/engine"
	"github.com/confscan/confscan/internal/inventory"
	"github.com/confscan/confscan/internal/logger"
	"github.com/confscan/confscan/internal/report"
	"github.com/confscan/confscan/internal/rules"
	"github.com/confscan/confscan/internal/source"
	"github.com/confscan/confscan/internal/tui"
	"github.com/confscan/confscan/internal/update"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagURL         string
	flagToken       string
	flagSnapshot    string
	flagInsecure    bool
	flagFilter      string
	flagChecks      string
	flagDir         string
	flagCached      bool
	flagNoCache     bool
	flagConcurrency int
	flagRate        float64
	flagTimeout     int
	flagMaxBytes    int64
	flagCSV         bool
	flagOut         string
	flagLabel       string
	flagInteractive bool
	flagWaivers     string
	flagNoHistory   bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit device configurations against the checks file",
		RunE:  runAudit,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagURL, "url", "", "inventory API base URL")
	cmd.Flags().StringVar(&flagToken, "token", "", "inventory API token (prompted when omitted)")
	cmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "inventory snapshot selector (e.g. $last)")
	cmd.Flags().BoolVar(&flagInsecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().StringVarP(&flagFilter, "filter", "f", "", "comma-separated hostname globs (e.g. 'edge-*,core-??')")
	cmd.Flags().StringVar(&flagChecks, "checks", "", "checks file (default: confscan.checks.yml in cwd)")
	cmd.Flags().StringVarP(&flagDir, "dir", "d", "", "audit config files under this directory instead of the inventory")
	cmd.Flags().BoolVar(&flagCached, "cached", false, "audit the download cache without fetching")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "do not read or write the download cache")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "parallel downloads (0 = GOMAXPROCS)")
	cmd.Flags().Float64Var(&flagRate, "rate", 0, "inventory requests per second (0 = unthrottled)")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "per-request timeout in seconds")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "skip configurations larger than this")
	cmd.Flags().BoolVar(&flagCSV, "csv", false, "write a timestamped CSV report")
	cmd.Flags().StringVar(&flagOut, "out", "", "directory for CSV reports (implies --csv)")
	cmd.Flags().StringVar(&flagLabel, "label", "", "label appended to the CSV report filename")
	cmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "browse verdicts in an interactive terminal UI")
	cmd.Flags().StringVar(&flagWaivers, "waivers", "", "waiver file (default: confscan.waivers.json when present)")
	cmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "do not record this run in the history log")
}

// settings is the fully merged view of CLI flags, local and global config
// files, and CONFSCAN_* environment fallbacks, in that precedence order.
type settings struct {
	URL      string
	Token    string
	Snapshot string
	Insecure bool
	Filter   string

	Checks      string
	Concurrency int
	Rate        float64
	Timeout     time.Duration
	MaxBytes    int64

	NoColor bool
	OutDir  string
	Waivers string
}

func resolveSettings() settings {
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if flagConfig != "" {
		c, err := config.LoadFile(flagConfig)
		if err != nil {
			logger.Warn("config %s not loaded: %v", flagConfig, err)
		}
		lcfg = c
	} else if c, err := config.LoadLocal("."); err == nil {
		lcfg = c
	}
	env := config.FromEnv()

	s := settings{
		URL:         pickString(flagURL, lcfg.URL, gcfg.URL),
		Token:       pickString(flagToken, lcfg.Token, gcfg.Token),
		Snapshot:    pickString(flagSnapshot, lcfg.Snapshot, gcfg.Snapshot),
		Insecure:    pickBool(flagInsecure, lcfg.Insecure, gcfg.Insecure),
		Filter:      pickString(flagFilter, lcfg.Filter, gcfg.Filter),
		Checks:      pickString(flagChecks, lcfg.Checks, gcfg.Checks),
		Concurrency: pickInt(flagConcurrency, lcfg.Concurrency, gcfg.Concurrency),
		Rate:        pickFloat(flagRate, lcfg.Rate, gcfg.Rate),
		MaxBytes:    pickInt64(flagMaxBytes, lcfg.MaxBytes, gcfg.MaxBytes),
		NoColor:     pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor),
		OutDir:      pickString(flagOut, lcfg.OutDir, gcfg.OutDir),
		Waivers:     pickString(flagWaivers, lcfg.Waivers, gcfg.Waivers),
	}
	if secs := pickInt(flagTimeout, lcfg.TimeoutSecs, gcfg.TimeoutSecs); secs > 0 {
		s.Timeout = time.Duration(secs) * time.Second
	}

	// environment is the lowest-precedence layer
	if s.URL == "" {
		s.URL = env.URL
	}
	if s.Token == "" {
		s.Token = env.Token
	}
	if s.Snapshot == "" {
		s.Snapshot = env.Snapshot
	}
	if s.Filter == "" {
		s.Filter = env.Filter
	}
	if !s.Insecure {
		s.Insecure = env.Insecure
	}
	return s
}

// buildProvider selects the document source: an explicit directory wins, then
// the cache-only mode (no provider needed), then the inventory API.
func buildProvider(s settings) (engine.Provider, string, error) {
	if flagDir != "" {
		abs, _ := filepath.Abs(flagDir)
		d, err := source.NewDir(flagDir, s.MaxBytes)
		return d, abs, err
	}
	if flagCached {
		return nil, "cache", nil
	}
	if s.URL == "" {
		return nil, "", errors.New("inventory URL required (--url, config file, or CONFSCAN_URL); or use --dir / --cached")
	}
	token := s.Token
	if token == "" {
		token = promptToken()
	}
	c, err := inventory.New(inventory.Options{
		BaseURL:  s.URL,
		Token:    token,
		Snapshot: s.Snapshot,
		Insecure: s.Insecure,
		Timeout:  s.Timeout,
		Rate:     s.Rate,
		MaxBytes: s.MaxBytes,
	})
	return c, s.URL, err
}

// promptToken asks for the token on the terminal without echoing it. Returns
// "" when stdin is not a terminal; some inventories accept anonymous reads.
func promptToken() string {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return ""
	}
	fmt.Fprint(os.Stderr, "inventory token: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(b)
}

func runAudit(_ *cobra.Command, _ []string) error {
	s := resolveSettings()
	noColor := s.NoColor || !isatty.IsTerminal(os.Stdout.Fd())
	color.NoColor = noColor

	checksPath := s.Checks
	if checksPath == "" {
		checksPath = rules.Discover(".")
	}
	if checksPath == "" {
		return errors.New("no checks file found; run 'confscan checks init' or pass --checks")
	}
	checks, err := rules.Load(checksPath)
	if err != nil {
		return err
	}

	provider, target, err := buildProvider(s)
	if err != nil {
		return err
	}

	if !flagJSON {
		if !flagNoUpdateCheck {
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'confscan --self-update' to upgrade\n", latest)
			}
		}
		if flagSelfUpdate {
			if err := selfUpdate(); err == nil {
				fmt.Fprintln(os.Stderr, "updated to latest; re-run command")
				return nil
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := engine.Config{
		Filter:      s.Filter,
		Concurrency: s.Concurrency,
		NoCache:     flagNoCache,
		CachedOnly:  flagCached,
	}
	showProgress := !flagJSON && !flagCached && isatty.IsTerminal(os.Stderr.Fd())
	var progressed atomic.Int64
	if showProgress {
		cfg.Progress = func() {
			fmt.Fprintf(os.Stderr, "\rauditing... %d hosts done", progressed.Add(1))
		}
	}

	res, err := engine.Run(ctx, cfg, provider, checks)
	if showProgress && progressed.Load() > 0 {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("audit error: %w", err)
	}

	waiverPath := s.Waivers
	if waiverPath == "" {
		if _, err := os.Stat("confscan.waivers.json"); err == nil {
			waiverPath = "confscan.waivers.json"
		}
	}
	waivers := report.Waivers{Items: map[string]bool{}}
	if waiverPath != "" {
		waivers, _ = report.LoadWaivers(waiverPath)
	}
	waived := 0
	for _, v := range res.Verdicts {
		if !v.Present && waivers.Waived(v) {
			waived++
		}
	}
	hosts := res.HostsFetched + res.FromCache

	switch {
	case flagJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Verdicts); err != nil {
			return err
		}
	case flagInteractive:
		if err := tui.Run(res.Verdicts, res.Documents, waivers, waiverPath); err != nil {
			return err
		}
	default:
		report.Print(os.Stdout, res.Verdicts, report.PrintOptions{
			NoColor:     noColor,
			Duration:    res.Duration,
			Hosts:       hosts,
			HostsFailed: res.HostsFailed,
		})
	}

	if flagCSV || flagOut != "" || flagLabel != "" {
		path := report.CSVFilename(s.OutDir, flagLabel)
		abs, err := report.WriteCSVFile(path, res.Verdicts)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Report written to", abs)
	}

	if !flagNoHistory {
		rec := audit.NewRunRecord(target, res.Verdicts, hosts, res.HostsFailed, len(checks), waived, res.Duration)
		if err := audit.NewLog("").LogRun(rec); err != nil {
			logger.Warn("run history not recorded: %v", err)
		}
	}

	if report.ShouldFail(report.FilterUnwaived(res.Verdicts, waivers), flagFailOn) {
		os.Exit(1)
	}
	return nil
}
