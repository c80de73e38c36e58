package confscan

import (
	"fmt"
	"os"

	"github.com/confscan/confscan/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flagJSON          bool
	flagNoColor       bool
	flagVerbose       bool
	flagFailOn        string
	flagConfig        string
	flagNoUpdateCheck bool
	flagSelfUpdate    bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the confscan CLI.
var rootCmd = &cobra.Command{
	Use:           "confscan",
	Short:         "Audit network device configurations against compliance checks",
	Long:          "Confscan pulls device configurations from an inventory API or a local directory and reports, per device and check, whether the required configuration text is present.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

// Execute runs the confscan CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagFailOn, "fail-on", "noncompliant", "fail on noncompliant|never")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .confscan.yml, then XDG global)")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
	rootCmd.PersistentFlags().BoolVar(&flagSelfUpdate, "self-update", false, "update confscan to the latest release")
}
