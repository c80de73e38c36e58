package confscan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/confscan/confscan/internal/audit"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past audit runs",
		RunE:  runHistory,
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "show at most this many runs")
}

func runHistory(_ *cobra.Command, _ []string) error {
	records, err := audit.NewLog("").LoadHistory()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println("No audit runs recorded yet.")
			return nil
		}
		return err
	}
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, r := range records {
		fmt.Printf("%s  %-24s hosts=%d checks=%d noncompliant=%d waived=%d compliance=%.1f%% (%s)\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.Target,
			r.Hosts, r.Checks, r.Noncompliant, r.Waived, r.Compliance, r.Duration)
		for _, f := range r.TopFailing {
			scope := f.Match
			if f.Section != "" {
				scope = fmt.Sprintf("%s [%s]", f.Match, f.Section)
			}
			fmt.Printf("    %-8s %s: %d hosts\n", f.Ref, scope, f.Hosts)
		}
	}
	return nil
}
