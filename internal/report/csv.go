package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/confscan/confscan/internal/types"
)

// csvHeader puts hostname first, matching the layout compliance teams expect
// when the file is pivoted per device.
var csvHeader = []string{"hostname", "ref", "match", "section", "configured"}

// WriteCSV writes one row per verdict in verdict order.
func WriteCSV(w io.Writer, verdicts []types.Verdict) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, v := range verdicts {
		if err := cw.Write([]string{v.Hostname, v.Ref, v.Match, v.Section, v.Configured()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename builds a timestamped report name, e.g. 20260829154500-audit.csv.
func CSVFilename(dir, label string) string {
	stamp := time.Now().Format("20060102150405")
	name := stamp + ".csv"
	if label != "" {
		name = stamp + "-" + label + ".csv"
	}
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// WriteCSVFile writes the report to path and returns the absolute path.
func WriteCSVFile(path string, verdicts []types.Verdict) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := WriteCSV(f, verdicts); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return abs, nil
}
