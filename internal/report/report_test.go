package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/confscan/confscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVerdicts() []types.Verdict {
	return []types.Verdict{
		{Hostname: "edge-rtr1", Ref: "1.1.2", Match: "session-timeout", Section: "line con 0", Present: true},
		{Hostname: "edge-rtr1", Ref: "2.1.1", Match: "aaa new-model", Present: false},
		{Hostname: "sw1", Ref: "1.1.2", Match: "session-timeout", Section: "line con 0", Present: false},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleVerdicts()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"hostname", "ref", "match", "section", "configured"}, rows[0])
	assert.Equal(t, []string{"edge-rtr1", "1.1.2", "session-timeout", "line con 0", "YES"}, rows[1])
	assert.Equal(t, []string{"edge-rtr1", "2.1.1", "aaa new-model", "", "NO"}, rows[2])
	assert.Equal(t, "NO", rows[3][4])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "header only")
}

func TestCSVFilename(t *testing.T) {
	name := CSVFilename("", "")
	assert.Regexp(t, `^\d{14}\.csv$`, name)

	name = CSVFilename("/tmp/reports", "audit")
	assert.Regexp(t, `^/tmp/reports/\d{14}-audit\.csv$`, name)
}

func TestWriteCSVFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	abs, err := WriteCSVFile(p, sampleVerdicts())
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "edge-rtr1,1.1.2,session-timeout,line con 0,YES")
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, sampleVerdicts(), PrintOptions{
		NoColor:     true,
		Duration:    1500 * time.Millisecond,
		Hosts:       2,
		HostsFailed: 1,
	})

	out := buf.String()
	assert.Contains(t, out, "OK ")
	assert.Contains(t, out, "NOK")
	assert.Contains(t, out, "[line con 0]")
	assert.Contains(t, out, "Checks: 3 (compliant: 1, noncompliant: 2)")
	assert.Contains(t, out, "Hosts audited: 2")
	assert.Contains(t, out, "Hosts skipped: 1")
	assert.Contains(t, out, "Duration: 1.50s")
}

func TestPrintEmpty(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, nil, PrintOptions{NoColor: true})
	assert.Contains(t, buf.String(), "No verdicts produced")
}

func TestWaiverRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "waivers.json")
	vs := sampleVerdicts()
	require.NoError(t, SaveWaivers(p, vs))

	w, err := LoadWaivers(p)
	require.NoError(t, err)
	assert.False(t, w.Waived(vs[0]), "compliant verdicts are not waived")
	assert.True(t, w.Waived(vs[1]))
	assert.True(t, w.Waived(vs[2]))

	left := FilterUnwaived(vs, w)
	require.Len(t, left, 1)
	assert.True(t, left[0].Present)
}

func TestLoadWaiversMissing(t *testing.T) {
	w, err := LoadWaivers(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
	assert.NotNil(t, w.Items)
	assert.Empty(t, w.Items)
}

func TestShouldFail(t *testing.T) {
	failing := sampleVerdicts()
	passing := []types.Verdict{{Hostname: "a", Match: "x", Present: true}}

	assert.True(t, ShouldFail(failing, "noncompliant"))
	assert.True(t, ShouldFail(failing, ""), "default policy fails on noncompliance")
	assert.False(t, ShouldFail(failing, "never"))
	assert.False(t, ShouldFail(passing, "noncompliant"))
	assert.False(t, ShouldFail(nil, "noncompliant"))
}
