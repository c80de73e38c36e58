// Package rules loads and validates the compliance checks file.
package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/confscan/confscan/internal/types"
	"gopkg.in/yaml.v3"
)

// DefaultFilenames are searched in order when no checks file is given.
var DefaultFilenames = []string{"confscan.checks.yml", "confscan.checks.yaml"}

// File is the on-disk YAML shape of a checks file.
type File struct {
	Checks []types.Check `yaml:"checks"`
}

// Load reads a checks file and validates it. Validation is all-or-nothing: a
// single bad check rejects the whole list before any search runs.
func Load(path string) ([]types.Check, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checks file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse checks file %s: %w", path, err)
	}
	if len(f.Checks) == 0 {
		return nil, fmt.Errorf("checks file %s defines no checks", path)
	}
	if err := Validate(f.Checks); err != nil {
		return nil, fmt.Errorf("checks file %s: %w", path, err)
	}
	return f.Checks, nil
}

// Discover returns the first default checks file present in dir, or "".
func Discover(dir string) string {
	for _, name := range DefaultFilenames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks the whole list and reports every problem at once.
// A check with empty match text is a configuration error, not a silent skip.
// A section value containing a line break could never match a single header
// line, so it is rejected as well.
func Validate(checks []types.Check) error {
	var errs []error
	for i, c := range checks {
		label := c.Ref
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if c.Match == "" {
			errs = append(errs, fmt.Errorf("check %s: match text is required", label))
		}
		if strings.ContainsAny(c.Section, "\n\r") {
			errs = append(errs, fmt.Errorf("check %s: section must not contain line breaks", label))
		}
	}
	return errors.Join(errs...)
}

// Defaults is the built-in check list written by `confscan checks init`.
// It mirrors a common hardening baseline for IOS-style devices.
func Defaults() []types.Check {
	return []types.Check{
		{Ref: "1.1.1", Match: "session-timeout", Section: "line vty"},
		{Ref: "1.1.2", Match: "session-timeout", Section: "line con 0"},
		{Ref: "1.2.1", Match: "exec-timeout", Section: "line vty"},
		{Ref: "1.2.2", Match: "exec-timeout", Section: "line con 0"},
		{Ref: "2.1.1", Match: "aaa new-model"},
		{Ref: "2.1.2", Match: "vtp mode transparent"},
		{Ref: "3.1.1", Match: "aaa authentication login"},
	}
}

// WriteDefault writes the built-in check list to path in YAML form.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	b, err := yaml.Marshal(File{Checks: Defaults()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
