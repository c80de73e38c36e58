package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for confscan. All fields
// are pointers so the CLI can tell "unset" from a zero value when merging.
type FileConfig struct {
	URL      *string `yaml:"url"`
	Token    *string `yaml:"token"`
	Insecure *bool   `yaml:"insecure"`
	Snapshot *string `yaml:"snapshot"`
	Filter   *string `yaml:"filter"`

	Checks      *string  `yaml:"checks"`
	Concurrency *int     `yaml:"concurrency"`
	Rate        *float64 `yaml:"rate"`
	TimeoutSecs *int     `yaml:"timeout"`
	MaxBytes    *int64   `yaml:"max_bytes"`

	NoColor *bool   `yaml:"no_color"`
	OutDir  *string `yaml:"out_dir"`
	Waivers *string `yaml:"waivers"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a config file in the given working directory.
// It supports .confscan.yml/.yaml and confscan.yml/.yaml.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".confscan.yml", ".confscan.yaml", "confscan.yml", "confscan.yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "confscan", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Env carries the environment fallbacks, the lowest-precedence layer.
type Env struct {
	URL      string
	Token    string
	Insecure bool
	Snapshot string
	Filter   string
}

// FromEnv reads the CONFSCAN_* variables.
func FromEnv() Env {
	insecure, _ := strconv.ParseBool(os.Getenv("CONFSCAN_INSECURE"))
	return Env{
		URL:      os.Getenv("CONFSCAN_URL"),
		Token:    os.Getenv("CONFSCAN_TOKEN"),
		Insecure: insecure,
		Snapshot: os.Getenv("CONFSCAN_SNAPSHOT"),
		Filter:   os.Getenv("CONFSCAN_FILTER"),
	}
}
