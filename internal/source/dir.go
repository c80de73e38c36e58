// Package source implements the local-directory document provider, used for
// offline audits over a directory of configuration backups (one file per
// device, hostname taken from the file name).
package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/confscan/confscan/internal/logger"
	"github.com/confscan/confscan/internal/types"
)

var configExtensions = map[string]bool{
	".cfg":  true,
	".conf": true,
	".txt":  true,
}

// Dir reads device configurations from a directory tree.
type Dir struct {
	Root     string
	MaxBytes int64 // skip files larger than this; 0 = no limit

	paths map[string]string // hostname -> file path, built by Hostnames
}

// NewDir validates root and returns a directory provider.
func NewDir(root string, maxBytes int64) (*Dir, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("config directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("config directory: %s is not a directory", root)
	}
	return &Dir{Root: root, MaxBytes: maxBytes}, nil
}

// Hostnames walks the tree and returns one hostname per recognized config
// file, sorted for a stable audit order. The file base name without its
// extension is the hostname.
func (d *Dir) Hostnames(ctx context.Context) ([]string, error) {
	d.paths = map[string]string{}
	err := filepath.WalkDir(d.Root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if de.IsDir() {
			if strings.HasPrefix(de.Name(), ".") && p != d.Root {
				return filepath.SkipDir
			}
			return nil
		}
		if !configExtensions[strings.ToLower(filepath.Ext(de.Name()))] {
			return nil
		}
		if d.MaxBytes > 0 {
			if info, err := de.Info(); err == nil && info.Size() > d.MaxBytes {
				logger.Warn("skipping %s: larger than %d bytes", p, d.MaxBytes)
				return nil
			}
		}
		host := strings.TrimSuffix(de.Name(), filepath.Ext(de.Name()))
		if prev, dup := d.paths[host]; dup {
			logger.Warn("duplicate config for %s: keeping %s, ignoring %s", host, prev, p)
			return nil
		}
		d.paths[host] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.Root, err)
	}
	hosts := make([]string, 0, len(d.paths))
	for h := range d.paths {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	logger.Debug("directory %s holds %d configs", d.Root, len(hosts))
	return hosts, nil
}

// Fetch reads the config file recorded for hostname.
func (d *Dir) Fetch(ctx context.Context, hostname string) (types.Document, error) {
	if ctx.Err() != nil {
		return types.Document{}, ctx.Err()
	}
	p, ok := d.paths[hostname]
	if !ok {
		return types.Document{}, fmt.Errorf("no config file for %s under %s", hostname, d.Root)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return types.Document{}, fmt.Errorf("read config for %s: %w", hostname, err)
	}
	st, _ := os.Stat(p)
	doc := types.Document{Hostname: hostname, Text: string(b)}
	if st != nil {
		doc.LastChange = st.ModTime()
	}
	return doc, nil
}
