package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirHostnames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "edge-rtr1.cfg"), "aaa new-model\n")
	writeFile(t, filepath.Join(root, "site-b", "sw1.conf"), "line con 0\n")
	writeFile(t, filepath.Join(root, "notes.md"), "not a config")
	writeFile(t, filepath.Join(root, ".git", "sw9.cfg"), "hidden")

	d, err := NewDir(root, 0)
	require.NoError(t, err)

	hosts, err := d.Hostnames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"edge-rtr1", "sw1"}, hosts)
}

func TestDirFetch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "edge-rtr1.cfg"), "line con 0\n session-timeout 15\n")

	d, err := NewDir(root, 0)
	require.NoError(t, err)
	_, err = d.Hostnames(context.Background())
	require.NoError(t, err)

	doc, err := d.Fetch(context.Background(), "edge-rtr1")
	require.NoError(t, err)
	assert.Equal(t, "edge-rtr1", doc.Hostname)
	assert.Equal(t, "line con 0\n session-timeout 15\n", doc.Text)
	assert.False(t, doc.LastChange.IsZero())

	_, err = d.Fetch(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestDirMaxBytes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big.cfg"), "0123456789")
	writeFile(t, filepath.Join(root, "small.cfg"), "ok")

	d, err := NewDir(root, 5)
	require.NoError(t, err)

	hosts, err := d.Hostnames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"small"}, hosts)
}

func TestNewDirRejectsFiles(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "file.cfg")
	writeFile(t, p, "x")

	_, err := NewDir(p, 0)
	assert.Error(t, err)
	_, err = NewDir(filepath.Join(root, "missing"), 0)
	assert.Error(t, err)
}
