package confscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestPickString(t *testing.T) {
	assert.Equal(t, "cli", pickString("cli", strp("local"), strp("global")))
	assert.Equal(t, "local", pickString("", strp("local"), strp("global")))
	assert.Equal(t, "global", pickString("", nil, strp("global")))
	assert.Equal(t, "global", pickString("", strp(""), strp("global")))
	assert.Equal(t, "", pickString("", nil, nil))
}

func TestPickBool(t *testing.T) {
	assert.True(t, pickBool(true, boolp(false), nil))
	assert.True(t, pickBool(false, boolp(true), boolp(false)))
	assert.False(t, pickBool(false, boolp(false), boolp(true)))
	assert.True(t, pickBool(false, nil, boolp(true)))
	assert.False(t, pickBool(false, nil, nil))
}

func TestResolveSettingsEnvFallback(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("CONFSCAN_URL", "https://env.example")
	t.Setenv("CONFSCAN_TOKEN", "env-token")
	t.Setenv("CONFSCAN_INSECURE", "true")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	s := resolveSettings()
	assert.Equal(t, "https://env.example", s.URL)
	assert.Equal(t, "env-token", s.Token)
	assert.True(t, s.Insecure)
}

func TestResolveSettingsLocalBeatsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("CONFSCAN_URL", "https://env.example")
	t.Setenv("CONFSCAN_TOKEN", "")
	t.Setenv("CONFSCAN_INSECURE", "")

	local := "url: https://local.example\nfilter: edge-*\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".confscan.yml"), []byte(local), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	s := resolveSettings()
	assert.Equal(t, "https://local.example", s.URL)
	assert.Equal(t, "edge-*", s.Filter)
}
