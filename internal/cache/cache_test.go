package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingGivesEmptyDB(t *testing.T) {
	db, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	require.NotNil(t, db.Entries)
	assert.Empty(t, db.Entries)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "configs.json")
	db := DB{Entries: map[string]Entry{
		"edge-rtr1": {Hash: "abc", Text: "aaa new-model\n", FetchedAt: time.Now().UTC()},
	}}
	require.NoError(t, Save(p, db))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, db.Entries["edge-rtr1"].Hash, got.Entries["edge-rtr1"].Hash)
	assert.Equal(t, db.Entries["edge-rtr1"].Text, got.Entries["edge-rtr1"].Text)
}

func TestLoadCorrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "configs.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o600))
	db, err := Load(p)
	assert.Error(t, err)
	assert.Empty(t, db.Entries)
}

func TestSaveRejectsNilEntries(t *testing.T) {
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.json"), DB{}))
	assert.Error(t, Save("", DB{Entries: map[string]Entry{}}))
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdgcache")
	assert.Equal(t, filepath.Join("/tmp/xdgcache", "confscan", "configs.json"), DefaultPath())
}
