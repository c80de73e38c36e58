package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/confscan/confscan/internal/cache"
	"github.com/confscan/confscan/internal/inventory"
	"github.com/confscan/confscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	hosts   []string
	configs map[string]string
	missing map[string]bool
	fetches int
}

func (f *fakeProvider) Hostnames(ctx context.Context) ([]string, error) {
	return f.hosts, nil
}

func (f *fakeProvider) Fetch(ctx context.Context, hostname string) (types.Document, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.missing[hostname] {
		return types.Document{}, fmt.Errorf("fetch %s: %w", hostname, inventory.ErrNotFound)
	}
	text, ok := f.configs[hostname]
	if !ok {
		return types.Document{}, errors.New("boom")
	}
	return types.Document{Hostname: hostname, Text: text}, nil
}

func testChecks() []types.Check {
	return []types.Check{
		{Ref: "1", Match: "session-timeout", Section: "line con 0"},
		{Ref: "2", Match: "aaa new-model"},
	}
}

func TestRunProducesOneVerdictPerPair(t *testing.T) {
	p := &fakeProvider{
		hosts: []string{"a", "b", "c"},
		configs: map[string]string{
			"a": "line con 0\n session-timeout 15\n",
			"b": "aaa new-model\n",
			"c": "",
		},
	}
	cfg := Config{NoCache: true, CachePath: filepath.Join(t.TempDir(), "c.json")}

	res, err := Run(context.Background(), cfg, p, testChecks())
	require.NoError(t, err)
	assert.Len(t, res.Verdicts, 3*2)
	assert.Equal(t, 3, res.HostsFetched)
	assert.Zero(t, res.HostsFailed)

	// Document order preserved: a, b, c with checks inner.
	assert.Equal(t, "a", res.Verdicts[0].Hostname)
	assert.True(t, res.Verdicts[0].Present)
	assert.False(t, res.Verdicts[1].Present)
	assert.True(t, res.Verdicts[3].Present)
	assert.False(t, res.Verdicts[4].Present)
	assert.False(t, res.Verdicts[5].Present)
}

func TestRunOrderStableUnderConcurrency(t *testing.T) {
	var hosts []string
	configs := map[string]string{}
	for i := 0; i < 50; i++ {
		h := fmt.Sprintf("host-%02d", i)
		hosts = append(hosts, h)
		configs[h] = "aaa new-model\n"
	}
	p := &fakeProvider{hosts: hosts, configs: configs}
	cfg := Config{Concurrency: 8, NoCache: true, CachePath: filepath.Join(t.TempDir(), "c.json")}

	res, err := Run(context.Background(), cfg, p, testChecks())
	require.NoError(t, err)
	require.Len(t, res.Documents, 50)
	for i, d := range res.Documents {
		assert.Equal(t, hosts[i], d.Hostname)
	}
}

func TestRunSkipsMissingConfigs(t *testing.T) {
	p := &fakeProvider{
		hosts:   []string{"a", "ghost", "b"},
		configs: map[string]string{"a": "x", "b": "y"},
		missing: map[string]bool{"ghost": true},
	}
	cfg := Config{NoCache: true, CachePath: filepath.Join(t.TempDir(), "c.json")}

	res, err := Run(context.Background(), cfg, p, testChecks())
	require.NoError(t, err)
	assert.Equal(t, 2, res.HostsFetched)
	assert.Equal(t, 1, res.HostsFailed)
	assert.Len(t, res.Verdicts, 2*2)
}

func TestRunFilter(t *testing.T) {
	p := &fakeProvider{
		hosts:   []string{"edge-1", "core-1", "edge-2"},
		configs: map[string]string{"edge-1": "x", "core-1": "y", "edge-2": "z"},
	}
	cfg := Config{Filter: "edge-*", NoCache: true, CachePath: filepath.Join(t.TempDir(), "c.json")}

	res, err := Run(context.Background(), cfg, p, testChecks())
	require.NoError(t, err)
	assert.Equal(t, 2, res.HostsFetched)
	assert.Equal(t, 2, p.fetches)
}

func TestRunRejectsInvalidChecks(t *testing.T) {
	p := &fakeProvider{hosts: []string{"a"}, configs: map[string]string{"a": "x"}}
	cfg := Config{NoCache: true}

	_, err := Run(context.Background(), cfg, p, []types.Check{{Ref: "bad"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid checks")
	assert.Zero(t, p.fetches, "no fetch happens when the check list is rejected")
}

func TestRunEmptyInventory(t *testing.T) {
	p := &fakeProvider{hosts: nil}
	cfg := Config{NoCache: true, CachePath: filepath.Join(t.TempDir(), "c.json")}

	res, err := Run(context.Background(), cfg, p, testChecks())
	require.NoError(t, err)
	assert.Empty(t, res.Verdicts)
}

func TestRunWritesAndReplaysCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "configs.json")
	p := &fakeProvider{
		hosts:   []string{"a", "b"},
		configs: map[string]string{"a": "aaa new-model\n", "b": "line con 0\n session-timeout 9\n"},
	}

	_, err := Run(context.Background(), Config{CachePath: cachePath}, p, testChecks())
	require.NoError(t, err)

	db, err := cache.Load(cachePath)
	require.NoError(t, err)
	assert.Len(t, db.Entries, 2)
	assert.NotEmpty(t, db.Entries["a"].Hash)

	// Offline replay: no provider needed.
	res, err := Run(context.Background(), Config{CachedOnly: true, CachePath: cachePath}, nil, testChecks())
	require.NoError(t, err)
	assert.Equal(t, 2, res.FromCache)
	assert.Len(t, res.Verdicts, 4)
	assert.Equal(t, "a", res.Verdicts[0].Hostname)
	assert.True(t, res.Verdicts[1].Present, "aaa new-model cached for host a")
}

func TestRunCachedOnlyWithFilter(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "configs.json")
	db := cache.DB{Entries: map[string]cache.Entry{
		"edge-1": {Text: "aaa new-model\n"},
		"core-1": {Text: "x"},
	}}
	require.NoError(t, cache.Save(cachePath, db))

	res, err := Run(context.Background(), Config{CachedOnly: true, CachePath: cachePath, Filter: "edge-*"}, nil, testChecks())
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "edge-1", res.Documents[0].Hostname)
}

func TestRunNoProvider(t *testing.T) {
	_, err := Run(context.Background(), Config{NoCache: true}, nil, testChecks())
	assert.Error(t, err)
}

func TestRunProgressCallback(t *testing.T) {
	p := &fakeProvider{
		hosts:   []string{"a", "b", "c"},
		configs: map[string]string{"a": "x", "b": "y", "c": "z"},
	}
	var mu sync.Mutex
	calls := 0
	cfg := Config{
		NoCache:   true,
		CachePath: filepath.Join(t.TempDir(), "c.json"),
		Progress: func() {
			mu.Lock()
			calls++
			mu.Unlock()
		},
	}

	_, err := Run(context.Background(), cfg, p, testChecks())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
