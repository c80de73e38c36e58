// Package engine orchestrates an audit run: it materializes documents from a
// provider, keeps the download cache current, and hands the documents to the
// search core. The engine itself holds no search logic.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/confscan/confscan/internal/cache"
	"github.com/confscan/confscan/internal/inventory"
	"github.com/confscan/confscan/internal/logger"
	"github.com/confscan/confscan/internal/rules"
	"github.com/confscan/confscan/internal/search"
	"github.com/confscan/confscan/internal/types"
)

// Provider supplies documents for an audit. The HTTP inventory client and the
// local directory source both satisfy it.
type Provider interface {
	Hostnames(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, hostname string) (types.Document, error)
}

// Config controls a run. All values are fully resolved by the caller; the
// engine applies no config-file or environment lookups of its own.
type Config struct {
	Filter      string // comma-separated hostname globs
	Concurrency int    // parallel fetches; 0 = GOMAXPROCS
	NoCache     bool   // do not read or write the download cache
	CachedOnly  bool   // audit the cache contents without fetching
	CachePath   string // "" = cache.DefaultPath()
	Progress    func() // called once per host attempted
}

// Result carries the verdicts plus run statistics.
type Result struct {
	Verdicts     []types.Verdict
	Documents    []types.Document
	HostsFetched int
	HostsFailed  int
	FromCache    int
	Duration     time.Duration
}

// Run executes one audit. Checks are validated up front: an invalid check list
// produces no verdicts at all. An empty host list is not an error.
func Run(ctx context.Context, cfg Config, p Provider, checks []types.Check) (Result, error) {
	var res Result
	started := time.Now()

	if err := rules.Validate(checks); err != nil {
		return res, fmt.Errorf("invalid checks: %w", err)
	}

	cachePath := cfg.CachePath
	if cachePath == "" {
		cachePath = cache.DefaultPath()
	}
	var db cache.DB
	if cfg.NoCache {
		db.Entries = map[string]cache.Entry{}
	} else {
		db, _ = cache.Load(cachePath)
	}

	var docs []types.Document
	if cfg.CachedOnly {
		docs = fromCache(db, cfg.Filter)
		res.FromCache = len(docs)
	} else {
		if p == nil {
			return res, errors.New("no document provider configured")
		}
		hosts, err := p.Hostnames(ctx)
		if err != nil {
			return res, err
		}
		hosts = inventory.FilterHostnames(hosts, cfg.Filter)
		logger.Info("auditing %d hosts", len(hosts))

		docs, res.HostsFailed = fetchAll(ctx, cfg, p, hosts)
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.HostsFetched = len(docs)

		for _, d := range docs {
			h := d.Hash
			if h == "" {
				h = fastHash(d.Text)
			}
			db.Entries[d.Hostname] = cache.Entry{Hash: h, Text: d.Text, FetchedAt: time.Now()}
		}
		if !cfg.NoCache && len(docs) > 0 {
			if err := cache.Save(cachePath, db); err != nil {
				logger.Warn("cache not saved: %v", err)
			}
		}
	}

	res.Documents = docs
	res.Verdicts = search.Search(docs, checks)
	res.Duration = time.Since(started)
	return res, nil
}

// fetchAll downloads every host with a bounded worker pool, preserving the
// host order in the returned documents. Hosts whose config is missing or
// failed are skipped and counted, never turned into partial documents.
func fetchAll(ctx context.Context, cfg Config, p Provider, hosts []string) ([]types.Document, int) {
	workers := cfg.Concurrency
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(hosts) {
		workers = len(hosts)
	}
	if workers < 1 {
		workers = 1
	}

	slots := make([]*types.Document, len(hosts))
	idxCh := make(chan int)
	var failed counter
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				doc, err := p.Fetch(ctx, hosts[i])
				switch {
				case err == nil:
					slots[i] = &doc
				case errors.Is(err, inventory.ErrNotFound):
					logger.Warn("no configuration for %s, skipping", hosts[i])
					failed.inc()
				case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
					failed.inc()
				default:
					logger.Warn("fetch %s: %v", hosts[i], err)
					failed.inc()
				}
				if cfg.Progress != nil {
					cfg.Progress()
				}
			}
		}()
	}

feed:
	for i := range hosts {
		select {
		case idxCh <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(idxCh)
	wg.Wait()

	docs := make([]types.Document, 0, len(hosts))
	for _, d := range slots {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	return docs, failed.value()
}

// fromCache materializes documents from cached entries, sorted by hostname.
func fromCache(db cache.DB, filter string) []types.Document {
	hosts := make([]string, 0, len(db.Entries))
	for h := range db.Entries {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	hosts = inventory.FilterHostnames(hosts, filter)

	docs := make([]types.Document, 0, len(hosts))
	for _, h := range hosts {
		e := db.Entries[h]
		docs = append(docs, types.Document{
			Hostname:   h,
			Hash:       e.Hash,
			LastChange: e.FetchedAt,
			Text:       e.Text,
		})
	}
	return docs
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func fastHash(s string) string {
	if len(s) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64String(s)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
