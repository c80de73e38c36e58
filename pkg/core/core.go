package core

import (
	"context"

	"github.com/confscan/confscan/internal/engine"
	"github.com/confscan/confscan/internal/search"
	"github.com/confscan/confscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
// We can replace these with decoupled structs later without breaking callers.
type Check = types.Check
type Document = types.Document
type Verdict = types.Verdict
type Config = engine.Config
type Provider = engine.Provider
type Result = engine.Result

// Search evaluates every check against every document and returns one verdict
// per (document, check) pair, documents outermost.
func Search(docs []Document, checks []Check) []Verdict {
	return search.Search(docs, checks)
}

// Section extracts the indentation-delimited block whose header starts with
// name. It is exposed for callers that want to inspect matched scopes.
func Section(body, name string) (string, bool) {
	return search.Section(body, name)
}

// Run is the stable entrypoint for other programs: it materializes documents
// from the provider and audits them in one call.
func Run(ctx context.Context, cfg Config, p Provider, checks []Check) (Result, error) {
	return engine.Run(ctx, cfg, p, checks)
}
