// Package core provides a small, stable facade over confscan's internal
// engine for external integrations. It deliberately re-exports a narrow API
// surface so compliance pipelines and third-party tools can depend on a
// stable import path without reaching into internal packages.
//
// Example:
//
//	docs := []core.Document{{Hostname: "rtr1", Text: cfgText}}
//	checks := []core.Check{{Ref: "1.1", Match: "exec-timeout", Section: "line vty"}}
//	verdicts := core.Search(docs, checks)
//	_ = core.MarshalVerdicts(os.Stdout, verdicts)
package core
