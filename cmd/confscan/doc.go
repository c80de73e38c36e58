// Package confscan provides the command-line interface for the confscan tool.
// It configures subcommands (audit, checks, hosts, etc.), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/confscan/confscan/cmd/confscan"
//	func main() { confscan.Execute() }
package confscan
