// Package polyscan provides the command-line interface for the polyscan
// analyzer. It configures subcommands (scan, rules, baseline), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/polyscan/polyscan/cmd/polyscan"
//	func main() { polyscan.Execute() }
package polyscan
