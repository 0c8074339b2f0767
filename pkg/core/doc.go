// Package core provides a small, stable facade over polyscan's internal
// engine for external integrations. It deliberately re-exports a narrow
// API surface so other tools can depend on a stable import path without
// reaching into internal packages.
//
// Example:
//
//	cfg := core.Config{Root: "."}
//	rep, err := core.Scan(context.Background(), cfg)
//	if err != nil { /* handle */ }
//	fmt.Println(len(rep.Issues))
package core
