// Package engine drives a scan: it walks the tree, dispatches each file
// to the analysis strategy for its language, filters suppressed issues
// and assembles the final report in a deterministic order.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/polyscan/polyscan/internal/dupes"
	"github.com/polyscan/polyscan/internal/rules"
	"github.com/polyscan/polyscan/internal/structural"
	"github.com/polyscan/polyscan/internal/suppress"
	"github.com/polyscan/polyscan/internal/types"
)

// Config carries everything a scan needs. Zero values fall back to
// sensible defaults in Scan.
type Config struct {
	Root             string
	Excludes         []string
	ExcludeGlobs     []string
	IncludeExts      []string
	IncludeFilenames []string
	MaxFileSize      int64
	SkipGenerated    bool
	InlineIgnore     bool
	MinDupLines      int
	Threads          int

	Active rules.ActiveSet

	Coverage *types.Coverage

	Logger hclog.Logger
}

// Scan walks cfg.Root and analyzes every selected file.
func Scan(ctx context.Context, cfg Config) (types.ScanReport, error) {
	units, notes, err := Collect(cfg)
	if err != nil {
		return types.ScanReport{}, err
	}
	rep, err := ScanUnits(ctx, cfg, units)
	if err != nil {
		return types.ScanReport{}, err
	}
	rep.Notes = append(notes, rep.Notes...)
	return rep, nil
}

// fileResult holds everything one worker produced for one unit.
type fileResult struct {
	issues     []types.Issue
	notes      []types.Note
	dupeTable  dupes.Table
	directives suppress.Index
}

// ScanUnits analyzes an already collected set of units. Exposed so
// callers can substitute their own file discovery.
func ScanUnits(ctx context.Context, cfg Config, units []types.SourceUnit) (types.ScanReport, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	minDup := cfg.MinDupLines
	if minDup <= 0 {
		minDup = dupes.DefaultMinLines
	}
	active := cfg.Active
	if active == nil {
		var err error
		active, err = rules.Resolve(nil, nil, false)
		if err != nil {
			return types.ScanReport{}, err
		}
	}

	logger.Debug("scanning", "files", len(units), "threads", threads)

	results := make([]fileResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i := range units {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = analyzeUnit(units[i], active, cfg.InlineIgnore, minDup, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.ScanReport{}, fmt.Errorf("scan: %w", err)
	}

	rep := types.ScanReport{
		FilesScanned:       len(units),
		SeverityCounts:     map[types.Severity]int{},
		RuleSetFingerprint: active.Fingerprint(),
		GeneratedAt:        time.Now().UTC().Truncate(time.Second),
		Coverage:           cfg.Coverage,
	}

	partials := make([]dupes.Table, 0, len(results))
	byPath := make(map[string]suppress.Index, len(results))
	for i, r := range results {
		rep.Issues = append(rep.Issues, r.issues...)
		rep.Notes = append(rep.Notes, r.notes...)
		if r.dupeTable != nil {
			partials = append(partials, r.dupeTable)
		}
		if r.directives != nil {
			byPath[units[i].Path] = r.directives
		}
	}

	if active.Enabled(rules.RuleDuplicateBlock) {
		dupeIssues := dupes.Issues(dupes.Merge(partials))
		for _, is := range dupeIssues {
			if d, ok := byPath[is.Path][is.Line]; ok && !d.Allows(is.RuleID) {
				continue
			}
			rep.Issues = append(rep.Issues, is)
		}
	}

	sortIssues(rep.Issues)
	rep.Issues = dedupe(rep.Issues)

	seen := map[string]bool{}
	for _, is := range rep.Issues {
		rep.SeverityCounts[is.Severity]++
		seen[is.Path] = true
	}
	rep.FilesWithIssues = len(seen)

	logger.Debug("scan complete", "issues", len(rep.Issues), "files_with_issues", rep.FilesWithIssues)
	return rep, nil
}

func analyzeUnit(unit types.SourceUnit, active rules.ActiveSet, inlineIgnore bool, minDup int, logger hclog.Logger) fileResult {
	var res fileResult

	if inlineIgnore {
		res.directives = suppress.Parse(unit)
	}

	switch unit.Language {
	case types.LangGo:
		issues, err := structural.Evaluate(unit, active)
		if err != nil {
			logger.Debug("structural parse failed, using pattern fallback", "path", unit.Path, "error", err)
			res.notes = append(res.notes, types.Note{
				Path:    unit.Path,
				Message: "parse failed, pattern rules only: " + err.Error(),
			})
			res.issues = rules.EvaluateGeneric(unit, active)
		} else {
			res.issues = append(issues, rules.EvaluateGeneric(unit, active)...)
		}
	default:
		res.issues = rules.Evaluate(unit, active)
	}

	if inlineIgnore {
		res.issues = suppress.Filter(res.issues, res.directives)
	}
	if active.Enabled(rules.RuleDuplicateBlock) {
		res.dupeTable = dupes.Fingerprint(unit, minDup)
	}
	return res
}

func sortIssues(issues []types.Issue) {
	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Message < b.Message
	})
}

// dedupe drops issues identical in rule, location and message. Input
// must already be sorted.
func dedupe(issues []types.Issue) []types.Issue {
	out := issues[:0]
	for _, is := range issues {
		if n := len(out); n > 0 {
			prev := out[n-1]
			if prev.RuleID == is.RuleID && prev.Path == is.Path && prev.Line == is.Line && prev.Message == is.Message {
				continue
			}
		}
		out = append(out, is)
	}
	return out
}
