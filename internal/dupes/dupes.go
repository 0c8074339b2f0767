// Package dupes finds repeated multi-line blocks across source units by
// fingerprinting a sliding window of whitespace-normalized lines.
// Each worker builds its own partial table; Merge folds the partials into
// duplicate groups in a single reduction so no locking is needed.
package dupes

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/polyscan/polyscan/internal/rules"
	"github.com/polyscan/polyscan/internal/types"
)

// DefaultMinLines is the default sliding-window height. Windows shorter
// than the minimum are never reported, which bounds false positives from
// short idiomatic statements.
const DefaultMinLines = 6

// Occurrence is one window of lines in one file.
type Occurrence struct {
	Path      string
	StartLine int
	EndLine   int
}

// Block is a group of occurrences sharing a fingerprint, at least two of
// them, in fingerprint-stable order.
type Block struct {
	Fingerprint uint64
	Occurrences []Occurrence
}

// Table maps window fingerprints to their occurrences within the files
// one worker has processed.
type Table map[uint64][]Occurrence

// Fingerprint computes the window table for a single unit. Blank and
// comment-free normalization happens per line; indentation differences do
// not defeat detection.
func Fingerprint(unit types.SourceUnit, minLines int) Table {
	if minLines <= 0 {
		minLines = DefaultMinLines
	}
	lines := normalizedLines(unit)
	t := Table{}
	if len(lines) < minLines {
		return t
	}
	for start := 0; start+minLines <= len(lines); start++ {
		window := lines[start : start+minLines]
		if emptyWindow(window) {
			continue
		}
		fp := hashWindow(window)
		t[fp] = append(t[fp], Occurrence{
			Path:      unit.Path,
			StartLine: start + 1,
			EndLine:   start + minLines,
		})
	}
	return t
}

// Merge folds partial tables into duplicate blocks. Overlapping windows
// within the same file never form a group by themselves; a fingerprint
// needs at least two non-overlapping occurrences.
func Merge(partials []Table) []Block {
	merged := Table{}
	for _, t := range partials {
		for fp, occs := range t {
			merged[fp] = append(merged[fp], occs...)
		}
	}

	var blocks []Block
	for fp, occs := range merged {
		kept := dropOverlaps(occs)
		if len(kept) < 2 {
			continue
		}
		blocks = append(blocks, Block{Fingerprint: fp, Occurrences: kept})
	}
	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i].Occurrences[0], blocks[j].Occurrences[0]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return blocks[i].Fingerprint < blocks[j].Fingerprint
	})
	return coalesce(blocks)
}

// coalesce drops blocks whose occurrences all extend regions already
// covered by an earlier block; a duplicated region longer than the
// window would otherwise report once per shifted window.
func coalesce(blocks []Block) []Block {
	lastEnd := map[string]int{}
	var kept []Block
	for _, b := range blocks {
		extension := true
		for _, occ := range b.Occurrences {
			if occ.StartLine > lastEnd[occ.Path] {
				extension = false
				break
			}
		}
		if extension {
			continue
		}
		for _, occ := range b.Occurrences {
			if occ.EndLine > lastEnd[occ.Path] {
				lastEnd[occ.Path] = occ.EndLine
			}
		}
		kept = append(kept, b)
	}
	return kept
}

// Issues converts duplicate blocks into one issue per occurrence, each
// message naming the other locations.
func Issues(blocks []Block) []types.Issue {
	var out []types.Issue
	for _, b := range blocks {
		for i, occ := range b.Occurrences {
			others := make([]string, 0, len(b.Occurrences)-1)
			for j, other := range b.Occurrences {
				if j == i {
					continue
				}
				others = append(others, fmt.Sprintf("%s:%d-%d", other.Path, other.StartLine, other.EndLine))
			}
			unit := types.SourceUnit{Path: occ.Path}
			out = append(out, rules.NewIssue(rules.RuleDuplicateBlock, unit, occ.StartLine, 1,
				fmt.Sprintf("Lines %d-%d duplicate %s.", occ.StartLine, occ.EndLine, strings.Join(others, ", "))))
		}
	}
	return out
}

// dropOverlaps keeps occurrences sorted by (path, start) and removes
// windows overlapping an already-kept window in the same file.
func dropOverlaps(occs []Occurrence) []Occurrence {
	sorted := make([]Occurrence, len(occs))
	copy(sorted, occs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].StartLine < sorted[j].StartLine
	})
	var kept []Occurrence
	for _, occ := range sorted {
		if n := len(kept); n > 0 {
			prev := kept[n-1]
			if prev.Path == occ.Path && occ.StartLine <= prev.EndLine {
				continue
			}
		}
		kept = append(kept, occ)
	}
	return kept
}

func normalizedLines(unit types.SourceUnit) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(unit.Content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.Join(strings.Fields(sc.Text()), " "))
	}
	return lines
}

func emptyWindow(window []string) bool {
	for _, l := range window {
		if l != "" {
			return false
		}
	}
	return true
}

func hashWindow(window []string) uint64 {
	h := xxhash.New()
	for _, l := range window {
		_, _ = h.WriteString(l)
		_, _ = h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
