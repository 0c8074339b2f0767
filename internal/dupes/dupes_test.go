package dupes

import (
	"strings"
	"testing"

	"github.com/polyscan/polyscan/internal/types"
)

func unitOf(path string, lines ...string) types.SourceUnit {
	return types.SourceUnit{
		Path:     path,
		Language: types.DetectLanguage(path),
		Content:  []byte(strings.Join(lines, "\n") + "\n"),
	}
}

var block = []string{
	"total := 0",
	"for _, v := range values {",
	"\tif v > 0 {",
	"\t\ttotal += v",
	"\t}",
	"}",
}

func pad(n int, fill string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fill + " // distinct"
	}
	return out
}

func TestDuplicateAcrossFiles(t *testing.T) {
	a := unitOf("a.go", append(append([]string{}, block...), pad(3, "alpha")...)...)
	b := unitOf("b.go", append(pad(3, "beta"), block...)...)

	blocks := Merge([]Table{
		Fingerprint(a, DefaultMinLines),
		Fingerprint(b, DefaultMinLines),
	})
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	occs := blocks[0].Occurrences
	if len(occs) != 2 {
		t.Fatalf("occurrences = %d, want 2", len(occs))
	}
	if occs[0].Path != "a.go" || occs[0].StartLine != 1 {
		t.Errorf("first occurrence = %+v", occs[0])
	}
	if occs[1].Path != "b.go" || occs[1].StartLine != 4 {
		t.Errorf("second occurrence = %+v", occs[1])
	}
}

func TestBelowMinimumNotReported(t *testing.T) {
	short := block[:DefaultMinLines-1]
	a := unitOf("a.go", append(append([]string{}, short...), pad(4, "alpha")...)...)
	b := unitOf("b.go", append(pad(4, "beta"), short...)...)

	blocks := Merge([]Table{
		Fingerprint(a, DefaultMinLines),
		Fingerprint(b, DefaultMinLines),
	})
	if len(blocks) != 0 {
		t.Fatalf("blocks = %v, want none below the minimum window", blocks)
	}
}

func TestIndentationNormalized(t *testing.T) {
	indented := make([]string, len(block))
	for i, l := range block {
		indented[i] = "\t\t" + strings.TrimSpace(l)
	}
	plain := make([]string, len(block))
	for i, l := range block {
		plain[i] = strings.TrimSpace(l)
	}
	a := unitOf("a.go", append(append([]string{}, indented...), pad(3, "alpha")...)...)
	b := unitOf("b.go", append(pad(3, "beta"), plain...)...)

	blocks := Merge([]Table{
		Fingerprint(a, DefaultMinLines),
		Fingerprint(b, DefaultMinLines),
	})
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 despite indentation differences", len(blocks))
	}
}

func TestOverlappingWindowsSameFileNotAGroup(t *testing.T) {
	// A run of identical lines produces overlapping identical windows
	// inside one file; they must not self-pair.
	lines := make([]string, DefaultMinLines+3)
	for i := range lines {
		lines[i] = "repeated()"
	}
	a := unitOf("a.go", lines...)
	blocks := Merge([]Table{Fingerprint(a, DefaultMinLines)})
	if len(blocks) != 0 {
		t.Fatalf("blocks = %v, want none from one file's overlaps", blocks)
	}
}

func TestLongRegionReportedOnce(t *testing.T) {
	long := append(append([]string{}, block...), block...)
	a := unitOf("a.go", append(append([]string{}, long...), pad(3, "alpha")...)...)
	b := unitOf("b.go", append(pad(3, "beta"), long...)...)

	blocks := Merge([]Table{
		Fingerprint(a, DefaultMinLines),
		Fingerprint(b, DefaultMinLines),
	})
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want shifted windows coalesced into 1", len(blocks))
	}
}

func TestIssuesNameOtherLocations(t *testing.T) {
	blocks := []Block{{
		Fingerprint: 42,
		Occurrences: []Occurrence{
			{Path: "a.go", StartLine: 1, EndLine: 6},
			{Path: "b.go", StartLine: 4, EndLine: 9},
		},
	}}
	issues := Issues(blocks)
	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(issues))
	}
	if issues[0].RuleID != "SS020" || issues[0].Path != "a.go" || issues[0].Line != 1 {
		t.Errorf("first issue = %+v", issues[0])
	}
	if !strings.Contains(issues[0].Message, "b.go:4-9") {
		t.Errorf("message %q should name the other location", issues[0].Message)
	}
	if !strings.Contains(issues[1].Message, "a.go:1-6") {
		t.Errorf("message %q should name the other location", issues[1].Message)
	}
}

func TestEmptyWindowsSkipped(t *testing.T) {
	blank := make([]string, DefaultMinLines+2)
	a := unitOf("a.go", blank...)
	b := unitOf("b.go", blank...)
	blocks := Merge([]Table{
		Fingerprint(a, DefaultMinLines),
		Fingerprint(b, DefaultMinLines),
	})
	if len(blocks) != 0 {
		t.Fatalf("blocks = %v, want none for all-blank windows", blocks)
	}
}
