package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/polyscan/polyscan/internal/rules"
	"github.com/polyscan/polyscan/internal/types"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func scanTree(t *testing.T, cfg Config) types.ScanReport {
	t.Helper()
	cfg.InlineIgnore = true
	cfg.SkipGenerated = true
	if len(cfg.IncludeExts) == 0 {
		cfg.IncludeExts = []string{".go", ".py", ".yaml"}
	}
	if len(cfg.IncludeFilenames) == 0 {
		cfg.IncludeFilenames = []string{"Dockerfile"}
	}
	rep, err := Scan(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return rep
}

func ruleIssues(rep types.ScanReport, ruleID string) []types.Issue {
	var out []types.Issue
	for _, is := range rep.Issues {
		if is.RuleID == ruleID {
			out = append(out, is)
		}
	}
	return out
}

func TestScanFindsIssuesAcrossLanguages(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py":     "result = eval(user_input)\n",
		"main.go":    "package main\n\nimport \"os/exec\"\n\nfunc run() { _ = exec.Command(\"ls\") }\n",
		"Dockerfile": "FROM alpine:3.20\nUSER root\n",
	})
	rep := scanTree(t, Config{Root: root})
	if rep.FilesScanned != 3 {
		t.Fatalf("FilesScanned = %d, want 3", rep.FilesScanned)
	}
	if len(ruleIssues(rep, "SS101")) != 1 {
		t.Error("expected the dynamic evaluation issue from app.py")
	}
	if len(ruleIssues(rep, "SS408")) != 1 {
		t.Error("expected the command execution issue from main.go")
	}
	if len(ruleIssues(rep, "SS108")) != 1 {
		t.Error("expected the root user issue from the Dockerfile")
	}
}

func TestScanDeterministicOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.py": "x = eval(a)\ny = eval(b)\n",
		"a.py": "z = eval(c)\n",
		"c.py": "# TODO later\nw = eval(d)\n",
	})
	var first []types.Issue
	for i := 0; i < 4; i++ {
		rep := scanTree(t, Config{Root: root, Threads: 4})
		if i == 0 {
			first = rep.Issues
			if !sort.SliceIsSorted(first, func(a, b int) bool {
				x, y := first[a], first[b]
				if x.Path != y.Path {
					return x.Path < y.Path
				}
				if x.Line != y.Line {
					return x.Line < y.Line
				}
				return x.RuleID < y.RuleID
			}) {
				t.Fatal("issues not ordered by path, line, rule")
			}
			continue
		}
		if len(rep.Issues) != len(first) {
			t.Fatalf("run %d: issue count changed: %d vs %d", i, len(rep.Issues), len(first))
		}
		for j := range first {
			if rep.Issues[j] != first[j] {
				t.Fatalf("run %d: issue %d differs: %+v vs %+v", i, j, rep.Issues[j], first[j])
			}
		}
	}
}

func TestScanExcludesDirectoriesAndGlobs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py":              "x = eval(a)\n",
		"node_modules/dep.py": "x = eval(a)\n",
		"gen/schema_gen.py":   "x = eval(a)\n",
		"scripts/x.min.js":    "eval(a)\n",
	})
	rep := scanTree(t, Config{
		Root:         root,
		Excludes:     []string{"node_modules"},
		ExcludeGlobs: []string{"gen/**"},
		IncludeExts:  []string{".py", ".js"},
	})
	if rep.FilesScanned != 1 {
		t.Fatalf("FilesScanned = %d, want only app.py", rep.FilesScanned)
	}
}

func TestScanSkipsGeneratedUnlessIncluded(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py":       "x = 1\n",
		"schema.pb.go": "package schema\n",
		"yarn.lock":    "lockfile\n",
	})
	cfg := Config{Root: root, IncludeExts: []string{".py", ".go", ".lock"}, IncludeFilenames: []string{"yarn.lock"}}
	rep := scanTree(t, cfg)
	if rep.FilesScanned != 1 {
		t.Fatalf("FilesScanned = %d, want 1 with generated skipped", rep.FilesScanned)
	}

	cfg.SkipGenerated = false
	cfg.InlineIgnore = true
	rep2, err := Scan(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rep2.FilesScanned != 3 {
		t.Fatalf("FilesScanned = %d, want 3 with generated included", rep2.FilesScanned)
	}
}

func TestScanOversizedFileNoted(t *testing.T) {
	root := writeTree(t, map[string]string{
		"big.py":   strings.Repeat("x = 1\n", 400),
		"small.py": "x = 1\n",
	})
	rep := scanTree(t, Config{Root: root, MaxFileSize: 1024})
	if rep.FilesScanned != 1 {
		t.Fatalf("FilesScanned = %d, want 1", rep.FilesScanned)
	}
	found := false
	for _, n := range rep.Notes {
		if n.Path == "big.py" && strings.Contains(n.Message, "exceeds limit") {
			found = true
		}
	}
	if !found {
		t.Fatalf("notes = %v, want oversized note for big.py", rep.Notes)
	}
}

func TestScanSkipsBinary(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "blob.py"), []byte("eval(\x00\x01\x02)"), 0o644); err != nil {
		t.Fatal(err)
	}
	rep := scanTree(t, Config{Root: root})
	if rep.FilesScanned != 0 {
		t.Fatalf("FilesScanned = %d, want binary skipped", rep.FilesScanned)
	}
}

func TestScanInlineSuppression(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py": "a = eval(x)  # polyscan:ignore SS101\nb = eval(y)\nc = eval(z)  # polyscan:ignore\n",
	})
	rep := scanTree(t, Config{Root: root})
	got := ruleIssues(rep, "SS101")
	if len(got) != 1 || got[0].Line != 2 {
		t.Fatalf("SS101 issues = %v, want only line 2", got)
	}
}

func TestScanSuppressionDisabled(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py": "a = eval(x)  # polyscan:ignore\n",
	})
	cfg := Config{Root: root, IncludeExts: []string{".py"}, SkipGenerated: true, InlineIgnore: false}
	rep, err := Scan(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(ruleIssues(rep, "SS101")) != 1 {
		t.Fatal("with inline ignore off the issue must survive")
	}
}

func TestScanGoParseFailureFallsBack(t *testing.T) {
	root := writeTree(t, map[string]string{
		"broken.go": "package broken\n\nfunc {\n\t# TODO fix\n",
	})
	rep := scanTree(t, Config{Root: root})
	noted := false
	for _, n := range rep.Notes {
		if n.Path == "broken.go" && strings.Contains(n.Message, "parse failed") {
			noted = true
		}
	}
	if !noted {
		t.Fatalf("notes = %v, want parse failure note", rep.Notes)
	}
	if len(ruleIssues(rep, "SS004")) != 1 {
		t.Error("pattern fallback should still find the TODO marker")
	}
}

func TestScanGoGetsGenericComplement(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go": "package main\n\n// TODO tighten this\nfunc bad_name() {}\n",
	})
	rep := scanTree(t, Config{Root: root})
	if len(ruleIssues(rep, "SS402")) != 1 {
		t.Error("structural naming rule should fire")
	}
	if len(ruleIssues(rep, "SS004")) != 1 {
		t.Error("generic pattern rules should also run on Go files")
	}
}

func TestScanDuplicateBlocks(t *testing.T) {
	block := "total = 0\nfor v in values:\n    if v > 0:\n        total += v\n    else:\n        total -= v\n"
	root := writeTree(t, map[string]string{
		"a.py": block + "print('a variant')\n",
		"b.py": "print('b variant')\n" + block,
	})
	rep := scanTree(t, Config{Root: root})
	got := ruleIssues(rep, "SS020")
	if len(got) != 2 {
		t.Fatalf("SS020 issues = %v, want one per occurrence", got)
	}
}

func TestScanCountsAndFingerprint(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py": "x = eval(a)\n",
		"b.py": "# TODO one\n",
		"c.py": "y = 1\n",
	})
	active, err := rules.Resolve(nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	rep := scanTree(t, Config{Root: root, Active: active})
	if rep.FilesWithIssues != 2 {
		t.Fatalf("FilesWithIssues = %d, want 2", rep.FilesWithIssues)
	}
	if rep.SeverityCounts[types.SevHigh] != 1 || rep.SeverityCounts[types.SevLow] != 1 {
		t.Errorf("severity counts = %v", rep.SeverityCounts)
	}
	if rep.RuleSetFingerprint != active.Fingerprint() {
		t.Errorf("fingerprint = %s, want %s", rep.RuleSetFingerprint, active.Fingerprint())
	}
	if rep.GeneratedAt.IsZero() {
		t.Error("GeneratedAt must be set")
	}
}

func TestScanCancellation(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, Config{Root: root, IncludeExts: []string{".py"}})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}
