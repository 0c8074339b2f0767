package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestScan_Smoke(t *testing.T) {
	dir := t.TempDir()
	src := "package demo\n\nfunc Demo() int { return 1 }\n"
	if err := os.WriteFile(filepath.Join(dir, "demo.go"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		Root:        dir,
		IncludeExts: []string{".go"},
	}
	rep, err := Scan(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if rep.FilesScanned != 1 {
		t.Fatalf("FilesScanned = %d, want 1", rep.FilesScanned)
	}
	if len(RuleIDs()) == 0 {
		t.Fatal("expected non-empty rule IDs")
	}
	if len(SecurityRuleIDs()) == 0 {
		t.Fatal("expected non-empty security rule IDs")
	}
}
