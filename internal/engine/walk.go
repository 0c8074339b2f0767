package engine

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/polyscan/polyscan/internal/types"
)

// Collect walks the root and returns the candidate source units plus
// notes for files skipped in ways the report should surface. Individual
// unreadable files never fail the walk.
func Collect(cfg Config) ([]types.SourceUnit, []types.Note, error) {
	var units []types.SourceUnit
	var notes []types.Note

	excludeDirs := map[string]bool{}
	for _, name := range cfg.Excludes {
		excludeDirs[name] = true
	}
	maxBytes := cfg.MaxFileSize

	err := filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != cfg.Root && excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(cfg.Root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !selected(rel, d.Name(), cfg) {
			return nil
		}
		if excludedByGlob(rel, cfg.ExcludeGlobs) {
			return nil
		}
		if cfg.SkipGenerated && isGeneratedArtifact(rel) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr == nil && maxBytes > 0 && info.Size() > maxBytes {
			notes = append(notes, types.Note{
				Path:    rel,
				Message: fmt.Sprintf("skipped: size %d exceeds limit %d bytes", info.Size(), maxBytes),
			})
			return nil
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			notes = append(notes, types.Note{Path: rel, Message: "skipped: " + readErr.Error()})
			return nil
		}
		if looksBinary(data) {
			return nil
		}
		units = append(units, types.SourceUnit{
			Path:     rel,
			Language: types.DetectLanguage(rel),
			Content:  data,
			Size:     int64(len(data)),
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", cfg.Root, err)
	}
	return units, notes, nil
}

func selected(rel, base string, cfg Config) bool {
	for _, name := range cfg.IncludeFilenames {
		if base == name {
			return true
		}
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, allowed := range cfg.IncludeExts {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func excludedByGlob(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// suffixes of generated or vendored artifacts skipped unless the scan
// explicitly includes them.
var generatedSuffixes = []string{
	".min.js", ".map", ".pb.go", ".gen.go", ".pyc",
}

var generatedFilenames = map[string]bool{
	"yarn.lock":         true,
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	"composer.lock":     true,
	"poetry.lock":       true,
}

func isGeneratedArtifact(rel string) bool {
	lower := strings.ToLower(rel)
	if strings.HasSuffix(lower, ".lock") {
		return true
	}
	for _, s := range generatedSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return generatedFilenames[filepath.Base(lower)]
}

func looksBinary(b []byte) bool {
	n := len(b)
	if n > 800 {
		n = 800
	}
	return bytes.IndexByte(b[:n], 0) >= 0
}
