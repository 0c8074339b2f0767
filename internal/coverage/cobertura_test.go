package coverage

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLineRate(t *testing.T) {
	cov, err := Parse([]byte(`<coverage line-rate="0.85" lines-covered="850" lines-valid="1000"/>`))
	if err != nil {
		t.Fatal(err)
	}
	if cov.LineRate != 0.85 {
		t.Errorf("LineRate = %v, want 0.85", cov.LineRate)
	}
	if got := cov.Percent(); math.Abs(got-85.0) > 1e-9 {
		t.Errorf("Percent() = %v, want 85", got)
	}
	if cov.LinesCovered != 850 || cov.LinesValid != 1000 {
		t.Errorf("line counts = %d/%d, want 850/1000", cov.LinesCovered, cov.LinesValid)
	}
}

func TestParseReconstructsRate(t *testing.T) {
	cov, err := Parse([]byte(`<coverage lines-covered="3" lines-valid="4"/>`))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cov.LineRate-0.75) > 1e-9 {
		t.Errorf("LineRate = %v, want 0.75", cov.LineRate)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"not xml":           `{"line_rate": 0.8}`,
		"wrong root":        `<report line-rate="0.8"/>`,
		"bad rate":          `<coverage line-rate="abc"/>`,
		"no rate no counts": `<coverage/>`,
		"bad covered":       `<coverage lines-covered="x" lines-valid="4"/>`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error for %q", name, doc)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coverage.xml")
	if err := os.WriteFile(path, []byte(`<coverage line-rate="0.5"/>`), 0o644); err != nil {
		t.Fatal(err)
	}
	cov, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cov.LineRate != 0.5 {
		t.Errorf("LineRate = %v, want 0.5", cov.LineRate)
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.xml")); err == nil {
		t.Fatal("missing file must error")
	}
}
