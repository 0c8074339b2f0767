// Package coverage reads Cobertura-style XML coverage summaries. The
// scanner consumes coverage, it never computes it.
package coverage

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/polyscan/polyscan/internal/types"
)

type coberturaRoot struct {
	XMLName      xml.Name `xml:"coverage"`
	LineRate     string   `xml:"line-rate,attr"`
	LinesCovered string   `xml:"lines-covered,attr"`
	LinesValid   string   `xml:"lines-valid,attr"`
}

// ReadFile parses a Cobertura XML file. Missing files and malformed
// documents are errors; the gate treats them as configuration failures
// when min_coverage is set, never as a silent pass.
func ReadFile(path string) (types.Coverage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Coverage{}, fmt.Errorf("read coverage file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a Cobertura document. The line-rate attribute wins; when
// absent, lines-covered/lines-valid reconstruct it.
func Parse(data []byte) (types.Coverage, error) {
	var root coberturaRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return types.Coverage{}, fmt.Errorf("parse coverage xml: %w", err)
	}

	cov := types.Coverage{}
	if root.LinesCovered != "" {
		n, err := strconv.Atoi(root.LinesCovered)
		if err != nil {
			return types.Coverage{}, fmt.Errorf("coverage xml: bad lines-covered %q", root.LinesCovered)
		}
		cov.LinesCovered = n
	}
	if root.LinesValid != "" {
		n, err := strconv.Atoi(root.LinesValid)
		if err != nil {
			return types.Coverage{}, fmt.Errorf("coverage xml: bad lines-valid %q", root.LinesValid)
		}
		cov.LinesValid = n
	}

	if root.LineRate != "" {
		rate, err := strconv.ParseFloat(root.LineRate, 64)
		if err != nil {
			return types.Coverage{}, fmt.Errorf("coverage xml: bad line-rate %q", root.LineRate)
		}
		cov.LineRate = rate
		return cov, nil
	}
	if cov.LinesValid == 0 {
		return types.Coverage{}, fmt.Errorf("coverage xml missing line-rate and lines-covered/lines-valid attributes")
	}
	cov.LineRate = float64(cov.LinesCovered) / float64(cov.LinesValid)
	return cov, nil
}
