// Package suppress resolves inline ignore directives. A line may carry a
// bare "polyscan:ignore" marker (suppresses every rule on that line) or a
// scoped "polyscan:ignore SS001,SS003" marker (suppresses only the listed
// rule IDs). The marker must sit inside a comment for the file's comment
// syntax; malformed directives are inert and the issue survives.
package suppress

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/polyscan/polyscan/internal/types"
)

const marker = "polyscan:ignore"

// Directive is the parsed suppression attached to a single line.
type Directive struct {
	All   bool
	Rules map[string]bool
}

// Allows reports whether ruleID survives the directive.
func (d Directive) Allows(ruleID string) bool {
	if d.All {
		return false
	}
	return !d.Rules[ruleID]
}

// Index maps 1-based line numbers to their directive.
type Index map[int]Directive

// Parse scans unit content for suppression directives. It is a pure
// function of the content; the result is safe for concurrent reads.
func Parse(unit types.SourceUnit) Index {
	idx := Index{}
	markers := unit.Language.CommentMarkers()
	sc := bufio.NewScanner(bytes.NewReader(unit.Content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if d, ok := parseLine(sc.Text(), markers); ok {
			idx[line] = d
		}
	}
	return idx
}

// Filter returns the issues not suppressed by idx. Order is preserved.
func Filter(issues []types.Issue, idx Index) []types.Issue {
	if len(idx) == 0 {
		return issues
	}
	out := issues[:0]
	for _, is := range issues {
		d, ok := idx[is.Line]
		if ok && !d.Allows(is.RuleID) {
			continue
		}
		out = append(out, is)
	}
	return out
}

func parseLine(text string, markers []string) (Directive, bool) {
	pos := strings.Index(text, marker)
	if pos < 0 {
		return Directive{}, false
	}
	// The directive only counts inside a trailing or whole-line comment.
	if !inComment(text[:pos], markers) {
		return Directive{}, false
	}
	rest := text[pos+len(marker):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// Something glued onto the marker ("polyscan:ignored", ...): not ours.
		return Directive{}, false
	}
	token := firstToken(rest)
	if token == "" {
		return Directive{All: true}, true
	}
	ids := parseRuleList(token)
	if len(ids) == 0 {
		// A rule list was given but nothing in it is a rule ID. A malformed
		// directive never widens into suppress-all; the issue survives.
		return Directive{}, false
	}
	return Directive{Rules: ids}, true
}

func inComment(prefix string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(prefix, m) {
			return true
		}
	}
	return false
}

// firstToken returns the first whitespace-delimited token after the
// marker; anything beyond it is ordinary comment prose.
func firstToken(rest string) string {
	rest = strings.TrimSpace(rest)
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func parseRuleList(token string) map[string]bool {
	ids := map[string]bool{}
	for _, part := range strings.Split(token, ",") {
		id := strings.ToUpper(strings.TrimSpace(part))
		if id == "" || !validRuleID(id) {
			continue
		}
		ids[id] = true
	}
	return ids
}

func validRuleID(id string) bool {
	for _, r := range id {
		isAlnum := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			return false
		}
	}
	return len(id) > 0
}
