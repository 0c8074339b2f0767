package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/polyscan/polyscan/internal/types"
)

var dockerChecks = []check{
	findDockerRootUser,
	findDockerLatestTag,
	findDockerPipeToShell,
}

var (
	reDockerFrom = regexp.MustCompile(`(?i)^\s*FROM\s+([^\s]+)`)
	reDockerUser = regexp.MustCompile(`(?i)^\s*USER\s+([^\s]+)`)
	reDockerPipe = regexp.MustCompile(`(?i)\b(curl|wget)\b[^|]*\|\s*(sh|bash|zsh)\b`)
)

// findDockerRootUser flags an explicit "USER root" and, when no USER
// instruction appears at all, the final FROM stage (containers default
// to root).
func findDockerRootUser(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	lastFromLine := 0
	sawUser := false
	eachLine(unit, func(n int, text string) {
		if reDockerFrom.MatchString(text) {
			lastFromLine = n
			sawUser = false
			return
		}
		if m := reDockerUser.FindStringSubmatch(text); m != nil {
			sawUser = true
			if strings.EqualFold(m[1], "root") || m[1] == "0" {
				out = append(out, NewIssue("SS108", unit, n, 1,
					"Container runs as root; switch to an unprivileged USER."))
			}
		}
	})
	if lastFromLine > 0 && !sawUser {
		out = append(out, NewIssue("SS108", unit, lastFromLine, 1,
			"No USER instruction; container defaults to root."))
	}
	return out
}

func findDockerLatestTag(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reDockerFrom.FindStringSubmatch(text)
		if m == nil {
			return
		}
		image := m[1]
		if strings.EqualFold(image, "scratch") || strings.Contains(image, "@sha256:") {
			return
		}
		tag := ""
		if i := strings.LastIndex(image, ":"); i >= 0 && !strings.Contains(image[i:], "/") {
			tag = image[i+1:]
		}
		if tag == "" || strings.EqualFold(tag, "latest") {
			out = append(out, NewIssue("SS109", unit, n, 1,
				fmt.Sprintf("Base image %q is not pinned; use an explicit version tag or digest.", image)))
		}
	})
	return out
}

func findDockerPipeToShell(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, reDockerPipe, "SS110",
		"Downloading and piping to a shell executes unverified code.")
}
