package rules

import (
	"bytes"
	"errors"
	"io"
	"regexp"

	"github.com/polyscan/polyscan/internal/types"
	"gopkg.in/yaml.v3"
)

var kubernetesChecks = []check{
	findK8sHardening,
}

// keyed boolean settings that trip a hardening rule when set to the
// listed value anywhere in a manifest.
var k8sBoolRules = []struct {
	key    string
	value  bool
	ruleID string
	msg    string
}{
	{"privileged", true, "SS111", "Privileged containers have full host access."},
	{"allowPrivilegeEscalation", true, "SS112", "allowPrivilegeEscalation should be false."},
	{"runAsNonRoot", false, "SS113", "runAsNonRoot should be true for workload containers."},
	{"hostNetwork", true, "SS114", "Sharing the host network namespace weakens isolation."},
	{"hostPID", true, "SS114", "Sharing the host PID namespace weakens isolation."},
	{"hostIPC", true, "SS114", "Sharing the host IPC namespace weakens isolation."},
}

var reK8sBoolLine = regexp.MustCompile(`^\s*(privileged|allowPrivilegeEscalation|runAsNonRoot|hostNetwork|hostPID|hostIPC)\s*:\s*(true|false)\s*$`)

// findK8sHardening walks the YAML document tree so reported lines come
// from the parser. YAML files that are not Kubernetes manifests (no
// apiVersion/kind pair) are left alone; unparseable files fall back to a
// line-pattern scan.
func findK8sHardening(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	dec := yaml.NewDecoder(bytes.NewReader(unit.Content))
	parsed := false
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !parsed {
				return k8sPatternFallback(unit)
			}
			break
		}
		parsed = true
		root := &doc
		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			root = doc.Content[0]
		}
		if !looksLikeManifest(root) {
			continue
		}
		walkK8sNode(root, unit, &out)
	}
	return out
}

func looksLikeManifest(root *yaml.Node) bool {
	if root.Kind != yaml.MappingNode {
		return false
	}
	hasAPIVersion, hasKind := false, false
	for i := 0; i+1 < len(root.Content); i += 2 {
		switch root.Content[i].Value {
		case "apiVersion":
			hasAPIVersion = true
		case "kind":
			hasKind = true
		}
	}
	return hasAPIVersion && hasKind
}

func walkK8sNode(node *yaml.Node, unit types.SourceUnit, out *[]types.Issue) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			checkK8sPair(key, val, unit, out)
			walkK8sNode(val, unit, out)
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			walkK8sNode(child, unit, out)
		}
	}
}

func checkK8sPair(key, val *yaml.Node, unit types.SourceUnit, out *[]types.Issue) {
	if val.Kind != yaml.ScalarNode {
		return
	}
	boolVal := val.Value == "true"
	if val.Value != "true" && val.Value != "false" {
		return
	}
	for _, r := range k8sBoolRules {
		if key.Value == r.key && boolVal == r.value {
			*out = append(*out, NewIssue(r.ruleID, unit, key.Line, key.Column, r.msg))
		}
	}
}

// k8sPatternFallback applies the same checks as a raw line scan when the
// YAML does not parse. Manifest detection is skipped; an unparseable
// manifest fragment still deserves the flags.
func k8sPatternFallback(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reK8sBoolLine.FindStringSubmatch(text)
		if m == nil {
			return
		}
		boolVal := m[2] == "true"
		for _, r := range k8sBoolRules {
			if m[1] == r.key && boolVal == r.value {
				out = append(out, NewIssue(r.ruleID, unit, n, 1, r.msg))
			}
		}
	})
	return out
}
