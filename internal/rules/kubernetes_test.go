package rules

import "testing"

func TestK8sPrivilegedContainer(t *testing.T) {
	unit := unitOf("deploy.yaml",
		`apiVersion: apps/v1`,
		`kind: Deployment`,
		`spec:`,
		`  template:`,
		`    spec:`,
		`      containers:`,
		`        - name: app`,
		`          securityContext:`,
		`            privileged: true`,
	)
	got := issuesFor(Evaluate(unit, allRules(t)), "SS111")
	if len(got) != 1 {
		t.Fatalf("SS111 issues = %d, want 1", len(got))
	}
	if got[0].Line != 9 {
		t.Errorf("Line = %d, want 9", got[0].Line)
	}
}

func TestK8sEscalationAndRootFlags(t *testing.T) {
	unit := unitOf("pod.yaml",
		`apiVersion: v1`,
		`kind: Pod`,
		`spec:`,
		`  hostNetwork: true`,
		`  containers:`,
		`    - name: app`,
		`      securityContext:`,
		`        allowPrivilegeEscalation: true`,
		`        runAsNonRoot: false`,
	)
	issues := Evaluate(unit, allRules(t))
	if got := issuesFor(issues, "SS112"); len(got) != 1 {
		t.Errorf("SS112 issues = %d, want 1", len(got))
	}
	if got := issuesFor(issues, "SS113"); len(got) != 1 {
		t.Errorf("SS113 issues = %d, want 1", len(got))
	}
	if got := issuesFor(issues, "SS114"); len(got) != 1 {
		t.Errorf("SS114 issues = %d, want 1", len(got))
	}
}

func TestK8sSafeValuesClean(t *testing.T) {
	unit := unitOf("pod.yaml",
		`apiVersion: v1`,
		`kind: Pod`,
		`spec:`,
		`  containers:`,
		`    - name: app`,
		`      securityContext:`,
		`        privileged: false`,
		`        allowPrivilegeEscalation: false`,
		`        runAsNonRoot: true`,
	)
	for _, id := range []string{"SS111", "SS112", "SS113", "SS114"} {
		if got := issuesFor(Evaluate(unit, allRules(t)), id); len(got) != 0 {
			t.Errorf("%s issues = %v, want none", id, got)
		}
	}
}

func TestK8sNonManifestYAMLIgnored(t *testing.T) {
	unit := unitOf("ci.yaml",
		`jobs:`,
		`  build:`,
		`    privileged: true`,
	)
	if got := issuesFor(Evaluate(unit, allRules(t)), "SS111"); len(got) != 0 {
		t.Fatalf("SS111 issues = %v, want none for non-manifest YAML", got)
	}
}

func TestK8sMultiDocument(t *testing.T) {
	unit := unitOf("all.yaml",
		`apiVersion: v1`,
		`kind: Pod`,
		`spec:`,
		`  hostPID: true`,
		`---`,
		`apiVersion: v1`,
		`kind: Pod`,
		`spec:`,
		`  hostIPC: true`,
	)
	got := issuesFor(Evaluate(unit, allRules(t)), "SS114")
	if len(got) != 2 {
		t.Fatalf("SS114 issues = %d, want 2", len(got))
	}
}

func TestK8sPatternFallbackOnBrokenYAML(t *testing.T) {
	unit := unitOf("broken.yaml",
		"\tapiVersion: v1",
		`privileged: true`,
	)
	got := issuesFor(Evaluate(unit, allRules(t)), "SS111")
	if len(got) != 1 {
		t.Fatalf("SS111 issues = %d, want 1 via fallback", len(got))
	}
}
