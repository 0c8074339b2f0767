package rules

import "testing"

func TestKotlinPackageNaming(t *testing.T) {
	unit := unitOf("App.kt", `package com.example.app`)
	if got := issuesFor(Evaluate(unit, allRules(t)), "SS501"); len(got) != 0 {
		t.Fatalf("SS501 issues = %v, want none", got)
	}
	unit = unitOf("App.kt", `package com.Example`)
	if got := issuesFor(Evaluate(unit, allRules(t)), "SS501"); len(got) != 1 {
		t.Fatalf("SS501 issues = %d, want 1", len(got))
	}
}

func TestKotlinClassNaming(t *testing.T) {
	unit := unitOf("App.kt",
		`data class order_item(val id: String)`,
		`data class OrderItem(val id: String)`,
	)
	got := issuesFor(Evaluate(unit, allRules(t)), "SS502")
	if len(got) != 1 || got[0].Line != 1 {
		t.Fatalf("SS502 issues = %v, want one at line 1", got)
	}
}

func TestKotlinFunctionNaming(t *testing.T) {
	unit := unitOf("App.kt",
		`fun processOrder(id: String) {}`,
		`fun Process_Order(id: String) {}`,
		`suspend fun fetchAll() {}`,
	)
	got := issuesFor(Evaluate(unit, allRules(t)), "SS503")
	if len(got) != 1 || got[0].Line != 2 {
		t.Fatalf("SS503 issues = %v, want one at line 2", got)
	}
}

func TestKotlinParamCount(t *testing.T) {
	unit := unitOf("App.kt",
		`fun wide(a: Int, b: Int, c: Int, d: Int, e: Int, f: Int, g: Int) {}`,
	)
	if got := issuesFor(Evaluate(unit, allRules(t)), "SS504"); len(got) != 1 {
		t.Fatalf("SS504 issues = %d, want 1", len(got))
	}
}

func TestKotlinCommandExec(t *testing.T) {
	unit := unitOf("Run.kt",
		`Runtime.getRuntime().exec(cmd)`,
		`ProcessBuilder(cmd).start()`,
	)
	got := issuesFor(Evaluate(unit, allRules(t)), "SS507")
	if len(got) != 2 {
		t.Fatalf("SS507 issues = %d, want 2", len(got))
	}
}
