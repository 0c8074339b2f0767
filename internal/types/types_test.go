package types

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := map[string]Language{
		"cmd/main.go":          LangGo,
		"scripts/run.py":       LangPython,
		"web/app.tsx":          LangJavaScript,
		"src/Main.java":        LangJava,
		"src/App.kt":           LangKotlin,
		"Dockerfile":           LangDockerfile,
		"docker/Dockerfile.ci": LangDockerfile,
		"build.dockerfile":     LangDockerfile,
		"deploy/app.yaml":      LangYAML,
		"deploy/app.yml":       LangYAML,
		"bin/setup.sh":         LangShell,
		"README.md":            LangOther,
	}
	for path, want := range cases {
		if got := DetectLanguage(path); got != want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestSeverityRanking(t *testing.T) {
	order := Severities()
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("%s should outrank %s", order[i], order[i-1])
		}
	}
	if Severity("bogus").Rank() != 0 {
		t.Error("unknown severity must rank below low")
	}
	if Severity("bogus").Valid() {
		t.Error("unknown severity must not validate")
	}
}

func TestCommentMarkers(t *testing.T) {
	if got := LangGo.CommentMarkers(); len(got) != 1 || got[0] != "//" {
		t.Errorf("Go markers = %v", got)
	}
	if got := LangPython.CommentMarkers(); len(got) != 1 || got[0] != "#" {
		t.Errorf("Python markers = %v", got)
	}
	if got := LangOther.CommentMarkers(); len(got) < 2 {
		t.Errorf("Other markers = %v, want permissive set", got)
	}
}
