package types

import (
	"path/filepath"
	"strings"
)

// Language is the detected language or file category of a SourceUnit.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
	LangDockerfile Language = "dockerfile"
	LangYAML       Language = "yaml"
	LangShell      Language = "shell"
	LangOther      Language = "other"
)

var extLanguages = map[string]Language{
	".go":   LangGo,
	".py":   LangPython,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".ts":   LangJavaScript,
	".tsx":  LangJavaScript,
	".java": LangJava,
	".kt":   LangKotlin,
	".kts":  LangKotlin,
	".yaml": LangYAML,
	".yml":  LangYAML,
	".sh":   LangShell,
	".bash": LangShell,
	".zsh":  LangShell,
}

// DetectLanguage classifies a path by extension and well-known filenames.
func DetectLanguage(path string) Language {
	base := strings.ToLower(filepath.Base(path))
	if base == "dockerfile" || strings.HasPrefix(base, "dockerfile.") {
		return LangDockerfile
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == ".dockerfile" {
		return LangDockerfile
	}
	if lang, ok := extLanguages[ext]; ok {
		return lang
	}
	return LangOther
}

// CommentMarkers returns the line-comment markers for a language, used to
// recognize inline suppression directives. Unknown categories accept both
// common styles so a directive is never silently dropped.
func (l Language) CommentMarkers() []string {
	switch l {
	case LangGo, LangJava, LangJavaScript, LangKotlin:
		return []string{"//"}
	case LangPython, LangDockerfile, LangYAML, LangShell:
		return []string{"#"}
	default:
		return []string{"//", "#", "--", ";"}
	}
}
