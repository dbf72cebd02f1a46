package analysis

import (
	"path/filepath"
	"strings"

	types "github.com/0unveiled/backend/internal/domain"
)

var extLanguages = map[string]string{
	".py":     "Python",
	".js":     "JavaScript",
	".jsx":    "JavaScript",
	".ts":     "TypeScript",
	".tsx":    "TypeScript",
	".go":     "Go",
	".rs":     "Rust",
	".java":   "Java",
	".kt":     "Kotlin",
	".swift":  "Swift",
	".rb":     "Ruby",
	".php":    "PHP",
	".c":      "C",
	".h":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".cxx":    "C++",
	".hpp":    "C++",
	".cs":     "C#",
	".scala":  "Scala",
	".clj":    "Clojure",
	".ex":     "Elixir",
	".exs":    "Elixir",
	".erl":    "Erlang",
	".hs":     "Haskell",
	".lua":    "Lua",
	".r":      "R",
	".m":      "Objective-C",
	".dart":   "Dart",
	".vue":    "Vue",
	".svelte": "Svelte",
	".sh":     "Shell",
	".bash":   "Shell",
	".ps1":    "PowerShell",
	".sql":    "SQL",
	".html":   "HTML",
	".htm":    "HTML",
	".css":    "CSS",
	".scss":   "SCSS",
	".sass":   "SCSS",
	".less":   "Less",
}

// ClassifyFile maps a file path to its language label. Unclassifiable files
// return ok=false and contribute no signal.
func ClassifyFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extLanguages[ext]
	return lang, ok
}

// LanguageSignal builds the aggregation signal for one classified file.
func LanguageSignal(language string, lines int) Signal {
	return Signal{
		Name:       language,
		Type:       types.SkillTypeLanguage,
		Confidence: languageConfidence,
		Lines:      lines,
	}
}

// CountLines counts newline-terminated lines; empty content is zero lines.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// EstimateLines approximates line count from byte size when content was not
// fetched (about 30 bytes per line of source).
func EstimateLines(sizeBytes int) int {
	if sizeBytes <= 0 {
		return 0
	}
	return sizeBytes / 30
}
