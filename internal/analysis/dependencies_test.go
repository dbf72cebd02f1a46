package analysis

import (
	"testing"

	types "github.com/0unveiled/backend/internal/domain"
)

func TestExtractDependenciesRecognizedSections(t *testing.T) {
	deps := map[string][]string{
		"dependencies":     {"react", "axios"},
		"devDependencies":  {"jest"},
		"peerDependencies": {"vue"},
		"requirements":     {"django"},
		"packages":         {"lodash"},
	}
	signals := ExtractDependencies(deps)
	if len(signals) != 6 {
		t.Fatalf("got %d signals, want 6", len(signals))
	}
	for _, sig := range signals {
		if sig.Confidence != 85 {
			t.Errorf("signal %q confidence = %d, want 85", sig.Name, sig.Confidence)
		}
		if sig.Lines != 0 {
			t.Errorf("signal %q lines = %d, want 0", sig.Name, sig.Lines)
		}
	}
}

func TestExtractDependenciesSkipsUnknownSections(t *testing.T) {
	deps := map[string][]string{
		"scripts":         {"build", "test"},
		"optionalAnother": {"thing"},
	}
	if signals := ExtractDependencies(deps); len(signals) != 0 {
		t.Fatalf("got %d signals from unrecognized sections, want 0", len(signals))
	}
}

func TestExtractDependenciesEmptyInput(t *testing.T) {
	if signals := ExtractDependencies(nil); signals != nil {
		t.Fatalf("got %v for nil input, want nil", signals)
	}
	if signals := ExtractDependencies(map[string][]string{"dependencies": {""}}); len(signals) != 0 {
		t.Fatalf("got %d signals for blank name, want 0", len(signals))
	}
}

func TestExtractDependenciesClassifiesTypes(t *testing.T) {
	signals := ExtractDependencies(map[string][]string{
		"dependencies": {"react", "axios", "eslint", "prisma", "aws-sdk", "leftpad"},
	})
	got := map[string]types.SkillType{}
	for _, sig := range signals {
		got[sig.Name] = sig.Type
	}
	want := map[string]types.SkillType{
		"react":   types.SkillTypeFramework,
		"axios":   types.SkillTypeLibrary,
		"eslint":  types.SkillTypeTool,
		"prisma":  types.SkillTypeDatabase,
		"aws-sdk": types.SkillTypeCloud,
		"leftpad": types.SkillTypeLibrary,
	}
	for name, kind := range want {
		if got[name] != kind {
			t.Errorf("%s classified as %s, want %s", name, got[name], kind)
		}
	}
}
