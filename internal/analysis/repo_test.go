package analysis

import (
	"testing"

	types "github.com/0unveiled/backend/internal/domain"
)

func demoRepoFiles() []SourceFile {
	return []SourceFile{
		{Path: "src/index.ts", Size: 24, Content: "const x = 1\nconst y = 2"},
		{Path: "package.json", Size: 40, Content: `{"dependencies": {"react": "^18.0.0"}}`},
		{Path: "Dockerfile", Size: 13, Content: "FROM node:18"},
		{Path: ".github/workflows/ci.yml", Size: 16, Content: "jobs:\n  build:"},
		{Path: "main.py", Size: 900, Content: ""},
	}
}

func TestAnalyzeRepositoryPayload(t *testing.T) {
	repo := types.RepositoryData{Name: "demo-app", FullName: "u/demo-app", Stars: 3}
	payload := AnalyzeRepository(repo, demoRepoFiles())

	if len(payload.Files) != 5 {
		t.Fatalf("files = %d, want 5 (unclassified files included)", len(payload.Files))
	}
	byName := map[string]types.AnalyzedFile{}
	for _, f := range payload.Files {
		byName[f.Name] = f
	}
	if f := byName["src/index.ts"]; f.Language != "TypeScript" || f.Lines != 2 {
		t.Errorf("index.ts = %+v", f)
	}
	if f := byName["package.json"]; f.Language != "" || f.Lines != 1 {
		t.Errorf("package.json = %+v", f)
	}
	// Unfetched content falls back to the size/30 estimate.
	if f := byName["main.py"]; f.Language != "Python" || f.Lines != 30 {
		t.Errorf("main.py = %+v", f)
	}
	if payload.Metrics.TotalLines != 36 {
		t.Errorf("totalLines = %d, want 36", payload.Metrics.TotalLines)
	}
	if got := payload.Dependencies["dependencies"]; len(got) != 1 || got[0] != "react" {
		t.Errorf("dependencies = %v", payload.Dependencies)
	}
	if payload.Security.SecurityScore <= 0 {
		t.Errorf("securityScore = %v, want positive", payload.Security.SecurityScore)
	}
}

func TestRepoSignalsThroughAggregation(t *testing.T) {
	repo := types.RepositoryData{Name: "demo-app"}
	payload := AnalyzeRepository(repo, demoRepoFiles())

	agg := NewAggregator()
	agg.AddAll(RepoSignals(payload))
	result := agg.Result()

	langs := result.Languages
	if len(langs) != 2 {
		t.Fatalf("languages = %+v, want 2", langs)
	}
	if langs[0].Name != "Python" || langs[0].LinesOfCode != 30 || langs[0].Confidence != 90 {
		t.Errorf("languages[0] = %+v, want Python/30/90", langs[0])
	}
	if langs[1].Name != "TypeScript" || langs[1].LinesOfCode != 2 {
		t.Errorf("languages[1] = %+v, want TypeScript/2", langs[1])
	}

	if len(result.Frameworks) != 1 || result.Frameworks[0].Name != "React" || result.Frameworks[0].Confidence != 85 {
		t.Errorf("frameworks = %+v, want React at 85", result.Frameworks)
	}

	toolNames := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		toolNames = append(toolNames, tool.Name)
		if tool.Confidence != 80 {
			t.Errorf("tool %s confidence = %d, want 80", tool.Name, tool.Confidence)
		}
	}
	want := []string{"CI/CD", "Docker", "Npm"}
	if len(toolNames) != 3 || toolNames[0] != want[0] || toolNames[1] != want[1] || toolNames[2] != want[2] {
		t.Errorf("tools = %v, want %v", toolNames, want)
	}
}
