package analysis

import (
	"testing"

	types "github.com/0unveiled/backend/internal/domain"
)

func TestAggregatorMergesByLowerCasedName(t *testing.T) {
	agg := NewAggregator()
	agg.Add(Signal{Name: "React", Type: types.SkillTypeFramework, Confidence: 85, Lines: 100})
	agg.Add(Signal{Name: "react", Type: types.SkillTypeFramework, Confidence: 90, Lines: 50})
	agg.Add(Signal{Name: "REACT", Type: types.SkillTypeFramework, Confidence: 70, Lines: 25})

	result := agg.Result()
	if len(result.Frameworks) != 1 {
		t.Fatalf("got %d framework entries, want 1", len(result.Frameworks))
	}
	entry := result.Frameworks[0]
	if entry.Count != 3 {
		t.Errorf("count = %d, want 3", entry.Count)
	}
	if entry.Confidence != 90 {
		t.Errorf("confidence = %d, want max 90 (never summed)", entry.Confidence)
	}
	if entry.LinesOfCode != 175 {
		t.Errorf("linesOfCode = %d, want 175", entry.LinesOfCode)
	}
}

func TestAggregatorConfidenceNeverExceedsMax(t *testing.T) {
	agg := NewAggregator()
	for i := 0; i < 20; i++ {
		agg.Add(Signal{Name: "docker", Type: types.SkillTypeTool, Confidence: 80})
	}
	result := agg.Result()
	if len(result.Tools) != 1 || result.Tools[0].Confidence != 80 {
		t.Fatalf("tools = %+v, want single entry with confidence 80", result.Tools)
	}
}

func TestAggregatorKeepsDisplayCasing(t *testing.T) {
	agg := NewAggregator()
	agg.Add(Signal{Name: "next.js", Type: types.SkillTypeFramework, Confidence: 80})
	agg.Add(Signal{Name: "Next.js", Type: types.SkillTypeFramework, Confidence: 80})
	agg.Add(Signal{Name: "lodash", Type: types.SkillTypeLibrary, Confidence: 85})

	result := agg.Result()
	if len(result.Frameworks) != 1 || result.Frameworks[0].Name != "Next.js" {
		t.Errorf("frameworks = %+v, want display name Next.js", result.Frameworks)
	}
	if len(result.Libraries) != 1 || result.Libraries[0].Name != "Lodash" {
		t.Errorf("libraries = %+v, want capitalized Lodash", result.Libraries)
	}
}

func TestAggregatorBucketsAndSorting(t *testing.T) {
	agg := NewAggregator()
	agg.Add(Signal{Name: "Python", Type: types.SkillTypeLanguage, Confidence: 90, Lines: 500})
	agg.Add(Signal{Name: "Go", Type: types.SkillTypeLanguage, Confidence: 90, Lines: 200})
	agg.Add(Signal{Name: "Go", Type: types.SkillTypeLanguage, Confidence: 90, Lines: 100})
	agg.Add(Signal{Name: "TypeScript", Type: types.SkillTypeLanguage, Confidence: 60, Lines: 50})
	agg.Add(Signal{Name: "PostgreSQL", Type: types.SkillTypeDatabase, Confidence: 75})
	agg.Add(Signal{Name: "AWS", Type: types.SkillTypeCloud, Confidence: 75})

	result := agg.Result()
	if result.TotalSkillsFound != 5 {
		t.Fatalf("totalSkillsFound = %d, want 5", result.TotalSkillsFound)
	}
	langs := result.Languages
	if len(langs) != 3 {
		t.Fatalf("got %d languages, want 3", len(langs))
	}
	// Go outranks Python at equal confidence via count; TypeScript trails on
	// confidence.
	if langs[0].Name != "Go" || langs[1].Name != "Python" || langs[2].Name != "TypeScript" {
		t.Errorf("language order = [%s %s %s], want [Go Python TypeScript]",
			langs[0].Name, langs[1].Name, langs[2].Name)
	}
	if len(result.Databases) != 1 || result.Databases[0].Name != "PostgreSQL" {
		t.Errorf("databases = %+v", result.Databases)
	}
	if len(result.Cloud) != 1 || result.Cloud[0].Name != "AWS" {
		t.Errorf("cloud = %+v", result.Cloud)
	}
}

func TestAggregatorIgnoresBlankNames(t *testing.T) {
	agg := NewAggregator()
	agg.Add(Signal{Name: "  ", Type: types.SkillTypeLibrary, Confidence: 85})
	if agg.Len() != 0 {
		t.Fatalf("len = %d, want 0", agg.Len())
	}
}

func TestClassifyDependencyWordlists(t *testing.T) {
	cases := []struct {
		name string
		want types.SkillType
	}{
		{"react-dom", types.SkillTypeFramework},
		{"nestjs", types.SkillTypeFramework},
		{"axios", types.SkillTypeLibrary},
		{"chart.js", types.SkillTypeLibrary},
		{"webpack-cli", types.SkillTypeTool},
		{"prettier", types.SkillTypeTool},
		{"mongoose", types.SkillTypeDatabase},
		{"drizzle-orm", types.SkillTypeDatabase},
		{"aws-sdk", types.SkillTypeCloud},
		{"some-unheard-of-package", types.SkillTypeLibrary},
	}
	for _, tc := range cases {
		if got := ClassifyDependency(tc.name); got != tc.want {
			t.Errorf("ClassifyDependency(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassifyDependencyOrderFrameworksFirst(t *testing.T) {
	// "nextjs-redux-wrapper" hits both the frameworks and libraries lists;
	// frameworks is checked first.
	if got := ClassifyDependency("nextjs-redux-wrapper"); got != types.SkillTypeFramework {
		t.Fatalf("got %s, want FRAMEWORK", got)
	}
}
