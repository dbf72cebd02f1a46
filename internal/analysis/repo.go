package analysis

import (
	"encoding/json"

	types "github.com/0unveiled/backend/internal/domain"
)

// AnalyzeRepository runs the full single-repository pass: file classification
// and line counting, manifest parsing, code metrics, and the security scan.
// Every fetched file appears in the payload; unclassified files carry an
// empty language and still count toward total lines.
func AnalyzeRepository(repo types.RepositoryData, files []SourceFile) *types.RepoAnalysisV1 {
	analyzed := make([]types.AnalyzedFile, 0, len(files))
	totalLines := 0
	for _, f := range files {
		lang, _ := ClassifyFile(f.Path)
		lines := CountLines(f.Content)
		if f.Content == "" {
			lines = EstimateLines(f.Size)
		}
		analyzed = append(analyzed, types.AnalyzedFile{
			Name:     f.Path,
			Language: lang,
			Lines:    lines,
		})
		totalLines += lines
	}
	deps := ParseManifests(files)
	metrics, quality := ComputeRepoMetrics(files, totalLines)
	return &types.RepoAnalysisV1{
		Repository:   repo,
		Files:        analyzed,
		Dependencies: deps,
		Metrics:      metrics,
		Quality:      quality,
		Security:     AnalyzeSecurity(files, deps),
	}
}

// RepoSignals derives every aggregation signal from one repository payload:
// language signals for classified files, dependency signals, file-pattern
// matches, and keyword matches over the serialized payload.
func RepoSignals(payload *types.RepoAnalysisV1) []Signal {
	var signals []Signal
	for _, f := range payload.Files {
		if f.Language != "" {
			signals = append(signals, LanguageSignal(f.Language, f.Lines))
		}
		signals = append(signals, DetectFilePatterns(f.Name)...)
	}
	signals = append(signals, ExtractDependencies(payload.Dependencies)...)
	if raw, err := json.Marshal(payload); err == nil {
		signals = append(signals, DetectKeywordPatterns(string(raw))...)
	}
	return signals
}
