package analysis

import (
	"math"
	"strings"

	types "github.com/0unveiled/backend/internal/domain"
)

const (
	maxAnalyzableBytes = 750_000
	minifiedLineLength = 120
)

// Space-prefixed word tokens avoid counting keyword fragments inside
// identifiers; operators match bare.
var complexityTokens = []string{
	" if", " else", " for", " while", " switch", " case", " catch",
	"&&", "||", "?",
}

var commentPrefixes = []string{"//", "#", "/*", "*", "--", `"""`, "'''"}

// FileMetrics holds per-file measurements before repo-level aggregation.
type FileMetrics struct {
	TotalLines      int
	LinesOfCode     int
	CommentLines    int
	Complexity      float64
	Maintainability float64
}

// ShouldSkipFile filters blobs that would distort metrics: oversized files,
// binaries, and minified bundles (>60% long lines over >100 lines).
func ShouldSkipFile(content string, size int) bool {
	if size > maxAnalyzableBytes {
		return true
	}
	if content == "" {
		return true
	}
	if strings.ContainsRune(content, '\x00') {
		return true
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= 100 {
		return false
	}
	long := 0
	for _, ln := range lines {
		if len(ln) > minifiedLineLength {
			long++
		}
	}
	return float64(long)/float64(len(lines)) > 0.6
}

// AnalyzeFileMetrics measures one file. Unmeasurable content gets the neutral
// defaults (complexity 1, maintainability 50).
func AnalyzeFileMetrics(content string) FileMetrics {
	if content == "" {
		return FileMetrics{Complexity: 1, Maintainability: 50}
	}
	lines := strings.Split(content, "\n")
	total := len(lines)
	blank := 0
	comments := 0
	for _, ln := range lines {
		stripped := strings.TrimSpace(ln)
		if stripped == "" {
			blank++
			continue
		}
		for _, prefix := range commentPrefixes {
			if strings.HasPrefix(stripped, prefix) {
				comments++
				break
			}
		}
	}
	loc := total - blank - comments
	if loc < 0 {
		loc = 0
	}
	complexity := fileComplexity(content)
	return FileMetrics{
		TotalLines:      total,
		LinesOfCode:     loc,
		CommentLines:    comments,
		Complexity:      complexity,
		Maintainability: maintainabilityIndex(loc, complexity, comments),
	}
}

func fileComplexity(content string) float64 {
	lower := strings.ToLower(content)
	count := 0
	for _, tok := range complexityTokens {
		count += strings.Count(lower, tok)
	}
	return 1 + 0.5*float64(count)
}

// maintainabilityIndex is a lightweight MI approximation: bounded, monotonic,
// and cheap. Complexity is clamped to [1,10] before weighting.
func maintainabilityIndex(loc int, complexity float64, comments int) float64 {
	if loc <= 0 {
		return 50
	}
	comp := math.Min(10, math.Max(1, complexity))
	commentRatio := math.Max(0, math.Min(1, float64(comments)/float64(loc+comments)))
	score := 100 - comp*6 - math.Sqrt(float64(loc)) + commentRatio*15
	return math.Max(0, math.Min(100, score))
}

// ComputeRepoMetrics aggregates per-file measurements into the repo metrics
// and quality payloads. totalLines is supplied by the caller (sum over all
// classified files, estimated ones included); complexity averages over the
// measurable files and scales to 0-100.
func ComputeRepoMetrics(files []SourceFile, totalLines int) (types.RepoMetrics, types.RepoQuality) {
	var complexitySum, maintainabilitySum float64
	measured := 0
	for _, f := range files {
		if ShouldSkipFile(f.Content, f.Size) {
			continue
		}
		m := AnalyzeFileMetrics(f.Content)
		complexitySum += m.Complexity
		maintainabilitySum += m.Maintainability
		measured++
	}
	metrics := types.RepoMetrics{TotalLines: totalLines}
	quality := types.RepoQuality{OverallScore: 50}
	if measured > 0 {
		avg := complexitySum / float64(measured)
		metrics.Complexity = math.Min(100, avg*10)
		quality.OverallScore = maintainabilitySum / float64(measured)
	}
	return metrics, quality
}
