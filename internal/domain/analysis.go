package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RepositoryData is the per-repository metadata pulled from the code host for
// one analysis run. Never persisted.
type RepositoryData struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Size        int    `json:"size"`
	URL         string `json:"html_url"`
}

// AnalyzedFile is one classified file inside a repository analysis payload.
type AnalyzedFile struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Lines    int    `json:"lines"`
}

type RepoMetrics struct {
	TotalLines int     `json:"total_lines"`
	Complexity float64 `json:"complexity"`
}

type RepoQuality struct {
	OverallScore float64 `json:"overall_score"`
}

type RepoSecurity struct {
	SecurityScore float64 `json:"security_score"`
}

// RepoAnalysisV1 is version 1 of the single-repository analyzer payload.
type RepoAnalysisV1 struct {
	Repository   RepositoryData      `json:"repository"`
	Files        []AnalyzedFile      `json:"files"`
	Dependencies map[string][]string `json:"dependencies"`
	Metrics      RepoMetrics         `json:"metrics"`
	Quality      RepoQuality         `json:"quality"`
	Security     RepoSecurity        `json:"security"`
}

// AnalyzerEnvelope wraps analyzer payloads with an explicit version tag so
// consumers match exhaustively instead of probing optional fields.
type AnalyzerEnvelope struct {
	Version int             `json:"version"`
	V1      *RepoAnalysisV1 `json:"v1,omitempty"`
}

// DecodeAnalyzerPayload parses an envelope and returns the concrete payload.
// Unknown versions are an error, never a silent nil.
func DecodeAnalyzerPayload(raw []byte) (*RepoAnalysisV1, error) {
	var env AnalyzerEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Version {
	case 1:
		if env.V1 == nil {
			return nil, fmt.Errorf("analyzer payload v1 missing body")
		}
		return env.V1, nil
	default:
		return nil, fmt.Errorf("unsupported analyzer payload version %d", env.Version)
	}
}

// TechStackEntry is the aggregation bookkeeping for one skill key.
type TechStackEntry struct {
	Type        SkillType `json:"type"`
	Count       int       `json:"count"`
	Confidence  int       `json:"confidence"`
	LinesOfCode int       `json:"linesOfCode"`
}

// NamedSkill is a bucketed, display-ready aggregation entry.
type NamedSkill struct {
	Name        string    `json:"name"`
	Type        SkillType `json:"type"`
	Count       int       `json:"count"`
	Confidence  int       `json:"confidence"`
	LinesOfCode int       `json:"linesOfCode"`
}

// TechStackAnalysis partitions the aggregated map into the six typed buckets,
// each sorted descending by (confidence, count).
type TechStackAnalysis struct {
	Languages        []NamedSkill `json:"languages"`
	Frameworks       []NamedSkill `json:"frameworks"`
	Libraries        []NamedSkill `json:"libraries"`
	Tools            []NamedSkill `json:"tools"`
	Databases        []NamedSkill `json:"databases"`
	Cloud            []NamedSkill `json:"cloud"`
	TotalSkillsFound int          `json:"totalSkillsFound"`
}

// ProfileStats is the aggregate input to insight generation.
type ProfileStats struct {
	TotalRepos      int     `json:"totalRepos"`
	TotalStars      int     `json:"totalStars"`
	AvgQuality      float64 `json:"avgQuality"`
	AvgComplexity   float64 `json:"avgComplexity"`
	AvgSecurity     float64 `json:"avgSecurity"`
	LanguageCount   int     `json:"languageCount"`
	TotalSkills     int     `json:"totalSkills"`
	CloudSkillCount int     `json:"cloudSkillCount"`
	ExperienceYears int     `json:"experienceYears"`
	EducationYears  int     `json:"educationYears"`
}

type Insights struct {
	Strengths       []string `json:"strengths"`
	SkillGaps       []string `json:"skillGaps"`
	Recommendations []string `json:"recommendations"`
}

// RepoResult is the per-repository slice of the final analysis payload.
type RepoResult struct {
	Repository    string  `json:"repository"`
	TotalLines    int     `json:"totalLines"`
	Complexity    float64 `json:"complexity"`
	QualityScore  float64 `json:"qualityScore"`
	SecurityScore float64 `json:"securityScore"`
}

// AnalysisResult is the terminal payload streamed to the client and used for
// the skill write-back.
type AnalysisResult struct {
	Username             string            `json:"username"`
	AnalyzedAt           time.Time         `json:"analyzedAt"`
	ProfileOnly          bool              `json:"profileOnly"`
	RepositoriesAnalyzed int               `json:"repositoriesAnalyzed"`
	Repositories         []RepoResult      `json:"repositories"`
	TechStackAnalysis    TechStackAnalysis `json:"techStackAnalysis"`
	Insights             Insights          `json:"insights"`
	Stats                ProfileStats      `json:"stats"`
}

// ProgressEvent is one SSE frame of the analysis stream.
type ProgressEvent struct {
	Step     string          `json:"step,omitempty"`
	Progress int             `json:"progress"`
	Result   *AnalysisResult `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}
