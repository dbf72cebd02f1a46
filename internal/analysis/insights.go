package analysis

import (
	"fmt"

	types "github.com/0unveiled/backend/internal/domain"
)

const maxInsightsPerList = 4

// GenerateInsights derives profile strengths, gaps and recommendations from
// aggregate stats. Each list is capped at four entries and falls back to a
// single default when nothing triggers.
func GenerateInsights(stats types.ProfileStats) types.Insights {
	var strengths []string
	if stats.TotalRepos >= 10 {
		strengths = append(strengths, fmt.Sprintf("Extensive project portfolio with %d repositories", stats.TotalRepos))
	}
	if stats.TotalStars > 50 {
		strengths = append(strengths, fmt.Sprintf("Well-received open source work (%d stars)", stats.TotalStars))
	}
	if stats.AvgQuality >= 75 {
		strengths = append(strengths, "Consistently high code quality")
	}
	if stats.LanguageCount >= 4 {
		strengths = append(strengths, fmt.Sprintf("Polyglot developer (%d languages)", stats.LanguageCount))
	}
	if stats.ExperienceYears > 3 {
		strengths = append(strengths, fmt.Sprintf("Seasoned professional with %d+ years of experience", stats.ExperienceYears))
	}

	var gaps []string
	if stats.AvgSecurity < 70 {
		gaps = append(gaps, "Security practices could be strengthened")
	}
	if stats.AvgComplexity > 70 {
		gaps = append(gaps, "Several projects carry high complexity")
	}
	if stats.LanguageCount < 2 {
		gaps = append(gaps, "Limited language diversity")
	}
	if stats.TotalSkills < 5 {
		gaps = append(gaps, "Narrow detected skill set")
	}

	var recs []string
	if stats.TotalRepos < 3 {
		recs = append(recs, "Showcase more repositories to strengthen your profile")
	}
	if stats.AvgQuality < 60 {
		recs = append(recs, "Invest in tests and refactoring to raise code quality")
	}
	if stats.CloudSkillCount == 0 {
		recs = append(recs, "Add cloud deployment experience")
	}
	if stats.ExperienceYears <= 3 {
		recs = append(recs, "Contribute to open source to accelerate growth")
	}

	return types.Insights{
		Strengths:       capInsights(strengths, "Active developer profile"),
		SkillGaps:       capInsights(gaps, "No significant gaps detected"),
		Recommendations: capInsights(recs, "Keep your portfolio up to date"),
	}
}

func capInsights(items []string, fallback string) []string {
	if len(items) == 0 {
		return []string{fallback}
	}
	if len(items) > maxInsightsPerList {
		return items[:maxInsightsPerList]
	}
	return items
}

// ScoreColor maps a 0-100 score to the UI badge class.
func ScoreColor(score float64) string {
	switch {
	case score >= 80:
		return "text-green-500"
	case score >= 60:
		return "text-yellow-500"
	default:
		return "text-red-500"
	}
}
