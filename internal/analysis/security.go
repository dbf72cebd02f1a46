package analysis

import (
	"fmt"
	"math"
	"path"
	"regexp"
	"sort"
	"strings"

	types "github.com/0unveiled/backend/internal/domain"
)

// Severity buckets a security finding for scoring.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SecurityFinding is one detected issue. VulnDep marks high-severity findings
// sourced from the dependency manifest, which deduct at half weight.
type SecurityFinding struct {
	Severity Severity
	VulnDep  bool
	Path     string
	Detail   string
}

var secretPattern = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)\s*[:=]\s*['"][A-Za-z0-9_\-]{12,}`)

// Packages with a compromised-release history. Presence in a manifest is
// worth flagging regardless of pinned version; a real audit feed would
// replace this table.
var vulnerableDependencyTable = map[string]string{
	"event-stream":   "3.3.6 shipped a malicious payload",
	"flatmap-stream": "malicious package removed from npm",
	"ua-parser-js":   "compromised releases (2021)",
	"node-ipc":       "releases with destructive payloads (2022)",
	"coa":            "compromised releases (2021)",
	"rc":             "compromised releases (2021)",
}

var highRiskSinks = []string{"dangerouslySetInnerHTML", "document.write(", "eval("}

var mediumRiskSinks = []string{"pickle.loads(", "yaml.load(", "os.system(", "shell_exec("}

var sensitiveFileExts = map[string]bool{
	".pem":      true,
	".key":      true,
	".p12":      true,
	".pfx":      true,
	".keystore": true,
	".jks":      true,
}

var testPathMarkers = []string{"test", "spec", "fixture", "mock"}

func isTestPath(relPath string) bool {
	lower := strings.ToLower(relPath)
	for _, marker := range testPathMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ScanFileSecurity inspects one file for secret literals, dangerous sinks and
// sensitive artifacts. Secret matches inside test or fixture paths are
// ignored.
func ScanFileSecurity(file SourceFile) []SecurityFinding {
	var findings []SecurityFinding
	base := path.Base(file.Path)
	if sensitiveFileExts[strings.ToLower(path.Ext(base))] || strings.HasPrefix(base, ".env") {
		findings = append(findings, SecurityFinding{
			Severity: SeverityLow,
			Path:     file.Path,
			Detail:   "sensitive file committed to the repository",
		})
	}
	if file.Content == "" {
		return findings
	}
	if !isTestPath(file.Path) {
		for range secretPattern.FindAllString(file.Content, -1) {
			findings = append(findings, SecurityFinding{
				Severity: SeverityCritical,
				Path:     file.Path,
				Detail:   "hardcoded secret",
			})
		}
	}
	for _, sink := range highRiskSinks {
		if strings.Contains(file.Content, sink) {
			findings = append(findings, SecurityFinding{
				Severity: SeverityHigh,
				Path:     file.Path,
				Detail:   fmt.Sprintf("use of %s", strings.TrimSuffix(sink, "(")),
			})
		}
	}
	for _, sink := range mediumRiskSinks {
		if strings.Contains(file.Content, sink) {
			findings = append(findings, SecurityFinding{
				Severity: SeverityMedium,
				Path:     file.Path,
				Detail:   fmt.Sprintf("use of %s", strings.TrimSuffix(sink, "(")),
			})
		}
	}
	return findings
}

// ScanVulnerableDependencies flags manifest entries with a known-compromised
// history.
func ScanVulnerableDependencies(deps map[string][]string) []SecurityFinding {
	var findings []SecurityFinding
	for section, names := range deps {
		if !dependencySections[section] {
			continue
		}
		for _, name := range names {
			reason, ok := vulnerableDependencyTable[strings.ToLower(name)]
			if !ok {
				continue
			}
			findings = append(findings, SecurityFinding{
				Severity: SeverityHigh,
				VulnDep:  true,
				Path:     section,
				Detail:   fmt.Sprintf("%s: %s", name, reason),
			})
		}
	}
	return findings
}

// SecurityPosture captures repo hygiene signals that earn score bonuses.
type SecurityPosture struct {
	HasSecurityConfig bool
	HasLockfile       bool
	HasCI             bool
}

var lockfileNames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"go.sum":            true,
	"cargo.lock":        true,
	"poetry.lock":       true,
	"pipfile.lock":      true,
	"composer.lock":     true,
	"gemfile.lock":      true,
}

// DetectSecurityPosture scans the file listing for hygiene markers.
func DetectSecurityPosture(files []SourceFile) SecurityPosture {
	var posture SecurityPosture
	for _, f := range files {
		base := strings.ToLower(path.Base(f.Path))
		switch base {
		case "dependabot.yml", "dependabot.yaml", "renovate.json", "security.md":
			posture.HasSecurityConfig = true
		case ".gitlab-ci.yml", "jenkinsfile":
			posture.HasCI = true
		}
		if lockfileNames[base] {
			posture.HasLockfile = true
		}
		if strings.HasPrefix(f.Path, ".github/workflows/") {
			posture.HasCI = true
		}
	}
	return posture
}

// Per-severity deduction weights and counting caps.
const (
	criticalWeight = 30.0
	highWeight     = 15.0
	mediumWeight   = 7.0
	lowWeight      = 2.0

	criticalCap = 2
	highCap     = 3
	mediumCap   = 3
	lowCap      = 2
)

// ComputeSecurityScore folds findings and posture into the 0-100 repo score:
// capped per-severity deductions from 100, hygiene bonuses, then an 80/20
// blend with the dependency sub-score.
func ComputeSecurityScore(findings []SecurityFinding, posture SecurityPosture) types.RepoSecurity {
	var criticals, highs, mediums, lows []SecurityFinding
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			criticals = append(criticals, f)
		case SeverityHigh:
			highs = append(highs, f)
		case SeverityMedium:
			mediums = append(mediums, f)
		case SeverityLow:
			lows = append(lows, f)
		}
	}
	// Full-weight highs count before half-weight dependency findings.
	sort.SliceStable(highs, func(i, j int) bool {
		return !highs[i].VulnDep && highs[j].VulnDep
	})

	score := 100.0
	score -= float64(min(len(criticals), criticalCap)) * criticalWeight
	for i, f := range highs {
		if i >= highCap {
			break
		}
		if f.VulnDep {
			score -= highWeight / 2
		} else {
			score -= highWeight
		}
	}
	score -= float64(min(len(mediums), mediumCap)) * mediumWeight
	score -= float64(min(len(lows), lowCap)) * lowWeight

	if posture.HasSecurityConfig {
		score += 5
	}
	if posture.HasLockfile {
		score += 10
	}
	if len(criticals) == 0 {
		score += 15
	}
	if posture.HasCI {
		score += 10
	}

	vulnDeps := 0
	for _, f := range highs {
		if f.VulnDep {
			vulnDeps++
		}
	}
	depScore := math.Max(0, 100-20*float64(vulnDeps))

	final := 0.8*score + 0.2*depScore
	return types.RepoSecurity{SecurityScore: math.Max(0, math.Min(100, final))}
}

// AnalyzeSecurity runs the full security pass over one repository.
func AnalyzeSecurity(files []SourceFile, deps map[string][]string) types.RepoSecurity {
	var findings []SecurityFinding
	for _, f := range files {
		findings = append(findings, ScanFileSecurity(f)...)
	}
	findings = append(findings, ScanVulnerableDependencies(deps)...)
	return ComputeSecurityScore(findings, DetectSecurityPosture(files))
}
