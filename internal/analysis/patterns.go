package analysis

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/0unveiled/backend/internal/domain"
)

//go:embed rules.yaml
var rulesFS embed.FS

type yamlRuleFile struct {
	FileRules    []yamlFileRule    `yaml:"file_rules"`
	KeywordRules []yamlKeywordRule `yaml:"keyword_rules"`
}

type yamlFileRule struct {
	Pattern    string `yaml:"pattern"`
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Confidence int    `yaml:"confidence"`
}

type yamlKeywordRule struct {
	Keywords   []string `yaml:"keywords"`
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Confidence int      `yaml:"confidence"`
}

type fileRule struct {
	re         *regexp.Regexp
	name       string
	kind       types.SkillType
	confidence int
}

type keywordRule struct {
	keywords   []string
	name       string
	kind       types.SkillType
	confidence int
}

type ruleSet struct {
	files    []fileRule
	keywords []keywordRule
}

var patternRules = mustParseRules()

func mustParseRules() *ruleSet {
	data, err := rulesFS.ReadFile("rules.yaml")
	if err != nil {
		panic(fmt.Sprintf("analysis: read embedded rules.yaml: %v", err))
	}
	var raw yamlRuleFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		panic(fmt.Sprintf("analysis: parse embedded rules.yaml: %v", err))
	}
	rs := &ruleSet{}
	for _, r := range raw.FileRules {
		kind := types.SkillType(r.Type)
		if !kind.Valid() {
			panic(fmt.Sprintf("analysis: rules.yaml file rule %q has invalid type %q", r.Name, r.Type))
		}
		rs.files = append(rs.files, fileRule{
			re:         regexp.MustCompile(r.Pattern),
			name:       r.Name,
			kind:       kind,
			confidence: r.Confidence,
		})
	}
	for _, r := range raw.KeywordRules {
		kind := types.SkillType(r.Type)
		if !kind.Valid() {
			panic(fmt.Sprintf("analysis: rules.yaml keyword rule %q has invalid type %q", r.Name, r.Type))
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kws = append(kws, strings.ToLower(kw))
		}
		rs.keywords = append(rs.keywords, keywordRule{
			keywords:   kws,
			name:       r.Name,
			kind:       kind,
			confidence: r.Confidence,
		})
	}
	return rs
}

// DetectFilePatterns matches one repository-relative path against the file
// rule table. A rule matches on the base name or the full path; multiple
// rules may match and all contribute.
func DetectFilePatterns(relPath string) []Signal {
	base := path.Base(relPath)
	var signals []Signal
	for _, rule := range patternRules.files {
		if rule.re.MatchString(base) || rule.re.MatchString(relPath) {
			signals = append(signals, Signal{
				Name:       rule.name,
				Type:       rule.kind,
				Confidence: rule.confidence,
			})
		}
	}
	return signals
}

// DetectKeywordPatterns scans the serialized analysis payload for cloud and
// database keywords. Each rule contributes at most one signal per scan.
func DetectKeywordPatterns(payload string) []Signal {
	lower := strings.ToLower(payload)
	var signals []Signal
	for _, rule := range patternRules.keywords {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				signals = append(signals, Signal{
					Name:       rule.name,
					Type:       rule.kind,
					Confidence: rule.confidence,
				})
				break
			}
		}
	}
	return signals
}
