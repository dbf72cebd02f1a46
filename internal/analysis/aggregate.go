package analysis

import (
	"sort"
	"strings"

	types "github.com/0unveiled/backend/internal/domain"
)

// Wordlists checked in order; the first category containing a matching keyword
// wins, and names matching nothing default to LIBRARY.
var classifierWordlists = []struct {
	kind  types.SkillType
	words []string
}{
	{types.SkillTypeFramework, []string{
		"react", "vue", "angular", "svelte", "next", "nuxt", "express",
		"fastify", "nest", "django", "flask", "fastapi", "rails", "spring",
		"laravel", "gin", "echo", "fiber",
	}},
	{types.SkillTypeLibrary, []string{
		"lodash", "axios", "requests", "numpy", "pandas", "moment", "chart",
		"three", "redux", "rxjs", "jquery", "underscore",
	}},
	{types.SkillTypeTool, []string{
		"webpack", "vite", "babel", "eslint", "prettier", "jest", "mocha",
		"cypress", "gulp", "grunt", "rollup", "nodemon", "tsc",
		"typescript-compiler",
	}},
	{types.SkillTypeDatabase, []string{
		"postgres", "pg", "mysql", "sqlite", "mongo", "mongoose", "redis",
		"prisma", "sequelize", "typeorm", "knex", "drizzle",
	}},
	{types.SkillTypeCloud, []string{
		"aws", "azure", "gcp", "google-cloud", "firebase", "supabase",
		"vercel", "netlify", "serverless", "amplify",
	}},
}

// ClassifyDependency buckets a dependency name by keyword-substring lookup
// over the category wordlists.
func ClassifyDependency(name string) types.SkillType {
	lower := strings.ToLower(name)
	for _, wl := range classifierWordlists {
		for _, word := range wl.words {
			if strings.Contains(lower, word) {
				return wl.kind
			}
		}
	}
	return types.SkillTypeLibrary
}

type aggEntry struct {
	display string
	cased   bool
	entry   types.TechStackEntry
}

// Aggregator merges signals from every repository of one user into a map
// keyed by lower-cased skill name.
type Aggregator struct {
	entries map[string]*aggEntry
}

func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[string]*aggEntry)}
}

// Add merges one signal: count += 1, confidence = max, linesOfCode += lines.
// The first signal seen for a key fixes its type; a signal carrying display
// casing (e.g. "Next.js") fixes the stored name.
func (a *Aggregator) Add(sig Signal) {
	name := strings.TrimSpace(sig.Name)
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	e, ok := a.entries[key]
	if !ok {
		e = &aggEntry{display: name, entry: types.TechStackEntry{Type: sig.Type}}
		a.entries[key] = e
	}
	e.entry.Count++
	if sig.Confidence > e.entry.Confidence {
		e.entry.Confidence = sig.Confidence
	}
	e.entry.LinesOfCode += sig.Lines
	if !e.cased && name != key {
		e.display = name
		e.cased = true
	}
}

func (a *Aggregator) AddAll(signals []Signal) {
	for _, sig := range signals {
		a.Add(sig)
	}
}

// Len reports the number of distinct skill keys seen so far.
func (a *Aggregator) Len() int {
	return len(a.entries)
}

// Result partitions the merged map into the six typed buckets, each sorted
// descending by (confidence, count).
func (a *Aggregator) Result() types.TechStackAnalysis {
	var out types.TechStackAnalysis
	for key, e := range a.entries {
		name := e.display
		if !e.cased {
			name = capitalize(key)
		}
		skill := types.NamedSkill{
			Name:        name,
			Type:        e.entry.Type,
			Count:       e.entry.Count,
			Confidence:  e.entry.Confidence,
			LinesOfCode: e.entry.LinesOfCode,
		}
		switch e.entry.Type {
		case types.SkillTypeLanguage:
			out.Languages = append(out.Languages, skill)
		case types.SkillTypeFramework:
			out.Frameworks = append(out.Frameworks, skill)
		case types.SkillTypeTool:
			out.Tools = append(out.Tools, skill)
		case types.SkillTypeDatabase:
			out.Databases = append(out.Databases, skill)
		case types.SkillTypeCloud:
			out.Cloud = append(out.Cloud, skill)
		default:
			out.Libraries = append(out.Libraries, skill)
		}
	}
	for _, bucket := range [][]types.NamedSkill{
		out.Languages, out.Frameworks, out.Libraries,
		out.Tools, out.Databases, out.Cloud,
	} {
		sortBucket(bucket)
	}
	out.TotalSkillsFound = len(a.entries)
	return out
}

func sortBucket(skills []types.NamedSkill) {
	sort.Slice(skills, func(i, j int) bool {
		if skills[i].Confidence != skills[j].Confidence {
			return skills[i].Confidence > skills[j].Confidence
		}
		if skills[i].Count != skills[j].Count {
			return skills[i].Count > skills[j].Count
		}
		return skills[i].Name < skills[j].Name
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
