package analysis

import (
	"encoding/json"
	"path"
	"sort"
	"strings"
)

type packageJSON struct {
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// ParseManifests builds the dependency-section map from recognized manifest
// files: package.json, requirements*.txt, and Pipfile. Unparseable manifests
// are skipped.
func ParseManifests(files []SourceFile) map[string][]string {
	deps := make(map[string][]string)
	for _, f := range files {
		if f.Content == "" {
			continue
		}
		base := strings.ToLower(path.Base(f.Path))
		switch {
		case base == "package.json":
			parsePackageJSON(f.Content, deps)
		case strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt"):
			deps["requirements"] = append(deps["requirements"], parseRequirements(f.Content)...)
		case base == "pipfile":
			deps["packages"] = append(deps["packages"], parsePipfile(f.Content)...)
		}
	}
	if len(deps) == 0 {
		return nil
	}
	return deps
}

func parsePackageJSON(content string, deps map[string][]string) {
	var pkg packageJSON
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return
	}
	for section, m := range map[string]map[string]string{
		"dependencies":     pkg.Dependencies,
		"devDependencies":  pkg.DevDependencies,
		"peerDependencies": pkg.PeerDependencies,
	} {
		if len(m) == 0 {
			continue
		}
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		deps[section] = append(deps[section], names...)
	}
}

var requirementSeparators = []string{"==", ">=", "<=", "~=", "!=", ">", "<", "[", ";", " "}

func parseRequirements(content string) []string {
	var names []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		name := line
		for _, sep := range requirementSeparators {
			if idx := strings.Index(name, sep); idx >= 0 {
				name = name[:idx]
			}
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parsePipfile(content string) []string {
	var names []string
	inPackages := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			section := strings.Trim(line, "[]")
			inPackages = section == "packages" || section == "dev-packages"
			continue
		}
		if !inPackages || line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, _, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		name = strings.Trim(strings.TrimSpace(name), `"`)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
