package analysis

var dependencySections = map[string]bool{
	"dependencies":     true,
	"devDependencies":  true,
	"peerDependencies": true,
	"requirements":     true,
	"packages":         true,
}

// ExtractDependencies turns manifest dependency listings into signals. Only
// recognized section keys contribute; anything else is skipped silently.
func ExtractDependencies(deps map[string][]string) []Signal {
	if len(deps) == 0 {
		return nil
	}
	var signals []Signal
	for section, names := range deps {
		if !dependencySections[section] {
			continue
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			signals = append(signals, Signal{
				Name:       name,
				Type:       ClassifyDependency(name),
				Confidence: dependencyConfidence,
			})
		}
	}
	return signals
}
