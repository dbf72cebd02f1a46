// Package analysis holds the pure tech-stack inference pipeline: per-file
// language classification, dependency extraction, pattern detection,
// aggregation into typed skill buckets, per-repository code metrics, and
// insight generation. Everything here is deterministic and side-effect free;
// the orchestration lives in internal/services.
package analysis

import (
	types "github.com/0unveiled/backend/internal/domain"
)

// Signal is one detected technology indication. Confidence is the floor
// assigned by the detection method; the aggregator merges repeats by max.
type Signal struct {
	Name       string
	Type       types.SkillType
	Confidence int
	Lines      int
}

// SourceFile is one fetched repository file handed to the analyzers. Content
// is empty when the fetcher skipped the blob (binary, oversized, or past the
// per-repo cap); Size always comes from the tree listing.
type SourceFile struct {
	Path    string
	Size    int
	Content string
}

// Confidence floors for detection methods whose value is fixed in code; the
// pattern rule confidences live in rules.yaml.
const (
	languageConfidence   = 90
	dependencyConfidence = 85
)
