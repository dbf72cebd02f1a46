package domain

import (
	"strings"
	"testing"
)

func TestDecodeAnalyzerPayloadV1(t *testing.T) {
	raw := []byte(`{
		"version": 1,
		"v1": {
			"repository": {"name": "demo", "stargazers_count": 7},
			"files": [{"name": "main.go", "language": "Go", "lines": 12}],
			"metrics": {"total_lines": 12, "complexity": 3.5},
			"quality": {"overall_score": 81.5},
			"security": {"security_score": 92}
		}
	}`)
	payload, err := DecodeAnalyzerPayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Repository.Name != "demo" || payload.Repository.Stars != 7 {
		t.Errorf("repository = %+v", payload.Repository)
	}
	if len(payload.Files) != 1 || payload.Files[0].Language != "Go" {
		t.Errorf("files = %+v", payload.Files)
	}
	if payload.Metrics.TotalLines != 12 || payload.Quality.OverallScore != 81.5 {
		t.Errorf("metrics/quality = %+v %+v", payload.Metrics, payload.Quality)
	}
}

func TestDecodeAnalyzerPayloadUnknownVersion(t *testing.T) {
	_, err := DecodeAnalyzerPayload([]byte(`{"version": 2, "v1": {}}`))
	if err == nil {
		t.Fatal("expected error for unknown version")
	}
	if !strings.Contains(err.Error(), "version") {
		t.Fatalf("error = %v, want version mention", err)
	}
}

func TestDecodeAnalyzerPayloadMissingBody(t *testing.T) {
	_, err := DecodeAnalyzerPayload([]byte(`{"version": 1}`))
	if err == nil {
		t.Fatal("expected error for missing v1 body")
	}
}

func TestDecodeAnalyzerPayloadMalformed(t *testing.T) {
	_, err := DecodeAnalyzerPayload([]byte(`{nope`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
