package analysis

import (
	"reflect"
	"testing"
)

func TestParseManifestsPackageJSON(t *testing.T) {
	files := []SourceFile{{
		Path: "package.json",
		Size: 100,
		Content: `{
			"name": "demo",
			"dependencies": {"react": "^18.0.0", "axios": "^1.2.0"},
			"devDependencies": {"jest": "^29.0.0"},
			"peerDependencies": {"vue": "^3.0.0"}
		}`,
	}}
	deps := ParseManifests(files)
	if !reflect.DeepEqual(deps["dependencies"], []string{"axios", "react"}) {
		t.Errorf("dependencies = %v", deps["dependencies"])
	}
	if !reflect.DeepEqual(deps["devDependencies"], []string{"jest"}) {
		t.Errorf("devDependencies = %v", deps["devDependencies"])
	}
	if !reflect.DeepEqual(deps["peerDependencies"], []string{"vue"}) {
		t.Errorf("peerDependencies = %v", deps["peerDependencies"])
	}
}

func TestParseManifestsRequirements(t *testing.T) {
	files := []SourceFile{{
		Path: "requirements.txt",
		Size: 80,
		Content: `# pinned
django==4.2.1
requests>=2.28
fastapi[all]~=0.100
-r extra.txt

numpy`,
	}}
	deps := ParseManifests(files)
	want := []string{"django", "requests", "fastapi", "numpy"}
	if !reflect.DeepEqual(deps["requirements"], want) {
		t.Errorf("requirements = %v, want %v", deps["requirements"], want)
	}
}

func TestParseManifestsPipfile(t *testing.T) {
	files := []SourceFile{{
		Path: "Pipfile",
		Size: 60,
		Content: `[[source]]
url = "https://pypi.org/simple"

[packages]
flask = "*"
sqlalchemy = ">=2.0"

[dev-packages]
pytest = "*"

[requires]
python_version = "3.11"`,
	}}
	deps := ParseManifests(files)
	want := []string{"flask", "sqlalchemy", "pytest"}
	if !reflect.DeepEqual(deps["packages"], want) {
		t.Errorf("packages = %v, want %v", deps["packages"], want)
	}
}

func TestParseManifestsIgnoresBrokenJSON(t *testing.T) {
	files := []SourceFile{{Path: "package.json", Size: 5, Content: "{not json"}}
	if deps := ParseManifests(files); deps != nil {
		t.Fatalf("deps = %v, want nil", deps)
	}
}

func TestParseManifestsNestedPaths(t *testing.T) {
	files := []SourceFile{{
		Path:    "services/web/package.json",
		Size:    40,
		Content: `{"dependencies": {"svelte": "^4.0.0"}}`,
	}}
	deps := ParseManifests(files)
	if !reflect.DeepEqual(deps["dependencies"], []string{"svelte"}) {
		t.Fatalf("dependencies = %v", deps["dependencies"])
	}
}
