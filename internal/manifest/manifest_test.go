package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aescanero/dago-readme/internal/engine"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name":"root","description":"Root project","license":"MIT","workspaces":["packages/*"]}`)
	writeFile(t, filepath.Join(dir, "packages/b/package.json"), `{"name":"b","description":"B pkg","license":"ISC"}`)
	writeFile(t, filepath.Join(dir, "packages/a/package.json"), `{"name":"a","description":"A pkg","license":"MIT"}`)
	writeFile(t, filepath.Join(dir, "packages/secret/package.json"), `{"name":"secret","private":true}`)
	writeFile(t, filepath.Join(dir, "node_modules/dep/package.json"), `{"name":"dep"}`)
	writeFile(t, filepath.Join(dir, ".cache/x/package.json"), `{"name":"cached"}`)
	return dir
}

func TestParse(t *testing.T) {
	pkg, err := Parse([]byte(`{"name":"x","license":"Apache-2.0","private":true,"workspaces":{"packages":["a","b"]}}`), "package.json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := &Package{Name: "x", License: "Apache-2.0", Private: true, Workspaces: []string{"a", "b"}, Path: "package.json"}
	if diff := cmp.Diff(want, pkg); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}

	if _, err := Parse([]byte(`{"name":`), "broken.json"); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestFindPackages(t *testing.T) {
	dir := newProject(t)

	packages, err := FindPackages(dir)
	if err != nil {
		t.Fatalf("FindPackages returned error: %v", err)
	}

	var paths []string
	for _, pkg := range packages {
		paths = append(paths, pkg.Path)
	}
	want := []string{"packages/a/package.json", "packages/b/package.json"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestFindPackagesHonorsGitignore(t *testing.T) {
	dir := newProject(t)
	writeFile(t, filepath.Join(dir, ".gitignore"), "# build output\ndist/\n*.tmp\n")
	writeFile(t, filepath.Join(dir, "dist/package.json"), `{"name":"built"}`)
	writeFile(t, filepath.Join(dir, "scratch.tmp/package.json"), `{"name":"scratch"}`)

	packages, err := FindPackages(dir)
	if err != nil {
		t.Fatalf("FindPackages returned error: %v", err)
	}

	var names []string
	for _, pkg := range packages {
		names = append(names, pkg.Name)
	}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Fatalf("ignored packages listed (-want +got):\n%s", diff)
	}
}

func TestDetectMonorepo(t *testing.T) {
	dir := t.TempDir()
	if DetectMonorepo(dir, &Package{}) {
		t.Fatalf("empty project should not be a monorepo")
	}
	if !DetectMonorepo(dir, &Package{Workspaces: []string{"a"}}) {
		t.Fatalf("workspaces should mark a monorepo")
	}

	writeFile(t, filepath.Join(dir, "pnpm-workspace.yaml"), "packages: []\n")
	if !DetectMonorepo(dir, &Package{}) {
		t.Fatalf("pnpm workspace file should mark a monorepo")
	}
}

func TestBuildContext(t *testing.T) {
	project, err := Discover(newProject(t))
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}

	data := BuildContext(project, map[string]string{KeyTitle: "Custom", KeyDescription: ""})

	if data[KeyTitle] != "Custom" {
		t.Fatalf("title override not applied: %v", data[KeyTitle])
	}
	if data[KeyDescription] != "Root project" {
		t.Fatalf("empty override should keep description, got %v", data[KeyDescription])
	}
	if data[KeyMonorepo] != true {
		t.Fatalf("expected monorepo")
	}

	packages, err := PackagesFrom(data)
	if err != nil {
		t.Fatalf("PackagesFrom returned error: %v", err)
	}
	want := []*Package{
		{Name: "a", Description: "A pkg", License: "MIT", Path: "packages/a/package.json"},
		{Name: "b", Description: "B pkg", License: "ISC", Path: "packages/b/package.json"},
	}
	if diff := cmp.Diff(want, packages); diff != "" {
		t.Fatalf("packages mismatch (-want +got):\n%s", diff)
	}
}

func TestPackagesFromInvalid(t *testing.T) {
	if _, err := PackagesFrom(engine.Context{KeyPackages: "nope"}); err == nil {
		t.Fatalf("expected error for string packages")
	}
	packages, err := PackagesFrom(engine.Context{})
	if err != nil || packages != nil {
		t.Fatalf("expected nil packages without error, got %v, %v", packages, err)
	}
}
