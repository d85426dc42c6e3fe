package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/tidwall/gjson"
)

// ManifestFile is the package manifest name looked up in a project
const ManifestFile = "package.json"

// workspaceMarkers are files whose presence marks a monorepo
var workspaceMarkers = []string{"pnpm-workspace.yaml", "vlt-workspaces.json"}

// Package holds the manifest fields used by README templates
type Package struct {
	Name        string
	Description string
	License     string
	Private     bool
	Workspaces  []string
	// Path is the manifest path relative to the project root
	Path string
}

// Parse reads a package manifest
func Parse(data []byte, path string) (*Package, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in %s", path)
	}

	doc := gjson.ParseBytes(data)
	pkg := &Package{
		Name:        doc.Get("name").String(),
		Description: doc.Get("description").String(),
		License:     doc.Get("license").String(),
		Private:     doc.Get("private").Bool(),
		Path:        path,
	}

	// workspaces is either a list or {"packages": [...]}
	workspaces := doc.Get("workspaces")
	if workspaces.IsObject() {
		workspaces = workspaces.Get("packages")
	}
	for _, w := range workspaces.Array() {
		pkg.Workspaces = append(pkg.Workspaces, w.String())
	}

	return pkg, nil
}

// Load reads the root manifest of the project in dir
func Load(dir string) (*Package, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data, ManifestFile)
}

// DetectMonorepo reports whether the project declares workspaces
func DetectMonorepo(dir string, root *Package) bool {
	if root != nil && len(root.Workspaces) > 0 {
		return true
	}
	for _, marker := range workspaceMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// loadIgnore compiles the project's root .gitignore; nil when there is none
func loadIgnore(dir string) (*ignore.GitIgnore, error) {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}
	return gi, nil
}

// FindPackages returns the public nested packages of the project, sorted by path.
// node_modules, dot-directories and paths matched by the root .gitignore are
// skipped; the root manifest is excluded.
func FindPackages(dir string) ([]*Package, error) {
	gi, err := loadIgnore(dir)
	if err != nil {
		return nil, err
	}

	var packages []*Package

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if name == "node_modules" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && (gi.MatchesPath(rel) || gi.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() != ManifestFile || rel == ManifestFile {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", rel, err)
		}
		pkg, err := Parse(data, rel)
		if err != nil {
			return err
		}
		if !pkg.Private {
			packages = append(packages, pkg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan packages: %w", err)
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Path < packages[j].Path
	})
	return packages, nil
}
