package manifest

import (
	"fmt"

	"github.com/aescanero/dago-readme/internal/engine"
)

// Context keys filled by BuildContext
const (
	KeyName        = "name"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyLicense     = "license"
	KeyMonorepo    = "monorepo"
	KeyPackages    = "packages"
)

// Project is everything discovered about a project directory
type Project struct {
	Dir      string
	Root     *Package
	Monorepo bool
	Packages []*Package
}

// Discover loads the root manifest, the monorepo flag and nested packages of dir
func Discover(dir string) (*Project, error) {
	root, err := Load(dir)
	if err != nil {
		return nil, err
	}

	packages, err := FindPackages(dir)
	if err != nil {
		return nil, err
	}

	return &Project{
		Dir:      dir,
		Root:     root,
		Monorepo: DetectMonorepo(dir, root),
		Packages: packages,
	}, nil
}

// BuildContext turns a project into a render context. Non-empty overrides
// replace the discovered values.
func BuildContext(project *Project, overrides map[string]string) engine.Context {
	packages := make([]interface{}, 0, len(project.Packages))
	for _, pkg := range project.Packages {
		packages = append(packages, map[string]interface{}{
			"name":        pkg.Name,
			"description": pkg.Description,
			"license":     pkg.License,
			"path":        pkg.Path,
		})
	}

	data := engine.Context{
		KeyName:        project.Root.Name,
		KeyTitle:       project.Root.Name,
		KeyDescription: project.Root.Description,
		KeyLicense:     project.Root.License,
		KeyMonorepo:    project.Monorepo,
		KeyPackages:    packages,
	}
	for key, value := range overrides {
		if value != "" {
			data[key] = value
		}
	}
	return data
}

// PackagesFrom reads the package list back out of a render context
func PackagesFrom(data engine.Context) ([]*Package, error) {
	raw, ok := data[KeyPackages]
	if !ok || raw == nil {
		return nil, nil
	}

	switch list := raw.(type) {
	case []*Package:
		return list, nil
	case []interface{}:
		packages := make([]*Package, 0, len(list))
		for i, item := range list {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("packages[%d]: expected object, got %T", i, item)
			}
			packages = append(packages, &Package{
				Name:        engine.Stringify(m["name"]),
				Description: engine.Stringify(m["description"]),
				License:     engine.Stringify(m["license"]),
				Path:        engine.Stringify(m["path"]),
			})
		}
		return packages, nil
	default:
		return nil, fmt.Errorf("packages: unsupported type %T", raw)
	}
}
