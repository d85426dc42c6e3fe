// Package manifest discovers a project's package manifests and turns them into
// the render context consumed by README templates.
//
// Example usage:
//
//	project, err := manifest.Discover(cwd)
//	if err != nil {
//	    return err
//	}
//	data := manifest.BuildContext(project, map[string]string{"title": "My Project"})
package manifest
