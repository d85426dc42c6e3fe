package blocks

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed licenses.yaml
var licensesYAML []byte

// License is an SPDX catalog entry
type License struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

var (
	catalog     map[string]License
	catalogErr  error
	catalogOnce sync.Once
)

// LookupLicense returns the catalog entry for an SPDX identifier
func LookupLicense(id string) (License, bool) {
	catalogOnce.Do(func() {
		catalog = make(map[string]License)
		if err := yaml.Unmarshal(licensesYAML, &catalog); err != nil {
			catalogErr = fmt.Errorf("failed to parse license catalog: %w", err)
		}
	})
	if catalogErr != nil {
		return License{}, false
	}
	license, ok := catalog[id]
	return license, ok
}

// licenseName returns the catalog name of id, or id itself when unknown
func licenseName(id string) string {
	if license, ok := LookupLicense(id); ok {
		return license.Name
	}
	return id
}
