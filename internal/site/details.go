// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package site builds the whole output tree: it loads the details file,
// turns every listed document into a Project and writes the pages and the
// index.
package site

import (
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ErrNoProjects is returned when the details file has no projects list.
var ErrNoProjects = errors.New("details file has no projects list")

// Details is the parsed details file. Projects lists the document URLs in
// build order; every other top-level key lands in Shared.
type Details struct {
	Projects []string       `yaml:"projects"`
	Shared   map[string]any `yaml:",inline"`
}

// LoadDetails reads the details file at path.
func LoadDetails(path string) (*Details, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading details file: %w", err)
	}
	var d Details
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing details file %s: %w", path, err)
	}
	if d.Projects == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoProjects)
	}
	if d.Shared == nil {
		d.Shared = map[string]any{}
	}
	return &d, nil
}
