// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines configuration shared by the docpress build stages.
package types

import (
	"fmt"
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "docpress/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds the retries on HTTP 429 and 503 responses. Zero, the
	// default, sends every request once.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// BuildConfig holds settings for one site build.
type BuildConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Details is the YAML file listing document URLs and shared site fields.
	Details string `json:"details" yaml:"details" mapstructure:"details"`

	// OutputDir is wiped and regenerated on every build.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// StaticDir is copied verbatim into OutputDir under its base name.
	// Empty disables the copy.
	StaticDir string `json:"static_dir" yaml:"static_dir" mapstructure:"static_dir"`

	// TemplatesDir holds PageTemplate and IndexTemplate.
	TemplatesDir string `json:"templates_dir" yaml:"templates_dir" mapstructure:"templates_dir"`

	// PageTemplate is rendered once per document (default "story.html").
	PageTemplate string `json:"page_template" yaml:"page_template" mapstructure:"page_template"`

	// IndexTemplate is rendered once into OutputDir/index.html (default "homepage.html").
	IndexTemplate string `json:"index_template" yaml:"index_template" mapstructure:"index_template"`

	// Manifest is the SQLite file recording the pages of the last build.
	// Empty disables the manifest.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty" mapstructure:"manifest"`
}

// Defaults for BuildConfig fields left empty.
const (
	DefaultDetails       = "details.yaml"
	DefaultOutputDir     = "docs"
	DefaultStaticDir     = "style"
	DefaultTemplatesDir  = "templates"
	DefaultPageTemplate  = "story.html"
	DefaultIndexTemplate = "homepage.html"
	DefaultTimeout       = 60 * time.Second
	DefaultUserAgent     = "docpress/0.1"
	DefaultMaxRetries    = 0
)

// WithDefaults returns a copy of c with empty fields set to their defaults.
// StaticDir and Manifest are left as given since empty disables them.
func (c BuildConfig) WithDefaults() BuildConfig {
	if c.Details == "" {
		c.Details = DefaultDetails
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.TemplatesDir == "" {
		c.TemplatesDir = DefaultTemplatesDir
	}
	if c.PageTemplate == "" {
		c.PageTemplate = DefaultPageTemplate
	}
	if c.IndexTemplate == "" {
		c.IndexTemplate = DefaultIndexTemplate
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}

// PagePath returns the output file for a document folder.
func (c BuildConfig) PagePath(folder string) string {
	return filepath.Join(c.OutputDir, folder, "index.html")
}

// IndexPath returns the output file for the index page.
func (c BuildConfig) IndexPath() string {
	return filepath.Join(c.OutputDir, "index.html")
}

// Validate reports settings that cannot work together. The output directory
// is wiped at the start of a build, so the manifest must live outside it.
func (c BuildConfig) Validate() error {
	if c.Manifest == "" {
		return nil
	}
	out, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}
	m, err := filepath.Abs(c.Manifest)
	if err != nil {
		return fmt.Errorf("resolving manifest path: %w", err)
	}
	if rel, err := filepath.Rel(out, m); err == nil && filepath.IsLocal(rel) {
		return fmt.Errorf("manifest %s is inside output directory %s", c.Manifest, c.OutputDir)
	}
	return nil
}
