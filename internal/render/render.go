// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes document pages and the index page through
// html/template.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/pdiddy/docpress/internal/convert"
	"github.com/pdiddy/docpress/internal/outline"
	"github.com/pdiddy/docpress/pkg/types"
)

// Template data keys added next to a document's own fields.
const (
	KeyContent  = "processed_content"
	KeyProjects = "projects"
)

// Renderer holds the parsed templates for one build.
type Renderer struct {
	cfg   types.BuildConfig
	md    *convert.Markdown
	page  *template.Template
	index *template.Template
}

// New parses the page and index templates from cfg.TemplatesDir. A nil md
// gets convert.NewMarkdown().
func New(cfg types.BuildConfig, md *convert.Markdown) (*Renderer, error) {
	if md == nil {
		md = convert.NewMarkdown()
	}
	page, err := template.ParseFiles(filepath.Join(cfg.TemplatesDir, cfg.PageTemplate))
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	index, err := template.ParseFiles(filepath.Join(cfg.TemplatesDir, cfg.IndexTemplate))
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}
	return &Renderer{cfg: cfg, md: md, page: page, index: index}, nil
}

// Page renders rawContent to HTML and writes it with the document fields to
// OutputDir/folder/index.html. It returns the written path.
func (r *Renderer) Page(fields outline.Fields, rawContent, folder string) (string, error) {
	content, err := r.md.Render(rawContent)
	if err != nil {
		return "", fmt.Errorf("rendering content of %s: %w", folder, err)
	}

	data := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data[KeyContent] = template.HTML(content)

	path := r.cfg.PagePath(folder)
	if err := execute(r.page, data, path); err != nil {
		return "", fmt.Errorf("writing page %s: %w", folder, err)
	}
	return path, nil
}

// Entry is one document as the index template sees it: templates use
// .Folder for the link and .Title for the text.
type Entry struct {
	Code      string
	SourceURL string
	Folder    string
	Title     string
	Fields    outline.Fields
}

// Index writes OutputDir/index.html from the shared site fields and the
// built documents, available to the template as .projects.
func (r *Renderer) Index(shared map[string]any, projects []Entry) (string, error) {
	data := make(map[string]any, len(shared)+1)
	for k, v := range shared {
		data[k] = v
	}
	data[KeyProjects] = projects

	path := r.cfg.IndexPath()
	if err := execute(r.index, data, path); err != nil {
		return "", fmt.Errorf("writing index: %w", err)
	}
	return path, nil
}

// execute renders into memory first so a template error leaves no partial file.
func execute(tmpl *template.Template, data any, path string) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing template %s: %w", tmpl.Name(), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
