// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/docpress/internal/convert"
	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/internal/outline"
	"github.com/pdiddy/docpress/internal/render"
	"github.com/pdiddy/docpress/pkg/types"
)

// Builder runs one build. Manifest and Log are optional.
type Builder struct {
	Config    types.BuildConfig
	Fetcher   Fetcher
	Renderer  *render.Renderer
	Converter *convert.Converter
	Manifest  *manifest.Store
	Log       *slog.Logger
}

// Summary reports what a build wrote.
type Summary struct {
	Pages      []string
	Index      string
	Charts     int
	Collisions int
	Duration   time.Duration
}

// Run wipes the output directory, builds every project in order and writes
// the pages followed by the index. The first failing project aborts the run.
func (b *Builder) Run(ctx context.Context, details *Details) (Summary, error) {
	log := b.Log
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()
	var sum Summary

	if err := render.ResetDir(b.Config.OutputDir); err != nil {
		return sum, fmt.Errorf("preparing output directory: %w", err)
	}
	if err := b.copyStatic(log); err != nil {
		return sum, err
	}

	projects := make([]*Project, 0, len(details.Projects))
	for i, url := range details.Projects {
		log.Info("building project", "index", i+1, "total", len(details.Projects), "url", url)
		p, err := NewProject(ctx, b.Fetcher, b.Converter, url, log)
		if err != nil {
			return sum, fmt.Errorf("project %d: %w", i+1, err)
		}
		projects = append(projects, p)
	}

	if err := b.checkFolders(projects); err != nil {
		return sum, err
	}

	owners := make(map[string]string, len(projects))
	for _, p := range projects {
		path, err := b.Renderer.Page(pageFields(details.Shared, p.Fields), p.RawContent, p.Folder)
		if err != nil {
			return sum, err
		}
		sum.Pages = append(sum.Pages, path)
		sum.Charts += p.Charts

		previous, err := b.claim(ctx, owners, p, path)
		if err != nil {
			return sum, err
		}
		if len(previous) > 0 {
			sum.Collisions++
			log.Warn("folder already written this run, overwriting",
				"folder", p.Folder, "code", p.Code, "previous", previous)
		}
		log.Debug("wrote page", "path", path)
	}

	index, err := b.Renderer.Index(details.Shared, indexEntries(projects))
	if err != nil {
		return sum, err
	}
	sum.Index = index
	sum.Duration = time.Since(start)

	log.Info("build complete", "pages", len(sum.Pages), "charts", sum.Charts,
		"collisions", sum.Collisions, "duration", sum.Duration.Round(time.Millisecond))
	return sum, nil
}

// claim marks p's folder as written and returns the codes that wrote it
// before. The manifest answers when configured; otherwise owners does.
func (b *Builder) claim(ctx context.Context, owners map[string]string, p *Project, path string) ([]string, error) {
	if b.Manifest != nil {
		previous, err := b.Manifest.Record(ctx, manifest.Page{
			Code:       p.Code,
			Folder:     p.Folder,
			SourceURL:  p.SourceURL,
			Title:      p.Title(),
			Path:       path,
			ContentLen: len(p.RawContent),
			Charts:     p.Charts,
		})
		if err != nil {
			return nil, fmt.Errorf("recording %s: %w", p.Code, err)
		}
		return previous, nil
	}

	prev, taken := owners[p.Folder]
	owners[p.Folder] = p.Code
	if !taken {
		return nil, nil
	}
	return []string{prev}, nil
}

// checkFolders rejects pages that would land inside the copied static
// directory.
func (b *Builder) checkFolders(projects []*Project) error {
	static := b.staticTarget()
	if static == "" {
		return nil
	}
	for _, p := range projects {
		top := strings.Split(filepath.ToSlash(p.Folder), "/")[0]
		if top == static {
			return fmt.Errorf("folder %q of %s collides with the static directory", p.Folder, p.Code)
		}
	}
	return nil
}

// staticTarget returns the directory name the static assets are copied to,
// or "" when no copy is configured.
func (b *Builder) staticTarget() string {
	if b.Config.StaticDir == "" {
		return ""
	}
	return filepath.Base(filepath.Clean(b.Config.StaticDir))
}

// copyStatic copies the static directory into the output directory under its
// own base name. A missing directory is logged and skipped.
func (b *Builder) copyStatic(log *slog.Logger) error {
	src := b.Config.StaticDir
	if src == "" {
		return nil
	}
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		log.Warn("static directory not found, skipping", "dir", src)
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking static directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("static path %s is not a directory", src)
	}
	dst := filepath.Join(b.Config.OutputDir, b.staticTarget())
	if err := render.CopyDir(src, dst); err != nil {
		return fmt.Errorf("copying static directory: %w", err)
	}
	return nil
}

func indexEntries(projects []*Project) []render.Entry {
	entries := make([]render.Entry, len(projects))
	for i, p := range projects {
		entries[i] = render.Entry{
			Code:      p.Code,
			SourceURL: p.SourceURL,
			Folder:    p.Folder,
			Title:     p.Title(),
			Fields:    p.Fields,
		}
	}
	return entries
}

// pageFields layers a document's own fields over the shared site fields.
func pageFields(shared map[string]any, own outline.Fields) outline.Fields {
	out := make(outline.Fields, len(shared)+len(own))
	for k, v := range shared {
		out[k] = v
	}
	for k, v := range own {
		out[k] = v
	}
	return out
}
