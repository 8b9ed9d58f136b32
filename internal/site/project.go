// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/docpress/internal/convert"
	"github.com/pdiddy/docpress/internal/fetch"
	"github.com/pdiddy/docpress/internal/outline"
	"github.com/pdiddy/docpress/internal/rewrite"
)

// Fetcher retrieves both exports of a document and the images it embeds.
// *fetch.Client satisfies it.
type Fetcher interface {
	convert.ImageFetcher
	Text(ctx context.Context, code string) (string, error)
	HTML(ctx context.Context, code string) ([]byte, error)
}

// Project is one document ready to be rendered.
type Project struct {
	Code       string
	SourceURL  string
	Fields     outline.Fields
	RawContent string
	Folder     string
	Charts     int
}

var titleCaser = cases.Title(language.English)

// Title returns the document's title field, or the folder name in title case
// when the document has none.
func (p *Project) Title() string {
	if t := p.Fields.String("title"); t != "" {
		return t
	}
	return titleCaser.String(strings.ReplaceAll(p.Folder, "-", " "))
}

// NewProject fetches the document behind rawURL and converts it. Any failure
// is returned; nothing is retried beyond the fetcher's own retries.
func NewProject(ctx context.Context, f Fetcher, conv *convert.Converter, rawURL string, log *slog.Logger) (*Project, error) {
	if log == nil {
		log = slog.Default()
	}
	code, err := fetch.DocumentCode(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	log = log.With("code", code)

	text, err := f.Text(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetching text export: %w", err)
	}
	fields := outline.Parse(text)

	folder, err := folderName(fields, code)
	if err != nil {
		return nil, err
	}

	raw, err := f.HTML(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetching HTML export: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML export of %s: %w", code, err)
	}

	res, err := rewrite.Page(doc, log)
	if err != nil {
		return nil, fmt.Errorf("rewriting links of %s: %w", code, err)
	}
	log.Debug("rewrote links", "redirects", res.Redirects, "charts", res.Charts, "unmatched", res.Unmatched)

	content, err := conv.Body(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", code, err)
	}

	return &Project{
		Code:       code,
		SourceURL:  rawURL,
		Fields:     fields,
		RawContent: content,
		Folder:     folder,
		Charts:     res.Charts,
	}, nil
}

// folderName picks the output directory: the slug field when set, the
// document code otherwise. A slug must name a directory below the output
// directory, not the output directory itself.
func folderName(fields outline.Fields, code string) (string, error) {
	slug := strings.TrimSpace(fields.String("slug"))
	if slug == "" {
		return code, nil
	}
	if !filepath.IsLocal(slug) {
		return "", fmt.Errorf("slug %q of %s leaves the output directory", slug, code)
	}
	slug = filepath.Clean(slug)
	if slug == "." {
		return "", fmt.Errorf("slug %q of %s names the output directory itself", fields.String("slug"), code)
	}
	return slug, nil
}
