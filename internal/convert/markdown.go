// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders markup to HTML. Raw HTML in the input is passed through
// since converted documents interleave markdown with literal fragments.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown returns a renderer with CommonMark defaults and raw HTML enabled.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New(
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
}

// Render converts src to an HTML fragment without a trailing newline.
func (m *Markdown) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
