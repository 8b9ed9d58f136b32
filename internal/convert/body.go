// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markers delimiting the document body. The content marker is the text of a
// span; conversion covers the siblings of that span's parent up to the
// sibling whose text is the end marker.
const (
	ContentMarker = "content:"
	EndMarker     = ":end"
)

// ErrContentMarkerNotFound is returned when a document has no content marker.
var ErrContentMarkerNotFound = errors.New("content marker not found")

var newlineRuns = regexp.MustCompile(`\n+`)

// CollapseBlankLines replaces every run of newlines with exactly one blank
// line. It is idempotent.
func CollapseBlankLines(s string) string {
	return newlineRuns.ReplaceAllString(s, "\n\n")
}

// Body converts the marked region of doc to markup.
func (c *Converter) Body(ctx context.Context, doc *goquery.Document) (string, error) {
	marker := doc.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == ContentMarker
	}).First()
	if marker.Length() == 0 || marker.Get(0).Parent == nil {
		return "", ErrContentMarkerNotFound
	}

	var lines []string
	for sib := marker.Get(0).Parent.NextSibling; sib != nil; sib = sib.NextSibling {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if strings.TrimSpace(textContent(sib)) == EndMarker {
			break
		}
		switch {
		case sib.Type == nethtml.TextNode && strings.TrimSpace(sib.Data) == "":
			continue
		case sib.Type != nethtml.TextNode && sib.Type != nethtml.ElementNode:
			continue
		}

		line, err := c.block(ctx, sib)
		if err != nil {
			return "", err
		}
		lines = append(lines, strings.TrimSpace(line))
	}

	return CollapseBlankLines(strings.Join(lines, "\n")), nil
}

// block converts one top-level sibling of the body.
func (c *Converter) block(ctx context.Context, n *nethtml.Node) (string, error) {
	if n.Type == nethtml.TextNode {
		return n.Data, nil
	}

	if n.DataAtom == atom.Table {
		return c.Table(ctx, n)
	}

	contents, err := c.inline(ctx, n)
	if err != nil {
		return "", err
	}

	switch n.DataAtom {
	case atom.Ul:
		return "* " + contents, nil
	case atom.Ol:
		return "1. " + contents, nil
	case atom.H1:
		return "## " + contents, nil
	case atom.H2:
		return "### " + contents, nil
	case atom.H3:
		return label(contents), nil
	case atom.H4:
		return labelText(contents), nil
	default:
		return contents, nil
	}
}

// inline joins the conversions of n's children with single spaces.
func (c *Converter) inline(ctx context.Context, n *nethtml.Node) (string, error) {
	var parts []string
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		s, err := c.Node(ctx, child)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// Table converts a table to nested divisions: one per row inside a
// fake-table wrapper, and one per cell inside each row. Cell contents are
// converted and rendered to HTML.
func (c *Converter) Table(ctx context.Context, n *nethtml.Node) (string, error) {
	var b strings.Builder
	b.WriteString("<div class='fake-table'>")
	for _, row := range descendants(n, atom.Tr) {
		b.WriteString("<div>")
		for cell := row.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type != nethtml.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
				continue
			}
			text, err := c.Node(ctx, cell)
			if err != nil {
				return "", err
			}
			rendered, err := c.md.Render(text)
			if err != nil {
				return "", fmt.Errorf("rendering table cell: %w", err)
			}
			fmt.Fprintf(&b, "<div>\n%s\n</div>\n", rendered)
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String(), nil
}

// descendants returns the elements below n with tag a, in document order.
func descendants(n *nethtml.Node, a atom.Atom) []*nethtml.Node {
	var out []*nethtml.Node
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == nethtml.ElementNode && c.DataAtom == a {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
