// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns an exported document tree into simplified markup: a
// line-oriented mix of markdown and literal HTML fragments that is rendered
// to HTML once, at page render time.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
)

// Wrappers emitted for label-styled headings.
const (
	labelFormat     = "<p class='label super-font'>%s</p>"
	labelTextFormat = "<p class='label-text super-font'>%s</p>"
)

// ImageFetcher returns an image as a data URI.
type ImageFetcher interface {
	DataURI(ctx context.Context, url string) (string, error)
}

// Converter walks document trees. Images are inlined through the fetcher
// and table cells are rendered through md.
type Converter struct {
	images ImageFetcher
	md     *Markdown
}

// New returns a Converter. A nil md gets NewMarkdown().
func New(images ImageFetcher, md *Markdown) *Converter {
	if md == nil {
		md = NewMarkdown()
	}
	return &Converter{images: images, md: md}
}

// Node converts n and its descendants to markup.
func (c *Converter) Node(ctx context.Context, n *nethtml.Node) (string, error) {
	kind := Classify(n)
	switch kind {
	case KindIgnored:
		return "", nil
	case KindText:
		return n.Data, nil
	case KindContainer:
		return innerHTML(n)
	}

	if children := elementChildren(n); len(children) > 0 {
		parts := make([]string, 0, len(children))
		for _, child := range children {
			s, err := c.Node(ctx, child)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		joined := strings.Join(parts, "\n")
		if kind == KindHeading3 {
			return label(joined), nil
		}
		return joined, nil
	}

	switch kind {
	case KindImage:
		return c.image(ctx, n)
	case KindLink:
		return fmt.Sprintf("<a href='%s'>%s</a>", html.EscapeString(attr(n, "href")), textContent(n)), nil
	case KindHeading3:
		return label(textContent(n)), nil
	case KindSpan:
		return textContent(n), nil
	default:
		return innerHTML(n)
	}
}

// image inlines the picture with its optional title and alt text as captions.
func (c *Converter) image(ctx context.Context, n *nethtml.Node) (string, error) {
	if c.images == nil {
		return "", fmt.Errorf("inlining image %q: no image fetcher", attr(n, "src"))
	}
	uri, err := c.images.DataURI(ctx, attr(n, "src"))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("\n")
	if title := attr(n, "title"); title != "" {
		b.WriteString(label(html.EscapeString(title)))
	}
	if alt := attr(n, "alt"); alt != "" {
		b.WriteString(labelText(html.EscapeString(alt)))
	}
	fmt.Fprintf(&b, "<p class='img'><img src='%s'></p>", uri)
	b.WriteString("\n")
	return b.String(), nil
}

func label(s string) string     { return fmt.Sprintf(labelFormat, s) }
func labelText(s string) string { return fmt.Sprintf(labelTextFormat, s) }

func elementChildren(n *nethtml.Node) []*nethtml.Node {
	var out []*nethtml.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text of all descendant text nodes.
func textContent(n *nethtml.Node) string {
	if n.Type == nethtml.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == nethtml.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func innerHTML(n *nethtml.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := nethtml.Render(&buf, c); err != nil {
			return "", fmt.Errorf("rendering <%s> contents: %w", n.Data, err)
		}
	}
	return buf.String(), nil
}
