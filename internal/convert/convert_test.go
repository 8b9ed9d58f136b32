// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nethtml "golang.org/x/net/html"
)

// fakeImages implements ImageFetcher with canned data URIs.
type fakeImages struct {
	uris  map[string]string
	calls []string
}

func (f *fakeImages) DataURI(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if uri, ok := f.uris[url]; ok {
		return uri, nil
	}
	return "", errors.New("unreachable image " + url)
}

func newTestConverter() (*Converter, *fakeImages) {
	images := &fakeImages{uris: map[string]string{"https://img.example/a.png": "data:image/png;base64,AAAA"}}
	return New(images, nil), images
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func firstNode(t *testing.T, html, selector string) *nethtml.Node {
	t.Helper()
	sel := parseDoc(t, html).Find(selector)
	require.Equal(t, 1, sel.Length(), "selector %q", selector)
	return sel.Get(0)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		html     string
		selector string
		want     Kind
	}{
		{`<div>x</div>`, "div", KindContainer},
		{`<img src="x">`, "img", KindImage},
		{`<a href="x">y</a>`, "a", KindLink},
		{`<h3>x</h3>`, "h3", KindHeading3},
		{`<span>x</span>`, "span", KindSpan},
		{`<table><tr><td>x</td></tr></table>`, "table", KindTable},
		{`<p>x</p>`, "p", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(firstNode(t, tt.html, tt.selector)))
		})
	}
	assert.Equal(t, KindText, Classify(&nethtml.Node{Type: nethtml.TextNode}))
	assert.Equal(t, KindIgnored, Classify(&nethtml.Node{Type: nethtml.CommentNode}))
}

func TestConverter_Node(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		selector string
		want     string
	}{
		{"container passes inner html", `<div><iframe src="x"></iframe><b>y</b></div>`, "div", `<iframe src="x"></iframe><b>y</b>`},
		{"link with element child", `<a href="https://example.com/">click <b>here</b></a>`, "a", "here"},
		{"leaf link", `<a href="https://example.com">click here</a>`, "a", "<a href='https://example.com'>click here</a>"},
		{"leaf heading3", `<h3>Section</h3>`, "h3", "<p class='label super-font'>Section</p>"},
		{"heading3 with children", `<h3><span>One</span><span>Two</span></h3>`, "h3", "<p class='label super-font'>One\nTwo</p>"},
		{"span text", `<span>a &amp; b</span>`, "span", "a & b"},
		{"span with link", `<span><a href="u">t</a></span>`, "span", "<a href='u'>t</a>"},
		{"fallback inner html", `<em>x &lt; y</em>`, "em", "x &lt; y"},
		{"paragraph of spans", `<p><span>a</span><span>b</span></p>`, "p", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConverter()
			got, err := c.Node(context.Background(), firstNode(t, tt.html, tt.selector))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConverter_NodeText(t *testing.T) {
	c, _ := newTestConverter()
	got, err := c.Node(context.Background(), &nethtml.Node{Type: nethtml.TextNode, Data: "a < b"})
	require.NoError(t, err)
	assert.Equal(t, "a < b", got)
}

func TestConverter_Image(t *testing.T) {
	c, images := newTestConverter()
	n := firstNode(t, `<img src="https://img.example/a.png" title="Chart" alt="A &quot;nice&quot; chart">`, "img")

	got, err := c.Node(context.Background(), n)
	require.NoError(t, err)

	want := "\n<p class='label super-font'>Chart</p>" +
		"<p class='label-text super-font'>A &#34;nice&#34; chart</p>" +
		"<p class='img'><img src='data:image/png;base64,AAAA'></p>\n"
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"https://img.example/a.png"}, images.calls)
}

func TestConverter_ImageWithoutCaptions(t *testing.T) {
	c, _ := newTestConverter()
	got, err := c.Node(context.Background(), firstNode(t, `<img src="https://img.example/a.png">`, "img"))
	require.NoError(t, err)
	assert.Equal(t, "\n<p class='img'><img src='data:image/png;base64,AAAA'></p>\n", got)
}

func TestConverter_ImageFetchFailurePropagates(t *testing.T) {
	c, _ := newTestConverter()
	_, err := c.Node(context.Background(), firstNode(t, `<p><span><img src="https://gone.example/x.png"></span></p>`, "p"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable image")
}

func TestConverter_ImageWithoutFetcher(t *testing.T) {
	c := New(nil, nil)
	_, err := c.Node(context.Background(), firstNode(t, `<img src="x.png">`, "img"))
	assert.Error(t, err)
}

const sampleExport = `<html><head><style>.c1{}</style></head><body>
<p><span>title: Story</span></p>
<p><span>content:</span></p>
<h1><span>Big Heading</span></h1>
<h2><span>Smaller</span></h2>
<p><span>Hello</span><span>world</span></p>
<p></p>
<p></p>
<h3><span>Label</span></h3>
<h4><span>Caption</span></h4>
<ul><li><span>one</span></li><li><span>two</span></li></ul>
<ol><li><span>first</span></li><li><span>second</span></li></ol>
<p><span><a href="https://example.com">a link</a></span></p>
<p><span><img src="https://img.example/a.png" alt="Alt"></span></p>
<table><tr><td><p><span>a</span></p></td><td><p><span>b</span></p></td></tr></table>
<p><span>:end</span></p>
<p><span>after the end</span></p>
</body></html>`

func TestConverter_Body(t *testing.T) {
	c, _ := newTestConverter()
	got, err := c.Body(context.Background(), parseDoc(t, sampleExport))
	require.NoError(t, err)

	want := strings.Join([]string{
		"## Big Heading",
		"### Smaller",
		"Hello world",
		"<p class='label super-font'>Label</p>",
		"<p class='label-text super-font'>Caption</p>",
		"* one two",
		"1. first second",
		"<a href='https://example.com'>a link</a>",
		"<p class='label-text super-font'>Alt</p><p class='img'><img src='data:image/png;base64,AAAA'></p>",
		"<div class='fake-table'><div><div>",
		"<p>a</p>",
		"</div>",
		"<div>",
		"<p>b</p>",
		"</div>",
		"</div></div>",
	}, "\n\n")
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "after the end")
	assert.NotContains(t, got, "title: Story")
}

func TestConverter_BodyListsJoinItems(t *testing.T) {
	c, _ := newTestConverter()
	doc := parseDoc(t, `<p><span>content:</span></p>`+
		`<ul><li><span>one</span></li><li><span>two</span></li></ul>`+
		`<ol><li>a</li><li>b</li></ol>`+
		`<p><span>:end</span></p>`)

	got, err := c.Body(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "* one two\n\n1. a b", got)
}

func TestConverter_BodyWithoutEndMarker(t *testing.T) {
	c, _ := newTestConverter()
	doc := parseDoc(t, `<p><span>content:</span></p><p><span>one</span></p><p><span>two</span></p>`)

	got, err := c.Body(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo", got)
}

func TestConverter_BodyMissingMarker(t *testing.T) {
	c, _ := newTestConverter()
	_, err := c.Body(context.Background(), parseDoc(t, `<p><span>no marker here</span></p>`))
	assert.ErrorIs(t, err, ErrContentMarkerNotFound)
}

func TestConverter_BodyEmbedSurvives(t *testing.T) {
	c, _ := newTestConverter()
	doc := parseDoc(t, `<p><span>content:</span></p><p><span><a href="x">chart</a></span></p>`)
	doc.Find("a").ReplaceWithHtml(`<div><iframe id="datawrapper-chart-X" src="s"></iframe><script>go()</script></div>`)

	got, err := c.Body(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, got, `<iframe id="datawrapper-chart-X" src="s"></iframe>`)
	assert.Contains(t, got, `<script>go()</script>`)
}

func TestConverter_TableShape(t *testing.T) {
	shapes := [][]int{
		{1},
		{2, 2},
		{3, 1, 2},
		{0, 4},
	}
	for _, shape := range shapes {
		t.Run(fmt.Sprint(shape), func(t *testing.T) {
			var b strings.Builder
			b.WriteString("<table>")
			for r, cells := range shape {
				b.WriteString("<tr>")
				for i := 0; i < cells; i++ {
					fmt.Fprintf(&b, "<td><p><span>r%dc%d</span></p></td>", r, i)
				}
				b.WriteString("</tr>")
			}
			b.WriteString("</table>")

			c, _ := newTestConverter()
			out, err := c.Table(context.Background(), firstNode(t, b.String(), "table"))
			require.NoError(t, err)

			rendered := parseDoc(t, out)
			rows := rendered.Find("div.fake-table > div")
			require.Equal(t, len(shape), rows.Length())
			rows.Each(func(i int, row *goquery.Selection) {
				assert.Equal(t, shape[i], row.ChildrenFiltered("div").Length(), "row %d", i)
			})
		})
	}
}

func TestCollapseBlankLines(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"a\nb",
		"a\n\n\n\nb\n",
		"\n\nleading and trailing\n\n\n",
		"x\n\ny\n\n\nz",
	}
	for _, in := range inputs {
		once := CollapseBlankLines(in)
		assert.Equal(t, once, CollapseBlankLines(once), "input %q", in)
		assert.NotContains(t, once, "\n\n\n", "input %q", in)
	}
	assert.Equal(t, "a\n\nb", CollapseBlankLines("a\n\n\n\nb"))
	assert.Equal(t, "a\n\nb", CollapseBlankLines("a\nb"))
}

func TestMarkdown_Render(t *testing.T) {
	md := NewMarkdown()

	got, err := md.Render("## Title\n\n* item\n\n<p class='label super-font'>Raw</p>")
	require.NoError(t, err)
	assert.Contains(t, got, "<h2>Title</h2>")
	assert.Contains(t, got, "<li>")
	assert.Contains(t, got, "<p class='label super-font'>Raw</p>")
	assert.False(t, strings.HasSuffix(got, "\n"))

	got, err = md.Render("a")
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", got)
}
