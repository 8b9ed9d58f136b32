// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeyValues(t *testing.T) {
	got := Parse("title: A Story\nslug:  my-story  \nnot a key line\nauthor.name: Ada\r\n")

	assert.Equal(t, "A Story", got.String("title"))
	assert.Equal(t, "my-story", got.String("slug"))
	require.IsType(t, Fields{}, got["author"])
	assert.Equal(t, "Ada", got["author"].(Fields).String("name"))
	assert.Len(t, got, 3)
}

func TestParse_URLColonsSurvive(t *testing.T) {
	text := "image: https://example.com/a.png\nlink: http://example.com:8080/x\nhttps://example.com/stray\n"
	got := Parse(text)

	assert.Equal(t, "https://example.com/a.png", got.String("image"))
	assert.Equal(t, "http://example.com:8080/x", got.String("link"))
	_, isKey := got["https"]
	assert.False(t, isKey, "URL on its own line must not become a key")
}

func TestParse_MultiLine(t *testing.T) {
	text := `summary: First line
second line
\:end is literal here
:end
dangling: one
ignored continuation
`
	got := Parse(text)

	assert.Equal(t, "First line\nsecond line\n:end is literal here", got.String("summary"))
	assert.Equal(t, "one", got.String("dangling"), "text without :end is not appended")
}

func TestParse_ContentBlock(t *testing.T) {
	text := "title: T\ncontent:\nPara one with https://x.org\n\nPara two\n:end\n"
	got := Parse(text)

	assert.Equal(t, "Para one with https://x.org\n\nPara two", got.String("content"))
}

func TestParse_ObjectScope(t *testing.T) {
	text := `{meta}
author: Ada
date: 2024
{}
title: Outside
{meta}
{.inner}
deep: yes
`
	got := Parse(text)

	meta, ok := got["meta"].(Fields)
	require.True(t, ok)
	assert.Equal(t, "Ada", meta.String("author"))
	assert.Equal(t, "2024", meta.String("date"))
	assert.Equal(t, "Outside", got.String("title"))
	inner, ok := meta["inner"].(Fields)
	require.True(t, ok)
	assert.Equal(t, "yes", inner.String("deep"))
}

func TestParse_StringArray(t *testing.T) {
	text := "[tags]\n* one\n*two\n* https://three.example\n[]\nafter: x\n"
	got := Parse(text)

	assert.Equal(t, []any{"one", "two", "https://three.example"}, got["tags"])
	assert.Equal(t, "x", got.String("after"))
}

func TestParse_ObjectArray(t *testing.T) {
	text := `[links]
name: A
url: https://a.example
name: B
url: https://b.example
[]
`
	got := Parse(text)

	links, ok := got["links"].([]any)
	require.True(t, ok)
	require.Len(t, links, 2)
	assert.Equal(t, Fields{"name": "A", "url": "https://a.example"}, links[0])
	assert.Equal(t, Fields{"name": "B", "url": "https://b.example"}, links[1])
}

func TestParse_SkipAndIgnore(t *testing.T) {
	text := "a: 1\n:skip\nb: 2\n:endskip\nc: 3\n:ignore\nd: 4\n"
	got := Parse(text)

	assert.Equal(t, Fields{"a": "1", "c": "3"}, got)
}

func TestParse_MalformedIsPartial(t *testing.T) {
	text := "title: ok\n[unterminated\n{also bad\n: no key\n*stray item\n"
	got := Parse(text)

	assert.Equal(t, Fields{"title": "ok"}, got)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
}

func TestEscapeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"url: https://example.com/path?q=a:b",
		"http://a https://b http:https:",
		"key:value:with:colons",
		"mixed http: and https: and ftp:",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			escaped := Escape(in)
			assert.NotContains(t, escaped, "http:")
			assert.NotContains(t, escaped, "https:")
			assert.Equal(t, in, Unescape(escaped))
		})
	}
}

func TestFields_String(t *testing.T) {
	f := Fields{"s": "v", "n": Fields{}}
	assert.Equal(t, "v", f.String("s"))
	assert.Equal(t, "", f.String("n"))
	assert.Equal(t, "", f.String("missing"))
}
