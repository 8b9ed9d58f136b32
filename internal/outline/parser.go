// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline parses the ArchieML-style key/value text that editors write
// at the top of a document. Parsing never fails: lines that do not fit the
// format are ignored and the fields recognised so far are returned.
//
// Supported syntax:
//
//	key: value          string field; dotted keys create nested objects
//	key: first line     multi-line value, kept only when closed by :end
//	more lines
//	:end
//	{scope} ... {}      object scope; {.scope} nests under the current one
//	[list] ... []       array of "* item" strings or of key/value objects
//	:skip ... :endskip  ignored block
//	:ignore             stop parsing
//	\:literal           leading backslash escapes a command in multi-line text
package outline

import (
	"regexp"
	"strings"
)

// Fields maps field names to strings, nested Fields, or []any arrays.
type Fields map[string]any

// String returns the string stored at key, or "" if it is absent or not a string.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

var (
	keyPattern     = regexp.MustCompile(`^\s*([A-Za-z0-9\-_\.]+)[ \t]*:[ \t]*(.*)$`)
	commandPattern = regexp.MustCompile(`(?i)^\s*:[ \t]*(endskip|ignore|skip|end)\b`)
	itemPattern    = regexp.MustCompile(`^\s*\*[ \t]*(.*)$`)
	scopePattern   = regexp.MustCompile(`^\s*(\[|\{)[ \t]*(\.?)[ \t]*([A-Za-z0-9\-_\.]*)[ \t]*(?:\]|\})`)
)

// Parse escapes URL colons in text, parses it, and restores the colons in
// every resulting string value.
func Parse(text string) Fields {
	p := newParser()
	for _, line := range strings.Split(Escape(text), "\n") {
		if p.done {
			break
		}
		p.line(strings.TrimRight(line, "\r"))
	}
	unescapeValue(p.root)
	return p.root
}

type itemKind int

const (
	kindUnknown itemKind = iota
	kindStrings
	kindObjects
)

// scope is an open object or array. Arrays are written back to parent[key]
// after every append since appending may reallocate.
type scope struct {
	obj Fields

	array  bool
	parent Fields
	key    string
	items  []any
	kind   itemKind
	cur    Fields
}

func (s *scope) appendItem(v any) int {
	s.items = append(s.items, v)
	s.parent[s.key] = s.items
	return len(s.items) - 1
}

// pending is a value that may grow into a multi-line value.
type pending struct {
	first string
	lines []string
	set   func(string)
}

type parser struct {
	root     Fields
	stack    []*scope
	buf      *pending
	skipping bool
	done     bool
}

func newParser() *parser {
	root := Fields{}
	return &parser{root: root, stack: []*scope{{obj: root}}}
}

func (p *parser) top() *scope {
	return p.stack[len(p.stack)-1]
}

func (p *parser) line(line string) {
	if m := commandPattern.FindStringSubmatch(line); m != nil {
		p.command(strings.ToLower(m[1]))
		return
	}
	if p.skipping {
		return
	}

	if m := scopePattern.FindStringSubmatch(line); m != nil {
		p.buf = nil
		p.openScope(m[1] == "[", m[2] == ".", m[3])
		return
	}

	if m := keyPattern.FindStringSubmatch(line); m != nil {
		p.keyValue(m[1], m[2])
		return
	}

	if m := itemPattern.FindStringSubmatch(line); m != nil && p.arrayItem(m[1]) {
		return
	}

	if p.buf != nil {
		p.buf.lines = append(p.buf.lines, unescapeLine(line))
	}
}

func (p *parser) command(cmd string) {
	switch cmd {
	case "skip":
		p.skipping = true
		p.buf = nil
	case "endskip":
		p.skipping = false
	case "ignore":
		if !p.skipping {
			p.done = true
		}
	case "end":
		if p.skipping || p.buf == nil {
			return
		}
		value := strings.Join(append([]string{p.buf.first}, p.buf.lines...), "\n")
		p.buf.set(strings.TrimSpace(value))
		p.buf = nil
	}
}

func (p *parser) keyValue(key, value string) {
	value = strings.TrimSpace(value)
	s := p.top()

	target := s.obj
	if s.array {
		switch s.kind {
		case kindStrings:
			p.buf = nil
			return
		case kindUnknown:
			s.kind = kindObjects
		}
		if s.cur == nil || hasPath(s.cur, key) {
			s.cur = Fields{}
			s.appendItem(s.cur)
		}
		target = s.cur
	}

	setPath(target, key, value)
	p.buf = &pending{first: value, set: func(v string) { setPath(target, key, v) }}
}

// arrayItem stores a "* item" line. It reports false when the line is not
// inside a string array, in which case it is ordinary text.
func (p *parser) arrayItem(value string) bool {
	s := p.top()
	if !s.array || s.kind == kindObjects {
		return false
	}
	s.kind = kindStrings
	value = strings.TrimSpace(value)
	idx := s.appendItem(value)
	p.buf = &pending{first: value, set: func(v string) { s.items[idx] = v }}
	return true
}

func (p *parser) openScope(isArray, nested bool, name string) {
	if name == "" {
		if len(p.stack) > 1 {
			p.stack = p.stack[:len(p.stack)-1]
		}
		return
	}

	base := p.root
	if nested {
		s := p.top()
		base = s.obj
		if s.array && s.cur != nil {
			base = s.cur
		}
	} else {
		p.stack = p.stack[:1]
	}
	if base == nil {
		base = p.root
	}

	if !isArray {
		p.stack = append(p.stack, &scope{obj: objectAt(base, name)})
		return
	}

	parent, key := base, name
	if i := strings.LastIndex(name, "."); i >= 0 {
		parent, key = objectAt(base, name[:i]), name[i+1:]
	}
	s := &scope{array: true, parent: parent, key: key, items: []any{}}
	parent[key] = s.items
	p.stack = append(p.stack, s)
}

// objectAt returns the Fields at a dotted path under f, replacing any
// non-object value on the way.
func objectAt(f Fields, path string) Fields {
	cur := f
	for _, part := range strings.Split(path, ".") {
		next, ok := cur[part].(Fields)
		if !ok {
			next = Fields{}
			cur[part] = next
		}
		cur = next
	}
	return cur
}

func setPath(f Fields, path string, value any) {
	parent, key := f, path
	if i := strings.LastIndex(path, "."); i >= 0 {
		parent, key = objectAt(f, path[:i]), path[i+1:]
	}
	parent[key] = value
}

func hasPath(f Fields, path string) bool {
	cur := f
	parts := strings.Split(path, ".")
	for i, part := range parts {
		v, ok := cur[part]
		if !ok {
			return false
		}
		if i == len(parts)-1 {
			return true
		}
		if cur, ok = v.(Fields); !ok {
			return false
		}
	}
	return false
}

// unescapeLine drops a backslash that protects a leading command character.
func unescapeLine(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) > 1 && trimmed[0] == '\\' && strings.ContainsRune(`:*{[\`, rune(trimmed[1])) {
		return line[:len(line)-len(trimmed)] + trimmed[1:]
	}
	return line
}
