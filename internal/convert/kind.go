// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind is the conversion rule a node falls under.
type Kind int

const (
	KindIgnored Kind = iota // comments, doctypes
	KindText
	KindContainer // div: inner HTML passes through
	KindImage
	KindLink
	KindHeading3
	KindSpan
	KindTable
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindContainer:
		return "container"
	case KindImage:
		return "image"
	case KindLink:
		return "link"
	case KindHeading3:
		return "heading3"
	case KindSpan:
		return "span"
	case KindTable:
		return "table"
	case KindOther:
		return "other"
	default:
		return "ignored"
	}
}

// Classify returns the Kind of n.
func Classify(n *html.Node) Kind {
	switch n.Type {
	case html.TextNode:
		return KindText
	case html.ElementNode:
	default:
		return KindIgnored
	}

	switch n.DataAtom {
	case atom.Div:
		return KindContainer
	case atom.Img:
		return KindImage
	case atom.A:
		return KindLink
	case atom.H3:
		return KindHeading3
	case atom.Span:
		return KindSpan
	case atom.Table:
		return KindTable
	default:
		return KindOther
	}
}
