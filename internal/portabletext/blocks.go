// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package portabletext models and renders rich text stored as a sequence of
// typed blocks.
package portabletext

import (
	"strings"
)

// Block types and list styles understood by the renderer.
const (
	TypeBlock = "block"
	TypeImage = "image"
	TypeSpan  = "span"

	ListBullet = "bullet"
	ListNumber = "number"
)

// Blocks is a rich text body.
type Blocks []Block

// Block is one element of a body. Text blocks use Style, ListItem, Children
// and MarkDefs; image blocks use Asset, Alt and Caption.
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
	Asset    *Asset    `json:"asset,omitempty"`
	Alt      string    `json:"alt,omitempty"`
	Caption  string    `json:"caption,omitempty"`
}

// Span is a run of text with decorator marks (strong, em) or annotation keys.
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef defines an annotation referenced from Span.Marks by key.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// Asset references an uploaded image.
type Asset struct {
	Ref string `json:"_ref,omitempty"`
	URL string `json:"url,omitempty"`
}

// Kind returns the dispatch key of the block: a heading or paragraph style,
// "listItem", "image", or the raw type for anything else.
func (b Block) Kind() string {
	switch b.Type {
	case TypeImage:
		return TypeImage
	case TypeBlock:
		if b.ListItem != "" {
			return kindListItem
		}
		if b.Style == "" {
			return "normal"
		}
		return b.Style
	default:
		return b.Type
	}
}

// Text concatenates the text of all spans in the block.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Children {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// PlainText returns the text of every text block, one per line.
func (bs Blocks) PlainText() string {
	lines := make([]string, 0, len(bs))
	for _, b := range bs {
		if b.Type != TypeBlock {
			continue
		}
		if t := strings.TrimSpace(b.Text()); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}
