// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared by the HTTP layer and the
// rich text renderer.
package util

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a string to a URL-friendly slug: accents are removed,
// letters lowercased, and every run of other characters collapses into a
// single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, _ := transform.String(t, s)

	var sb strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
			continue
		}
		if r == ' ' || r == '-' || r == '_' {
			pendingHyphen = true
		}
	}
	return sb.String()
}

// Anchors hands out unique heading ids within one document.
// The zero value is not usable; create one with NewAnchors.
type Anchors struct {
	seen map[string]int
}

// NewAnchors returns an empty anchor set.
func NewAnchors() *Anchors {
	return &Anchors{seen: make(map[string]int)}
}

// ID slugifies text and appends -2, -3, ... to repeats.
// Text without any usable characters yields "".
func (a *Anchors) ID(text string) string {
	base := Slugify(text)
	if base == "" {
		return ""
	}
	a.seen[base]++
	if n := a.seen[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}
