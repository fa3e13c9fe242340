// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package portabletext

import (
	"html"
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

const kindListItem = "listItem"

// Options customise rendering.
type Options struct {
	// ImageURL resolves an image asset to a URL. Image blocks are skipped without it.
	ImageURL func(ref, expanded string) string

	// HeadingIDs is called once per Render and returns the id generator for
	// that document's headings. An empty id omits the attribute.
	HeadingIDs func() func(text string) string
}

// pass carries the state of one Render call.
type pass struct {
	r         *Renderer
	headingID func(text string) string
}

type blockHandler func(p *pass, sb *strings.Builder, b Block)

// Renderer converts blocks to HTML. It is safe for concurrent use.
type Renderer struct {
	opts     Options
	handlers map[string]blockHandler
}

// NewRenderer returns a renderer with the default block handlers.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		opts: opts,
		handlers: map[string]blockHandler{
			"h1":         heading(1),
			"h2":         heading(2),
			"h3":         heading(3),
			"h4":         heading(4),
			"normal":     paragraph,
			"blockquote": blockquote,
			TypeImage:    image,
		},
	}
}

type openList struct {
	tag    string
	liOpen bool
}

// Render returns the HTML for bs. Unknown block types are skipped.
func (r *Renderer) Render(bs Blocks) template.HTML {
	var sb strings.Builder
	var lists []openList

	p := &pass{r: r}
	if r.opts.HeadingIDs != nil {
		p.headingID = r.opts.HeadingIDs()
	}

	closeTo := func(depth int) {
		for len(lists) > depth {
			top := lists[len(lists)-1]
			if top.liOpen {
				sb.WriteString("</li>")
			}
			sb.WriteString("</" + top.tag + ">")
			lists = lists[:len(lists)-1]
		}
	}

	for _, b := range bs {
		if b.Kind() != kindListItem {
			closeTo(0)
			if h, ok := r.handlers[b.Kind()]; ok {
				h(p, &sb, b)
			}
			continue
		}

		tag := "ul"
		if b.ListItem == ListNumber {
			tag = "ol"
		}
		level := max(b.Level, 1)

		closeTo(level)
		if len(lists) == level && lists[level-1].tag != tag {
			closeTo(level - 1)
		}
		if len(lists) == level && lists[level-1].liOpen {
			sb.WriteString("</li>")
			lists[level-1].liOpen = false
		}
		for len(lists) < level {
			sb.WriteString("<" + tag + ">")
			lists = append(lists, openList{tag: tag})
		}

		sb.WriteString("<li>")
		spans(&sb, b)
		lists[level-1].liOpen = true
	}
	closeTo(0)

	return template.HTML(sb.String()) //nolint:gosec // every text node is escaped in spans
}

func heading(level int) blockHandler {
	tag := "h" + strconv.Itoa(level)
	return func(p *pass, sb *strings.Builder, b Block) {
		sb.WriteString("<" + tag)
		if p.headingID != nil {
			if id := p.headingID(b.Text()); id != "" {
				sb.WriteString(` id="` + html.EscapeString(id) + `"`)
			}
		}
		sb.WriteString(">")
		spans(sb, b)
		sb.WriteString("</" + tag + ">")
	}
}

func paragraph(_ *pass, sb *strings.Builder, b Block) {
	if strings.TrimSpace(b.Text()) == "" {
		return
	}
	sb.WriteString("<p>")
	spans(sb, b)
	sb.WriteString("</p>")
}

func blockquote(_ *pass, sb *strings.Builder, b Block) {
	sb.WriteString("<blockquote>")
	spans(sb, b)
	sb.WriteString("</blockquote>")
}

func image(p *pass, sb *strings.Builder, b Block) {
	if p.r.opts.ImageURL == nil || b.Asset == nil {
		return
	}
	src := p.r.opts.ImageURL(b.Asset.Ref, b.Asset.URL)
	if src == "" {
		return
	}

	sb.WriteString(`<figure><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(b.Alt) + `" loading="lazy">`)
	if b.Caption != "" {
		sb.WriteString("<figcaption>" + html.EscapeString(b.Caption) + "</figcaption>")
	}
	sb.WriteString("</figure>")
}

var decorators = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

// spans writes the children of b, wrapping each span in its marks.
func spans(sb *strings.Builder, b Block) {
	defs := make(map[string]MarkDef, len(b.MarkDefs))
	for _, d := range b.MarkDefs {
		defs[d.Key] = d
	}

	for _, s := range b.Children {
		var closers []string
		for _, m := range s.Marks {
			if tag, ok := decorators[m]; ok {
				sb.WriteString("<" + tag + ">")
				closers = append(closers, "</"+tag+">")
				continue
			}
			def, ok := defs[m]
			if !ok || def.Type != "link" {
				continue
			}
			href, external, ok := safeHref(def.Href)
			if !ok {
				continue
			}
			sb.WriteString(`<a href="` + html.EscapeString(href) + `"`)
			if external {
				sb.WriteString(` rel="noopener noreferrer" target="_blank"`)
			}
			sb.WriteString(">")
			closers = append(closers, "</a>")
		}

		text := html.EscapeString(s.Text)
		sb.WriteString(strings.ReplaceAll(text, "\n", "<br>"))

		for i := len(closers) - 1; i >= 0; i-- {
			sb.WriteString(closers[i])
		}
	}
}

// safeHref accepts http(s), mailto and site-relative links.
func safeHref(raw string) (href string, external bool, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, false
	}
	if strings.HasPrefix(raw, "#") || (strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//")) {
		return raw, false, true
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), true, true
	case "mailto":
		return u.String(), false, true
	default:
		return "", false, false
	}
}
