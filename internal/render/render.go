// Package render parses the embedded page templates and renders them with
// the blog's template functions.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/yuin/goldmark"

	"github.com/olegiv/storyfront/internal/content"
	"github.com/olegiv/storyfront/internal/portabletext"
	"github.com/olegiv/storyfront/internal/seo"
	"github.com/olegiv/storyfront/internal/util"
)

// blankLinesRegex matches two or more consecutive newlines (with optional whitespace between).
var blankLinesRegex = regexp.MustCompile(`(\r?\n\s*){2,}`)

const (
	baseLayout = "layouts/base.html"

	flashKey        = "flash"
	flashTypeKey    = "flash_type"
	commentStateKey = "comment_state:"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
	images         content.ImageURLBuilder
	text           *portabletext.Renderer
	banner         template.HTML
	site           seo.SiteConfig
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
	Images         content.ImageURLBuilder
	Site           seo.SiteConfig

	// Banner is Markdown shown above the post index.
	Banner string
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
		images:         cfg.Images,
		site:           cfg.Site,
	}

	r.text = portabletext.NewRenderer(portabletext.Options{
		ImageURL: func(ref, expanded string) string {
			return r.images.AssetURL(ref, expanded, content.ImageOptions{Width: 1200})
		},
		HeadingIDs: func() func(string) string {
			return util.NewAnchors().ID
		},
	})

	var banner bytes.Buffer
	if err := goldmark.Convert([]byte(cfg.Banner), &banner); err != nil {
		return nil, fmt.Errorf("converting banner: %w", err)
	}
	r.banner = template.HTML(banner.String()) //nolint:gosec // goldmark drops raw HTML by default

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page with the base layout and all partials.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("getting pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	for _, tmplPath := range pages {
		name := strings.TrimSuffix(path.Base(tmplPath), ".html")

		files := []string{baseLayout}
		files = append(files, partials...)
		files = append(files, tmplPath)

		tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}

		r.templates[name] = tmpl
	}

	return nil
}

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"isoDate": func(t time.Time) string {
			return t.Format(time.RFC3339)
		},
		"imageURL": func(img *content.Image, width int) string {
			return r.images.URL(img, content.ImageOptions{Width: width})
		},
		"avatarURL": func(img *content.Image) string {
			return r.images.URL(img, content.ImageOptions{Width: 96, Height: 96, Fit: "crop"})
		},
		"portableText": func(blocks portabletext.Blocks) template.HTML {
			return r.text.Render(blocks)
		},
		"postURL": seo.PostPath,
		"banner": func() template.HTML {
			return r.banner
		},
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Meta        *seo.Meta
	Schema      template.JS
	SiteName    string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	IsDev       bool
}

// RenderStatus renders a page with the given status code. Nothing is written
// if the template fails, so callers can still send an error page.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.SiteName = r.site.SiteName
	data.IsDev = r.isDev
	if data.Title == "" {
		data.Title = r.site.SiteName
	}

	if flash := r.popString(req, flashKey); flash != "" {
		data.Flash = flash
		data.FlashType = r.popString(req, flashTypeKey)
		if data.FlashType == "" {
			data.FlashType = "info"
		}
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n")))
	return nil
}

// Site returns the site settings the renderer was built with.
func (r *Renderer) Site() seo.SiteConfig {
	return r.site
}

// Images returns the image URL builder used by the templates.
func (r *Renderer) Images() content.ImageURLBuilder {
	return r.images
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), flashKey, message)
		r.sessionManager.Put(req.Context(), flashTypeKey, flashType)
	}
}

// SetCommentState records the outcome of a form submission for the post page
// the reader is redirected to.
func (r *Renderer) SetCommentState(req *http.Request, slug, state string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), commentStateKey+slug, state)
	}
}

// PopCommentState returns and clears the recorded form state for slug.
func (r *Renderer) PopCommentState(req *http.Request, slug string) string {
	return r.popString(req, commentStateKey+slug)
}

// popString reads and clears key. Requests that did not pass through the
// session middleware have nothing to pop; scs panics on those, so the panic
// is turned into an empty value.
func (r *Renderer) popString(req *http.Request, key string) (value string) {
	if r.sessionManager == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			value = ""
		}
	}()
	return r.sessionManager.PopString(req.Context(), key)
}
