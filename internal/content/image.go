package content

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const imageCDN = "https://cdn.sanity.io/images"

// ImageURLBuilder turns image asset references into CDN URLs.
type ImageURLBuilder struct {
	projectID string
	dataset   string
}

// ImageOptions are optional CDN transformations.
type ImageOptions struct {
	Width  int
	Height int
	Fit    string // e.g. "crop", "max"
}

// NewImageURLBuilder returns a builder for one project and dataset.
func NewImageURLBuilder(projectID, dataset string) ImageURLBuilder {
	return ImageURLBuilder{projectID: projectID, dataset: dataset}
}

// URL returns the CDN URL for img, or "" when the image has no asset.
func (b ImageURLBuilder) URL(img *Image, opts ImageOptions) string {
	if img.IsZero() {
		return ""
	}
	return b.AssetURL(img.Asset.Ref, img.Asset.URL, opts)
}

// AssetURL builds a URL from an asset reference of the form
// image-<id>-<width>x<height>-<format>. An expanded URL takes precedence.
// Unparseable references yield "".
func (b ImageURLBuilder) AssetURL(ref, expanded string, opts ImageOptions) string {
	base := expanded
	if base == "" {
		file, ok := assetFile(ref)
		if !ok {
			return ""
		}
		base = fmt.Sprintf("%s/%s/%s/%s", imageCDN, b.projectID, b.dataset, file)
	}

	q := url.Values{}
	if opts.Width > 0 {
		q.Set("w", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		q.Set("h", strconv.Itoa(opts.Height))
	}
	if opts.Fit != "" {
		q.Set("fit", opts.Fit)
	}
	if len(q) == 0 {
		return base
	}
	q.Set("auto", "format")

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

func assetFile(ref string) (string, bool) {
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" || parts[1] == "" || parts[3] == "" {
		return "", false
	}
	if _, _, ok := strings.Cut(parts[2], "x"); !ok {
		return "", false
	}
	return fmt.Sprintf("%s-%s.%s", parts[1], parts[2], parts[3]), true
}
