package content

import "testing"

func TestImageURLBuilder(t *testing.T) {
	b := NewImageURLBuilder("proj", "production")

	tests := []struct {
		name     string
		ref      string
		expanded string
		opts     ImageOptions
		want     string
	}{
		{
			name: "plain reference",
			ref:  "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg",
			want: "https://cdn.sanity.io/images/proj/production/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg",
		},
		{
			name: "with width",
			ref:  "image-abc-10x20-png",
			opts: ImageOptions{Width: 640},
			want: "https://cdn.sanity.io/images/proj/production/abc-10x20.png?auto=format&w=640",
		},
		{
			name: "with crop",
			ref:  "image-abc-10x20-png",
			opts: ImageOptions{Width: 48, Height: 48, Fit: "crop"},
			want: "https://cdn.sanity.io/images/proj/production/abc-10x20.png?auto=format&fit=crop&h=48&w=48",
		},
		{
			name:     "expanded url wins",
			ref:      "image-abc-10x20-png",
			expanded: "https://cdn.example.com/a.png",
			want:     "https://cdn.example.com/a.png",
		},
		{
			name:     "expanded url with query",
			expanded: "https://cdn.example.com/a.png?v=1",
			opts:     ImageOptions{Width: 100},
			want:     "https://cdn.example.com/a.png?v=1&auto=format&w=100",
		},
		{name: "file reference", ref: "file-abc-pdf", want: ""},
		{name: "missing dimensions", ref: "image-abc-large-png", want: ""},
		{name: "empty", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.AssetURL(tt.ref, tt.expanded, tt.opts); got != tt.want {
				t.Errorf("AssetURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageURLBuilder_URL(t *testing.T) {
	b := NewImageURLBuilder("proj", "production")

	if got := b.URL(nil, ImageOptions{}); got != "" {
		t.Errorf("URL(nil) = %q, want empty", got)
	}
	if got := b.URL(&Image{}, ImageOptions{}); got != "" {
		t.Errorf("URL(no asset) = %q, want empty", got)
	}

	img := &Image{Asset: &ImageAsset{Ref: "image-abc-10x20-png"}}
	if got := b.URL(img, ImageOptions{}); got != "https://cdn.sanity.io/images/proj/production/abc-10x20.png" {
		t.Errorf("URL() = %q", got)
	}
}
