package media

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageConfig_Layout(t *testing.T) {
	cfg := NewStorageConfig("/srv/storage", "/files/")

	tests := []struct {
		name       string
		in         LayoutInput
		wantKey    string
		wantPublic string
	}{
		{
			name:       "image without folder",
			in:         LayoutInput{Category: CategoryImage, Variant: "small", BaseName: "abc", Extension: "png"},
			wantKey:    "images/small/abc.png",
			wantPublic: "/files/images/small/abc.png",
		},
		{
			name:       "image with folder",
			in:         LayoutInput{Category: CategoryImage, Folder: "products/2024", Variant: "high", BaseName: "abc", Extension: "jpg"},
			wantKey:    "images/products/2024/high/abc.jpg",
			wantPublic: "/files/images/products/2024/high/abc.jpg",
		},
		{
			name:       "pdf ignores variant",
			in:         LayoutInput{Category: CategoryPDF, Folder: "docs", Variant: "small", BaseName: "abc", Extension: "pdf"},
			wantKey:    "pdf/docs/abc.pdf",
			wantPublic: "/files/pdf/docs/abc.pdf",
		},
		{
			name:       "audio without folder",
			in:         LayoutInput{Category: CategoryAudio, BaseName: "abc", Extension: "mp3"},
			wantKey:    "audio/abc.mp3",
			wantPublic: "/files/audio/abc.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := cfg.Layout(tt.in)
			assert.Equal(t, tt.wantKey, loc.Key)
			assert.Equal(t, tt.wantPublic, loc.PublicPath)
			assert.Equal(t, filepath.Join("/srv/storage", filepath.FromSlash(tt.wantKey)), loc.DiskPath)

			key, ok := cfg.KeyFromPublicPath(loc.PublicPath)
			assert.True(t, ok)
			assert.Equal(t, loc.Key, key)
		})
	}
}

func TestStorageConfig_Folder(t *testing.T) {
	cfg := NewStorageConfig("/srv/storage", "/files")

	assert.Equal(t, "images", cfg.Folder(CategoryImage, ""))
	assert.Equal(t, "images/products/2024", cfg.Folder(CategoryImage, "products/2024"))
	assert.Equal(t, "video/clips", cfg.Folder(CategoryVideo, "clips"))

	assert.Equal(t, "", cfg.SubFolder(CategoryImage, "images"))
	assert.Equal(t, "products/2024", cfg.SubFolder(CategoryImage, "images/products/2024"))

	cat, ok := cfg.CategoryForDir("images")
	assert.True(t, ok)
	assert.Equal(t, CategoryImage, cat)
	_, ok = cfg.CategoryForDir("docs")
	assert.False(t, ok)
}

func TestStorageConfig_KeyFromPublicPath(t *testing.T) {
	cfg := NewStorageConfig("/srv/storage", "/files")

	_, ok := cfg.KeyFromPublicPath("/other/images/a.png")
	assert.False(t, ok)
	_, ok = cfg.KeyFromPublicPath("/files/")
	assert.False(t, ok)
}

func TestStorageConfig_Variant(t *testing.T) {
	cfg := NewStorageConfig("/srv/storage", "/files")

	v, ok := cfg.Variant("high")
	assert.True(t, ok)
	assert.True(t, v.ForceJPEG)
	assert.Equal(t, 70, v.Quality)

	_, ok = cfg.Variant("huge")
	assert.False(t, ok)
	assert.Len(t, cfg.Variants(), 5)
}

func TestResponsiveKey(t *testing.T) {
	assert.Equal(t, "image_small", ResponsiveKey(CategoryImage, "small"))
}
