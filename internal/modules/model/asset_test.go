package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsset_PrimaryKey(t *testing.T) {
	tests := []struct {
		name  string
		asset Asset
		want  string
	}{
		{
			name:  "image without folder",
			asset: Asset{ModelType: "image", Folder: "images", Name: "abc", Extension: "png"},
			want:  "images/original/abc.png",
		},
		{
			name:  "image with folder",
			asset: Asset{ModelType: "image", Folder: "images/products/2024", Name: "abc", Extension: "png"},
			want:  "images/products/2024/original/abc.png",
		},
		{
			name:  "pdf",
			asset: Asset{ModelType: "pdf", Folder: "pdf/reports", Name: "r1", Extension: "pdf"},
			want:  "pdf/reports/r1.pdf",
		},
		{
			name:  "no extension",
			asset: Asset{ModelType: "audio", Folder: "audio", Name: "t"},
			want:  "audio/t",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.asset.PrimaryKey())
		})
	}
}

func TestAsset_IsImage(t *testing.T) {
	assert.True(t, (&Asset{ModelType: "image"}).IsImage())
	assert.False(t, (&Asset{ModelType: "video"}).IsImage())
}
