// Package media holds the pure parts of asset ingestion: content
// classification, the on-disk layout and image variant generation.
package media

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the closed set of asset kinds the bucket accepts.
type Category string

const (
	CategoryImage Category = "image"
	CategoryPDF   Category = "pdf"
	CategoryAudio Category = "audio"
	CategoryVideo Category = "video"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// Classify maps a content-sniffed MIME type to its category. Rules are checked
// in order and the first match wins.
func Classify(mimeType string) (Category, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return CategoryImage, nil
	case mt == "application/pdf":
		return CategoryPDF, nil
	case strings.HasPrefix(mt, "audio/"):
		return CategoryAudio, nil
	case strings.HasPrefix(mt, "video/"):
		return CategoryVideo, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}

// ParseCategory is the inverse of Category.String for stored records.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case CategoryImage, CategoryPDF, CategoryAudio, CategoryVideo:
		return c, true
	}
	return "", false
}

func (c Category) String() string { return string(c) }

// DefaultExtension is used when sniffing could not name an extension.
func (c Category) DefaultExtension() string {
	switch c {
	case CategoryImage:
		return "jpg"
	case CategoryPDF:
		return "pdf"
	case CategoryAudio:
		return "mp3"
	case CategoryVideo:
		return "mp4"
	}
	return "bin"
}
