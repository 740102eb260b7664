package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// VariantOriginal is the variant that must always be produced.
const VariantOriginal = "original"

// VariantSpec is one row of the image variant table.
type VariantSpec struct {
	Name string
	// MaxDimension bounds the longest edge; 0 keeps the source size.
	MaxDimension int
	// ForceJPEG re-encodes the variant as JPEG whatever the source format.
	ForceJPEG bool
	// Quality applies to JPEG output only; 0 means the encoder default.
	Quality int
	// Blur is the Gaussian blur sigma applied after resizing.
	Blur float64
}

// Variants is the fixed derivative table for images.
var Variants = []VariantSpec{
	{Name: "small", MaxDimension: 320},
	{Name: "medium", MaxDimension: 800},
	{Name: "high", MaxDimension: 1600, ForceJPEG: true, Quality: 70},
	{Name: VariantOriginal, Quality: 95},
	{Name: "placeholder", MaxDimension: 20, Blur: 2},
}

// Extension returns the file extension a variant is stored under.
func (v VariantSpec) Extension(sourceExt string) string {
	if v.ForceJPEG {
		return "jpg"
	}
	return sourceExt
}

// Manipulation describes the transform recorded on the asset. The original
// variant is untransformed and has none.
func (v VariantSpec) Manipulation() map[string]any {
	if v.MaxDimension == 0 && v.Blur == 0 && !v.ForceJPEG {
		return nil
	}
	m := map[string]any{}
	if v.MaxDimension > 0 {
		m["max_dimension"] = v.MaxDimension
	}
	if v.ForceJPEG {
		m["format"] = "jpeg"
		m["quality"] = v.Quality
	}
	if v.Blur > 0 {
		m["blur"] = v.Blur
	}
	return m
}

// DefaultMaxPixels caps width*height of a source image when no limit is given.
const DefaultMaxPixels int64 = 89_478_485

// TranscodeExtension is used for variants of sources that can be decoded but
// not written back in their own format.
const TranscodeExtension = "png"

var (
	ErrDecode        = errors.New("cannot decode image")
	ErrTooManyPixels = fmt.Errorf("%w: too many pixels", ErrDecode)
)

// decodeOnly lists formats with a decoder but no encoder. Their original is
// kept byte for byte and other variants become PNG.
var decodeOnly = map[string]string{
	"webp": "image/webp",
}

// Rendition is one encoded variant.
type Rendition struct {
	Spec     VariantSpec
	Data     []byte
	Width    int
	Height   int
	MimeType string
	// Transcoded is set when the variant was written as PNG instead of the
	// source format.
	Transcoded bool
}

// Extension returns the file extension the rendition is stored under.
func (r Rendition) Extension(sourceExt string) string {
	if r.Transcoded {
		return TranscodeExtension
	}
	return r.Spec.Extension(sourceExt)
}

// Generated is the result of running the variant table over one source image.
type Generated struct {
	Width      int
	Height     int
	Format     string
	Renditions []Rendition
	// Failures holds variants whose encoding failed; they are left out of Renditions.
	Failures map[string]error
}

// encodeFunc is swapped in tests.
var encodeFunc = func(w io.Writer, img image.Image, format imaging.Format, quality int) error {
	return imaging.Encode(w, img, format, imaging.JPEGQuality(quality))
}

// Generate decodes src and renders every variant in specs. Sources declaring
// more than maxPixels pixels are rejected before decoding; maxPixels <= 0 uses
// DefaultMaxPixels. A decode failure or a failure of the original variant is
// an error; any other variant that fails to encode is reported in Failures and
// skipped.
func Generate(src []byte, specs []VariantSpec, maxPixels int64) (*Generated, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}

	img, formatName, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	srcMime, transcode := decodeOnly[formatName]
	format, err := imaging.FormatFromExtension(formatName)
	switch {
	case transcode:
		format = imaging.PNG
	case err != nil:
		return nil, fmt.Errorf("%w: %s cannot be re-encoded", ErrDecode, formatName)
	}

	b := img.Bounds()
	out := &Generated{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   formatName,
		Failures: map[string]error{},
	}

	for _, spec := range specs {
		if transcode && spec.Manipulation() == nil {
			out.Renditions = append(out.Renditions, Rendition{
				Spec:     spec,
				Data:     src,
				Width:    out.Width,
				Height:   out.Height,
				MimeType: srcMime,
			})
			continue
		}
		r, err := render(img, format, spec)
		if err != nil {
			if spec.Name == VariantOriginal {
				return nil, fmt.Errorf("encode %s variant: %w", spec.Name, err)
			}
			out.Failures[spec.Name] = err
			continue
		}
		r.Transcoded = transcode && !spec.ForceJPEG
		out.Renditions = append(out.Renditions, r)
	}
	return out, nil
}

func render(src image.Image, format imaging.Format, spec VariantSpec) (Rendition, error) {
	img := src
	b := src.Bounds()
	if spec.MaxDimension > 0 {
		w, h := FitWithin(b.Dx(), b.Dy(), spec.MaxDimension)
		if w != b.Dx() || h != b.Dy() {
			img = imaging.Resize(src, w, h, imaging.Lanczos)
		}
	}
	if spec.Blur > 0 {
		img = imaging.Blur(img, spec.Blur)
	}

	if spec.ForceJPEG {
		format = imaging.JPEG
	}
	quality := spec.Quality
	if quality == 0 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := encodeFunc(&buf, img, format, quality); err != nil {
		return Rendition{}, err
	}
	rb := img.Bounds()
	return Rendition{
		Spec:     spec,
		Data:     buf.Bytes(),
		Width:    rb.Dx(),
		Height:   rb.Dy(),
		MimeType: formatMime(format),
	}, nil
}

// FitWithin scales w×h down so the longest edge is at most maxDim, keeping the
// aspect ratio. It never scales up.
func FitWithin(w, h, maxDim int) (int, int) {
	longest := max(w, h)
	if maxDim <= 0 || longest <= maxDim {
		return w, h
	}
	scale := float64(maxDim) / float64(longest)
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return min(nw, maxDim), min(nh, maxDim)
}

func formatMime(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.PNG:
		return "image/png"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	}
	return "application/octet-stream"
}
