package service

import (
	"time"

	"github.com/memodb-io/assetbucket/internal/modules/model"
	"github.com/memodb-io/assetbucket/internal/pkg/media"
	"gorm.io/datatypes"
)

// StoredVariant is an image variant that has been written to storage.
type StoredVariant struct {
	Spec     media.VariantSpec
	Location media.Location
	Size     int64
	Width    int
	Height   int
}

type BuildInput struct {
	UID          string
	Name         string
	OriginalName string
	Category     media.Category
	// Folder is the category-prefixed folder stored on the record.
	Folder    string
	MimeType  string
	Extension string
	Disk      string
	// Size is the byte length of the upload.
	Size int64
	// Width, Height and Variants are only set for images.
	Width    int
	Height   int
	Variants []StoredVariant
	Now      time.Time
}

// BuildAsset assembles the metadata record for a stored upload. Images get one
// responsive_images entry per stored variant and a manipulation for each
// transformed one; other categories get neither.
func BuildAsset(in BuildInput) *model.Asset {
	a := &model.Asset{
		UID:          in.UID,
		Name:         in.Name,
		OriginalName: in.OriginalName,
		ModelType:    in.Category.String(),
		Folder:       in.Folder,
		MimeType:     in.MimeType,
		Extension:    in.Extension,
		Disk:         in.Disk,
		Size:         in.Size,
		Status:       model.AssetStatusActive,
		CreatedAt:    in.Now,
		UpdatedAt:    in.Now,
	}

	if in.Category != media.CategoryImage {
		a.CustomProperties = datatypes.NewJSONType(map[string]any{})
		return a
	}

	a.CustomProperties = datatypes.NewJSONType(map[string]any{
		"width":  in.Width,
		"height": in.Height,
	})
	if in.Height > 0 {
		ratio := float64(in.Width) / float64(in.Height)
		a.AspectRatio = &ratio
	}

	manipulations := model.Manipulations{}
	responsive := make(model.ResponsiveImages, len(in.Variants))
	for _, v := range in.Variants {
		responsive[media.ResponsiveKey(in.Category, v.Spec.Name)] = model.ResponsiveImage{
			Path:   v.Location.PublicPath,
			Size:   v.Size,
			Width:  v.Width,
			Height: v.Height,
		}
		if m := v.Spec.Manipulation(); m != nil {
			manipulations[v.Spec.Name] = m
		}
	}
	a.Manipulations = datatypes.NewJSONType(manipulations)
	a.ResponsiveImages = datatypes.NewJSONType(responsive)
	return a
}
