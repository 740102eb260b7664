package model

import (
	"path"
	"time"

	"gorm.io/datatypes"
)

const (
	AssetStatusActive = 0

	categoryImage   = "image"
	variantOriginal = "original"
)

// ResponsiveImage is one stored image variant.
type ResponsiveImage struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ResponsiveImages is keyed "<category>_<variant>", e.g. "image_small".
type ResponsiveImages map[string]ResponsiveImage

// Manipulations maps a variant name to the transform that produced it.
type Manipulations map[string]map[string]any

type Asset struct {
	ID             uint64   `gorm:"primaryKey;autoIncrement" json:"-"`
	UID            string   `gorm:"type:varchar(36);not null;uniqueIndex" json:"uid"`
	Name           string   `gorm:"type:varchar(64);not null;uniqueIndex" json:"name"`
	OriginalName   string   `gorm:"type:varchar(512);not null" json:"original_name"`
	Title          *string  `gorm:"type:varchar(255)" json:"title"`
	CollectionName *string  `gorm:"type:varchar(255)" json:"collection_name"`
	ModelType      string   `gorm:"type:varchar(16);not null;index" json:"model_type"`
	Folder         string   `gorm:"type:varchar(1024);not null" json:"folder"`
	MimeType       string   `gorm:"type:varchar(255);not null" json:"mime_type"`
	Extension      string   `gorm:"type:varchar(16);not null" json:"extension"`
	Disk           string   `gorm:"type:varchar(32);not null" json:"disk"`
	Size           int64    `gorm:"not null" json:"size"`
	Status         int      `gorm:"not null;default:0" json:"status"`
	AspectRatio    *float64 `json:"aspect_ratio"`

	Manipulations    datatypes.JSONType[Manipulations]    `swaggertype:"object" json:"manipulations"`
	CustomProperties datatypes.JSONType[map[string]any]   `swaggertype:"object" json:"custom_properties"`
	ResponsiveImages datatypes.JSONType[ResponsiveImages] `swaggertype:"object" json:"responsive_images"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Asset) TableName() string { return "media_assets" }

func (a *Asset) IsImage() bool { return a.ModelType == categoryImage }

// FileName is the stored file name of the primary file.
func (a *Asset) FileName() string {
	if a.Extension == "" {
		return a.Name
	}
	return a.Name + "." + a.Extension
}

// PrimaryKey is the storage key of the file the asset was uploaded as: the
// original variant for images, the single file otherwise.
func (a *Asset) PrimaryKey() string {
	if a.IsImage() {
		return path.Join(a.Folder, variantOriginal, a.FileName())
	}
	return path.Join(a.Folder, a.FileName())
}
