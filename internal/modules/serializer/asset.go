package serializer

import (
	"time"

	"github.com/memodb-io/assetbucket/internal/modules/model"
)

// AssetPayload is the public shape of an asset record.
type AssetPayload struct {
	UID              string                 `json:"uid"`
	OriginalName     string                 `json:"original_name"`
	Title            *string                `json:"title"`
	CollectionName   *string                `json:"collection_name"`
	Name             string                 `json:"name"`
	ModelType        string                 `json:"model_type"`
	Folder           string                 `json:"folder"`
	MimeType         string                 `json:"mime_type"`
	Extension        string                 `json:"extension"`
	Disk             string                 `json:"disk"`
	Size             int64                  `json:"size"`
	Status           int                    `json:"status"`
	Original         string                 `json:"original"`
	AspectRatio      *float64               `json:"aspect_ratio"`
	Manipulations    model.Manipulations    `json:"manipulations"`
	CustomProperties map[string]any         `json:"custom_properties"`
	ResponsiveImages model.ResponsiveImages `json:"responsive_images"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type AssetResponse struct {
	Asset AssetPayload `json:"asset"`
}

// NewAssetResponse wraps a record; original is the public path of its primary file.
func NewAssetResponse(a *model.Asset, original string) AssetResponse {
	custom := a.CustomProperties.Data()
	if custom == nil {
		custom = map[string]any{}
	}
	p := AssetPayload{
		UID:              a.UID,
		OriginalName:     a.OriginalName,
		Title:            a.Title,
		CollectionName:   a.CollectionName,
		Name:             a.Name,
		ModelType:        a.ModelType,
		Folder:           a.Folder,
		MimeType:         a.MimeType,
		Extension:        a.Extension,
		Disk:             a.Disk,
		Size:             a.Size,
		Status:           a.Status,
		Original:         original,
		AspectRatio:      a.AspectRatio,
		CustomProperties: custom,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.IsImage() {
		p.Manipulations = a.Manipulations.Data()
		p.ResponsiveImages = a.ResponsiveImages.Data()
	}
	return AssetResponse{Asset: p}
}

type DeletedResponse struct {
	Status string `json:"status" example:"deleted"`
	Name   string `json:"name,omitempty"`
	UID    string `json:"uid,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
