package repo

import (
	"context"

	"github.com/memodb-io/assetbucket/internal/modules/model"
	"gorm.io/gorm"
)

// AssetRepo is the metadata record store. Lookups of unknown assets return
// gorm.ErrRecordNotFound.
type AssetRepo interface {
	Create(ctx context.Context, a *model.Asset) error
	GetByName(ctx context.Context, name string) (*model.Asset, error)
	GetByUID(ctx context.Context, uid string) (*model.Asset, error)
	Delete(ctx context.Context, a *model.Asset) error
}

type assetRepo struct{ db *gorm.DB }

func NewAssetRepo(db *gorm.DB) AssetRepo {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assetRepo) GetByName(ctx context.Context, name string) (*model.Asset, error) {
	var a model.Asset
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) GetByUID(ctx context.Context, uid string) (*model.Asset, error) {
	var a model.Asset
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes the record. A record that is already gone reports
// gorm.ErrRecordNotFound.
func (r *assetRepo) Delete(ctx context.Context, a *model.Asset) error {
	res := r.db.WithContext(ctx).Where("uid = ?", a.UID).Delete(&model.Asset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
