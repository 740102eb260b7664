package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/memodb-io/assetbucket/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupAssetTestDB connects to a local postgres, skipping when there is none.
func setupAssetTestDB(t *testing.T) *gorm.DB {
	dsn := "host=localhost user=asset_user password=asset_pass dbname=assets_bucket port=15432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Skip("Test database not available, skipping integration tests")
		return nil
	}
	require.NoError(t, db.AutoMigrate(&model.Asset{}))
	return db
}

func TestAssetRepo_Lifecycle(t *testing.T) {
	db := setupAssetTestDB(t)
	if db == nil {
		return
	}
	r := NewAssetRepo(db)
	ctx := context.Background()

	a := &model.Asset{
		UID:              uuid.NewString(),
		Name:             uuid.NewString(),
		OriginalName:     "report.pdf",
		ModelType:        "pdf",
		Folder:           "pdf/reports",
		MimeType:         "application/pdf",
		Extension:        "pdf",
		Disk:             "local",
		Size:             1234,
		CustomProperties: datatypes.NewJSONType(map[string]any{}),
	}
	require.NoError(t, r.Create(ctx, a))
	defer db.Exec("DELETE FROM media_assets WHERE uid = ?", a.UID)

	byName, err := r.GetByName(ctx, a.Name)
	require.NoError(t, err)
	assert.Equal(t, a.UID, byName.UID)
	assert.Nil(t, byName.ResponsiveImages.Data())

	byUID, err := r.GetByUID(ctx, a.UID)
	require.NoError(t, err)
	assert.Equal(t, a.Name, byUID.Name)

	dup := *a
	dup.ID = 0
	dup.UID = uuid.NewString()
	assert.Error(t, r.Create(ctx, &dup), "name must be unique")

	require.NoError(t, r.Delete(ctx, a))
	_, err = r.GetByName(ctx, a.Name)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.Delete(ctx, a), gorm.ErrRecordNotFound)
}
