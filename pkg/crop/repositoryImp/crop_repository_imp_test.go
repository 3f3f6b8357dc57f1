package repositoryImp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"agrisentry/database"
	"agrisentry/entities"
	"agrisentry/pkg/crop/repository"
)

func newRepo(t *testing.T) repository.CropRepository {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	return New(db)
}

func crop(uid, name string) *entities.Crop {
	return &entities.Crop{
		UserID:       uid,
		Name:         name,
		CropType:     "rice",
		FieldArea:    1.5,
		PlantingDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		HealthStatus: entities.HealthHealthy,
		GrowthStage:  entities.StageSeedling,
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	r := newRepo(t)
	for _, c := range []*entities.Crop{crop("u1", "North A"), crop("u2", "Other"), crop("u1", "South B")} {
		require.NoError(t, r.Create(c))
	}

	out, err := r.ListByUser("u1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "South B", out[0].Name)
	assert.Equal(t, "North A", out[1].Name)
	assert.Equal(t, 1.5, out[1].FieldArea)
	assert.True(t, out[1].PlantingDate.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))

	none, err := r.ListByUser("nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindAndDeleteAreScopedToUser(t *testing.T) {
	r := newRepo(t)
	c := crop("u1", "North A")
	require.NoError(t, r.Create(c))
	require.NotZero(t, c.CropID)

	got, err := r.FindByID(c.CropID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "rice", got.CropType)

	_, err = r.FindByID(c.CropID, "u2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, r.Delete(c.CropID, "u2"), gorm.ErrRecordNotFound)
	require.NoError(t, r.Delete(c.CropID, "u1"))
	assert.ErrorIs(t, r.Delete(c.CropID, "u1"), gorm.ErrRecordNotFound)
}
