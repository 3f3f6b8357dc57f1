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
	"agrisentry/pkg/activity/repository"
)

func newRepo(t *testing.T) repository.ActivityRepository {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	return New(db)
}

func day(d int) time.Time { return time.Date(2024, 7, d, 9, 0, 0, 0, time.UTC) }

func seed(t *testing.T, r repository.ActivityRepository) {
	t.Helper()
	for _, a := range []entities.Activity{
		{UserID: "u1", Type: entities.ActivityIrrigation, Description: "drip 2h", ActivityDate: day(1)},
		{UserID: "u1", Type: entities.ActivitySowing, Description: "wheat", ActivityDate: day(3)},
		{UserID: "u1", Type: entities.ActivityIrrigation, Description: "flood", ActivityDate: day(5)},
		{UserID: "u2", Type: entities.ActivityHarvest, Description: "corn", ActivityDate: day(4)},
	} {
		a := a
		require.NoError(t, r.Create(&a))
	}
}

func TestListByUserFilters(t *testing.T) {
	r := newRepo(t)
	seed(t, r)

	all, err := r.ListByUser("u1", repository.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "flood", all[0].Description)
	assert.Equal(t, "drip 2h", all[2].Description)

	from, to := day(2), day(5)
	ranged, err := r.ListByUser("u1", repository.Filter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "wheat", ranged[0].Description)

	typed, err := r.ListByUser("u1", repository.Filter{Type: entities.ActivityIrrigation})
	require.NoError(t, err)
	assert.Len(t, typed, 2)
}

func TestFindAndDeleteAreScopedToUser(t *testing.T) {
	r := newRepo(t)
	a := &entities.Activity{UserID: "u1", Type: entities.ActivityOther, Description: "fence", ActivityDate: day(1)}
	require.NoError(t, r.Create(a))

	_, err := r.FindByID(a.ActivityID, "u2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.Delete(a.ActivityID, "u2"), gorm.ErrRecordNotFound)

	got, err := r.FindByID(a.ActivityID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "fence", got.Description)

	require.NoError(t, r.Delete(a.ActivityID, "u1"))
	_, err = r.FindByID(a.ActivityID, "u1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateAndRecent(t *testing.T) {
	r := newRepo(t)
	seed(t, r)

	recent, err := r.Recent("u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "flood", recent[0].Description)

	recent[0].Description = "flood 3h"
	require.NoError(t, r.Update(&recent[0]))
	got, err := r.FindByID(recent[0].ActivityID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "flood 3h", got.Description)
}
