package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agrisentry/entities"
)

func TestOpenSQLiteMigrates(t *testing.T) {
	db, err := OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)

	for _, m := range []interface{}{&entities.Activity{}, &entities.ChatMessage{}, &entities.KBDocument{}, &entities.KBChunk{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agri.db")
	db, err := OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Create(&entities.Activity{UserID: "u1", Type: entities.ActivityHarvest, Description: "wheat"}).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	db, err = OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	var n int64
	require.NoError(t, db.Model(&entities.Activity{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
