package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventra/eventra/internal/models"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file:db_test?mode=memory&cache=shared&_foreign_keys=1"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, model := range []any{
		&models.User{},
		&models.Team{},
		&models.CalendarEntry{},
		&models.Notification{},
	} {
		require.True(t, db.Migrator().HasTable(model))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestMigrateNilHandle(t *testing.T) {
	require.Error(t, Migrate(nil))
}
