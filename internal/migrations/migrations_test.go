package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(files, "sql/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"sql/00001_create_users.sql", "sql/00002_create_orders.sql"}, names)
}

func TestRunMigrations(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	t.Run("success", func(t *testing.T) {
		var gotDir string
		gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
			gotDir = dir
			return nil
		}
		require.NoError(t, RunMigrations(context.Background(), db, zap.NewNop().Sugar()))
		assert.Equal(t, migrationsDir, gotDir)
	})

	t.Run("error", func(t *testing.T) {
		gooseUp = func(context.Context, *sql.DB, string) error { return errors.New("boom") }
		err := RunMigrations(context.Background(), db, zap.NewNop().Sugar())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}
