package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	assert.NoError(t, err)
	assert.Equal(t, []string{"00001_create_users.sql", "00002_create_user_credits.sql"}, files)
}

func TestUp_UsesSeam(t *testing.T) {
	original := gooseUpContext
	defer func() { gooseUpContext = original }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	assert.NoError(t, Up(context.Background(), nil))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, Up(context.Background(), nil), "boom")
}
