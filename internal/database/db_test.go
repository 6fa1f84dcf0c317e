package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupamsaini/interviewprep/internal/config"
	"github.com/rupamsaini/interviewprep/schemas"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.DatabaseConfig
		wantDriver string
		wantErr    bool
	}{
		{
			name: "mysql with pool settings",
			cfg: config.DatabaseConfig{
				Driver:          "mysql",
				Host:            "localhost",
				Port:            3306,
				Database:        "testdb",
				Username:        "testuser",
				Password:        "testpass",
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 300,
			},
			wantDriver: "mysql",
		},
		{
			name:       "sqlite file",
			cfg:        config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "nested", "questions.db")},
			wantDriver: "sqlite",
		},
		{
			name:    "sqlite without path",
			cfg:     config.DatabaseConfig{Driver: "sqlite"},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     config.DatabaseConfig{Driver: "postgres"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			defer got.Close()

			assert.Equal(t, tt.wantDriver, got.DriverName())
		})
	}
}

func TestMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "questions.db")})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db, schemas.Migrations))
	// applying twice is a no-op
	require.NoError(t, Migrate(ctx, db, schemas.Migrations))

	var versions []string
	require.NoError(t, db.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations ORDER BY version"))
	assert.Equal(t, []string{"0001_create_questions", "0002_create_preferences"}, versions)

	_, err = db.ExecContext(ctx, "INSERT INTO preferences (name, value) VALUES (?, ?)", "weekend_mode_enabled", "false")
	require.NoError(t, err)
	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM questions"))
	assert.Equal(t, 0, count)
}

func TestMigrate_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := fstest.MapFS{
		"migrations/mysql/0001_first.sql":  {Data: []byte("CREATE TABLE a (id INT);")},
		"migrations/mysql/0002_second.sql": {Data: []byte("CREATE TABLE b (id INT); CREATE TABLE c (id INT);")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_first"))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE c").WillReturnError(fmt.Errorf("table exists"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), sqlx.NewDb(db, "mysql"), migrations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0002_second")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx(t *testing.T) {
	tests := []struct {
		name      string
		fn        func(ctx context.Context, tx *sqlx.Tx) error
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "commits on success",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				_, err := tx.ExecContext(ctx, "DELETE FROM questions")
				return err
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM questions").WillReturnResult(sqlmock.NewResult(0, 3))
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back on error",
			fn: func(ctx context.Context, tx *sqlx.Tx) error {
				return fmt.Errorf("boom")
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			err = RunInTx(context.Background(), sqlx.NewDb(db, "sqlite"), tt.fn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
