package postgres_test

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-circulation/pkg/postgres"
)

func TestDB_DSN(t *testing.T) {
	t.Parallel()
	cfg := postgres.DB{Host: "db", Port: "5432", Username: "library", Password: "p@ss", NameDB: "library", SSLMode: "disable"}
	require.Equal(t, "postgres://library:p%40ss@db:5432/library?sslmode=disable", cfg.DSN())
}

// TestMigrate needs a database; set LIBRARY_TEST_DB_HOST to run it.
func TestMigrate(t *testing.T) {
	host := os.Getenv("LIBRARY_TEST_DB_HOST")
	if host == "" {
		t.Skip("LIBRARY_TEST_DB_HOST is not set")
	}
	cfg := postgres.DB{Host: host, Port: "5432", Username: "postgres", Password: os.Getenv("LIBRARY_TEST_DB_PASSWORD"),
		NameDB: "postgres", SSLMode: "disable", MaxConns: 2, MinConns: 1}
	migrations := fstest.MapFS{
		"00001_migrate_check.sql": {Data: []byte("-- +goose Up\ncreate table if not exists migrate_check (id int);\n-- +goose Down\ndrop table migrate_check;\n")},
	}
	pool, err := postgres.NewPostgresDB(context.Background(), &cfg, migrations)
	require.NoError(t, err)
	defer pool.Close()

	// a second run is a no-op
	require.NoError(t, postgres.Migrate(pool, migrations))
}
