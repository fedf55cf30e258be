package repo_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"kloza/internal/db"
	"kloza/internal/migrate"
	"kloza/internal/repo"
)

func TestMongoRepo(t *testing.T) {
	uri := os.Getenv("KLOZA_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("KLOZA_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, database, err := db.ConnectMongo(ctx, uri, "kloza_test_"+repo.NewID())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, migrate.EnsureMongoIndexes(ctx, database))
	exerciseRepo(t, repo.Mongo{Client: client, DB: database})
}

func TestPostgresRepo(t *testing.T) {
	dsn := os.Getenv("KLOZA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KLOZA_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.ConnectPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, migrate.MigratePostgres(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE discussions, kollabs, ideas`)
	require.NoError(t, err)
	exerciseRepo(t, repo.Postgres{Pool: pool})
}
