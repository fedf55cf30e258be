package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kloza/internal/config"
	"kloza/internal/domain"
)

func sqliteConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Driver = config.DriverSQLite
	cfg.Log.Level = "error"
	return t.TempDir(), cfg
}

func TestOpenSQLiteWorkspace(t *testing.T) {
	ctx := context.Background()
	ws, cfg := sqliteConfig(t)

	a, err := Open(ctx, ws, cfg)
	require.NoError(t, err)
	defer a.Close(ctx)

	require.NoError(t, a.Store.Ping(ctx))
	idea, err := a.Engine.CreateIdea(ctx, domain.CreateIdeaDTO{Title: "t", Description: "d", CreatedBy: "u"})
	require.NoError(t, err)
	assert.Equal(t, domain.IdeaDraft, idea.Status)
	assert.FileExists(t, filepath.Join(ws, cfg.Store.SQLite.Path))
}

func TestOpenReusesMigratedDatabase(t *testing.T) {
	ctx := context.Background()
	ws, cfg := sqliteConfig(t)

	first, err := Open(ctx, ws, cfg)
	require.NoError(t, err)
	_, err = first.Engine.CreateIdea(ctx, domain.CreateIdeaDTO{Title: "t", Description: "d", CreatedBy: "u"})
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second, err := Open(ctx, ws, cfg)
	require.NoError(t, err)
	defer second.Close(ctx)
	n, err := second.Store.CountIdeas(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), t.TempDir(), config.Store{Driver: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestOpenRequiresConfig(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, "/data/k.db", SQLitePath("ws", "/data/k.db"))
	assert.Equal(t, filepath.Join("ws", ".kloza", "kloza.db"), SQLitePath("ws", ".kloza/kloza.db"))
	assert.Equal(t, filepath.Join(".kloza", "kloza.db"), SQLitePath("", ".kloza/kloza.db"))
}

func TestHandlerServesHealth(t *testing.T) {
	ctx := context.Background()
	ws, cfg := sqliteConfig(t)
	a, err := Open(ctx, ws, cfg)
	require.NoError(t, err)
	defer a.Close(ctx)

	h, err := a.Handler()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Server is running"}`, rec.Body.String())
}
