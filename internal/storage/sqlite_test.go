package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"quickspese/internal/storage"
	"quickspese/internal/storage/storagetest"
)

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.StateStore { return newRepo(t) })
}

func TestSQLiteRepositoryRevision(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	rev, err := repo.Revision(ctx)
	require.NoError(t, err)
	require.Zero(t, rev)

	require.NoError(t, repo.Save(ctx, storagetest.SampleState()))
	require.NoError(t, repo.Save(ctx, storagetest.SampleState()))

	rev, err = repo.Revision(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), rev)
	require.NoError(t, repo.Ping(ctx))
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, storagetest.SampleState()))
	require.NoError(t, repo.Close())

	// Migrations are idempotent and data survives a reopen.
	repo, err = storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, storagetest.SampleState(), got)
}
