package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"quickspese/internal/config"
	"quickspese/internal/core"
	"quickspese/internal/log"
)

func TestNewCommandServiceOverFileBackend(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		DataBackend:   config.BackendFile,
		StateFilePath: filepath.Join(t.TempDir(), "state.json"),
		WeekStart:     "monday",
		UndoLimit:     5,
	}

	res, err := NewBackend(ctx, log.Nop(), cfg)
	require.NoError(t, err)
	require.Nil(t, res.Publisher, "no broker configured")

	svc := NewCommandService(cfg, res, log.Nop())
	out, err := svc.Execute(ctx, "spent 7 on coffee")
	require.NoError(t, err)
	require.True(t, out.Changed)
	require.NoError(t, res.Cleanup())

	reopened, err := NewBackend(ctx, log.Nop(), cfg)
	require.NoError(t, err)
	defer reopened.Cleanup()

	state, err := reopened.Store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Expenses, 1)
	require.Equal(t, int64(700), state.Expenses[0].AmountCents)
	require.Equal(t, core.USD, state.Expenses[0].Currency)
}

func TestNewBackendRejectsUnknownType(t *testing.T) {
	_, err := NewBackend(context.Background(), log.Nop(), &config.Config{DataBackend: "postgres"})
	require.Error(t, err)
}
