package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SQLiteStrategyStore {
	t.Helper()
	s, err := OpenStrategyStore(filepath.Join(t.TempDir(), "strategies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveGetRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, StrategyRecord{
		Name:       "momentum",
		Market:     "ETH/USD",
		RiskLabel:  "aggressive",
		GraphJSON:  `{"nodes":[],"edges":[]}`,
		ConfigJSON: `{"token":"ETH"}`,
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "momentum", got.Name)
	assert.Equal(t, `{"nodes":[],"edges":[]}`, got.GraphJSON)
}

func TestSaveUpdatesExisting(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, StrategyRecord{Name: "v1", GraphJSON: "{}", ConfigJSON: "{}"})
	require.NoError(t, err)

	saved.Name = "v2"
	updated, err := s.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "v2", updated.Name)

	all, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveRequiresName(t *testing.T) {
	s := newStore(t)
	_, err := s.Save(context.Background(), StrategyRecord{GraphJSON: "{}", ConfigJSON: "{}"})
	assert.Error(t, err)
}

func TestGetAndDeleteMissing(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrStrategyNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "nope"), ErrStrategyNotFound)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, StrategyRecord{Name: "tmp", GraphJSON: "{}", ConfigJSON: "{}"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, saved.ID))
	_, err = s.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrStrategyNotFound)
}
