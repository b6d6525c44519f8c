//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"charitytracker/internal/core"
)

// Run with: go test -tags=integration ./internal/storage/postgres

func setupRepository(t *testing.T, clock func() time.Time) *Repository {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("charitytracker_test"),
		tcpostgres.WithUsername("test_user"),
		tcpostgres.WithPassword("test_password"),
		tcpostgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"test": t.Name()}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	repo, err := NewWithClock(ctx, url, clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestPostgresLedger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	t1 := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	times := []time.Time{t1, t2, t2}
	clock := func() time.Time {
		t := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return t
	}
	repo := setupRepository(t, clock)

	require.NoError(t, repo.Ping(ctx))

	last, err := repo.MostRecent(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = repo.Append(ctx, "bad", core.Money{Cents: 0})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	a, err := repo.Append(ctx, "a", core.Money{Cents: 1000})
	require.NoError(t, err)
	b, err := repo.Append(ctx, "b", core.Money{Cents: 500})
	require.NoError(t, err)
	c, err := repo.Append(ctx, "c", core.Money{Cents: 2000})
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, a.ID, all[0].ID)
	assert.True(t, all[0].CreatedAt.Equal(t1))

	last, err = repo.MostRecent(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, c.ID, last.ID)

	got, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, core.ErrNotFound)

	aggs := core.AggregateByMonth(all)
	require.Len(t, aggs, 2)
	assert.Equal(t, "2024-02", aggs[0].Month)
	assert.Equal(t, int64(2500), aggs[0].TotalAmount.Cents)
}
