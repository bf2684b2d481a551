package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunaura/app/models/numerology"
	"lunaura/app/models/reading"
	"lunaura/pkg/testutil"
)

func newNumerologyRepo(t *testing.T) (*ReadingRepository, *numerology.Reading) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repo := NewReadingRepository(db, func() reading.Record { return &numerology.Reading{} })
	return repo, testutil.Numerology(t, db, testutil.Paid())
}

func TestReadingRepository_TryClaimReturnsClaim(t *testing.T) {
	repo, rec := newNumerologyRepo(t)
	ctx := context.Background()
	staleBefore := time.Now().Add(-2 * time.Minute)

	claim, ok, err := repo.TryClaim(ctx, rec.ID, reading.StatusCompleted, 0, staleBefore)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, claim)

	// 认领仍有效
	_, ok, err = repo.TryClaim(ctx, rec.ID, reading.StatusCompleted, 1, staleBefore)
	require.NoError(t, err)
	assert.False(t, ok)

	// 过期后，读到旧次数的调用方拿不到认领
	future := time.Now().Add(time.Minute)
	_, ok, err = repo.TryClaim(ctx, rec.ID, reading.StatusCompleted, 0, future)
	require.NoError(t, err)
	assert.False(t, ok)

	claim, ok, err = repo.TryClaim(ctx, rec.ID, reading.StatusCompleted, 1, future)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, claim)
}

func TestReadingRepository_ReleaseOnlyOwnClaim(t *testing.T) {
	repo, rec := newNumerologyRepo(t)
	ctx := context.Background()

	_, ok, err := repo.TryClaim(ctx, rec.ID, reading.StatusCompleted, 0, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	second, ok, err := repo.TryClaim(ctx, rec.ID, reading.StatusCompleted, 1, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	released, err := repo.Release(ctx, rec.ID, second-1)
	require.NoError(t, err)
	assert.False(t, released)
	held, err := repo.Touch(ctx, rec.ID, second-1)
	require.NoError(t, err)
	assert.False(t, held)

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, reading.StatusProcessing, got.State().Status)

	released, err = repo.Release(ctx, rec.ID, second)
	require.NoError(t, err)
	assert.True(t, released)
	got, err = repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, reading.StatusPaid, got.State().Status)
}

func TestReadingRepository_ReleaseKeepsResult(t *testing.T) {
	repo, rec := newNumerologyRepo(t)
	ctx := context.Background()

	claim, ok, err := repo.TryClaim(ctx, rec.ID, reading.StatusCompleted, 0, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	written, err := repo.SetResult(ctx, rec.ID, "Sonuç hazır.", reading.StatusCompleted)
	require.NoError(t, err)
	require.True(t, written)

	released, err := repo.Release(ctx, rec.ID, claim)
	require.NoError(t, err)
	assert.False(t, released)
}

func TestReadingRepository_SetStatusAndUpdate(t *testing.T) {
	repo, rec := newNumerologyRepo(t)
	ctx := context.Background()

	changed, err := repo.SetStatus(ctx, rec.ID, reading.StatusStarted)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	n := got.(*numerology.Reading)
	assert.Equal(t, reading.StatusStarted, n.Status)

	before := n.UpdatedAt
	time.Sleep(10 * time.Millisecond)
	n.Question = "Bu yıl ne getirecek?"
	require.NoError(t, repo.Update(ctx, n))

	got, err = repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bu yıl ne getirecek?", got.(*numerology.Reading).Question)
	assert.True(t, got.State().UpdatedAt.After(before))
}
