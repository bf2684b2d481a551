package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunaura/pkg/testutil"
)

func TestResolve(t *testing.T) {
	env := newEngineEnv(t)
	guard := NewGuard(env.store)
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		rec := testutil.Numerology(t, env.db)
		got, err := guard.Resolve(ctx, Numerology, rec.ID, testutil.DeviceID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.State().ID)
	})

	t.Run("other device looks like missing", func(t *testing.T) {
		rec := testutil.Numerology(t, env.db)
		_, err := guard.Resolve(ctx, Numerology, rec.ID, "device-someone-else")
		assert.True(t, IsKind(err, NotFound))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := guard.Resolve(ctx, Numerology, "missing-id", testutil.DeviceID)
		assert.True(t, IsKind(err, NotFound))
	})

	t.Run("missing device", func(t *testing.T) {
		rec := testutil.Numerology(t, env.db)
		_, err := guard.Resolve(ctx, Numerology, rec.ID, "")
		assert.True(t, IsKind(err, InvalidInput))
	})

	t.Run("ownerless record is adopted", func(t *testing.T) {
		rec := testutil.Numerology(t, env.db, testutil.WithDevice(""))

		got, err := guard.Resolve(ctx, Numerology, rec.ID, "device-first-0001")
		require.NoError(t, err)
		assert.Equal(t, "device-first-0001", got.State().DeviceID)

		_, err = guard.Resolve(ctx, Numerology, rec.ID, "device-second-0002")
		assert.True(t, IsKind(err, NotFound))

		assert.Equal(t, "device-first-0001", env.load(t, Numerology, rec.ID).DeviceID)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := guard.Resolve(ctx, "horoscope", "x", testutil.DeviceID)
		assert.True(t, IsKind(err, NotFound))
	})
}
