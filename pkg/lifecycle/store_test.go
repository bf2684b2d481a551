package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunaura/app/models/reading"
	"lunaura/pkg/testutil"
)

func TestStore_NewUsesInitialStatus(t *testing.T) {
	env := newEngineEnv(t)

	cases := map[string]string{
		Coffee:      reading.StatusPendingPayment,
		Tarot:       reading.StatusPendingPayment,
		Numerology:  reading.StatusStarted,
		Personality: reading.StatusCreated,
		Synastry:    reading.StatusStarted,
	}
	for kind, status := range cases {
		rec, err := env.store.New(kind)
		require.NoError(t, err)
		assert.Equal(t, status, rec.State().Status, kind)
	}

	_, err := env.store.New("horoscope")
	assert.True(t, IsKind(err, NotFound))
}

func TestStore_Latest(t *testing.T) {
	env := newEngineEnv(t)
	ctx := context.Background()

	older := testutil.Numerology(t, env.db)
	require.NoError(t, env.db.Model(older).UpdateColumn("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	newer := testutil.Tarot(t, env.db)
	testutil.Coffee(t, env.db, testutil.WithDevice("device-other-0001"))

	items, err := env.store.Latest(ctx, testutil.DeviceID, env.store.Kinds(), 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, Tarot, items[0].Type)
	assert.Equal(t, "Tarot • three", items[0].Title)
	assert.Equal(t, older.ID, items[1].ID)
}
