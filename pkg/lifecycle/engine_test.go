package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lunaura/app/models/reading"
	"lunaura/app/models/tarot"
	"lunaura/pkg/openai"
	"lunaura/pkg/testutil"
)

const readingText = "Fincanında uzun bir yol görünüyor. Yakında gelecek bir haber yüzünü güldürecek."

type engineEnv struct {
	db        *gorm.DB
	store     *Store
	validator *testutil.FakeValidator
	gen       *testutil.FakeGenerator
	engine    *Engine
}

func newEngineEnv(t *testing.T, opts ...Option) *engineEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := NewStore(db, DefaultProducts(3, 5))
	env := &engineEnv{
		db:        db,
		store:     store,
		validator: testutil.AcceptAll(),
		gen:       testutil.NewFakeGenerator(readingText),
	}
	env.engine = NewEngine(store, env.validator, env.gen, opts...)
	return env
}

func (env *engineEnv) load(t *testing.T, kind, id string) *reading.Lifecycle {
	t.Helper()
	rec, err := env.store.Load(context.Background(), kind, id)
	require.NoError(t, err)
	return rec.State()
}

type failingDispatcher struct{ err error }

func (d failingDispatcher) Dispatch(context.Context, string, string, int) error { return d.err }

func TestGenerate_RequiresPayment(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Tarot(t, env.db, testutil.WithCards(testutil.ThreeCards()...))

	_, err := env.engine.Generate(context.Background(), Tarot, rec)

	assert.True(t, IsKind(err, PaymentRequired))
	assert.Equal(t, 0, env.gen.Calls())
}

func TestGenerate_WritesResultWithTerminalStatus(t *testing.T) {
	tests := []struct {
		kind     string
		create   func(t *testing.T, db *gorm.DB) reading.Record
		terminal string
	}{
		{Numerology, func(t *testing.T, db *gorm.DB) reading.Record { return testutil.Numerology(t, db, testutil.Paid()) }, reading.StatusCompleted},
		{Birthchart, func(t *testing.T, db *gorm.DB) reading.Record { return testutil.Birthchart(t, db, testutil.Paid()) }, reading.StatusDone},
		{Tarot, func(t *testing.T, db *gorm.DB) reading.Record {
			return testutil.Tarot(t, db, testutil.WithCards(testutil.ThreeCards()...), testutil.Paid())
		}, reading.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			env := newEngineEnv(t)
			rec := tt.create(t, env.db)

			got, err := env.engine.Generate(context.Background(), tt.kind, rec)
			require.NoError(t, err)

			st := got.State()
			assert.Equal(t, readingText, st.ResultText)
			assert.Equal(t, tt.terminal, st.Status)
			assert.True(t, st.IsPaid)
			assert.Equal(t, 1, st.Attempts)
		})
	}
}

func TestGenerate_ExistingResultSkipsGenerator(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Numerology(t, env.db, testutil.Paid(), testutil.WithResult("hazır", reading.StatusCompleted))

	got, err := env.engine.Generate(context.Background(), Numerology, rec)

	require.NoError(t, err)
	assert.Equal(t, "hazır", got.State().ResultText)
	assert.Equal(t, 0, env.gen.Calls())
}

func TestGenerate_FreshProcessingReturnsAsIs(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Numerology(t, env.db, testutil.Paid(), testutil.Processing(time.Now().Add(-10*time.Second)))

	got, err := env.engine.Generate(context.Background(), Numerology, rec)

	require.NoError(t, err)
	assert.Equal(t, reading.StatusProcessing, got.State().Status)
	assert.Equal(t, 0, env.gen.Calls())
}

func TestGenerate_StaleProcessingIsReclaimed(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Numerology(t, env.db, testutil.Paid(), testutil.Processing(time.Now().Add(-10*time.Minute)))

	got, err := env.engine.Generate(context.Background(), Numerology, rec)

	require.NoError(t, err)
	assert.Equal(t, reading.StatusCompleted, got.State().Status)
	assert.Equal(t, 1, env.gen.Calls())
}

func TestGenerate_ConcurrentCallsGenerateOnce(t *testing.T) {
	env := newEngineEnv(t)
	env.gen.Delay = 100 * time.Millisecond
	rec := testutil.Tarot(t, env.db, testutil.WithCards(testutil.ThreeCards()...), testutil.Paid())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loaded, err := env.store.Load(context.Background(), Tarot, rec.ID)
			if err != nil {
				errs <- err
				return
			}
			_, err = env.engine.Generate(context.Background(), Tarot, loaded)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, env.gen.Calls())

	st := env.load(t, Tarot, rec.ID)
	assert.Equal(t, reading.StatusCompleted, st.Status)
	assert.Equal(t, readingText, st.ResultText)
	assert.Equal(t, 1, st.Attempts)
}

func TestGenerate_UnavailableReleasesAndRetrySucceeds(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Tarot(t, env.db, testutil.WithCards(testutil.ThreeCards()...), testutil.Paid())
	env.gen.FailNext(errors.Wrap(openai.ErrUnavailable, "status 503"))

	_, err := env.engine.Generate(context.Background(), Tarot, rec)
	require.Error(t, err)
	assert.True(t, IsKind(err, ServiceUnavailable))

	st := env.load(t, Tarot, rec.ID)
	assert.Equal(t, reading.StatusPaid, st.Status)
	assert.Empty(t, st.ResultText)

	again, err := env.store.Load(context.Background(), Tarot, rec.ID)
	require.NoError(t, err)
	got, err := env.engine.Generate(context.Background(), Tarot, again)
	require.NoError(t, err)
	assert.Equal(t, reading.StatusCompleted, got.State().Status)
	assert.Equal(t, 2, env.gen.Calls())
	assert.Equal(t, 2, got.State().Attempts)
}

func TestGenerate_OtherErrorIsGenerationFailed(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Numerology(t, env.db, testutil.Paid())
	env.gen.FailNext(errors.Wrap(openai.ErrOther, "status 400"))

	_, err := env.engine.Generate(context.Background(), Numerology, rec)

	assert.True(t, IsKind(err, GenerationFailed))
	assert.Equal(t, reading.StatusPaid, env.load(t, Numerology, rec.ID).Status)
}

func TestGenerate_EmptyOutputIsNotSaved(t *testing.T) {
	env := newEngineEnv(t)
	env.gen.Text = "   "
	rec := testutil.Numerology(t, env.db, testutil.Paid())

	_, err := env.engine.Generate(context.Background(), Numerology, rec)

	assert.True(t, IsKind(err, GenerationFailed))
	st := env.load(t, Numerology, rec.ID)
	assert.Equal(t, reading.StatusPaid, st.Status)
	assert.Empty(t, st.ResultText)
}

func TestGenerate_RevalidatesImages(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		env := newEngineEnv(t)
		env.validator.Verdict = openai.Verdict{OK: false, Reason: "fincan görünmüyor"}
		rec := testutil.Coffee(t, env.db, testutil.WithImages("uploads/a.jpg", "uploads/b.jpg", "uploads/c.jpg"), testutil.Paid())

		_, err := env.engine.Generate(context.Background(), Coffee, rec)

		assert.True(t, IsKind(err, ValidationRejected))
		assert.Equal(t, reading.StatusPaid, env.load(t, Coffee, rec.ID).Status)
		assert.Equal(t, 0, env.gen.Calls())
	})

	t.Run("unavailable", func(t *testing.T) {
		env := newEngineEnv(t)
		env.validator.Err = errors.Wrap(openai.ErrUnavailable, "timeout")
		rec := testutil.Hand(t, env.db, testutil.WithImages("uploads/a.jpg", "uploads/b.jpg", "uploads/c.jpg"), testutil.Paid())

		_, err := env.engine.Generate(context.Background(), Hand, rec)

		assert.True(t, IsKind(err, ServiceUnavailable))
		assert.Equal(t, 0, env.gen.Calls())
	})

	t.Run("accepted", func(t *testing.T) {
		env := newEngineEnv(t)
		rec := testutil.Coffee(t, env.db, testutil.WithImages("uploads/a.jpg", "uploads/b.jpg", "uploads/c.jpg"), testutil.Paid())

		got, err := env.engine.Generate(context.Background(), Coffee, rec)

		require.NoError(t, err)
		assert.Equal(t, reading.StatusCompleted, got.State().Status)
		assert.Equal(t, 1, env.validator.Calls())
	})
}

func TestGenerate_DispatchFailureReleasesClaim(t *testing.T) {
	env := newEngineEnv(t, WithDispatcher(failingDispatcher{err: errors.New("redis: connection refused")}))
	rec := testutil.Numerology(t, env.db, testutil.Paid())

	_, err := env.engine.Generate(context.Background(), Numerology, rec)

	assert.True(t, IsKind(err, ServiceUnavailable))
	assert.Equal(t, reading.StatusPaid, env.load(t, Numerology, rec.ID).Status)
}

func TestRun_SkipsUnclaimedRecord(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Numerology(t, env.db, testutil.Paid())

	require.NoError(t, env.engine.Run(context.Background(), Numerology, rec.ID, 1))
	assert.Equal(t, 0, env.gen.Calls())
}

func TestRate(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Numerology(t, env.db)

	for _, bad := range []int{0, 6, -1} {
		_, err := env.engine.Rate(context.Background(), Numerology, rec, bad)
		assert.True(t, IsKind(err, InvalidInput), "rating %d", bad)
	}

	_, err := env.engine.Rate(context.Background(), Numerology, rec, 5)
	require.NoError(t, err)
	_, err = env.engine.Rate(context.Background(), Numerology, rec, 3)
	require.NoError(t, err)

	st := env.load(t, Numerology, rec.ID)
	require.NotNil(t, st.Rating)
	assert.Equal(t, 3, *st.Rating)
}

func TestSelectCards(t *testing.T) {
	t.Run("count must match spread", func(t *testing.T) {
		env := newEngineEnv(t)
		rec := testutil.Tarot(t, env.db)

		_, err := env.engine.SelectCards(context.Background(), rec, []string{"major_00_fool|U", " "})

		assert.True(t, IsKind(err, InvalidInput))
	})

	t.Run("unpaid becomes selected", func(t *testing.T) {
		env := newEngineEnv(t)
		rec := testutil.Tarot(t, env.db)

		got, err := env.engine.SelectCards(context.Background(), rec, []string{" major_18_moon|R ", "cups_03|U", "major_00_fool|U"})
		require.NoError(t, err)
		assert.Equal(t, reading.StatusSelected, got.Status)

		loaded, err := env.store.Load(context.Background(), Tarot, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"major_18_moon|R", "cups_03|U", "major_00_fool|U"}, []string(loaded.(*tarot.Reading).Cards))
		assert.Equal(t, reading.StatusSelected, loaded.State().Status)
	})

	t.Run("paid keeps status", func(t *testing.T) {
		env := newEngineEnv(t)
		rec := testutil.Tarot(t, env.db, testutil.WithCards(testutil.ThreeCards()...), testutil.Paid())

		_, err := env.engine.SelectCards(context.Background(), rec, testutil.ThreeCards())
		require.NoError(t, err)
		assert.Equal(t, reading.StatusPaid, env.load(t, Tarot, rec.ID).Status)
	})

	t.Run("locked after result", func(t *testing.T) {
		env := newEngineEnv(t)
		rec := testutil.Tarot(t, env.db, testutil.WithCards(testutil.ThreeCards()...), testutil.Paid(),
			testutil.WithResult("tamam", reading.StatusCompleted))

		_, err := env.engine.SelectCards(context.Background(), rec, testutil.ThreeCards())
		assert.True(t, IsKind(err, PreconditionFailed))
	})
}

func TestGenerate_TerminalStatusSkipsGenerator(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Birthchart(t, env.db, testutil.Paid(), testutil.WithStatus(reading.StatusDone))

	got, err := env.engine.Generate(context.Background(), Birthchart, rec)

	require.NoError(t, err)
	assert.Equal(t, reading.StatusDone, got.State().Status)
	assert.Equal(t, 0, env.gen.Calls())
}
