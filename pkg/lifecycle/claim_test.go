package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunaura/app/models/reading"
	"lunaura/pkg/openai"
	"lunaura/pkg/testutil"
)

// gatedGenerator 每次调用都阻塞到 release 关闭，errs 按调用顺序返回
type gatedGenerator struct {
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
	errs  []error
}

func newGatedGenerator(errs ...error) *gatedGenerator {
	return &gatedGenerator{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
		errs:    errs,
	}
}

func (g *gatedGenerator) Generate(ctx context.Context, _ reading.Record, _ int) (string, error) {
	g.mu.Lock()
	g.calls++
	var err error
	if g.calls <= len(g.errs) {
		err = g.errs[g.calls-1]
	}
	g.mu.Unlock()

	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return readingText, nil
}

func (g *gatedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// skewedClock 可前移的时钟
type skewedClock struct {
	skew atomic.Int64
}

func (c *skewedClock) now() time.Time {
	return time.Now().Add(time.Duration(c.skew.Load()))
}

func (c *skewedClock) advance(d time.Duration) {
	c.skew.Store(int64(d))
}

func waitStarted(t *testing.T, g *gatedGenerator) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not start")
	}
}

func TestRun_StaleFailureKeepsNewerClaim(t *testing.T) {
	clock := &skewedClock{}
	gen := newGatedGenerator(openai.ErrUnavailable)
	db := testutil.SetupTestDB(t)
	store := NewStore(db, DefaultProducts(3, 5))
	engine := NewEngine(store, testutil.AcceptAll(), gen, WithClock(clock.now))
	repo := store.Repo(Numerology)
	rec := testutil.Numerology(t, db, testutil.Paid())
	ctx := context.Background()

	// 第一次认领卡在生成中
	done := make(chan error, 1)
	go func() {
		_, err := engine.Generate(ctx, Numerology, rec)
		done <- err
	}()
	waitStarted(t, gen)

	// 认领过期后被重新认领
	clock.advance(10 * time.Minute)
	claim, ok, err := repo.TryClaim(ctx, rec.ID, reading.StatusCompleted, 1, engine.staleBefore())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, claim)
	clock.advance(0)

	// 旧的执行失败，不能回退新的认领
	close(gen.release)
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first generation did not return")
	}
	assert.True(t, IsKind(err, ServiceUnavailable))

	loaded, err := store.Load(ctx, Numerology, rec.ID)
	require.NoError(t, err)
	st := loaded.State()
	assert.Equal(t, reading.StatusProcessing, st.Status)
	assert.Equal(t, 2, st.Attempts)

	// 新认领仍在进行，第三个调用方不会再次生成
	got, err := engine.Generate(ctx, Numerology, loaded)
	require.NoError(t, err)
	assert.Equal(t, reading.StatusProcessing, got.State().Status)
	assert.Equal(t, 1, gen.Calls())
}

func TestRun_SupersededClaimIsSkipped(t *testing.T) {
	env := newEngineEnv(t)
	rec := testutil.Numerology(t, env.db, testutil.Paid(), testutil.Processing(time.Now().Add(-10*time.Minute)))
	ctx := context.Background()

	claim, ok, err := env.store.Repo(Numerology).TryClaim(ctx, rec.ID, reading.StatusCompleted, 0, env.engine.staleBefore())
	require.NoError(t, err)
	require.True(t, ok)

	// 排队太久的旧任务
	require.NoError(t, env.engine.Run(ctx, Numerology, rec.ID, claim-1))
	assert.Equal(t, 0, env.gen.Calls())
	assert.Equal(t, reading.StatusProcessing, env.load(t, Numerology, rec.ID).Status)

	require.NoError(t, env.engine.Run(ctx, Numerology, rec.ID, claim))
	assert.Equal(t, 1, env.gen.Calls())
	assert.Equal(t, reading.StatusCompleted, env.load(t, Numerology, rec.ID).Status)
}

func TestRun_RefreshesClaimBeforeGenerating(t *testing.T) {
	env := newEngineEnv(t)
	queuedAt := time.Now().Add(-90 * time.Second)
	rec := testutil.Numerology(t, env.db, testutil.Paid(), testutil.Processing(queuedAt))
	require.NoError(t, env.db.Model(rec).UpdateColumn("generation_attempts", 1).Error)

	held, err := env.store.Repo(Numerology).Touch(context.Background(), rec.ID, 1)
	require.NoError(t, err)
	require.True(t, held)
	assert.True(t, env.load(t, Numerology, rec.ID).UpdatedAt.After(queuedAt.Add(time.Minute)))

	held, err = env.store.Repo(Numerology).Touch(context.Background(), rec.ID, 7)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestRun_StopsAtTaskTimeout(t *testing.T) {
	env := newEngineEnv(t, WithTaskTimeout(50*time.Millisecond))
	env.gen.Delay = 5 * time.Second
	rec := testutil.Numerology(t, env.db, testutil.Paid())

	start := time.Now()
	_, err := env.engine.Generate(context.Background(), Numerology, rec)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, reading.StatusPaid, env.load(t, Numerology, rec.ID).Status)
}

func TestCheckTimeouts(t *testing.T) {
	assert.NoError(t, CheckTimeouts(110*time.Second, DefaultStaleAfter))
	assert.Error(t, CheckTimeouts(DefaultStaleAfter, DefaultStaleAfter))
	assert.Error(t, CheckTimeouts(300*time.Second, DefaultStaleAfter))
	assert.Error(t, CheckTimeouts(0, DefaultStaleAfter))

	e := NewEngine(nil, nil, nil)
	assert.Equal(t, 110*time.Second, e.taskTimeout)
	e = NewEngine(nil, nil, nil, WithTaskTimeout(10*time.Minute))
	assert.Equal(t, 110*time.Second, e.taskTimeout)
}
