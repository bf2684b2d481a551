package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*QueueService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueueService(client, Options{Prefix: "test:queue"}), mr
}

func TestQueueService_PushPop(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Dispatch(ctx, "coffee", "r-1", 1))
	require.NoError(t, q.Dispatch(ctx, "tarot", "r-2", 3))

	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("test:queue:tasks"))

	// 先进先出
	first, err := q.PopTask(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "coffee", first.Product)
	assert.Equal(t, "r-1", first.ReadingID)
	assert.Equal(t, 1, first.Claim)
	assert.NotEmpty(t, first.ID)

	status, err := q.GetTaskStatus(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskPending, status)

	require.NoError(t, q.UpdateTaskStatus(ctx, first.ID, TaskCompleted))
	status, err = q.GetTaskStatus(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, status)

	second, err := q.PopTask(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "r-2", second.ReadingID)
	assert.Equal(t, 3, second.Claim)
}

func TestQueueService_UnknownTaskStatus(t *testing.T) {
	q, _ := newTestQueue(t)
	status, err := q.GetTaskStatus(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, TaskStatus(""), status)
}

func TestQueueService_StatusExpires(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.PushTask(ctx, &GenerationTask{ID: "t-1", Product: "hand", ReadingID: "r-1"}))
	mr.FastForward(2 * time.Hour)

	status, err := q.GetTaskStatus(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatus(""), status)
}

func TestQueueService_PingFailsWhenRedisDown(t *testing.T) {
	q, mr := newTestQueue(t)
	require.NoError(t, q.Ping(context.Background()))

	mr.Close()
	assert.Error(t, q.Ping(context.Background()))
	assert.Error(t, q.Dispatch(context.Background(), "coffee", "r-1", 1))
}

type recordingHandler struct {
	mu   sync.Mutex
	runs []string
	fail map[string]bool
	done chan struct{}
}

func (h *recordingHandler) Run(_ context.Context, product, readingID string, claim int) error {
	h.mu.Lock()
	h.runs = append(h.runs, fmt.Sprintf("%s/%s#%d", product, readingID, claim))
	n := len(h.runs)
	h.mu.Unlock()
	if n == 2 {
		close(h.done)
	}
	if h.fail[readingID] {
		return errors.New("generation failed")
	}
	return nil
}

func TestWorker_RunsTasksAndRecordsStatus(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	ok := &GenerationTask{ID: "t-ok", Product: "coffee", ReadingID: "r-ok", Claim: 2}
	bad := &GenerationTask{ID: "t-bad", Product: "tarot", ReadingID: "r-bad", Claim: 1}
	require.NoError(t, q.PushTask(ctx, ok))
	require.NoError(t, q.PushTask(ctx, bad))

	h := &recordingHandler{fail: map[string]bool{"r-bad": true}, done: make(chan struct{})}
	w := NewWorker(q, h, WorkerConfig{WorkerCount: 1, PollWait: time.Second, ShutdownTimeout: 5 * time.Second})
	w.Start()

	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not process tasks")
	}
	w.Stop()

	assert.Equal(t, []string{"coffee/r-ok#2", "tarot/r-bad#1"}, h.runs)

	status, err := q.GetTaskStatus(ctx, "t-ok")
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, status)

	status, err = q.GetTaskStatus(ctx, "t-bad")
	require.NoError(t, err)
	assert.Equal(t, TaskFailed, status)
}
