package session_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/session"
)

const (
	maxTurns = 20
	maxIdle  = 24 * time.Hour
)

func newTestStore() *session.Store {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return session.NewStore(maxTurns, maxIdle, logger)
}

func TestGetOrCreate(t *testing.T) {
	store := newTestStore()

	sess := store.GetOrCreate("sess-1")
	assert.Equal(t, "sess-1", sess.ID)
	assert.Empty(t, sess.Messages)
	assert.False(t, sess.CreatedAt.IsZero())
	assert.Equal(t, 1, store.Count())

	// Second call returns the same session, not a fresh one.
	store.AppendExchange("sess-1", "hello", "hi", time.Now())
	again := store.GetOrCreate("sess-1")
	assert.Len(t, again.Messages, 2)
	assert.Equal(t, 1, store.Count())
}

func TestAppendExchangeOrderingAndActivity(t *testing.T) {
	store := newTestStore()
	store.GetOrCreate("sess-1")

	now := time.Now()
	store.AppendExchange("sess-1", "first question", "first answer", now)
	store.AppendExchange("sess-1", "second question", "second answer", now.Add(time.Second))

	history := store.History("sess-1")
	require.Len(t, history, 4)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "first question", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "first answer", history[1].Content)
	assert.Equal(t, "second question", history[2].Content)
	assert.Equal(t, "second answer", history[3].Content)

	sess := store.GetOrCreate("sess-1")
	assert.Equal(t, now.Add(time.Second), sess.LastActivity)
}

func TestAppendExchangeUnknownSessionIsNoOp(t *testing.T) {
	store := newTestStore()
	store.AppendExchange("missing", "question", "answer", time.Now())
	assert.Equal(t, 0, store.Count())
	assert.Nil(t, store.History("missing"))
}

func TestTruncationKeepsNewestPairs(t *testing.T) {
	store := newTestStore()
	store.GetOrCreate("sess-1")

	now := time.Now()
	for i := 1; i <= 25; i++ {
		store.AppendExchange("sess-1",
			fmt.Sprintf("question %d", i),
			fmt.Sprintf("answer %d", i),
			now.Add(time.Duration(i)*time.Second))
	}

	history := store.History("sess-1")
	require.Len(t, history, maxTurns)

	// Oldest retained exchange is number 16; pairing must be intact.
	for i := 0; i < maxTurns; i += 2 {
		exchange := 16 + i/2
		assert.Equal(t, models.RoleUser, history[i].Role)
		assert.Equal(t, fmt.Sprintf("question %d", exchange), history[i].Content)
		assert.Equal(t, models.RoleAssistant, history[i+1].Role)
		assert.Equal(t, fmt.Sprintf("answer %d", exchange), history[i+1].Content)
	}
}

func TestLastActivityMonotonic(t *testing.T) {
	store := newTestStore()
	store.GetOrCreate("sess-1")

	now := time.Now()
	store.AppendExchange("sess-1", "q1", "a1", now.Add(time.Minute))
	// An exchange stamped in the past must not move last-activity backwards.
	store.AppendExchange("sess-1", "q2", "a2", now)

	sess := store.GetOrCreate("sess-1")
	assert.Equal(t, now.Add(time.Minute), sess.LastActivity)
}

func TestDelete(t *testing.T) {
	store := newTestStore()
	store.GetOrCreate("sess-1")

	assert.True(t, store.Delete("sess-1"))
	assert.False(t, store.Delete("sess-1"))
	assert.Equal(t, 0, store.Count())
}

func TestSweepExpired(t *testing.T) {
	store := newTestStore()
	now := time.Now()

	store.GetOrCreate("sess-1")
	store.GetOrCreate("sess-2")

	assert.Equal(t, 0, store.SweepExpired(now))
	assert.Equal(t, 2, store.SweepExpired(now.Add(25*time.Hour)))
	assert.Equal(t, 0, store.Count())
}

func TestSweepExpiredBoundaries(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store := session.NewStore(maxTurns, maxIdle, logger)

	base := time.Now()
	store.GetOrCreate("old")
	store.GetOrCreate("recent")

	// Pin activity explicitly through exchanges.
	store.AppendExchange("old", "q", "a", base.Add(25*time.Hour))
	store.AppendExchange("recent", "q", "a", base.Add(27*time.Hour))

	// At base+50h the "old" session is 25h idle, "recent" only 23h.
	removed := store.SweepExpired(base.Add(50 * time.Hour))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Count())
	assert.NotNil(t, store.History("recent"))
	assert.Nil(t, store.History("old"))
}

func TestConcurrentAppends(t *testing.T) {
	store := newTestStore()
	now := time.Now()

	const goroutines = 16
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			id := fmt.Sprintf("sess-%d", g%4)
			store.GetOrCreate(id)
			for i := 0; i < 50; i++ {
				store.AppendExchange(id, "q", "a", now)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 4, store.Count())
	for g := 0; g < 4; g++ {
		history := store.History(fmt.Sprintf("sess-%d", g))
		assert.Len(t, history, maxTurns)
	}
}

func TestSweeperLifecycle(t *testing.T) {
	store := newTestStore()
	store.StartSweeper(10 * time.Millisecond)
	require.NoError(t, store.Close())
	// Close is idempotent.
	require.NoError(t, store.Close())
}
