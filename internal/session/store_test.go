package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RowanMueller/ai-production/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(Options{})
}

func TestCreateGeneratesUniqueIdentifiers(t *testing.T) {
	store := newTestStore()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		sess, err := store.Create()
		require.NoError(t, err)
		require.NotEmpty(t, sess.ID)
		assert.False(t, seen[sess.ID], "duplicate session identifier %s", sess.ID)
		seen[sess.ID] = true
	}

	assert.Equal(t, 1000, store.Len())
}

func TestCreateReturnsEmptySession(t *testing.T) {
	store := newTestStore()

	sess, err := store.Create()
	require.NoError(t, err)

	assert.Empty(t, sess.Messages)
	assert.Empty(t, sess.Context)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestAppendMessagePreservesOrderAndContent(t *testing.T) {
	store := newTestStore()
	sess, err := store.Create()
	require.NoError(t, err)

	userMsg := models.Message{ID: "m1", Role: models.RoleUser, Content: "What about AAPL?", Timestamp: time.Now()}
	botMsg := models.Message{ID: "m2", Role: models.RoleAssistant, Content: "AAPL looks strong.", Timestamp: time.Now()}

	require.NoError(t, store.AppendMessage(sess.ID, userMsg))
	require.NoError(t, store.AppendMessage(sess.ID, botMsg))

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "What about AAPL?", got.Messages[0].Content)
	assert.Equal(t, models.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "AAPL looks strong.", got.Messages[1].Content)
	assert.Equal(t, models.RoleAssistant, got.Messages[1].Role)
}

func TestAppendMessageUnknownSession(t *testing.T) {
	store := newTestStore()
	err := store.AppendMessage("missing", models.Message{ID: "m1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMergeContextShallowOverwrite(t *testing.T) {
	store := newTestStore()
	sess, err := store.Create()
	require.NoError(t, err)

	merged, err := store.MergeContext(sess.ID, models.Context{"a": float64(1)})
	require.NoError(t, err)
	assert.Equal(t, models.Context{"a": float64(1)}, merged)

	merged, err = store.MergeContext(sess.ID, models.Context{"b": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, models.Context{"a": float64(1), "b": float64(2)}, merged)

	merged, err = store.MergeContext(sess.ID, models.Context{"a": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, models.Context{"a": float64(3), "b": float64(2)}, merged)
}

func TestMergeContextUnknownSession(t *testing.T) {
	store := newTestStore()
	_, err := store.MergeContext("missing", models.Context{"a": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceContext(t *testing.T) {
	store := newTestStore()
	sess, err := store.Create()
	require.NoError(t, err)

	_, err = store.MergeContext(sess.ID, models.Context{"a": 1, "b": 2})
	require.NoError(t, err)

	require.NoError(t, store.ReplaceContext(sess.ID, models.Context{"c": 3}))

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, models.Context{"c": 3}, got.Context)
}

func TestDeleteTwice(t *testing.T) {
	store := newTestStore()
	sess, err := store.Create()
	require.NoError(t, err)

	assert.True(t, store.Delete(sess.ID))
	assert.False(t, store.Delete(sess.ID))

	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
}

func TestGetReturnsDetachedCopy(t *testing.T) {
	store := newTestStore()
	sess, err := store.Create()
	require.NoError(t, err)

	copy1, ok := store.Get(sess.ID)
	require.True(t, ok)
	copy1.Messages = append(copy1.Messages, models.Message{ID: "rogue"})
	copy1.Context["rogue"] = true

	copy2, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Empty(t, copy2.Messages)
	assert.Empty(t, copy2.Context)
}

func TestConcurrentAppendsSameSession(t *testing.T) {
	store := newTestStore()
	sess, err := store.Create()
	require.NoError(t, err)

	const writers = 20
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				err := store.AppendMessage(sess.ID, models.Message{Role: models.RoleUser, Content: "x"})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Len(t, got.Messages, writers*perWriter)
}

func TestCapacityBound(t *testing.T) {
	store := NewStore(Options{MaxSessions: 2})

	_, err := store.Create()
	require.NoError(t, err)
	_, err = store.Create()
	require.NoError(t, err)

	_, err = store.Create()
	assert.ErrorIs(t, err, ErrStoreFull)
}

func TestCapacityBoundHoldsUnderConcurrentCreates(t *testing.T) {
	const limit = 50
	store := NewStore(Options{MaxSessions: limit})

	var created atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < 20; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if _, err := store.Create(); err == nil {
					created.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, limit, created.Load())
	assert.Equal(t, limit, store.Len())
}

func TestCapacityFreedByDelete(t *testing.T) {
	store := NewStore(Options{MaxSessions: 1})

	sess, err := store.Create()
	require.NoError(t, err)
	_, err = store.Create()
	require.ErrorIs(t, err, ErrStoreFull)

	require.True(t, store.Delete(sess.ID))
	_, err = store.Create()
	assert.NoError(t, err)
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	store := NewStore(Options{TTL: 10 * time.Millisecond})

	sess, err := store.Create()
	require.NoError(t, err)

	var deleted int
	store.OnDelete(func() { deleted++ })

	time.Sleep(20 * time.Millisecond)
	store.sweep()

	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, deleted)
	assert.Zero(t, store.Len())
}
