package stream_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/streamcast/pkg/stream"
)

func TestHub_Register(t *testing.T) {
	t.Parallel()

	t.Run("register increments count", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		ctx := context.Background()
		for i := range 5 {
			sess, err := hub.Register(ctx)
			require.NoError(t, err)
			require.NotNil(t, sess)
			assert.Equal(t, i+1, hub.Count())
		}
	})

	t.Run("session defaults", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		sess, err := hub.Register(context.Background())
		require.NoError(t, err)

		assert.NotEmpty(t, sess.ID())
		assert.Equal(t, stream.AnonymousName, sess.Name())
		assert.Empty(t, sess.Tags())
		assert.Nil(t, sess.Topics())
		assert.Zero(t, sess.Delivered())
		assert.False(t, sess.ConnectedAt().IsZero())
	})

	t.Run("session metadata options", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		sess, err := hub.Register(context.Background(),
			stream.WithName("dashboard"),
			stream.WithTags("web", "v2"),
			stream.WithTopics("cpu", "memory"),
		)
		require.NoError(t, err)

		assert.Equal(t, "dashboard", sess.Name())
		assert.Equal(t, []string{"web", "v2"}, sess.Tags())
		assert.Equal(t, []string{"cpu", "memory"}, sess.Topics())
	})

	t.Run("register after close fails", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		require.NoError(t, hub.Close())

		_, err := hub.Register(context.Background())
		assert.ErrorIs(t, err, stream.ErrHubClosed)
	})

	t.Run("context cancellation unregisters", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sess, err := hub.Register(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, hub.Count())

		cancel()

		assert.Eventually(t, func() bool {
			return hub.Count() == 0
		}, time.Second, 10*time.Millisecond)

		select {
		case <-sess.Done():
		case <-time.After(time.Second):
			t.Fatal("session done channel never closed")
		}
	})
}

func TestHub_Unregister(t *testing.T) {
	t.Parallel()

	t.Run("removes the session", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		sess, err := hub.Register(context.Background())
		require.NoError(t, err)

		hub.Unregister(sess.ID())
		assert.Equal(t, 0, hub.Count())

		// The queue is closed so delivery loops terminate.
		_, open := <-sess.Events()
		assert.False(t, open)
	})

	t.Run("idempotent for unknown ids", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		sess, err := hub.Register(context.Background())
		require.NoError(t, err)

		hub.Unregister(sess.ID())
		hub.Unregister(sess.ID())
		hub.Unregister("never-existed")
		assert.Equal(t, 0, hub.Count())
	})

	t.Run("subset of unregisters leaves the rest", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		sessions := make([]*stream.Session, 7)
		for i := range sessions {
			sess, err := hub.Register(context.Background())
			require.NoError(t, err)
			sessions[i] = sess
		}

		for _, sess := range sessions[:3] {
			hub.Unregister(sess.ID())
		}
		assert.Equal(t, 4, hub.Count())
	})
}

func TestHub_Broadcast(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every session", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		sessions := make([]*stream.Session, 3)
		for i := range sessions {
			sess, err := hub.Register(context.Background())
			require.NoError(t, err)
			sessions[i] = sess
		}

		e := stream.NewEvent(stream.CategoryData, map[string]any{"message": "hello"})
		hub.Broadcast(e)

		for _, sess := range sessions {
			received := <-sess.Events()
			assert.Equal(t, e.ID, received.ID)
			assert.EqualValues(t, 1, sess.Delivered())
		}
		assert.Equal(t, 1, hub.HistorySize())
	})

	t.Run("records history without subscribers", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		e := stream.NewEvent(stream.CategorySystem, nil)
		hub.Broadcast(e)

		assert.Equal(t, 1, hub.HistorySize())
		latest, ok := hub.LatestID()
		require.True(t, ok)
		assert.Equal(t, e.ID, latest)
	})

	t.Run("preserves order for serialized broadcasts", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		sess, err := hub.Register(context.Background())
		require.NoError(t, err)

		for i := range 10 {
			hub.Broadcast(stream.Event{ID: fmt.Sprintf("evt-%d", i)})
		}
		for i := range 10 {
			received := <-sess.Events()
			assert.Equal(t, fmt.Sprintf("evt-%d", i), received.ID)
		}
	})

	t.Run("disconnects session on queue overflow", func(t *testing.T) {
		t.Parallel()

		const capacity = 5
		hub := stream.NewHub(stream.WithQueueSize(capacity))
		defer hub.Close()

		slow, err := hub.Register(context.Background())
		require.NoError(t, err)

		// Fill the slow session's queue to exactly its capacity.
		for i := range capacity {
			hub.Broadcast(stream.Event{ID: fmt.Sprintf("fill-%d", i)})
		}
		require.Equal(t, 1, hub.Count())
		require.EqualValues(t, capacity, slow.Delivered())

		fresh, err := hub.Register(context.Background())
		require.NoError(t, err)

		// The first broadcast past capacity drops the slow session but still
		// reaches the fresh one.
		overflow := stream.Event{ID: "overflow"}
		hub.Broadcast(overflow)

		assert.Equal(t, 1, hub.Count())
		received := <-fresh.Events()
		assert.Equal(t, "overflow", received.ID)

		// The slow session's queue still holds the events delivered before
		// the disconnect, then reports closed.
		for i := range capacity {
			e, open := <-slow.Events()
			require.True(t, open)
			assert.Equal(t, fmt.Sprintf("fill-%d", i), e.ID)
		}
		_, open := <-slow.Events()
		assert.False(t, open)
	})

	t.Run("hundred sessions receive one event each", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		sessions := make([]*stream.Session, 100)
		for i := range sessions {
			sess, err := hub.Register(context.Background())
			require.NoError(t, err)
			sessions[i] = sess
		}
		require.Equal(t, 100, hub.Count())

		e := stream.NewEvent(stream.CategoryData, map[string]any{"n": 1})
		hub.Broadcast(e)

		for _, sess := range sessions {
			select {
			case received := <-sess.Events():
				assert.Equal(t, e.ID, received.ID)
			default:
				t.Fatal("session queue is empty")
			}
		}

		for _, sess := range sessions {
			hub.Unregister(sess.ID())
		}
		assert.Equal(t, 0, hub.Count())
	})

	t.Run("concurrent broadcasts and registrations", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub(stream.WithQueueSize(1000))
		defer hub.Close()

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for range 20 {
					hub.Broadcast(stream.NewEvent(stream.CategoryData, nil))
				}
			}()
			go func() {
				defer wg.Done()
				sess, err := hub.Register(context.Background())
				if err != nil {
					return
				}
				hub.Unregister(sess.ID())
			}()
		}
		wg.Wait()

		assert.Equal(t, 0, hub.Count())
	})
}

func TestHub_Replay(t *testing.T) {
	t.Parallel()

	t.Run("replays the missed suffix in order", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub(stream.WithHistorySize(10))
		defer hub.Close()

		events := make([]stream.Event, 5)
		for i := range events {
			events[i] = stream.Event{ID: fmt.Sprintf("evt-%d", i+1)}
			hub.Broadcast(events[i])
		}

		sess, err := hub.Register(context.Background())
		require.NoError(t, err)

		replayed := hub.Replay(events[1].ID, sess)
		assert.Equal(t, 3, replayed)

		for _, want := range []string{"evt-3", "evt-4", "evt-5"} {
			received := <-sess.Events()
			assert.Equal(t, want, received.ID)
		}
	})

	t.Run("unknown resume token replays nothing", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		hub.Broadcast(stream.Event{ID: "evt-1"})

		sess, err := hub.Register(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 0, hub.Replay("evicted-long-ago", sess))
		assert.Zero(t, sess.Delivered())
	})

	t.Run("stops early when the queue fills", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub(stream.WithQueueSize(2), stream.WithHistorySize(10))
		defer hub.Close()

		for i := range 6 {
			hub.Broadcast(stream.Event{ID: fmt.Sprintf("evt-%d", i+1)})
		}

		sess, err := hub.Register(context.Background())
		require.NoError(t, err)

		replayed := hub.Replay("evt-1", sess)
		assert.Equal(t, 2, replayed)

		// Stopping early is not a disconnect.
		assert.Equal(t, 1, hub.Count())
	})

	t.Run("unregistered session replays nothing", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		hub.Broadcast(stream.Event{ID: "evt-1"})
		hub.Broadcast(stream.Event{ID: "evt-2"})

		sess, err := hub.Register(context.Background())
		require.NoError(t, err)
		hub.Unregister(sess.ID())

		assert.Equal(t, 0, hub.Replay("evt-1", sess))
	})
}

func TestHub_Sessions(t *testing.T) {
	t.Parallel()

	t.Run("snapshots metadata", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		defer hub.Close()

		_, err := hub.Register(context.Background(),
			stream.WithName("first"),
			stream.WithTopics("cpu"),
		)
		require.NoError(t, err)

		_, err = hub.Register(context.Background(), stream.WithName("second"))
		require.NoError(t, err)

		infos := hub.Sessions()
		require.Len(t, infos, 2)
		assert.Equal(t, "first", infos[0].Name)
		assert.Equal(t, []string{"cpu"}, infos[0].Topics)
		assert.Equal(t, "second", infos[1].Name)
		assert.Nil(t, infos[1].Topics)
	})
}

func TestHub_Close(t *testing.T) {
	t.Parallel()

	t.Run("closes all session queues", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()

		sessions := make([]*stream.Session, 3)
		for i := range sessions {
			sess, err := hub.Register(context.Background())
			require.NoError(t, err)
			sessions[i] = sess
		}

		require.NoError(t, hub.Close())
		assert.Equal(t, 0, hub.Count())

		for _, sess := range sessions {
			_, open := <-sess.Events()
			assert.False(t, open)
		}
	})

	t.Run("safe to call twice", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		require.NoError(t, hub.Close())
		require.NoError(t, hub.Close())
	})

	t.Run("broadcast after close is a no-op", func(t *testing.T) {
		t.Parallel()

		hub := stream.NewHub()
		require.NoError(t, hub.Close())

		hub.Broadcast(stream.NewEvent(stream.CategoryData, nil))
		assert.Equal(t, 0, hub.HistorySize())
	})
}
