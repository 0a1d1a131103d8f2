package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/pkg/logger"
)

type fakeFeed struct {
	mu sync.Mutex
	ch chan domain.ChangeEvent
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan domain.ChangeEvent, 64)}
}

func (f *fakeFeed) Subscribe(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ch, nil
}

func (f *fakeFeed) emit(ev domain.ChangeEvent) {
	f.ch <- ev
}

type reloadCounter struct {
	mu    sync.Mutex
	count int
}

func (r *reloadCounter) reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return nil
}

func (r *reloadCounter) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func TestLoop_BurstCoalescesIntoOneReload(t *testing.T) {
	feed := newFakeFeed()
	counter := &reloadCounter{}
	loop := NewLoop(feed, counter.reload, 50*time.Millisecond, logger.NewNop())

	require.NoError(t, loop.Start(context.Background()))
	defer loop.Stop()

	// Five notifications well inside one debounce window.
	for i := 0; i < 5; i++ {
		feed.emit(domain.ChangeEvent{Type: domain.ChangeUpdate, RecordID: "r1"})
		time.Sleep(5 * time.Millisecond)
	}

	// Before the window settles nothing has fired.
	assert.Equal(t, 0, counter.total())

	assert.Eventually(t, func() bool {
		return counter.total() == 1
	}, time.Second, 10*time.Millisecond)

	// And it stays at one.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, counter.total())
}

func TestLoop_SeparatedEventsReloadSeparately(t *testing.T) {
	feed := newFakeFeed()
	counter := &reloadCounter{}
	loop := NewLoop(feed, counter.reload, 20*time.Millisecond, logger.NewNop())

	require.NoError(t, loop.Start(context.Background()))
	defer loop.Stop()

	feed.emit(domain.ChangeEvent{Type: domain.ChangeInsert})
	assert.Eventually(t, func() bool { return counter.total() == 1 }, time.Second, 5*time.Millisecond)

	feed.emit(domain.ChangeEvent{Type: domain.ChangeDelete})
	assert.Eventually(t, func() bool { return counter.total() == 2 }, time.Second, 5*time.Millisecond)
}

func TestLoop_StopCancelsPendingDebounce(t *testing.T) {
	feed := newFakeFeed()
	counter := &reloadCounter{}
	loop := NewLoop(feed, counter.reload, 100*time.Millisecond, logger.NewNop())

	require.NoError(t, loop.Start(context.Background()))

	feed.emit(domain.ChangeEvent{Type: domain.ChangeUpdate})
	time.Sleep(10 * time.Millisecond)
	loop.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, counter.total())
}

func TestLoop_StartTwiceIsNoop(t *testing.T) {
	feed := newFakeFeed()
	counter := &reloadCounter{}
	loop := NewLoop(feed, counter.reload, 20*time.Millisecond, logger.NewNop())

	require.NoError(t, loop.Start(context.Background()))
	require.NoError(t, loop.Start(context.Background()))
	defer loop.Stop()

	feed.emit(domain.ChangeEvent{Type: domain.ChangeInsert})
	assert.Eventually(t, func() bool { return counter.total() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, counter.total())
}
