// Package realtime reconciles backend-originated change notifications with
// the record store. The backend may emit several notifications per logical
// write, so bursts are coalesced behind a restartable debounce timer and
// settled with a single full reload.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/pkg/logger"
	"github.com/astekno/paytrack-be/pkg/retry"
)

// Reloader pulls authoritative state and pushes it into the store. The
// service layer provides it so the loop stays free of store details.
type Reloader func(ctx context.Context) error

type Loop struct {
	feed     domain.ChangeFeed
	reload   Reloader
	debounce time.Duration
	logger   *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

func NewLoop(feed domain.ChangeFeed, reload Reloader, debounce time.Duration, log *logger.Logger) *Loop {
	return &Loop{
		feed:     feed,
		reload:   reload,
		debounce: debounce,
		logger:   log,
	}
}

// Start subscribes to the change feed and runs the loop until Stop or
// context cancellation. Starting twice is a no-op.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return nil
	}

	events, err := l.feed.Subscribe(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.started = true

	go l.run(runCtx, events)

	l.logger.Info(ctx, "Realtime loop started", "debounce", l.debounce.String())
	return nil
}

// Stop cancels the subscription and any pending debounce timer, and waits
// for the loop goroutine to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	done := l.done
	l.started = false
	l.mu.Unlock()

	cancel()
	<-done
}

func (l *Loop) run(ctx context.Context, events <-chan domain.ChangeEvent) {
	defer close(l.done)

	timer := time.NewTimer(l.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case ev, ok := <-events:
			if !ok {
				events = l.resubscribe(ctx)
				if events == nil {
					timer.Stop()
					return
				}
				continue
			}
			l.logger.Debug(ctx, "Change notification received", "event_type", ev.Type)

			// Restart the debounce window on every event in a burst.
			if fire != nil && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(l.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			if err := l.reload(ctx); err != nil {
				l.logger.Error(ctx, "Reload after change burst failed", "error", err)
			}
		}
	}
}

// resubscribe re-establishes a dropped feed with backoff. Returns nil when
// the context ends first.
func (l *Loop) resubscribe(ctx context.Context) <-chan domain.ChangeEvent {
	var events <-chan domain.ChangeEvent
	err := retry.Do(ctx, func() error {
		ch, err := l.feed.Subscribe(ctx)
		if err != nil {
			return err
		}
		events = ch
		return nil
	}, retry.WithMaxAttempts(5))
	if err != nil {
		l.logger.Error(ctx, "Change feed resubscribe failed", "error", err)
		return nil
	}

	l.logger.Info(ctx, "Change feed resubscribed")
	return events
}
