package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyChannel is the Postgres channel the appointments trigger broadcasts on.
const notifyChannel = "appointment_events"

// Event describes a committed change to an appointment row. The trigger
// payload carries both parties so listeners can match on their own identity.
type Event struct {
	Op            string `json:"op"`
	ID            string `json:"id"`
	StudentID     string `json:"student_id"`
	CoordinatorID string `json:"coordinator_id"`
}

// Subscription is a handle to a running listener. Cancel stops delivery and
// releases the underlying connection; it blocks until the listener goroutine
// has exited, so no callback fires after Cancel returns.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

// Watcher fans appointment change events out to dashboard sessions via
// LISTEN/NOTIFY.
type Watcher struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewWatcher creates a Watcher on the given pool.
func NewWatcher(pool *pgxpool.Pool, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{pool: pool, logger: logger}
}

// Subscribe starts a listener delivering events to onEvent, one at a time
// from a single goroutine. A listener failure is reported through onError at
// most once, after which the subscription is dead; callers are expected to
// fall back to one-shot reads rather than crash the viewer session.
func (w *Watcher) Subscribe(ctx context.Context, onEvent func(Event), onError func(error)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("appointment: acquire listen conn: %w", err)
	}

	if _, err := conn.Exec(ctx, `LISTEN `+notifyChannel); err != nil {
		conn.Release()
		cancel()
		return nil, fmt.Errorf("appointment: listen: %w", err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Printf("appointment: listener stopped: %v", err)
				if onError != nil {
					onError(err)
				}
				return
			}

			var ev Event
			if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
				w.logger.Printf("appointment: bad event payload: %v", err)
				continue
			}
			onEvent(ev)
		}
	}()

	return sub, nil
}
