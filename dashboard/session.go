package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/nithinshettyy/appointment-system/appointment"
)

// Loader performs the one-shot query backing every cache replacement.
type Loader interface {
	ListForCoordinator(ctx context.Context, coordinatorID string) ([]appointment.Request, error)
}

// Subscription is a cancellable handle to a change listener.
type Subscription interface {
	Cancel()
}

// EventSource delivers appointment change events.
type EventSource interface {
	Subscribe(ctx context.Context, onEvent func(appointment.Event), onError func(error)) (Subscription, error)
}

// WatcherSource adapts the LISTEN/NOTIFY watcher to EventSource.
type WatcherSource struct {
	Watcher *appointment.Watcher
}

func (ws WatcherSource) Subscribe(ctx context.Context, onEvent func(appointment.Event), onError func(error)) (Subscription, error) {
	return ws.Watcher.Subscribe(ctx, onEvent, onError)
}

// Session binds one authenticated coordinator to a live dashboard view. It
// owns the cache and the change subscription; Close cancels the subscription
// so a stale callback can never touch a cache belonging to a different
// viewer. A new identity means a new Session.
//
// Refreshes are level-triggered: any notification for this coordinator causes
// a full re-query and wholesale cache replacement, so coalesced or missed
// notifications only delay convergence, never corrupt it.
type Session struct {
	coordinatorID string
	loader        Loader
	events        EventSource
	cache         *Cache
	logger        *log.Logger

	mu     sync.Mutex
	query  Query
	loaded bool
	onView func(View)

	sub Subscription
}

// NewSession creates a session for the given coordinator identity. onView,
// if non-nil, is invoked with the recomputed view after every cache
// replacement or query change.
func NewSession(coordinatorID string, loader Loader, events EventSource, logger *log.Logger, onView func(View)) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		coordinatorID: coordinatorID,
		loader:        loader,
		events:        events,
		cache:         NewCache(),
		logger:        logger,
		query:         Query{Status: FilterAll},
		onView:        onView,
	}
}

// Start performs the initial load and establishes the change subscription.
// If the subscription cannot be established the session still serves data
// from one-shot reads; the condition is logged rather than fatal.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	if s.events == nil {
		return nil
	}

	sub, err := s.events.Subscribe(ctx,
		func(ev appointment.Event) {
			if ev.CoordinatorID != s.coordinatorID {
				return
			}
			if err := s.Refresh(ctx); err != nil {
				s.logger.Printf("dashboard: refresh after change event: %v", err)
			}
		},
		func(err error) {
			// listener died; fall back to a one-shot reload so the viewer
			// still sees data
			s.logger.Printf("dashboard: subscription failed, falling back to one-shot reads: %v", err)
			if err := s.Refresh(ctx); err != nil {
				s.logger.Printf("dashboard: fallback reload: %v", err)
			}
		},
	)
	if err != nil {
		s.logger.Printf("dashboard: subscribe: %v", err)
		return nil
	}

	s.sub = sub
	return nil
}

// Close cancels the change subscription. It blocks until no further callback
// can fire.
func (s *Session) Close() {
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
}

// Refresh re-queries the full assigned list and replaces the cache, then
// pushes the recomputed view.
func (s *Session) Refresh(ctx context.Context) error {
	records, err := s.loader.ListForCoordinator(ctx, s.coordinatorID)
	if err != nil {
		return fmt.Errorf("dashboard: load assigned requests: %w", err)
	}

	s.cache.Replace(records)

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()

	s.push()
	return nil
}

// SetQuery updates the search and status filter parameters and pushes the
// recomputed view.
func (s *Session) SetQuery(q Query) {
	if q.Status == "" {
		q.Status = FilterAll
	}

	s.mu.Lock()
	s.query = q
	s.mu.Unlock()

	s.push()
}

// View recomputes the current view from the cache snapshot and the active
// query.
func (s *Session) View() View {
	s.mu.Lock()
	query := s.query
	loaded := s.loaded
	s.mu.Unlock()

	if !loaded {
		return View{}
	}
	return BuildView(s.cache.Snapshot(), query)
}

func (s *Session) push() {
	s.mu.Lock()
	onView := s.onView
	s.mu.Unlock()

	if onView != nil {
		onView(s.View())
	}
}
