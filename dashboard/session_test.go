package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nithinshettyy/appointment-system/appointment"
)

type fakeLoader struct {
	mu       sync.Mutex
	byOwner  map[string][]appointment.Request
	err      error
	loadedCt int
}

func (f *fakeLoader) ListForCoordinator(ctx context.Context, coordinatorID string) ([]appointment.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.loadedCt++
	return f.byOwner[coordinatorID], nil
}

func (f *fakeLoader) set(coordinatorID string, records []appointment.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byOwner == nil {
		f.byOwner = map[string][]appointment.Request{}
	}
	f.byOwner[coordinatorID] = records
}

func (f *fakeLoader) loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadedCt
}

type fakeSource struct {
	onEvent   func(appointment.Event)
	onError   func(error)
	cancelled bool
	err       error
}

type fakeSub struct{ src *fakeSource }

func (s fakeSub) Cancel() { s.src.cancelled = true }

func (f *fakeSource) Subscribe(ctx context.Context, onEvent func(appointment.Event), onError func(error)) (Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.onEvent = onEvent
	f.onError = onError
	return fakeSub{src: f}, nil
}

func TestSession_StartLoadsAndSubscribes(t *testing.T) {
	loader := &fakeLoader{}
	loader.set("coord-1", []appointment.Request{req("a", appointment.StatusPending, at(1))})
	source := &fakeSource{}

	var views []View
	s := NewSession("coord-1", loader, source, nil, func(v View) { views = append(views, v) })
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Close()

	if len(views) != 1 || !views[0].Loaded {
		t.Fatalf("expected one loaded view push, got %d", len(views))
	}
	if got := ids(s.View().Items); len(got) != 1 || got[0] != "a" {
		t.Fatalf("unexpected view items %v", got)
	}
	if source.onEvent == nil {
		t.Fatal("expected a change subscription to be established")
	}
}

func TestSession_RefreshOnMatchingEvent(t *testing.T) {
	loader := &fakeLoader{}
	loader.set("coord-1", []appointment.Request{req("a", appointment.StatusPending, at(1))})
	source := &fakeSource{}

	s := NewSession("coord-1", loader, source, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Close()

	// change arrives for this coordinator: full reload replaces the cache
	loader.set("coord-1", []appointment.Request{
		req("a", appointment.StatusPending, at(1)),
		req("b", appointment.StatusPending, at(2)),
	})
	source.onEvent(appointment.Event{Op: "INSERT", CoordinatorID: "coord-1"})

	if got := len(s.View().Items); got != 2 {
		t.Fatalf("expected reloaded view with 2 items, got %d", got)
	}

	// events for other coordinators are ignored
	before := loader.loads()
	source.onEvent(appointment.Event{Op: "INSERT", CoordinatorID: "coord-2"})
	if loader.loads() != before {
		t.Fatal("event for another coordinator must not trigger a reload")
	}
}

func TestSession_SubscribeErrorFallsBackToOneShot(t *testing.T) {
	loader := &fakeLoader{}
	loader.set("coord-1", []appointment.Request{req("a", appointment.StatusPending, at(1))})
	source := &fakeSource{err: errors.New("listen refused")}

	s := NewSession("coord-1", loader, source, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start must not fail when only the subscription fails: %v", err)
	}
	defer s.Close()

	if got := len(s.View().Items); got != 1 {
		t.Fatalf("expected data from one-shot load, got %d items", got)
	}
}

func TestSession_ListenerFailureReloads(t *testing.T) {
	loader := &fakeLoader{}
	loader.set("coord-1", []appointment.Request{req("a", appointment.StatusPending, at(1))})
	source := &fakeSource{}

	s := NewSession("coord-1", loader, source, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Close()

	before := loader.loads()
	source.onError(errors.New("connection reset"))
	if loader.loads() != before+1 {
		t.Fatal("listener failure must trigger a fallback reload")
	}
}

func TestSession_CloseCancelsSubscription(t *testing.T) {
	loader := &fakeLoader{}
	loader.set("coord-1", nil)
	source := &fakeSource{}

	s := NewSession("coord-1", loader, source, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.Close()
	if !source.cancelled {
		t.Fatal("expected Close to cancel the subscription")
	}
}

func TestSession_SetQueryPushesView(t *testing.T) {
	loader := &fakeLoader{}
	jane := req("1", appointment.StatusPending, at(1))
	jane.StudentName = "Jane Doe"
	john := req("2", appointment.StatusPending, at(2))
	john.StudentName = "John Roe"
	loader.set("coord-1", []appointment.Request{jane, john})

	var last View
	s := NewSession("coord-1", loader, nil, nil, func(v View) { last = v })
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Close()

	s.SetQuery(Query{Search: "jane"})
	if got := ids(last.Items); len(got) != 1 || got[0] != "1" {
		t.Fatalf("expected filtered push, got %v", got)
	}

	// counts stay invariant under query changes
	if last.Counts.Pending != 2 {
		t.Fatalf("counts must cover the whole cache, got %+v", last.Counts)
	}
}

func TestSession_ViewBeforeLoad(t *testing.T) {
	s := NewSession("coord-1", &fakeLoader{}, nil, nil, nil)
	if v := s.View(); v.Loaded {
		t.Fatal("view before Start must read as not loaded")
	}
}

func TestSession_LoadErrorSurfaces(t *testing.T) {
	loader := &fakeLoader{err: errors.New("backend down")}
	s := NewSession("coord-1", loader, nil, nil, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected initial load error to surface")
	}
}
