package logging

import (
	"context"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func (s *captureSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]Event, len(s.events))
	copy(copied, s.events)
	return copied
}

func waitForEvents(t *testing.T, sink *captureSink, want int) []Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		events := sink.snapshot()
		if len(events) >= want {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, have %d", want, len(sink.snapshot()))
	return nil
}

func TestRouterDeliversToSinks(t *testing.T) {
	sink := &captureSink{}
	router, err := NewRouter(nil, DefaultConfig(), []NamedSink{{Name: "capture", Sink: sink}})
	if err != nil {
		t.Fatalf("router construction failed: %v", err)
	}
	defer closeRouter(t, router)

	router.Publish(context.Background(), Event{Type: "player_joined", Tick: 3, Severity: SeverityInfo})

	events := waitForEvents(t, sink, 1)
	if events[0].Type != "player_joined" || events[0].Tick != 3 {
		t.Fatalf("unexpected delivered event: %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Fatalf("router must stamp a missing event time")
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	sink := &captureSink{}
	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityWarn
	router, err := NewRouter(nil, cfg, []NamedSink{{Name: "capture", Sink: sink}})
	if err != nil {
		t.Fatalf("router construction failed: %v", err)
	}
	defer closeRouter(t, router)

	router.Publish(context.Background(), Event{Type: "food_consumed", Severity: SeverityDebug})
	router.Publish(context.Background(), Event{Type: "player_died", Severity: SeverityError})

	events := waitForEvents(t, sink, 1)
	for _, event := range events {
		if event.Severity < SeverityWarn {
			t.Fatalf("low-severity event leaked through: %+v", event)
		}
	}
}

func TestRouterMergesConfiguredFields(t *testing.T) {
	sink := &captureSink{}
	cfg := DefaultConfig()
	cfg.Fields = map[string]any{"service": "snakepit"}
	router, err := NewRouter(nil, cfg, []NamedSink{{Name: "capture", Sink: sink}})
	if err != nil {
		t.Fatalf("router construction failed: %v", err)
	}
	defer closeRouter(t, router)

	router.Publish(context.Background(), Event{Type: "player_joined", Severity: SeverityInfo})

	events := waitForEvents(t, sink, 1)
	if events[0].Extra["service"] != "snakepit" {
		t.Fatalf("configured field missing: %+v", events[0].Extra)
	}
}

func TestRouterIgnoresUntypedAndPostCloseEvents(t *testing.T) {
	sink := &captureSink{}
	router, err := NewRouter(nil, DefaultConfig(), []NamedSink{{Name: "capture", Sink: sink}})
	if err != nil {
		t.Fatalf("router construction failed: %v", err)
	}

	router.Publish(context.Background(), Event{})
	closeRouter(t, router)
	router.Publish(context.Background(), Event{Type: "player_joined", Severity: SeverityInfo})

	if events := sink.snapshot(); len(events) != 0 {
		t.Fatalf("expected no deliveries, got %+v", events)
	}
	stats := router.Stats()
	if stats.EventsTotal != 0 {
		t.Fatalf("expected zero routed events, got %d", stats.EventsTotal)
	}
}

func closeRouter(t *testing.T, router *Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("router close failed: %v", err)
	}
}
