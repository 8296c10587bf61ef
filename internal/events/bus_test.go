package events

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestEventBus_Subscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()

	bus.Publish(NewSchemasLoadedEvent("PRJ", 3, nil))

	select {
	case received := <-ch:
		if received.EventType() != TypeSchemasLoaded {
			t.Errorf("expected %s, got %s", TypeSchemasLoaded, received.EventType())
		}
		if received.ProjectKey() != "PRJ" {
			t.Errorf("expected PRJ, got %s", received.ProjectKey())
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestEventBus_SubscribeByType(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	jsonCh := bus.Subscribe(TypeJSONValidated)
	allCh := bus.Subscribe()

	bus.Publish(NewSchemaSelectedEvent("PRJ", 1, "Webhook", 2))
	bus.Publish(NewJSONValidatedEvent("PRJ", "payload", true))

	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("allCh should receive event %d", i)
		}
	}

	select {
	case received := <-jsonCh:
		e, ok := received.(JSONValidatedEvent)
		if !ok {
			t.Fatalf("expected JSONValidatedEvent, got %T", received)
		}
		if !e.Invalid || e.Field != "payload" {
			t.Errorf("unexpected event %+v", e)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("jsonCh should receive json event")
	}

	select {
	case extra := <-jsonCh:
		t.Errorf("jsonCh received unexpected %s", extra.EventType())
	default:
	}
}

func TestEventBus_PriorityNeverDrops(t *testing.T) {
	bus := New(5)
	defer bus.Close()

	priorityCh := bus.SubscribePriority()

	for i := 0; i < 100; i++ {
		bus.Publish(NewJSONValidatedEvent("PRJ", "payload", false))
	}

	bus.PublishPriority(NewSchemaMismatchEvent("PRJ", "uuid-1", 7, "model 7 not offered"))

	select {
	case received := <-priorityCh:
		if received.EventType() != TypeSchemaMismatch {
			t.Errorf("expected schema_mismatch, got %s", received.EventType())
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("priority event was dropped")
	}
}

func TestEventBus_RingBufferDropsOldest(t *testing.T) {
	bus := New(5)
	defer bus.Close()

	ch := bus.Subscribe()

	for i := 0; i < 10; i++ {
		bus.Publish(NewSchemasLoadedEvent("PRJ", i, nil))
	}

	if bus.DroppedCount() == 0 {
		t.Error("expected some events to be dropped")
	}

	// the newest event survives
	var last SchemasLoadedEvent
drain:
	for {
		select {
		case e := <-ch:
			last = e.(SchemasLoadedEvent)
		default:
			break drain
		}
	}
	if last.Count != 9 {
		t.Errorf("last received Count = %d, want 9", last.Count)
	}
}

func TestEventBus_ConcurrentPublish(t *testing.T) {
	bus := New(100)
	defer bus.Close()

	ch := bus.Subscribe()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(NewJSONValidatedEvent("PRJ", "payload", false))
			}
		}()
	}
	wg.Wait()

	received := 0
drainLoop:
	for {
		select {
		case <-ch:
			received++
		default:
			break drainLoop
		}
	}

	if received == 0 {
		t.Error("should have received some events")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestEventBus_PublishAfterClose(t *testing.T) {
	bus := New(10)
	ch := bus.Subscribe()
	bus.Close()
	bus.Close()

	bus.Publish(NewSchemasLoadedEvent("PRJ", 1, nil))
	bus.PublishPriority(NewSchemasLoadedEvent("PRJ", 1, nil))

	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}

func TestNewSchemasLoadedEvent_Error(t *testing.T) {
	e := NewSchemasLoadedEvent("PRJ", 0, errors.New("boom"))
	if e.Error != "boom" {
		t.Errorf("Error = %q, want boom", e.Error)
	}
	if e.Timestamp().IsZero() {
		t.Error("timestamp should be set")
	}
}
