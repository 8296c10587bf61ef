package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
)

// EventBusAdapter bridges editor events to Bubbletea messages.
type EventBusAdapter struct {
	bus        *events.EventBus
	eventCh    <-chan events.Event
	priorityCh <-chan events.Event
	msgCh      chan tea.Msg
	closeCh    chan struct{}
	mu         sync.Mutex
	closed     bool
}

// NewEventBusAdapter creates an adapter subscribed to bus.
func NewEventBusAdapter(bus *events.EventBus) *EventBusAdapter {
	a := &EventBusAdapter{
		bus: bus,
		eventCh: bus.Subscribe(
			events.TypeSchemaSelected,
			events.TypeIntegrationApplied,
			events.TypeSchemasLoaded,
		),
		priorityCh: bus.SubscribePriority(),
		msgCh:      make(chan tea.Msg, 100),
		closeCh:    make(chan struct{}),
	}
	go a.run()
	return a
}

// MsgChannel returns the channel Bubbletea reads from.
func (a *EventBusAdapter) MsgChannel() <-chan tea.Msg {
	return a.msgCh
}

// Close shuts down the adapter.
func (a *EventBusAdapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true
	close(a.closeCh)
	a.bus.Unsubscribe(a.eventCh)
	a.bus.Unsubscribe(a.priorityCh)
}

func (a *EventBusAdapter) run() {
	defer close(a.msgCh)
	for {
		select {
		case <-a.closeCh:
			return
		case event, ok := <-a.priorityCh:
			if !ok {
				return
			}
			a.handleEvent(event)
		case event, ok := <-a.eventCh:
			if !ok {
				return
			}
			a.handleEvent(event)
		}
	}
}

func (a *EventBusAdapter) handleEvent(event events.Event) {
	msg := eventToMsg(event)
	if msg == nil {
		return
	}
	select {
	case a.msgCh <- msg:
	default:
		// drop when the UI falls behind
	}
}

// eventToMsg converts an editor event to a tea.Msg. Priority subscribers see
// every event type, so only the mismatch warning is taken from them.
func eventToMsg(event events.Event) tea.Msg {
	switch e := event.(type) {
	case events.SchemaMismatchEvent:
		return WarningMsg{Text: e.Message}
	case events.SchemaSelectedEvent:
		return StatusMsg{Text: fmt.Sprintf("model %s selected (%d fields)", e.ModelName, e.Fields)}
	case events.IntegrationAppliedEvent:
		if len(e.Replaced) == 0 {
			return StatusMsg{Text: fmt.Sprintf("integration %s applied", e.Integration)}
		}
		return StatusMsg{Text: fmt.Sprintf("integration %s applied, %d fields filled", e.Integration, len(e.Replaced))}
	case events.SchemasLoadedEvent:
		if e.Error != "" {
			return nil
		}
		return StatusMsg{Text: fmt.Sprintf("%d hook models available", e.Count)}
	default:
		return nil
	}
}

// waitForEventBusUpdate reads the next adapter message.
func waitForEventBusUpdate(a *EventBusAdapter) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-a.MsgChannel()
		if !ok {
			return nil
		}
		return eventMsg{inner: msg}
	}
}

// eventMsg wraps adapter messages so Update knows to wait for the next one.
type eventMsg struct {
	inner tea.Msg
}
