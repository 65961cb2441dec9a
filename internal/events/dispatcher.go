package events

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"
)

// Event is a server event delivered to observers.
type Event struct {
	// Type is one of the event type constants in messages.go.
	Type string

	// Data is the typed payload, one of the structs in messages.go.
	Data any

	// At is when the event was created.
	At time.Time

	// Context is the request or relay context the event was raised in.
	Context context.Context
}

// Observer receives dispatched events.
type Observer interface {
	// OnEvent handles one event. A returned error is logged and does not
	// stop delivery to the remaining observers.
	OnEvent(event Event) error

	// GetName names the observer in logs.
	GetName() string

	// ShouldHandle filters the event types the observer receives.
	ShouldHandle(eventType string) bool
}

// EventDispatcher fans events out to registered observers. It is safe for
// concurrent use; match services and relay connections dispatch from their
// own goroutines.
type EventDispatcher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventDispatcher creates a new EventDispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{}
}

// Register adds an observer. Observers are notified in registration order.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	d.observers = append(d.observers, observer)
	d.mu.Unlock()
	log.Printf("[Events] Registered observer: %s", observer.GetName())
}

// Unregister removes an observer, keeping the order of the others.
func (d *EventDispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i := slices.Index(d.observers, observer); i >= 0 {
		d.observers = slices.Delete(d.observers, i, i+1)
		log.Printf("[Events] Unregistered observer: %s", observer.GetName())
	}
}

// Dispatch delivers event to every interested observer before returning.
// An observer that fails or panics is logged and skipped.
func (d *EventDispatcher) Dispatch(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	d.mu.RLock()
	observers := slices.Clone(d.observers)
	d.mu.RUnlock()

	for _, observer := range observers {
		if observer.ShouldHandle(event.Type) {
			notify(observer, event)
		}
	}
}

func notify(observer Observer, event Event) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[Events] Observer %s panicked on %s: %v", observer.GetName(), event.Type, p)
		}
	}()
	if err := observer.OnEvent(event); err != nil {
		log.Printf("[Events] Observer %s failed on %s: %v", observer.GetName(), event.Type, err)
	}
}

// ObserverCount returns the number of registered observers.
func (d *EventDispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// NewTypedEvent creates an Event carrying data.
func NewTypedEvent[T any](eventType string, data T, ctx context.Context) Event {
	return Event{
		Type:    eventType,
		Data:    data,
		At:      time.Now(),
		Context: ctx,
	}
}

// GetTypedData extracts typed data from an Event.
// Returns the zero value and false if the data is not of the expected type.
func GetTypedData[T any](event Event) (T, bool) {
	typed, ok := event.Data.(T)
	return typed, ok
}
