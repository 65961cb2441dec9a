package events

import (
	"log"
	"slices"
)

// LoggingObserver logs all events for debugging purposes.
type LoggingObserver struct {
	name    string
	verbose bool
}

// NewLoggingObserver creates a new observer that logs events.
func NewLoggingObserver(verbose bool) *LoggingObserver {
	return &LoggingObserver{
		name:    "LoggingObserver",
		verbose: verbose,
	}
}

// OnEvent logs the event details.
func (o *LoggingObserver) OnEvent(event Event) error {
	if o.verbose {
		log.Printf("[%s] Event: %s, Data: %+v", o.name, event.Type, event.Data)
	} else {
		log.Printf("[%s] Event: %s", o.name, event.Type)
	}
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events (logs everything).
func (o *LoggingObserver) ShouldHandle(string) bool {
	return true
}

// FuncObserver adapts a function to the Observer interface.
// An empty type list subscribes to every event.
type FuncObserver struct {
	name  string
	types []string
	fn    func(Event) error
}

// NewFuncObserver creates an observer that calls fn for the given event types.
func NewFuncObserver(name string, fn func(Event) error, types ...string) *FuncObserver {
	return &FuncObserver{name: name, types: types, fn: fn}
}

// OnEvent calls the wrapped function.
func (o *FuncObserver) OnEvent(event Event) error {
	return o.fn(event)
}

// GetName returns the observer's name.
func (o *FuncObserver) GetName() string {
	return o.name
}

// ShouldHandle reports whether eventType is subscribed.
func (o *FuncObserver) ShouldHandle(eventType string) bool {
	return len(o.types) == 0 || slices.Contains(o.types, eventType)
}

var (
	_ Observer = (*LoggingObserver)(nil)
	_ Observer = (*FuncObserver)(nil)
)
