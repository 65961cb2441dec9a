package websocket

import (
	"slices"

	"github.com/ramonehamilton/spellduel/internal/events"
)

// LobbyEvents are the event types published on the lobby feed.
var LobbyEvents = []string{
	events.MatchCreated,
	events.MatchActivated,
	events.MatchFinished,
	events.MatchDesync,
	events.PeerJoined,
	events.PeerLeft,
	events.CatalogUpdated,
}

// WebSocketObserver forwards lobby events to the feed hub.
type WebSocketObserver struct {
	hub   *Hub
	types []string
}

// NewWebSocketObserver creates an observer broadcasting the given event
// types to hub, or LobbyEvents when none are given.
func NewWebSocketObserver(hub *Hub, types ...string) *WebSocketObserver {
	if len(types) == 0 {
		types = LobbyEvents
	}
	return &WebSocketObserver{hub: hub, types: types}
}

// OnEvent broadcasts the event payload under its type.
func (o *WebSocketObserver) OnEvent(event events.Event) error {
	if o.hub == nil {
		return nil
	}
	o.hub.BroadcastEvent(Event{Type: event.Type, Data: event.Data, At: event.At})
	return nil
}

// GetName returns the observer's name.
func (o *WebSocketObserver) GetName() string {
	return "LobbyFeed"
}

// ShouldHandle reports whether eventType is published on the feed.
func (o *WebSocketObserver) ShouldHandle(eventType string) bool {
	return slices.Contains(o.types, eventType)
}

var _ events.Observer = (*WebSocketObserver)(nil)
