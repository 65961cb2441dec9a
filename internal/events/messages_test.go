package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTypedEvent(t *testing.T) {
	ctx := context.Background()

	event := NewTypedEvent(MatchCreated, MatchCreatedEvent{
		MatchID:   "m1",
		Player1ID: "alice",
		Player2ID: "bob",
	}, ctx)

	assert.Equal(t, MatchCreated, event.Type)
	assert.Equal(t, ctx, event.Context)

	data, ok := GetTypedData[MatchCreatedEvent](event)
	require.True(t, ok)
	assert.Equal(t, "alice", data.Player1ID)
}

func TestGetTypedData_WrongType(t *testing.T) {
	event := NewTypedEvent(MatchFinished, MatchFinishedEvent{MatchID: "m1"}, context.Background())

	_, ok := GetTypedData[MatchDesyncEvent](event)
	assert.False(t, ok)

	_, ok = GetTypedData[MatchDesyncEvent](Event{Type: MatchDesync})
	assert.False(t, ok)
}

func TestDispatcher_FiltersAndContinuesAfterErrors(t *testing.T) {
	d := NewEventDispatcher()

	var got []string
	failing := NewFuncObserver("failing", func(Event) error { return errors.New("boom") })
	finished := NewFuncObserver("finished", func(e Event) error {
		got = append(got, e.Type)
		return nil
	}, MatchFinished)

	d.Register(failing)
	d.Register(finished)
	d.Register(NewLoggingObserver(true))
	assert.Equal(t, 3, d.ObserverCount())

	d.Dispatch(NewTypedEvent(MatchCreated, MatchCreatedEvent{MatchID: "m"}, context.Background()))
	d.Dispatch(NewTypedEvent(MatchFinished, MatchFinishedEvent{MatchID: "m", FinishedAt: time.Now()}, context.Background()))
	assert.Equal(t, []string{MatchFinished}, got)

	d.Unregister(failing)
	assert.Equal(t, 2, d.ObserverCount())
	d.Unregister(failing)
	assert.Equal(t, 2, d.ObserverCount(), "unknown observers are ignored")
}

func TestDispatcher_RecoversFromPanickingObserver(t *testing.T) {
	d := NewEventDispatcher()

	var mu sync.Mutex
	var after []string
	d.Register(NewFuncObserver("panics", func(Event) error { panic("observer bug") }))
	d.Register(NewFuncObserver("after", func(e Event) error {
		mu.Lock()
		defer mu.Unlock()
		after = append(after, e.Type)
		return nil
	}))

	assert.NotPanics(t, func() {
		d.Dispatch(NewTypedEvent(PeerJoined, PeerEvent{MatchID: "m", PlayerID: "p", Peers: 1}, context.Background()))
	})
	assert.Equal(t, []string{PeerJoined}, after)
}

func TestDispatcher_StampsTime(t *testing.T) {
	d := NewEventDispatcher()

	var got Event
	d.Register(NewFuncObserver("capture", func(e Event) error {
		got = e
		return nil
	}))

	before := time.Now()
	d.Dispatch(Event{Type: PeerLeft})
	assert.False(t, got.At.Before(before))
}
