package sse

import (
	"context"
	"sync"

	"ms-scheduler/internal/models"
)

// EventChangeEmitter fans committed event changes out to stream clients,
// keyed by the profile each client watches.
type EventChangeEmitter struct {
	mu      sync.RWMutex
	clients map[string][]chan models.EventChange
	buffer  int
}

func NewEventChangeEmitter() *EventChangeEmitter {
	return &EventChangeEmitter{
		clients: make(map[string][]chan models.EventChange),
		buffer:  10,
	}
}

// Subscribe registers a client for profileID. The channel is closed once ctx
// is done.
func (e *EventChangeEmitter) Subscribe(ctx context.Context, profileID string) <-chan models.EventChange {
	ch := make(chan models.EventChange, e.buffer)

	e.mu.Lock()
	e.clients[profileID] = append(e.clients[profileID], ch)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.remove(profileID, ch)
	}()

	return ch
}

// Notify delivers change to every client watching a profile in its audience.
// Slow clients miss the message rather than block the caller.
func (e *EventChangeEmitter) Notify(change models.EventChange) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, profileID := range change.Audience() {
		for _, ch := range e.clients[profileID] {
			select {
			case ch <- change:
			default:
			}
		}
	}
}

func (e *EventChangeEmitter) remove(profileID string, ch chan models.EventChange) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clients := e.clients[profileID]
	for i, c := range clients {
		if c == ch {
			e.clients[profileID] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(e.clients[profileID]) == 0 {
		delete(e.clients, profileID)
	}
}

// ClientCount returns the number of clients watching profileID.
func (e *EventChangeEmitter) ClientCount(profileID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients[profileID])
}
