package sse

import (
	"context"
	"sync"

	"ms-gifting/internal/models"
)

// GiftEventEmitter manages SSE connections and event broadcasting for
// newly created gifts.
type GiftEventEmitter struct {
	// Performer channel clients map - key: performerID
	performerClients     map[string][]chan models.Gift
	performerClientMutex sync.RWMutex

	// Event channel clients map - key: eventID
	eventClients     map[string][]chan models.Gift
	eventClientMutex sync.RWMutex
}

// NewGiftEventEmitter creates a new SSE event emitter for gift events
func NewGiftEventEmitter() *GiftEventEmitter {
	return &GiftEventEmitter{
		performerClients: make(map[string][]chan models.Gift),
		eventClients:     make(map[string][]chan models.Gift),
	}
}

// SubscribeToPerformer adds a client to the performer's gift events
func (e *GiftEventEmitter) SubscribeToPerformer(ctx context.Context, performerID string) chan models.Gift {
	clientChan := make(chan models.Gift, 10)

	e.performerClientMutex.Lock()
	e.performerClients[performerID] = append(e.performerClients[performerID], clientChan)
	e.performerClientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		e.removePerformerClient(performerID, clientChan)
	}()

	return clientChan
}

// SubscribeToEvent adds a client to the event's gift events
func (e *GiftEventEmitter) SubscribeToEvent(ctx context.Context, eventID string) chan models.Gift {
	clientChan := make(chan models.Gift, 10)

	e.eventClientMutex.Lock()
	e.eventClients[eventID] = append(e.eventClients[eventID], clientChan)
	e.eventClientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeEventClient(eventID, clientChan)
	}()

	return clientChan
}

// EmitGift broadcasts a created gift to all subscribed clients
func (e *GiftEventEmitter) EmitGift(gift models.Gift) {
	e.performerClientMutex.RLock()
	performerChans := e.performerClients[gift.PerformerID]
	e.performerClientMutex.RUnlock()

	for _, clientChan := range performerChans {
		// Non-blocking send to avoid slowing down emitter if client is slow
		select {
		case clientChan <- gift:
		default:
			// Channel buffer full, skip this client for now
		}
	}

	e.eventClientMutex.RLock()
	eventChans := e.eventClients[gift.EventID]
	e.eventClientMutex.RUnlock()

	for _, clientChan := range eventChans {
		select {
		case clientChan <- gift:
		default:
		}
	}
}

// Helper methods to remove clients when they disconnect
func (e *GiftEventEmitter) removePerformerClient(performerID string, clientChan chan models.Gift) {
	e.performerClientMutex.Lock()
	defer e.performerClientMutex.Unlock()

	clients := e.performerClients[performerID]
	for i, ch := range clients {
		if ch == clientChan {
			e.performerClients[performerID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.performerClients[performerID]) == 0 {
		delete(e.performerClients, performerID)
	}
}

func (e *GiftEventEmitter) removeEventClient(eventID string, clientChan chan models.Gift) {
	e.eventClientMutex.Lock()
	defer e.eventClientMutex.Unlock()

	clients := e.eventClients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.eventClients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.eventClients[eventID]) == 0 {
		delete(e.eventClients, eventID)
	}
}
