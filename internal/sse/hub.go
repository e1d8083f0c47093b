package sse

import (
	"context"
	"sync"

	"charity-events/internal/models"
)

const clientBuffer = 16

// Hub fans change notifications out to connected stream clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan models.Change]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan models.Change]struct{})}
}

// Subscribe registers a client until ctx is done. The returned channel is
// closed after removal.
func (h *Hub) Subscribe(ctx context.Context) <-chan models.Change {
	ch := make(chan models.Change, clientBuffer)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(ch)
	}()
	return ch
}

// Publish delivers change to every client. A client whose buffer is full
// misses it.
func (h *Hub) Publish(_ context.Context, change models.Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- change:
		default:
		}
	}
}

func (h *Hub) remove(ch chan models.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
