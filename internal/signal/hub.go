// Package signal fans view refresh notifications out to listeners such as
// the SSE stream.
package signal

import (
	"context"
	"sync"
)

// Kind names the part of the view that needs to refresh.
type Kind string

const (
	// Cart covers the cart view and the cart badge.
	Cart Kind = "cart"
	// Wishlist covers the wishlist view, its badge and the highlight of the
	// wishlist button.
	Wishlist Kind = "wishlist"
	// Related covers the related-products page.
	Related Kind = "related"
	// Product covers the detail view.
	Product Kind = "product"
)

// Sources of a signal.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Signal asks listeners to re-render one part of the view.
type Signal struct {
	Kind   Kind   `json:"kind"`
	Source string `json:"source"`
}

const listenerBuffer = 16

// Hub delivers signals to every listener. Delivery never blocks the sender: a
// listener whose buffer is full misses the signal, and the next one of the
// same kind brings it up to date again.
type Hub struct {
	mu        sync.Mutex
	listeners map[chan Signal]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[chan Signal]struct{})}
}

// Emit sends sig to every listener.
func (h *Hub) Emit(sig Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.listeners {
		select {
		case ch <- sig:
		default:
		}
	}
}

// Listen registers a listener until ctx is done. The channel is closed then.
func (h *Hub) Listen(ctx context.Context) <-chan Signal {
	ch := make(chan Signal, listenerBuffer)

	h.mu.Lock()
	h.listeners[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.listeners, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Listeners returns the number of registered listeners.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
