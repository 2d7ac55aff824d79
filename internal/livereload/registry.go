package livereload

import (
	"sync"

	"github.com/google/uuid"
)

// UpdateFrame is the SSE frame sent on every broadcast.
var UpdateFrame = []byte("data: update\n\n")

// Client is one open event-stream response.
type Client struct {
	ID     uuid.UUID
	frames chan []byte
}

// NewClient creates a client with room for exactly one pending frame.
func NewClient() *Client {
	return &Client{
		ID:     uuid.New(),
		frames: make(chan []byte, 1),
	}
}

// Frames delivers the frame the client should write before ending its
// response.
func (c *Client) Frames() <-chan []byte {
	return c.frames
}

func (c *Client) send(frame []byte) bool {
	select {
	case c.frames <- frame:
		return true
	default:
		return false
	}
}

// Observer is notified about registry changes. The metrics collector
// implements it.
type Observer interface {
	ClientsChanged(n int)
	Broadcasted(delivered int)
}

// Registry holds the clients waiting for the next update.
type Registry struct {
	mu       sync.Mutex
	clients  []*Client
	observer Observer
}

// NewRegistry creates an empty registry. observer may be nil.
func NewRegistry(observer Observer) *Registry {
	return &Registry{observer: observer}
}

// Register appends c. There is no upper bound on registered clients.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	r.clients = append(r.clients, c)
	n := len(r.clients)
	r.mu.Unlock()

	r.clientsChanged(n)
}

// Remove drops c, typically after its connection closed. Removing a client
// that is not registered is a no-op.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	for i, existing := range r.clients {
		if existing == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			break
		}
	}
	n := len(r.clients)
	r.mu.Unlock()

	r.clientsChanged(n)
}

// Broadcast sends UpdateFrame to every registered client and empties the
// registry. Clients re-register when the reloaded page opens a new stream.
// Delivery works on a snapshot, so concurrent Register calls land in the
// next round. It returns the number of clients that received the frame.
func (r *Registry) Broadcast() int {
	r.mu.Lock()
	snapshot := r.clients
	r.clients = nil
	r.mu.Unlock()

	delivered := 0
	for _, c := range snapshot {
		if c.send(UpdateFrame) {
			delivered++
		}
	}

	if len(snapshot) > 0 {
		r.clientsChanged(r.Len())
	}
	if r.observer != nil {
		r.observer.Broadcasted(delivered)
	}
	return delivered
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Registry) clientsChanged(n int) {
	if r.observer != nil {
		r.observer.ClientsChanged(n)
	}
}
