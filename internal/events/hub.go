// Package events implements the process-wide broadcast hub that fans job,
// image, and config state changes out to connected SSE clients.
package events

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Event names published by the rest of the service.
const (
	JobUpdated         = "job_updated"
	ImageCreated       = "image_created"
	ImageFailed        = "image_failed"
	ZipReady           = "zip_ready"
	GalleryCleared     = "gallery_cleared"
	ConfigUpdated      = "config_updated"
	PromptQueueUpdated = "prompt_queue_updated"
	PromptsFileAdded   = "prompts_file_added"
)

// Event is one named notification with a JSON payload.
type Event struct {
	Name string
	Data json.RawMessage
}

// Subscriber is one connected client's view of the stream. Events arrive
// on C; the channel is closed when the hub shuts down.
type Subscriber struct {
	C  chan Event
	id uint64
}

// Hub is the broadcast registry. Delivery is best-effort and at-most-once:
// publishing to a subscriber whose buffer is full drops the event for that
// subscriber only, so one stalled client never blocks the rest.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscriber
	nextID uint64
	closed bool
	logger zerolog.Logger
}

const subscriberBuffer = 16

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[uint64]*Subscriber),
		logger: logger,
	}
}

// Subscribe registers a new client stream.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &Subscriber{C: make(chan Event, subscriberBuffer), id: h.nextID}
	if h.closed {
		close(sub.C)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes a client stream and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		close(sub.C)
	}
}

// Publish serializes the payload once and offers it to every current
// subscriber. Fire-and-forget: with no subscribers the event is dropped.
func (h *Hub) Publish(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", name).Msg("events: marshal payload failed")
		return
	}
	evt := Event{Name: name, Data: data}

	// Sends stay inside the lock so Unsubscribe cannot close a channel
	// between the snapshot and the send. They never block, so the
	// critical section stays short.
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case sub.C <- evt:
		default:
			h.logger.Warn().Str("event", name).Msg("events: subscriber buffer full, dropping")
		}
	}
}

// SubscriberCount reports how many streams are currently attached.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close shuts the hub down and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.C)
	}
}
