package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingApproved  = "booking_approved"
	EventBookingRejected  = "booking_rejected"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEventPayload is the booking snapshot pushed to subscribers as
// a refresh signal. Consumers re-read the store for authoritative
// state; correctness never depends on event delivery.
type BookingEventPayload struct {
	BookingID  string    `json:"booking_id"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name,omitempty"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	AdminNotes string    `json:"admin_notes,omitempty"`
	ChangedBy  string    `json:"changed_by,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// Bus provides in-process pub/sub for booking change events.
type Bus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *Bus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
