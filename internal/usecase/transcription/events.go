package transcription

import (
	"sync"

	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
)

// EventType discriminates pipeline events.
type EventType string

const (
	EventSegment  EventType = "segment"
	EventLevel    EventType = "level"
	EventQuestion EventType = "question"
	EventStopped  EventType = "stopped"
)

// Event is what the presentation layer subscribes to: transcript
// segments as they are appended, capture level samples, and near
// real-time question candidates.
type Event struct {
	Type     EventType         `json:"type"`
	Segment  *entities.Segment `json:"segment,omitempty"`
	Level    float64           `json:"level,omitempty"`
	Question string            `json:"question,omitempty"`
}

// broadcaster fans events out to subscribers over buffered channels. A
// subscriber that stops draining loses events; capture timing is never
// held hostage by a slow consumer.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe returns an event channel and its cancel function.
func (b *broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 64)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber, dropping it for any
// subscriber whose buffer is full.
func (b *broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// CloseAll closes every subscriber channel.
func (b *broadcaster) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
