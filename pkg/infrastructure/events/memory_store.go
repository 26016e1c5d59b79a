package events

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

type subscription struct {
	id      string
	handler EventHandler
}

// InMemoryEventStore keeps every appended event and dispatches it to
// subscribers on the appending goroutine, in append order.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]subscription
	mutex       sync.RWMutex
	dispatch    sync.Mutex
	position    int
	allEvents   []Event
	logger      *slog.Logger
}

func NewInMemoryEventStore(logger *slog.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]subscription),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mutex.Lock()
	eventWithVersion := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	s.position++
	handlers := make([]EventHandler, 0, len(s.subscribers[event.Type()]))
	for _, sub := range s.subscribers[event.Type()] {
		handlers = append(handlers, sub.handler)
	}
	s.mutex.Unlock()

	s.notifySubscribers(eventWithVersion, handlers)
	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

// Position returns how many events have been appended so far
func (s *InMemoryEventStore) Position() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.position
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := uuid.NewString()
	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], subscription{id: id, handler: handler})
	}

	return id, nil
}

// Unsubscribe removes every registration made under subscriptionID
func (s *InMemoryEventStore) Unsubscribe(subscriptionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	found := false
	for eventType, subs := range s.subscribers {
		kept := make([]subscription, 0, len(subs))
		for _, sub := range subs {
			if sub.id == subscriptionID {
				found = true
				continue
			}
			kept = append(kept, sub)
		}
		s.subscribers[eventType] = kept
	}

	if !found {
		return fmt.Errorf("unknown subscription %q", subscriptionID)
	}
	return nil
}

func (s *InMemoryEventStore) notifySubscribers(event Event, handlers []EventHandler) {
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			s.logger.Warn("event handler failed",
				"event", event.Type(),
				"stream", event.StreamID(),
				"error", err,
			)
		}
	}
}
