package bus

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var ErrTopicNotFound = errors.New("topic not found")

type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a basic Event.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data}
}

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel() error {
	if s.active.CompareAndSwap(true, false) && s.cancel != nil {
		s.cancel()
	}
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: topic -> eventType -> subID -> subscription
	handlers  map[string]map[string]map[string]*subscription
	metrics   EventBusMetrics
	observers map[EventBusObserver]struct{}
}

// New creates a new EventBus instance.
func New() EventBus {
	b := &inMemoryBus{
		handlers:  make(map[string]map[string]map[string]*subscription),
		observers: make(map[EventBusObserver]struct{}),
	}
	b.handlers[""] = make(map[string]map[string]*subscription)
	return b
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	return b.SubscribeTopic("", eventType, handler)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	types, ok := b.handlers[topic]
	if !ok {
		types = make(map[string]map[string]*subscription)
		b.handlers[topic] = types
	}
	if types[eventType] == nil {
		types[eventType] = make(map[string]*subscription)
	}

	id := uuid.NewString()
	s := &subscription{id: id, topic: topic, eventType: eventType, handler: handler}
	s.active.Store(true)
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m, ok := b.handlers[topic][eventType]; ok {
			delete(m, id)
		}
	}
	types[eventType][id] = s
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) CreateTopic(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.handlers[name]; !exists {
		b.handlers[name] = make(map[string]map[string]*subscription)
	}
	return nil
}

func (b *inMemoryBus) RemoveTopic(name string) error {
	b.mu.Lock()
	types, ok := b.handlers[name]
	if !ok {
		b.mu.Unlock()
		return ErrTopicNotFound
	}
	delete(b.handlers, name)
	b.mu.Unlock()

	for _, subs := range types {
		for _, s := range subs {
			s.active.Store(false)
		}
	}
	return nil
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) GetTopics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TopicInfo, 0, len(b.handlers))
	for name, types := range b.handlers {
		info := TopicInfo{Name: name, EventTypes: len(types)}
		for _, m := range types {
			info.Subs += len(m)
		}
		out = append(out, info)
	}
	return out
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	var subs []*subscription
	if types := b.handlers[topic]; types != nil {
		for _, key := range [...]string{etype, Wildcard} {
			for _, s := range types[key] {
				subs = append(subs, s)
			}
			if etype == Wildcard {
				break
			}
		}
	}
	var observers []EventBusObserver
	if len(b.observers) > 0 {
		observers = make([]EventBusObserver, 0, len(b.observers))
		for obs := range b.observers {
			observers = append(observers, obs)
		}
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(topic, etype, event)
	}

	var all error
	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) == 0 {
		return all
	}

	dur := time.Since(start).Microseconds()
	for _, obs := range observers {
		obs.OnDelivered(topic, etype, len(subs), all, dur)
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(len(subs))
	if all != nil {
		b.metrics.Errors++
	}
	b.metrics.Topics = uint64(len(b.handlers))
	var active uint64
	for _, types := range b.handlers {
		for _, m := range types {
			active += uint64(len(m))
		}
	}
	b.metrics.SubscribersActive = active
	b.mu.Unlock()

	return all
}
