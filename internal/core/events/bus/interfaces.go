package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Handlers subscribe by Event.Type() within a topic; the simulation uses one
// topic per session so transports only see their own session's traffic.
// Delivery is synchronous in the publisher's goroutine and handler errors are
// joined and returned from Publish. Metrics are only collected while at least
// one observer is registered.
type EventBus interface {
	// Publish delivers to subscribers of event.Type() in the default topic.
	Publish(event Event) error
	// PublishToTopic delivers to subscribers of event.Type() in topic.
	PublishToTopic(topic string, event Event) error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeTopic registers a handler for eventType within topic. The
	// wildcard type "*" receives every event published to the topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is a no-op.
	Unsubscribe(Subscription) error

	// CreateTopic declares a topic; repeat declarations are idempotent.
	CreateTopic(name string) error
	// RemoveTopic drops a topic and cancels all of its subscriptions.
	RemoveTopic(name string) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	GetMetrics() EventBusMetrics
	GetTopics() []TopicInfo
}

// Wildcard subscribes to every event type in a topic.
const Wildcard = "*"

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event. Returned errors are
	// aggregated by Publish.
	EventHandler func(event Event) error
)

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, durationMicros int64)
}

// EventBusMetrics is updated only while an observer is registered.
type EventBusMetrics struct {
	Published         uint64 `json:"published"`
	DeliveredHandlers uint64 `json:"delivered_handlers"`
	Errors            uint64 `json:"errors"`
	SubscribersActive uint64 `json:"subscribers_active"`
	Topics            uint64 `json:"topics"`
}

type TopicInfo struct {
	Name       string `json:"name"`
	EventTypes int    `json:"event_types"`
	Subs       int    `json:"subs"`
}
