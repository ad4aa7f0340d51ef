package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event[T] binds a topic name to the payload type carried on it and
// provides JSON-encoded, type-safe publishing and subscribing.
type Event[T any] struct {
	topicName string
}

// NewEvent creates a typed event for the given topic.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{topicName: name}
}

// Topic returns the topic name.
func (e Event[T]) Topic() string {
	return e.topicName
}

// Publish encodes v as JSON and publishes it on the event's topic.
func (e Event[T]) Publish(ctx context.Context, p Publisher, v T, metadata map[string]string) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", e.topicName, err)
	}
	return p.Publish(ctx, Message{Topic: e.topicName, Payload: payload, Metadata: metadata})
}

// Subscribe decodes every message on the event's topic into T before calling fn.
func (e Event[T]) Subscribe(ctx context.Context, s Subscriber, fn func(context.Context, T) error) error {
	return s.Subscribe(ctx, e.topicName, func(ctx context.Context, msg Message) error {
		var v T
		if err := json.Unmarshal(msg.Payload, &v); err != nil {
			return fmt.Errorf("decode %s payload: %w", e.topicName, err)
		}
		return fn(ctx, v)
	})
}
