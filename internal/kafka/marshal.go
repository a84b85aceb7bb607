package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-marketplace-orders/internal/orders"
)

const (
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func UnmarshalEnvelope(b []byte) (orders.Envelope, error) {
	var env orders.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// UnwrapPayload decodes an envelope payload into T.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}

// PublishEnvelope marshals env and hands it to p keyed by key.
func PublishEnvelope(p Publisher, key string, env orders.Envelope) error {
	return p.Publish(orders.PartitionKey(key), MustMarshal(env),
		kafka.Header{Key: HeaderEventType, Value: []byte(env.EventType)},
		kafka.Header{Key: HeaderEventVersion, Value: []byte("1")},
	)
}
