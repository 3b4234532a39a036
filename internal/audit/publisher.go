package audit

import (
	"context"
	"encoding/json"

	"medgate/internal/platform/kafka/producer"
	dErrors "medgate/pkg/domain-errors"
)

// KafkaPublisher forwards audit events to an operations topic so external
// telemetry can watch the stream without querying the store. The store write
// remains the durable record; this path is fire-and-forget.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
}

// NewKafkaPublisher wires a producer to the given topic.
func NewKafkaPublisher(p *producer.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

// Publish serializes the event and hands it to the async producer.
func (k *KafkaPublisher) Publish(_ context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal audit event")
	}

	var key []byte
	if event.PrincipalID != nil {
		key = []byte(event.PrincipalID.String())
	}

	return k.producer.ProduceAsync(&producer.Message{
		Topic: k.topic,
		Key:   key,
		Value: value,
	})
}
