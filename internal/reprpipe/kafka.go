package reprpipe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// KafkaPublisher publishes UpdateChangeMsg values to the representation
// topic, keyed by file the same way changelog.KafkaBus keys the change
// log itself, so a downstream consumer group can scale out by file
// without splitting one file's updates out of order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(client *kgo.Client, topic string) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, file ids.FileId, update wire.UpdateChangeMsg) error {
	env, err := wire.Wrap(update)
	if err != nil {
		return fmt.Errorf("reprpipe: wrap update: %w", err)
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("reprpipe: marshal envelope: %w", err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(file.String()),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("reprpipe: produce: %w", err)
	}
	return nil
}
