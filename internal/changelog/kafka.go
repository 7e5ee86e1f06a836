package changelog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// KafkaBus publishes and consumes change log entries over a Kafka topic,
// keyed by file so a consumer group can rebalance partitions without
// splitting one file's entries across readers out of order. Grounded in
// original_source's updates/src/kafka.rs, which keys records the same
// way and fans each message out to per-file in-process subscribers.
type KafkaBus struct {
	client  *kgo.Client
	topic   string
	groupID string
	log     *slog.Logger

	mu   sync.Mutex
	subs map[ids.FileId][]chan wire.OffsetedChange
}

// NewKafkaBus dials brokers and prepares a consumer group reader for
// topic. groupID should be distinct per deployment of a given service so
// that scaling out adds rebalanced consumers rather than competing ones.
func NewKafkaBus(brokers []string, topic, groupID string, log *slog.Logger) (*KafkaBus, error) {
	if log == nil {
		log = slog.Default()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("changelog: kafka dial: %w", err)
	}
	bus := &KafkaBus{
		client:  client,
		topic:   topic,
		groupID: groupID,
		log:     log,
		subs:    make(map[ids.FileId][]chan wire.OffsetedChange),
	}
	return bus, nil
}

// Run drives the consumer poll loop until ctx is cancelled. It must be
// started once per process; Consume only registers/unregisters local
// fan-out channels against the messages this loop reads.
func (b *KafkaBus) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fetches := b.client.PollFetches(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			b.log.Error("changelog: fetch error", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(rec *kgo.Record) {
			b.deliver(rec)
		})
		b.client.CommitUncommittedOffsets(ctx)
	}
}

func (b *KafkaBus) deliver(rec *kgo.Record) {
	file, err := ids.ParseFileId(string(rec.Key))
	if err != nil {
		b.log.Error("changelog: record with unparseable file key", "error", err)
		return
	}
	var env wire.Envelope
	if err := json.Unmarshal(rec.Value, &env); err != nil {
		b.log.Error("changelog: record envelope decode failed", "error", err)
		return
	}
	var entry wire.OffsetedChange
	if err := env.Unwrap(&entry); err != nil {
		b.log.Error("changelog: record payload decode failed", "error", err)
		return
	}

	b.mu.Lock()
	subs := append([]chan wire.OffsetedChange(nil), b.subs[file]...)
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- entry:
		default:
			b.log.Warn("changelog: slow subscriber dropped entry", "file", file.String(), "offset", entry.Offset)
		}
	}
}

func (b *KafkaBus) Publish(ctx context.Context, file ids.FileId, entries []wire.OffsetedChange) error {
	for _, entry := range entries {
		env, err := wire.Wrap(entry)
		if err != nil {
			return fmt.Errorf("changelog: wrap entry: %w", err)
		}
		payload, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("changelog: marshal envelope: %w", err)
		}
		rec := &kgo.Record{
			Topic: b.topic,
			Key:   []byte(file.String()),
			Value: payload,
		}
		if err := b.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
			return fmt.Errorf("changelog: produce: %w", err)
		}
	}
	return nil
}

func (b *KafkaBus) Consume(ctx context.Context, file ids.FileId) (<-chan wire.OffsetedChange, func(), error) {
	ch := make(chan wire.OffsetedChange, 64)

	b.mu.Lock()
	b.subs[file] = append(b.subs[file], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[file]
		for i, c := range list {
			if c == ch {
				b.subs[file] = append(list[:i], list[i+1:]...)
				close(ch)
				break
			}
		}
		if len(b.subs[file]) == 0 {
			delete(b.subs, file)
		}
	}

	return ch, cancel, nil
}

func (b *KafkaBus) Close() error {
	b.client.Close()
	return nil
}
