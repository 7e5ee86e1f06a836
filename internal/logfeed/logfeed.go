// Package logfeed lets a downstream component (C2, C3, C4, C8) consume
// the change log's Kafka topic directly, independent of and out-of
// process from C1 itself. It mirrors the record shape and per-file
// keying changelog.KafkaBus uses for its in-process fan-out, so the two
// stay wire-compatible.
package logfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// Handler processes one committed entry for one file, in offset order
// per file. A returned error is logged and skipped — per §7, a poisoned
// entry never stalls the pipeline.
type Handler func(ctx context.Context, file ids.FileId, entry wire.OffsetedChange) error

// Run dials brokers as consumer group groupID on topic and invokes
// handle for every record until ctx is cancelled.
func Run(ctx context.Context, brokers []string, topic, groupID string, log *slog.Logger, handle Handler) error {
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
		return fmt.Errorf("logfeed: dial: %w", err)
	}
	defer client.Close()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error("logfeed: fetch error", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(rec *kgo.Record) {
			file, err := ids.ParseFileId(string(rec.Key))
			if err != nil {
				log.Error("logfeed: record with unparseable file key", "error", err)
				return
			}
			var env wire.Envelope
			if err := json.Unmarshal(rec.Value, &env); err != nil {
				log.Error("logfeed: envelope decode failed", "error", err)
				return
			}
			var entry wire.OffsetedChange
			if err := env.Unwrap(&entry); err != nil {
				log.Error("logfeed: payload decode failed", "error", err)
				return
			}
			if err := handle(ctx, file, entry); err != nil {
				log.Error("logfeed: handler failed", "file", file.String(), "offset", entry.Offset, "error", err)
			}
		})
		client.CommitUncommittedOffsets(ctx)
	}
}
