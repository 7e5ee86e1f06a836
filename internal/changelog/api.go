// Package changelog implements the append-only, per-file change log (the
// system of record every other component replays from): monotonic offset
// assignment on append, and a live subscription feed for newly appended
// entries, per the layout of blueprints/githome's feature packages (an
// api.go of types/errors/interfaces next to a service.go of logic).
package changelog

import (
	"context"
	"errors"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

var (
	// ErrEmptyBatch is returned by Append when called with no changes.
	ErrEmptyBatch = errors.New("changelog: empty batch")
	// ErrClosed is returned by a subscription channel consumer once the
	// log (or the subscription itself) has been torn down.
	ErrClosed = errors.New("changelog: closed")
)

// API is the change log's public contract: append a batch of changes for
// one file atomically (they receive contiguous, strictly increasing
// offsets), and subscribe to every change appended to a file from a given
// offset onward.
type API interface {
	// Append assigns each change in batch the next offset(s) for file,
	// persists them durably, and publishes them to subscribers. The
	// returned offsets are in the same order as batch and are
	// contiguous: offsets[i+1] == offsets[i]+1.
	Append(ctx context.Context, file ids.FileId, batch []wire.ChangeMsg) ([]ids.Offset, error)

	// Since replays every entry recorded for file at an offset greater
	// than after (after=0 replays from the beginning), up to limit
	// entries (limit<=0 means unbounded).
	Since(ctx context.Context, file ids.FileId, after ids.Offset, limit int) ([]wire.OffsetedChange, error)

	// LatestOffset returns the most recent offset assigned to file, or 0
	// if the file has no entries yet.
	LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error)

	// Subscribe returns a channel of entries appended to file at an
	// offset greater than after, delivered in offset order. The channel
	// is closed when ctx is done.
	Subscribe(ctx context.Context, file ids.FileId, after ids.Offset) (<-chan wire.OffsetedChange, error)
}

// Store is the durable persistence boundary beneath the service: offset
// bookkeeping and entry storage for replay. A concrete Store does not
// itself fan changes out to live subscribers; that is the Bus's job.
type Store interface {
	// NextOffsets atomically reserves n contiguous offsets for file and
	// returns the first one.
	NextOffsets(ctx context.Context, file ids.FileId, n int) (ids.Offset, error)

	// Append persists entries (already offset-assigned) for file.
	Append(ctx context.Context, file ids.FileId, entries []wire.OffsetedChange) error

	// Since returns entries for file with Offset > after, oldest first,
	// capped at limit (limit<=0 means unbounded).
	Since(ctx context.Context, file ids.FileId, after ids.Offset, limit int) ([]wire.OffsetedChange, error)

	// LatestOffset returns the latest persisted offset for file, or 0.
	LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error)
}

// Bus is the live fan-out transport: every Append is also Published so
// that Subscribe callers see new entries without polling the Store. The
// Kafka-backed implementation keys records by file so a consumer group
// can rebalance partitions without losing per-file ordering.
type Bus interface {
	Publish(ctx context.Context, file ids.FileId, entries []wire.OffsetedChange) error
	Consume(ctx context.Context, file ids.FileId) (<-chan wire.OffsetedChange, func(), error)
}
