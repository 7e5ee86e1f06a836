package changelog

import (
	"context"
	"fmt"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// Service wires a durable Store to a live Bus. Append writes to the Store
// first (the source of truth) then publishes to the Bus on a best-effort
// basis: a subscriber that misses a publish can always fall back to
// Since to catch up, since offsets are never reused (§3 invariant).
type Service struct {
	store Store
	bus   Bus
}

func NewService(store Store, bus Bus) *Service {
	return &Service{store: store, bus: bus}
}

func (s *Service) Append(ctx context.Context, file ids.FileId, batch []wire.ChangeMsg) ([]ids.Offset, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	first, err := s.store.NextOffsets(ctx, file, len(batch))
	if err != nil {
		return nil, fmt.Errorf("changelog: reserve offsets: %w", err)
	}

	entries := make([]wire.OffsetedChange, len(batch))
	offsets := make([]ids.Offset, len(batch))
	for i, change := range batch {
		off := first + ids.Offset(i)
		entries[i] = wire.OffsetedChange{Offset: off, Change: change}
		offsets[i] = off
	}

	if err := s.store.Append(ctx, file, entries); err != nil {
		return nil, fmt.Errorf("changelog: append: %w", err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, file, entries); err != nil {
			return offsets, fmt.Errorf("changelog: publish: %w", err)
		}
	}

	return offsets, nil
}

func (s *Service) Since(ctx context.Context, file ids.FileId, after ids.Offset, limit int) ([]wire.OffsetedChange, error) {
	return s.store.Since(ctx, file, after, limit)
}

func (s *Service) LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error) {
	return s.store.LatestOffset(ctx, file)
}

// Subscribe replays everything already persisted after after, then
// switches to the live Bus feed. Entries the Bus delivers that are at or
// before the replay cursor (possible if a publish landed between the
// replay read and the Bus subscription starting) are dropped so the
// caller never observes a duplicate or out-of-order offset.
func (s *Service) Subscribe(ctx context.Context, file ids.FileId, after ids.Offset) (<-chan wire.OffsetedChange, error) {
	backlog, err := s.store.Since(ctx, file, after, 0)
	if err != nil {
		return nil, fmt.Errorf("changelog: subscribe backlog: %w", err)
	}

	live, cancel, err := s.bus.Consume(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("changelog: subscribe live: %w", err)
	}

	out := make(chan wire.OffsetedChange, len(backlog)+1)
	cursor := after
	for _, e := range backlog {
		out <- e
		cursor = e.Offset
	}

	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-live:
				if !ok {
					return
				}
				if e.Offset <= cursor {
					continue
				}
				cursor = e.Offset
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
