// Package memory provides in-process Store and Bus implementations of
// internal/changelog's interfaces, for tests and single-process demos
// that need no DuckDB file or live broker, mirroring the
// go-mizu/mizu/sync/memory package's NewLog constructor pattern.
package memory

import (
	"context"
	"sync"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// Store is an in-memory changelog.Store.
type Store struct {
	mu      sync.Mutex
	latest  map[ids.FileId]ids.Offset
	entries map[ids.FileId][]wire.OffsetedChange
}

func NewStore() *Store {
	return &Store{
		latest:  make(map[ids.FileId]ids.Offset),
		entries: make(map[ids.FileId][]wire.OffsetedChange),
	}
}

func (s *Store) NextOffsets(ctx context.Context, file ids.FileId, n int) (ids.Offset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := s.latest[file] + 1
	s.latest[file] += ids.Offset(n)
	return first, nil
}

func (s *Store) Append(ctx context.Context, file ids.FileId, entries []wire.OffsetedChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[file] = append(s.entries[file], entries...)
	return nil
}

func (s *Store) Since(ctx context.Context, file ids.FileId, after ids.Offset, limit int) ([]wire.OffsetedChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []wire.OffsetedChange
	for _, e := range s.entries[file] {
		if e.Offset <= after {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[file], nil
}

// Bus is an in-memory changelog.Bus: Publish fans entries out directly to
// every registered channel, synchronously, so tests need no sleeps or
// polling to observe a published entry.
type Bus struct {
	mu   sync.Mutex
	subs map[ids.FileId][]chan wire.OffsetedChange
}

func NewBus() *Bus {
	return &Bus{subs: make(map[ids.FileId][]chan wire.OffsetedChange)}
}

func (b *Bus) Publish(ctx context.Context, file ids.FileId, entries []wire.OffsetedChange) error {
	b.mu.Lock()
	subs := append([]chan wire.OffsetedChange(nil), b.subs[file]...)
	b.mu.Unlock()

	for _, e := range entries {
		for _, ch := range subs {
			ch <- e
		}
	}
	return nil
}

func (b *Bus) Consume(ctx context.Context, file ids.FileId) (<-chan wire.OffsetedChange, func(), error) {
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
