// Package memory provides in-process Publisher and OffsetStore
// implementations for tests and single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// Publisher collects published updates per file for a test or local
// caller to drain.
type Publisher struct {
	mu   sync.Mutex
	subs map[ids.FileId][]chan wire.UpdateChangeMsg
}

func NewPublisher() *Publisher {
	return &Publisher{subs: make(map[ids.FileId][]chan wire.UpdateChangeMsg)}
}

func (p *Publisher) Publish(ctx context.Context, file ids.FileId, update wire.UpdateChangeMsg) error {
	p.mu.Lock()
	subs := append([]chan wire.UpdateChangeMsg(nil), p.subs[file]...)
	p.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- update:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a channel that receives every update published for
// file from this point on.
func (p *Publisher) Subscribe(file ids.FileId) <-chan wire.UpdateChangeMsg {
	ch := make(chan wire.UpdateChangeMsg, 64)
	p.mu.Lock()
	p.subs[file] = append(p.subs[file], ch)
	p.mu.Unlock()
	return ch
}

// OffsetStore is a process-local, non-durable dedup ledger.
type OffsetStore struct {
	mu   sync.Mutex
	last map[ids.FileId]map[ids.ObjId]ids.Offset
}

func NewOffsetStore() *OffsetStore {
	return &OffsetStore{last: make(map[ids.FileId]map[ids.ObjId]ids.Offset)}
}

func (s *OffsetStore) LastPublished(ctx context.Context, file ids.FileId, obj ids.ObjId) (ids.Offset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset, ok := s.last[file][obj]
	return offset, ok, nil
}

func (s *OffsetStore) SetLastPublished(ctx context.Context, file ids.FileId, obj ids.ObjId, offset ids.Offset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last[file] == nil {
		s.last[file] = make(map[ids.ObjId]ids.Offset)
	}
	s.last[file][obj] = offset
	return nil
}
