package objectcache

import (
	"context"
	"fmt"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Apply(ctx context.Context, file ids.FileId, offset ids.Offset, change wire.ChangeMsg) error {
	obj := change.ObjId()
	if err := s.store.Append(ctx, file, obj, offset, change); err != nil {
		return fmt.Errorf("objectcache: append: %w", err)
	}

	switch change.Kind {
	case wire.KindAdd:
		if err := s.store.SetAlive(ctx, file, obj, true); err != nil {
			return fmt.Errorf("objectcache: mark alive: %w", err)
		}
	case wire.KindDelete:
		if err := s.store.SetAlive(ctx, file, obj, false); err != nil {
			return fmt.Errorf("objectcache: mark dead: %w", err)
		}
	case wire.KindModify:
		// no-op on the alive set, per §4.2
	}

	if err := s.store.Advance(ctx, file, offset); err != nil {
		return fmt.Errorf("objectcache: advance: %w", err)
	}
	return nil
}

func (s *Service) GetObjects(ctx context.Context, file ids.FileId, queries []Query) ([]*wire.ChangeMsg, error) {
	out := make([]*wire.ChangeMsg, len(queries))
	for i, q := range queries {
		entry, err := s.store.AtOrBefore(ctx, file, q.Obj, q.Offset)
		if err != nil {
			return nil, fmt.Errorf("objectcache: lookup %s@%d: %w", q.Obj, q.Offset, err)
		}
		if entry == nil || entry.Kind == wire.KindDelete {
			out[i] = nil
			continue
		}
		out[i] = entry
	}
	return out, nil
}

func (s *Service) LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error) {
	return s.store.LatestOffset(ctx, file)
}

func (s *Service) LatestAliveIDs(ctx context.Context, file ids.FileId) (<-chan ids.ObjId, error) {
	alive, err := s.store.AliveIDs(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("objectcache: alive ids: %w", err)
	}

	ch := make(chan ids.ObjId, len(alive))
	for _, id := range alive {
		ch <- id
	}
	close(ch)
	return ch, nil
}
