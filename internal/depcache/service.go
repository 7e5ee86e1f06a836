package depcache

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

	old, err := s.store.GetObjDeps(ctx, file, obj)
	if err != nil {
		return fmt.Errorf("depcache: get obj deps: %w", err)
	}

	var next []*ids.Reference
	if change.Kind != wire.KindDelete && change.Object != nil {
		next = change.Object.Dependencies
	}

	n := len(old)
	if len(next) > n {
		n = len(next)
	}

	for i := 0; i < n; i++ {
		var oldRef, newRef *ids.Reference
		if i < len(old) {
			oldRef = old[i]
		}
		if i < len(next) {
			newRef = next[i]
		}

		switch {
		case oldRef == nil && newRef == nil:
			continue
		case oldRef == nil && newRef != nil:
			if err := s.insert(ctx, file, offset, *newRef); err != nil {
				return err
			}
		case oldRef != nil && newRef != nil:
			if oldRef.Other != newRef.Other {
				if err := s.remove(ctx, file, offset, oldRef.Owner, oldRef.Other); err != nil {
					return err
				}
			}
			if err := s.insert(ctx, file, offset, *newRef); err != nil {
				return err
			}
		case oldRef != nil && newRef == nil:
			if err := s.remove(ctx, file, offset, oldRef.Owner, oldRef.Other); err != nil {
				return err
			}
		}
	}

	if err := s.store.SetObjDeps(ctx, file, obj, next); err != nil {
		return fmt.Errorf("depcache: set obj deps: %w", err)
	}
	return nil
}

// insert adds or refreshes ref in the subscriber snapshot of ref.Other,
// keyed by ref.Owner so a re-insert of the same owner overwrites rather
// than duplicates (e.g. a Modify whose Other is unchanged but whose
// UpdateKind recipe changed).
func (s *Service) insert(ctx context.Context, file ids.FileId, offset ids.Offset, ref ids.Reference) error {
	cur, err := s.store.SnapshotAtOrBefore(ctx, file, ref.Other, offset)
	if err != nil {
		return fmt.Errorf("depcache: read snapshot: %w", err)
	}

	next := make([]ids.Reference, 0, len(cur)+1)
	replaced := false
	for _, r := range cur {
		if r.Owner == ref.Owner {
			next = append(next, ref)
			replaced = true
			continue
		}
		next = append(next, r)
	}
	if !replaced {
		next = append(next, ref)
	}

	if err := s.store.PushSnapshot(ctx, file, ref.Other, offset, next); err != nil {
		return fmt.Errorf("depcache: push snapshot: %w", err)
	}
	return nil
}

func (s *Service) remove(ctx context.Context, file ids.FileId, offset ids.Offset, owner, other ids.RefId) error {
	cur, err := s.store.SnapshotAtOrBefore(ctx, file, other, offset)
	if err != nil {
		return fmt.Errorf("depcache: read snapshot: %w", err)
	}

	next := make([]ids.Reference, 0, len(cur))
	for _, r := range cur {
		if r.Owner == owner {
			continue
		}
		next = append(next, r)
	}

	if err := s.store.PushSnapshot(ctx, file, other, offset, next); err != nil {
		return fmt.Errorf("depcache: push snapshot: %w", err)
	}
	return nil
}

// GetAllDeps performs the breadth-first traversal described in §4.3: the
// queue is seeded with roots, and at each pop, the subscribers of the
// current RefId as of offset become edges to unvisited owners, which are
// themselves enqueued. visited is monotone, so termination is guaranteed
// by the finite RefId domain even across self-referential cycles.
func (s *Service) GetAllDeps(ctx context.Context, file ids.FileId, offset ids.Offset, roots []ids.RefId) ([]ids.Reference, error) {
	visited := make(map[ids.RefId]bool)
	queue := append([]ids.RefId(nil), roots...)
	var edges []ids.Reference

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		subs, err := s.store.SnapshotAtOrBefore(ctx, file, cur, offset)
		if err != nil {
			return nil, fmt.Errorf("depcache: snapshot of %s: %w", cur, err)
		}
		for _, r := range subs {
			if visited[r.Owner] {
				continue
			}
			visited[r.Owner] = true
			edges = append(edges, r)
			queue = append(queue, r.Owner)
		}
	}

	return edges, nil
}
