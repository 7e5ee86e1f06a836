// Package memory provides an in-process depcache.Store for tests, with
// the same snapshot-list-per-RefId shape as the Redis-backed store but
// no network round trip.
package memory

import (
	"context"
	"sync"

	"github.com/weaveform/weave/internal/ids"
)

type entry struct {
	offset ids.Offset
	subs   []ids.Reference
}

type Store struct {
	mu        sync.Mutex
	snapshots map[ids.FileId]map[ids.RefId][]entry
	objDeps   map[ids.FileId]map[ids.ObjId][]*ids.Reference
}

func NewStore() *Store {
	return &Store{
		snapshots: make(map[ids.FileId]map[ids.RefId][]entry),
		objDeps:   make(map[ids.FileId]map[ids.ObjId][]*ids.Reference),
	}
}

func (s *Store) PushSnapshot(ctx context.Context, file ids.FileId, other ids.RefId, offset ids.Offset, subs []ids.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byRef, ok := s.snapshots[file]
	if !ok {
		byRef = make(map[ids.RefId][]entry)
		s.snapshots[file] = byRef
	}
	cp := append([]ids.Reference(nil), subs...)
	byRef[other] = append(byRef[other], entry{offset: offset, subs: cp})
	return nil
}

func (s *Store) SnapshotAtOrBefore(ctx context.Context, file ids.FileId, other ids.RefId, q ids.Offset) ([]ids.Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.snapshots[file][other]
	best := -1
	for i, e := range entries {
		if e.offset <= q && (best == -1 || e.offset > entries[best].offset) {
			best = i
		}
	}
	if best == -1 {
		return nil, nil
	}
	return entries[best].subs, nil
}

func (s *Store) SetObjDeps(ctx context.Context, file ids.FileId, obj ids.ObjId, deps []*ids.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byObj, ok := s.objDeps[file]
	if !ok {
		byObj = make(map[ids.ObjId][]*ids.Reference)
		s.objDeps[file] = byObj
	}
	byObj[obj] = deps
	return nil
}

func (s *Store) GetObjDeps(ctx context.Context, file ids.FileId, obj ids.ObjId) ([]*ids.Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objDeps[file][obj], nil
}
