// Package memory provides an in-process objectcache.Store for tests and
// single-node demos, mirroring the go-mizu/mizu/sync/memory package's
// plain-map-plus-mutex shape.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

type key struct {
	file ids.FileId
	obj  ids.ObjId
}

type entry struct {
	offset ids.Offset
	change wire.ChangeMsg
}

type Store struct {
	mu      sync.Mutex
	history map[key][]entry
	alive   map[ids.FileId]map[ids.ObjId]bool
	cursors map[ids.FileId]ids.Offset
}

func NewStore() *Store {
	return &Store{
		history: make(map[key][]entry),
		alive:   make(map[ids.FileId]map[ids.ObjId]bool),
		cursors: make(map[ids.FileId]ids.Offset),
	}
}

func (s *Store) Append(ctx context.Context, file ids.FileId, obj ids.ObjId, offset ids.Offset, change wire.ChangeMsg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{file, obj}
	s.history[k] = append(s.history[k], entry{offset: offset, change: change})
	return nil
}

func (s *Store) AtOrBefore(ctx context.Context, file ids.FileId, obj ids.ObjId, q ids.Offset) (*wire.ChangeMsg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.history[key{file, obj}]
	best := -1
	for i, e := range entries {
		if e.offset <= q && (best == -1 || e.offset > entries[best].offset) {
			best = i
		}
	}
	if best == -1 {
		return nil, nil
	}
	change := entries[best].change
	return &change, nil
}

func (s *Store) SetAlive(ctx context.Context, file ids.FileId, obj ids.ObjId, alive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.alive[file]
	if !ok {
		set = make(map[ids.ObjId]bool)
		s.alive[file] = set
	}
	if alive {
		set[obj] = true
	} else {
		delete(set, obj)
	}
	return nil
}

func (s *Store) AliveIDs(ctx context.Context, file ids.FileId) ([]ids.ObjId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.alive[file]
	out := make([]ids.ObjId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (s *Store) Advance(ctx context.Context, file ids.FileId, offset ids.Offset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset > s.cursors[file] {
		s.cursors[file] = offset
	}
	return nil
}

func (s *Store) LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[file], nil
}
