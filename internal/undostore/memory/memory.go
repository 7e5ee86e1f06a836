// Package memory provides an in-process undostore.Store for tests.
package memory

import (
	"context"
	"sync"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/undostore"
)

type stackKey struct {
	file ids.FileId
	user ids.UserId
}

type Store struct {
	mu      sync.Mutex
	stacks  map[undostore.StackKind]map[stackKey][]ids.EventId
	entries map[ids.EventId][]undostore.UndoEntry
}

func NewStore() *Store {
	return &Store{
		stacks: map[undostore.StackKind]map[stackKey][]ids.EventId{
			undostore.UndoStack: make(map[stackKey][]ids.EventId),
			undostore.RedoStack: make(map[stackKey][]ids.EventId),
		},
		entries: make(map[ids.EventId][]undostore.UndoEntry),
	}
}

func (s *Store) PushEvent(ctx context.Context, stack undostore.StackKind, file ids.FileId, user ids.UserId, event ids.EventId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := stackKey{file, user}
	s.stacks[stack][k] = append(s.stacks[stack][k], event)
	if _, ok := s.entries[event]; !ok {
		s.entries[event] = nil
	}
	return nil
}

func (s *Store) PeekTopEvent(ctx context.Context, stack undostore.StackKind, file ids.FileId, user ids.UserId) (ids.EventId, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.stacks[stack][stackKey{file, user}]
	if len(list) == 0 {
		return ids.EventId{}, false, nil
	}
	return list[len(list)-1], true, nil
}

func (s *Store) RemoveEventFromStack(ctx context.Context, stack undostore.StackKind, file ids.FileId, user ids.UserId, event ids.EventId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := stackKey{file, user}
	list := s.stacks[stack][k]
	for i, e := range list {
		if e == event {
			s.stacks[stack][k] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) AppendEntry(ctx context.Context, event ids.EventId, entry undostore.UndoEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[event] = append(s.entries[event], entry)
	return nil
}

func (s *Store) RemoveEntry(ctx context.Context, event ids.EventId, obj ids.ObjId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[event]
	for i, e := range list {
		if e.ObjID == obj {
			s.entries[event] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Entries(ctx context.Context, event ids.EventId) ([]undostore.UndoEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]undostore.UndoEntry(nil), s.entries[event]...), nil
}
