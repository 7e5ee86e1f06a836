package undostore

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

func (s *Service) BeginUndoEvent(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, error) {
	event := ids.NewEventId()
	if err := s.store.PushEvent(ctx, UndoStack, file, user, event); err != nil {
		return ids.EventId{}, fmt.Errorf("undostore: begin undo event: %w", err)
	}
	return event, nil
}

func (s *Service) Record(ctx context.Context, file ids.FileId, user ids.UserId, offset ids.Offset, change wire.ChangeMsg) error {
	entry := UndoEntry{Offset: offset, ObjID: change.ObjId(), Kind: change.Kind}

	switch change.Source.Kind {
	case wire.SourceUserAction:
		top, ok, err := s.store.PeekTopEvent(ctx, UndoStack, file, user)
		if err != nil {
			return fmt.Errorf("undostore: peek undo stack: %w", err)
		}
		if !ok {
			return ErrNoUndoEvent
		}
		if err := s.store.AppendEntry(ctx, top, entry); err != nil {
			return fmt.Errorf("undostore: append to undo event: %w", err)
		}
		return nil

	case wire.SourceUndo:
		return s.consume(ctx, file, user, change.Source.Event, entry, UndoStack, RedoStack)

	case wire.SourceRedo:
		return s.consume(ctx, file, user, change.Source.Event, entry, RedoStack, UndoStack)

	default:
		return fmt.Errorf("undostore: unrecognized source kind %d", change.Source.Kind)
	}
}

// consume removes entry's object from event e on fromStack (gc'ing e if
// it empties out), then appends a derived entry to the top of toStack,
// which must already exist — undo_latest/redo_latest is required to have
// begun a fresh event on toStack before any inverse change is resubmitted.
func (s *Service) consume(ctx context.Context, file ids.FileId, user ids.UserId, e ids.EventId, entry UndoEntry, fromStack, toStack StackKind) error {
	found, err := s.store.RemoveEntry(ctx, e, entry.ObjID)
	if err != nil {
		return fmt.Errorf("undostore: remove entry: %w", err)
	}
	if !found {
		return ErrNoObjInUndoEvent
	}

	remaining, err := s.store.Entries(ctx, e)
	if err != nil {
		return fmt.Errorf("undostore: read remaining entries: %w", err)
	}
	if len(remaining) == 0 {
		if err := s.store.RemoveEventFromStack(ctx, fromStack, file, user, e); err != nil {
			return fmt.Errorf("undostore: gc empty event: %w", err)
		}
	}

	top, ok, err := s.store.PeekTopEvent(ctx, toStack, file, user)
	if err != nil {
		return fmt.Errorf("undostore: peek opposite stack: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: opposite stack has no event to receive the derived entry", errInvariant)
	}
	if err := s.store.AppendEntry(ctx, top, entry); err != nil {
		return fmt.Errorf("undostore: append derived entry: %w", err)
	}
	return nil
}

func (s *Service) UndoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []UndoEntry, error) {
	return s.latest(ctx, file, user, UndoStack, RedoStack)
}

func (s *Service) RedoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []UndoEntry, error) {
	return s.latest(ctx, file, user, RedoStack, UndoStack)
}

func (s *Service) latest(ctx context.Context, file ids.FileId, user ids.UserId, from, to StackKind) (ids.EventId, []UndoEntry, error) {
	top, ok, err := s.store.PeekTopEvent(ctx, from, file, user)
	if err != nil {
		return ids.EventId{}, nil, fmt.Errorf("undostore: peek: %w", err)
	}
	if !ok {
		return ids.EventId{}, nil, ErrNoUndoEvent
	}

	entries, err := s.store.Entries(ctx, top)
	if err != nil {
		return ids.EventId{}, nil, fmt.Errorf("undostore: entries: %w", err)
	}

	fresh := ids.NewEventId()
	if err := s.store.PushEvent(ctx, to, file, user, fresh); err != nil {
		return ids.EventId{}, nil, fmt.Errorf("undostore: begin opposite event: %w", err)
	}

	return top, entries, nil
}
