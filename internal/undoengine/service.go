package undoengine

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/undostore"
	"github.com/weaveform/weave/internal/wire"
)

type Service struct {
	undo    UndoStore
	history ObjectHistory
}

func NewService(undo UndoStore, history ObjectHistory) *Service {
	return &Service{undo: undo, history: history}
}

func (s *Service) Undo(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []wire.ChangeMsg, error) {
	event, entries, err := s.undo.UndoLatest(ctx, file, user)
	if err != nil {
		return ids.EventId{}, nil, fmt.Errorf("undoengine: undo latest: %w", err)
	}
	batch, err := s.invert(ctx, file, user, event, entries, wire.Undo(event))
	return event, batch, err
}

func (s *Service) Redo(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []wire.ChangeMsg, error) {
	event, entries, err := s.undo.RedoLatest(ctx, file, user)
	if err != nil {
		return ids.EventId{}, nil, fmt.Errorf("undoengine: redo latest: %w", err)
	}
	batch, err := s.invert(ctx, file, user, event, entries, wire.Redo(event))
	return event, batch, err
}

// invert realizes §4.7's per-entry truth table: fetch the object
// immediately before entry.Offset and synthesize the ChangeMsg that
// undoes entry's effect, tagging every result with source.
func (s *Service) invert(ctx context.Context, file ids.FileId, user ids.UserId, event ids.EventId, entries []undostore.UndoEntry, source wire.Source) ([]wire.ChangeMsg, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	queries := make([]objectcache.Query, len(entries))
	for i, e := range entries {
		queries[i] = objectcache.Query{Offset: e.Offset - 1, Obj: e.ObjID}
	}
	prior, err := s.history.GetObjects(ctx, file, queries)
	if err != nil {
		return nil, fmt.Errorf("undoengine: fetch prior states: %w", err)
	}

	var errs *multierror.Error
	batch := make([]wire.ChangeMsg, 0, len(entries))
	for i, e := range entries {
		msg, err := invertOne(e, prior[i], user, source)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("event %s entry %s: %w", event, e.ObjID, err))
			continue
		}
		batch = append(batch, msg)
	}
	if errs.ErrorOrNil() != nil {
		return nil, errs.ErrorOrNil()
	}
	return batch, nil
}

func invertOne(entry undostore.UndoEntry, prior *wire.ChangeMsg, user ids.UserId, source wire.Source) (wire.ChangeMsg, error) {
	switch entry.Kind {
	case wire.KindAdd:
		// Add: whatever existed before is irrelevant — undoing an Add
		// always deletes the object it created.
		return wire.ChangeMsg{User: user, Kind: wire.KindDelete, Delete: entry.ObjID, Source: source}, nil

	case wire.KindModify:
		if prior == nil || prior.Kind == wire.KindDelete || prior.Object == nil {
			return wire.ChangeMsg{}, fmt.Errorf("%w: modify with absent or deleted prior state", ErrInvariant)
		}
		return wire.ChangeMsg{
			User:   user,
			Kind:   wire.KindModify,
			Object: prior.Object.Clone(),
			Source: source,
		}, nil

	case wire.KindDelete:
		if prior == nil || prior.Kind == wire.KindDelete || prior.Object == nil {
			return wire.ChangeMsg{}, fmt.Errorf("%w: delete with absent or deleted prior state", ErrInvariant)
		}
		return wire.ChangeMsg{
			User:   user,
			Kind:   wire.KindAdd,
			Object: prior.Object.Clone(),
			Source: source,
		}, nil

	default:
		return wire.ChangeMsg{}, fmt.Errorf("%w: unrecognized change kind %s", ErrInvariant, entry.Kind)
	}
}
