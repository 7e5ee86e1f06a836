// Package undostore implements the per-(file,user) undo/redo stacks
// (§4.4): each stack holds EventIds bottom-to-top oldest-to-newest, and
// each EventId owns an ordered list of UndoEntry recording which objects
// changed. Replaying a committed change routes it onto the stacks by its
// wire.Source tag, so repeated undo/redo toggling is self-describing and
// needs no heuristics — grounded in original_source's undo/src/cache.rs
// RPUSH/RPOP stack-of-event-ids shape, generalized to per-entry routing.
package undostore

import (
	"context"
	"errors"

	"github.com/weaveform/weave/internal/apierr"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// UndoEntry records one object's change within one undo/redo event.
type UndoEntry struct {
	Offset ids.Offset
	ObjID  ids.ObjId
	Kind   wire.ChangeKind
}

// StackKind discriminates the undo stack from the redo stack.
type StackKind int

const (
	UndoStack StackKind = iota
	RedoStack
)

var (
	ErrNoUndoEvent      = apierr.ErrNoUndoEvent
	ErrNoObjInUndoEvent = apierr.ErrNoObjInUndoEvent
)

// API is the undo store's public contract.
type API interface {
	// BeginUndoEvent pushes a fresh, empty event onto the undo stack.
	BeginUndoEvent(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, error)

	// Record folds one committed log entry into the stacks, routed by
	// change.Source.
	Record(ctx context.Context, file ids.FileId, user ids.UserId, offset ids.Offset, change wire.ChangeMsg) error

	// UndoLatest returns the top undo-stack event without popping it,
	// and begins a fresh redo event.
	UndoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []UndoEntry, error)

	// RedoLatest is UndoLatest with the stacks swapped.
	RedoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []UndoEntry, error)
}

// Store is the persistence boundary beneath the service.
type Store interface {
	PushEvent(ctx context.Context, stack StackKind, file ids.FileId, user ids.UserId, event ids.EventId) error
	PeekTopEvent(ctx context.Context, stack StackKind, file ids.FileId, user ids.UserId) (ids.EventId, bool, error)
	RemoveEventFromStack(ctx context.Context, stack StackKind, file ids.FileId, user ids.UserId, event ids.EventId) error

	AppendEntry(ctx context.Context, event ids.EventId, entry UndoEntry) error
	RemoveEntry(ctx context.Context, event ids.EventId, obj ids.ObjId) (bool, error)
	Entries(ctx context.Context, event ids.EventId) ([]UndoEntry, error)
}

var errInvariant = errors.New("undostore: invariant violation")
