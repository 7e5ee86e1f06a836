// Package undoengine implements the undo/redo engine (§4.7): inverting a
// recorded event into the ChangeMsg batch that, resubmitted through C6,
// restores the state the event moved away from.
package undoengine

import (
	"context"
	"errors"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/undostore"
	"github.com/weaveform/weave/internal/wire"
)

// ErrInvariant means the change log disagrees with what the undo stack
// recorded: a Modify/Delete entry whose immediately-prior state is
// itself absent or a Delete, which §4.7's truth table never produces
// from a consistent log.
var ErrInvariant = errors.New("undoengine: invariant violation")

// API is the undo engine's public contract: invert the latest undo or
// redo event into a batch ready for C6.Submit, tagged with the source
// that records it onto the opposite stack when it commits.
type API interface {
	// Undo inverts the top of the undo stack. The caller resubmits the
	// returned batch via submitpipe.Submit; C4.Record, driven by the
	// committed entries' Undo(e) source tag, then transfers the event
	// onto the redo stack.
	Undo(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []wire.ChangeMsg, error)

	// Redo is Undo with the stacks swapped.
	Redo(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []wire.ChangeMsg, error)
}

// UndoStore is the subset of undostore.API the engine depends on.
type UndoStore interface {
	UndoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []undostore.UndoEntry, error)
	RedoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []undostore.UndoEntry, error)
}

// ObjectHistory is the subset of objectcache.API the engine depends on:
// the point-in-time lookup needed to fetch an object's state immediately
// before a given offset.
type ObjectHistory interface {
	GetObjects(ctx context.Context, file ids.FileId, queries []objectcache.Query) ([]*wire.ChangeMsg, error)
}
