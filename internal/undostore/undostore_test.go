package undostore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/undostore"
	"github.com/weaveform/weave/internal/undostore/memory"
	"github.com/weaveform/weave/internal/wire"
)

func TestRecordFailsWithoutOpenEvent(t *testing.T) {
	svc := undostore.NewService(memory.NewStore())
	ctx := context.Background()
	file, user := ids.NewFileId(), ids.NewUserId()

	err := svc.Record(ctx, file, user, 1, wire.ChangeMsg{
		Kind:   wire.KindAdd,
		Object: &wire.Object{ID: ids.NewObjId()},
		Source: wire.UserAction(),
	})
	require.ErrorIs(t, err, undostore.ErrNoUndoEvent)
}

// TestS1CreateAndUndoSingleObject mirrors spec scenario S1.
func TestS1CreateAndUndoSingleObject(t *testing.T) {
	svc := undostore.NewService(memory.NewStore())
	ctx := context.Background()
	file, user := ids.NewFileId(), ids.NewUserId()
	obj := ids.NewObjId()

	_, err := svc.BeginUndoEvent(ctx, file, user)
	require.NoError(t, err)

	require.NoError(t, svc.Record(ctx, file, user, 1, wire.ChangeMsg{
		Kind: wire.KindAdd, Object: &wire.Object{ID: obj}, Source: wire.UserAction(),
	}))

	event, entries, err := svc.UndoLatest(ctx, file, user)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, obj, entries[0].ObjID)

	// The undo caller inverts Add -> Delete and records it tagged Undo(e).
	require.NoError(t, svc.Record(ctx, file, user, 2, wire.ChangeMsg{
		Kind: wire.KindDelete, Delete: obj, Source: wire.Undo(event),
	}))

	redoEvent, redoEntries, err := svc.RedoLatest(ctx, file, user)
	require.NoError(t, err)
	require.Len(t, redoEntries, 1)
	require.Equal(t, obj, redoEntries[0].ObjID)

	require.NoError(t, svc.Record(ctx, file, user, 3, wire.ChangeMsg{
		Kind: wire.KindAdd, Object: &wire.Object{ID: obj}, Source: wire.Redo(redoEvent),
	}))

	// The redo's derived entry now sits on the undo stack, ready to be
	// undone again.
	_, undoEntries, err := svc.UndoLatest(ctx, file, user)
	require.NoError(t, err)
	require.Len(t, undoEntries, 1)
	require.Equal(t, obj, undoEntries[0].ObjID)
}

func TestUndoLatestDoesNotPopUntilRecordConsumes(t *testing.T) {
	svc := undostore.NewService(memory.NewStore())
	ctx := context.Background()
	file, user := ids.NewFileId(), ids.NewUserId()
	obj := ids.NewObjId()

	_, err := svc.BeginUndoEvent(ctx, file, user)
	require.NoError(t, err)
	require.NoError(t, svc.Record(ctx, file, user, 1, wire.ChangeMsg{
		Kind: wire.KindAdd, Object: &wire.Object{ID: obj}, Source: wire.UserAction(),
	}))

	_, entries1, err := svc.UndoLatest(ctx, file, user)
	require.NoError(t, err)
	_, entries2, err := svc.UndoLatest(ctx, file, user)
	require.NoError(t, err)
	require.Equal(t, entries1, entries2, "peeking twice without consuming must be idempotent")
}

func TestRecordUndoWithUnknownObjInEventFails(t *testing.T) {
	svc := undostore.NewService(memory.NewStore())
	ctx := context.Background()
	file, user := ids.NewFileId(), ids.NewUserId()

	_, err := svc.BeginUndoEvent(ctx, file, user)
	require.NoError(t, err)
	require.NoError(t, svc.Record(ctx, file, user, 1, wire.ChangeMsg{
		Kind: wire.KindAdd, Object: &wire.Object{ID: ids.NewObjId()}, Source: wire.UserAction(),
	}))

	event, _, err := svc.UndoLatest(ctx, file, user)
	require.NoError(t, err)

	err = svc.Record(ctx, file, user, 2, wire.ChangeMsg{
		Kind: wire.KindDelete, Delete: ids.NewObjId(), Source: wire.Undo(event),
	})
	require.ErrorIs(t, err, undostore.ErrNoObjInUndoEvent)
}

func TestRepeatedUndoRedoToggling(t *testing.T) {
	svc := undostore.NewService(memory.NewStore())
	ctx := context.Background()
	file, user := ids.NewFileId(), ids.NewUserId()
	obj := ids.NewObjId()

	_, err := svc.BeginUndoEvent(ctx, file, user)
	require.NoError(t, err)
	require.NoError(t, svc.Record(ctx, file, user, 1, wire.ChangeMsg{
		Kind: wire.KindAdd, Object: &wire.Object{ID: obj}, Source: wire.UserAction(),
	}))

	for i := 0; i < 3; i++ {
		event, entries, err := svc.UndoLatest(ctx, file, user)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.NoError(t, svc.Record(ctx, file, user, ids.Offset(10+2*i), wire.ChangeMsg{
			Kind: wire.KindDelete, Delete: obj, Source: wire.Undo(event),
		}))

		redoEvent, redoEntries, err := svc.RedoLatest(ctx, file, user)
		require.NoError(t, err)
		require.Len(t, redoEntries, 1)
		require.NoError(t, svc.Record(ctx, file, user, ids.Offset(11+2*i), wire.ChangeMsg{
			Kind: wire.KindAdd, Object: &wire.Object{ID: obj}, Source: wire.Redo(redoEvent),
		}))
	}
}
