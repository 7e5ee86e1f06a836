package undoengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/undoengine"
	"github.com/weaveform/weave/internal/undostore"
	"github.com/weaveform/weave/internal/wire"
)

type fakeUndoStore struct {
	event   ids.EventId
	entries []undostore.UndoEntry
	err     error
}

func (f *fakeUndoStore) UndoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []undostore.UndoEntry, error) {
	return f.event, f.entries, f.err
}

func (f *fakeUndoStore) RedoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []undostore.UndoEntry, error) {
	return f.event, f.entries, f.err
}

type fakeHistory struct {
	byObj map[ids.ObjId]*wire.ChangeMsg
}

func (f *fakeHistory) GetObjects(ctx context.Context, file ids.FileId, queries []objectcache.Query) ([]*wire.ChangeMsg, error) {
	out := make([]*wire.ChangeMsg, len(queries))
	for i, q := range queries {
		out[i] = f.byObj[q.Obj]
	}
	return out, nil
}

func TestUndoInvertsAddAsDelete(t *testing.T) {
	file := ids.NewFileId()
	user := ids.NewUserId()
	event := ids.NewEventId()
	obj := ids.NewObjId()

	undo := &fakeUndoStore{event: event, entries: []undostore.UndoEntry{{Offset: 5, ObjID: obj, Kind: wire.KindAdd}}}
	svc := undoengine.NewService(undo, &fakeHistory{})

	gotEvent, batch, err := svc.Undo(context.Background(), file, user)
	require.NoError(t, err)
	require.Equal(t, event, gotEvent)
	require.Len(t, batch, 1)
	require.Equal(t, wire.KindDelete, batch[0].Kind)
	require.Equal(t, obj, batch[0].Delete)
	require.Equal(t, wire.SourceUndo, batch[0].Source.Kind)
}

func TestUndoInvertsModifyAsModifyWithPriorState(t *testing.T) {
	file := ids.NewFileId()
	user := ids.NewUserId()
	event := ids.NewEventId()
	obj := ids.NewObjId()
	prior := &wire.ChangeMsg{Kind: wire.KindModify, Object: &wire.Object{ID: obj, ObjData: []byte("prior")}}

	undo := &fakeUndoStore{event: event, entries: []undostore.UndoEntry{{Offset: 10, ObjID: obj, Kind: wire.KindModify}}}
	history := &fakeHistory{byObj: map[ids.ObjId]*wire.ChangeMsg{obj: prior}}
	svc := undoengine.NewService(undo, history)

	_, batch, err := svc.Undo(context.Background(), file, user)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Equal(t, wire.KindModify, batch[0].Kind)
	require.Equal(t, []byte("prior"), batch[0].Object.ObjData)
}

func TestUndoInvertsDeleteAsAdd(t *testing.T) {
	file := ids.NewFileId()
	user := ids.NewUserId()
	event := ids.NewEventId()
	obj := ids.NewObjId()
	prior := &wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: obj, ObjData: []byte("resurrected")}}

	undo := &fakeUndoStore{event: event, entries: []undostore.UndoEntry{{Offset: 3, ObjID: obj, Kind: wire.KindDelete}}}
	history := &fakeHistory{byObj: map[ids.ObjId]*wire.ChangeMsg{obj: prior}}
	svc := undoengine.NewService(undo, history)

	_, batch, err := svc.Undo(context.Background(), file, user)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Equal(t, wire.KindAdd, batch[0].Kind)
	require.Equal(t, []byte("resurrected"), batch[0].Object.ObjData)
}

func TestUndoModifyWithAbsentPriorIsInvariantViolation(t *testing.T) {
	file := ids.NewFileId()
	user := ids.NewUserId()
	obj := ids.NewObjId()

	undo := &fakeUndoStore{event: ids.NewEventId(), entries: []undostore.UndoEntry{{Offset: 10, ObjID: obj, Kind: wire.KindModify}}}
	svc := undoengine.NewService(undo, &fakeHistory{})

	_, _, err := svc.Undo(context.Background(), file, user)
	require.ErrorIs(t, err, undoengine.ErrInvariant)
}

func TestRedoSymmetricWithUndo(t *testing.T) {
	file := ids.NewFileId()
	user := ids.NewUserId()
	event := ids.NewEventId()
	obj := ids.NewObjId()

	undo := &fakeUndoStore{event: event, entries: []undostore.UndoEntry{{Offset: 1, ObjID: obj, Kind: wire.KindAdd}}}
	svc := undoengine.NewService(undo, &fakeHistory{})

	_, batch, err := svc.Redo(context.Background(), file, user)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Equal(t, wire.SourceRedo, batch[0].Source.Kind)
}
