package objectcache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/objectcache/memory"
	"github.com/weaveform/weave/internal/wire"
)

func TestPointInTimeReadReturnsGreatestOffsetAtOrBelowQuery(t *testing.T) {
	svc := objectcache.NewService(memory.NewStore())
	ctx := context.Background()
	file := ids.NewFileId()
	obj := ids.NewObjId()

	require.NoError(t, svc.Apply(ctx, file, 1, wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: obj, ObjData: []byte("v1")}}))
	require.NoError(t, svc.Apply(ctx, file, 3, wire.ChangeMsg{Kind: wire.KindModify, Object: &wire.Object{ID: obj, ObjData: []byte("v3")}}))
	require.NoError(t, svc.Apply(ctx, file, 5, wire.ChangeMsg{Kind: wire.KindModify, Object: &wire.Object{ID: obj, ObjData: []byte("v5")}}))

	results, err := svc.GetObjects(ctx, file, []objectcache.Query{{Offset: 4, Obj: obj}})
	require.NoError(t, err)
	require.NotNil(t, results[0])
	require.Equal(t, []byte("v3"), results[0].Object.ObjData)
}

func TestGetObjectsReturnsNilForDeletedOrMissing(t *testing.T) {
	svc := objectcache.NewService(memory.NewStore())
	ctx := context.Background()
	file := ids.NewFileId()
	obj := ids.NewObjId()
	missing := ids.NewObjId()

	require.NoError(t, svc.Apply(ctx, file, 1, wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: obj}}))
	require.NoError(t, svc.Apply(ctx, file, 2, wire.ChangeMsg{Kind: wire.KindDelete, Delete: obj}))

	results, err := svc.GetObjects(ctx, file, []objectcache.Query{
		{Offset: 2, Obj: obj},
		{Offset: 10, Obj: missing},
	})
	require.NoError(t, err)
	require.Nil(t, results[0], "deleted object reads as None")
	require.Nil(t, results[1], "unknown object reads as None")
}

func TestAliveSetTracksAddAndDeleteNotModify(t *testing.T) {
	svc := objectcache.NewService(memory.NewStore())
	ctx := context.Background()
	file := ids.NewFileId()
	a, b := ids.NewObjId(), ids.NewObjId()

	require.NoError(t, svc.Apply(ctx, file, 1, wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: a}}))
	require.NoError(t, svc.Apply(ctx, file, 2, wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: b}}))
	require.NoError(t, svc.Apply(ctx, file, 3, wire.ChangeMsg{Kind: wire.KindModify, Object: &wire.Object{ID: a}}))
	require.NoError(t, svc.Apply(ctx, file, 4, wire.ChangeMsg{Kind: wire.KindDelete, Delete: b}))

	ch, err := svc.LatestAliveIDs(ctx, file)
	require.NoError(t, err)

	var alive []ids.ObjId
	for id := range ch {
		alive = append(alive, id)
	}
	require.Equal(t, []ids.ObjId{a}, alive)
}

func TestLatestOffsetTracksHighestApplied(t *testing.T) {
	svc := objectcache.NewService(memory.NewStore())
	ctx := context.Background()
	file := ids.NewFileId()

	require.NoError(t, svc.Apply(ctx, file, 1, wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: ids.NewObjId()}}))
	require.NoError(t, svc.Apply(ctx, file, 2, wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: ids.NewObjId()}}))

	latest, err := svc.LatestOffset(ctx, file)
	require.NoError(t, err)
	require.Equal(t, ids.Offset(2), latest)
}
