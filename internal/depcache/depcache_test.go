package depcache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaveform/weave/internal/depcache"
	"github.com/weaveform/weave/internal/depcache/memory"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

func refID(obj ids.ObjId, kind ids.RefType, index uint64) ids.RefId {
	return ids.RefId{Obj: obj, Kind: kind, Index: index}
}

// TestS2DependencyPropagationEdge mirrors spec scenario S2: B has no
// refs; C depends positionally on B's profile point 0.
func TestS2DependencyPropagationEdge(t *testing.T) {
	svc := depcache.NewService(memory.NewStore())
	ctx := context.Background()
	file := ids.NewFileId()
	b, c := ids.NewObjId(), ids.NewObjId()

	require.NoError(t, svc.Apply(ctx, file, 1, wire.ChangeMsg{
		Kind:   wire.KindAdd,
		Object: &wire.Object{ID: b},
	}))

	cRef := ids.Reference{
		Owner: refID(c, ids.RefProfilePoint, 0),
		Other: refID(b, ids.RefProfilePoint, 0),
		Update: ids.UpdateKind{Equals: &ids.EqualsUpdate{OwnerSubIdx: 0, OtherSubIdx: 0}},
	}
	require.NoError(t, svc.Apply(ctx, file, 2, wire.ChangeMsg{
		Kind:   wire.KindAdd,
		Object: &wire.Object{ID: c, Dependencies: []*ids.Reference{&cRef}},
	}))

	edges, err := svc.GetAllDeps(ctx, file, 2, []ids.RefId{refID(b, ids.RefProfilePoint, 0)})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, cRef.Owner, edges[0].Owner)
	require.Equal(t, cRef.Other, edges[0].Other)
}

// TestS3TransitiveChainBFSOrder mirrors spec scenario S3: a four-object
// chain A<-B<-C<-D must be returned in BFS layer order.
func TestS3TransitiveChainBFSOrder(t *testing.T) {
	svc := depcache.NewService(memory.NewStore())
	ctx := context.Background()
	file := ids.NewFileId()
	a, b, c, d := ids.NewObjId(), ids.NewObjId(), ids.NewObjId(), ids.NewObjId()

	pp := func(o ids.ObjId) ids.RefId { return refID(o, ids.RefProfilePoint, 0) }

	apply := func(offset ids.Offset, owner ids.ObjId, dep ids.ObjId) {
		ref := ids.Reference{Owner: pp(owner), Other: pp(dep), Update: ids.UpdateKind{Equals: &ids.EqualsUpdate{}}}
		require.NoError(t, svc.Apply(ctx, file, offset, wire.ChangeMsg{
			Kind:   wire.KindAdd,
			Object: &wire.Object{ID: owner, Dependencies: []*ids.Reference{&ref}},
		}))
	}

	require.NoError(t, svc.Apply(ctx, file, 1, wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: a}}))
	apply(2, b, a)
	apply(3, c, b)
	apply(4, d, c)

	edges, err := svc.GetAllDeps(ctx, file, 4, []ids.RefId{pp(a)})
	require.NoError(t, err)
	require.Len(t, edges, 3)
	require.Equal(t, pp(b), edges[0].Owner)
	require.Equal(t, pp(c), edges[1].Owner)
	require.Equal(t, pp(d), edges[2].Owner)
}

func TestDeleteRemovesAllPriorReferences(t *testing.T) {
	svc := depcache.NewService(memory.NewStore())
	ctx := context.Background()
	file := ids.NewFileId()
	a, b := ids.NewObjId(), ids.NewObjId()
	pp := func(o ids.ObjId) ids.RefId { return refID(o, ids.RefProfilePoint, 0) }

	require.NoError(t, svc.Apply(ctx, file, 1, wire.ChangeMsg{Kind: wire.KindAdd, Object: &wire.Object{ID: a}}))
	ref := ids.Reference{Owner: pp(b), Other: pp(a)}
	require.NoError(t, svc.Apply(ctx, file, 2, wire.ChangeMsg{
		Kind:   wire.KindAdd,
		Object: &wire.Object{ID: b, Dependencies: []*ids.Reference{&ref}},
	}))

	edges, err := svc.GetAllDeps(ctx, file, 2, []ids.RefId{pp(a)})
	require.NoError(t, err)
	require.Len(t, edges, 1)

	require.NoError(t, svc.Apply(ctx, file, 3, wire.ChangeMsg{Kind: wire.KindDelete, Delete: b}))

	edges, err = svc.GetAllDeps(ctx, file, 3, []ids.RefId{pp(a)})
	require.NoError(t, err)
	require.Empty(t, edges)
}

func TestSelfReferenceDoesNotInfiniteLoop(t *testing.T) {
	svc := depcache.NewService(memory.NewStore())
	ctx := context.Background()
	file := ids.NewFileId()
	a := ids.NewObjId()
	pp0 := refID(a, ids.RefProfilePoint, 0)
	pp1 := refID(a, ids.RefProfilePoint, 1)

	ref := ids.Reference{Owner: pp1, Other: pp0}
	require.NoError(t, svc.Apply(ctx, file, 1, wire.ChangeMsg{
		Kind:   wire.KindAdd,
		Object: &wire.Object{ID: a, Dependencies: []*ids.Reference{&ref}},
	}))

	done := make(chan struct{})
	var edges []ids.Reference
	var err error
	go func() {
		edges, err = svc.GetAllDeps(ctx, file, 1, []ids.RefId{pp0})
		close(done)
	}()
	<-done
	require.NoError(t, err)
	require.Len(t, edges, 1)
}
