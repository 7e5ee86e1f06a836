package submitpipe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objdefs"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/submitpipe"
	"github.com/weaveform/weave/internal/wire"
)

type fakeChangeLog struct {
	appended []wire.ChangeMsg
	next     ids.Offset
}

func (f *fakeChangeLog) Append(ctx context.Context, file ids.FileId, batch []wire.ChangeMsg) ([]ids.Offset, error) {
	offsets := make([]ids.Offset, len(batch))
	for i, c := range batch {
		f.next++
		offsets[i] = f.next
		f.appended = append(f.appended, c)
	}
	return offsets, nil
}

type fakeObjectCache struct {
	objects map[ids.ObjId]*wire.ChangeMsg
}

func (f *fakeObjectCache) GetObjects(ctx context.Context, file ids.FileId, queries []objectcache.Query) ([]*wire.ChangeMsg, error) {
	out := make([]*wire.ChangeMsg, len(queries))
	for i, q := range queries {
		out[i] = f.objects[q.Obj]
	}
	return out, nil
}

type fakeDepCache struct {
	edges []ids.Reference
}

func (f *fakeDepCache) GetAllDeps(ctx context.Context, file ids.FileId, offset ids.Offset, roots []ids.RefId) ([]ids.Reference, error) {
	rootSet := make(map[ids.RefId]bool, len(roots))
	for _, r := range roots {
		rootSet[r] = true
	}
	var out []ids.Reference
	for _, e := range f.edges {
		if rootSet[e.Other] {
			out = append(out, e)
		}
	}
	return out, nil
}

func encodeWall(t *testing.T, w *objdefs.Wall) *wire.Object {
	t.Helper()
	data, err := objdefs.Encode(w)
	require.NoError(t, err)
	return &wire.Object{ID: w.ID(), Dependencies: w.References(), ObjData: data}
}

// TestSubmitPropagatesToDependent exercises spec scenario S2: wall B moves
// independently of wall C, which is externally bound to B's first profile
// point. Submitting only B's Modify must still widen the batch to C via
// the dependency graph and re-materialize C with the propagated position.
func TestSubmitPropagatesToDependent(t *testing.T) {
	file := ids.NewFileId()
	user := ids.NewUserId()

	b := objdefs.NewWall(ids.NewObjId(), wire.Point3{X: 0, Y: 0}, wire.Point3{X: 10, Y: 0}, 1, 3)
	c := objdefs.NewWall(ids.NewObjId(), wire.Point3{X: 0, Y: 0}, wire.Point3{X: 0, Y: 10}, 1, 3)

	bFirstRef := ids.RefId{Obj: b.ID(), Kind: ids.RefProfilePoint, Index: 0}
	cOther := ids.RefId{Obj: c.ID(), Kind: ids.RefProfilePoint, Index: 0}
	pt := b.FirstPt.Point
	c.SetRef(ids.RefProfilePoint, 0, objdefs.RefResult{Point: &pt}, bFirstRef)

	cache := &fakeObjectCache{objects: map[ids.ObjId]*wire.ChangeMsg{
		c.ID(): {Kind: wire.KindModify, Object: encodeWall(t, c)},
	}}
	deps := &fakeDepCache{edges: []ids.Reference{
		{Owner: cOther, Other: bFirstRef},
	}}
	log := &fakeChangeLog{}

	svc := submitpipe.NewService(log, cache, deps)

	moved := wire.Point3{X: 5, Y: 5}
	b.Update(ids.RefProfilePoint, 0, objdefs.RefResult{Point: &moved}, true)

	_, err := svc.Submit(context.Background(), file, user, 0, []wire.ChangeMsg{
		{User: user, Kind: wire.KindModify, Object: encodeWall(t, b), Source: wire.UserAction()},
	})
	require.NoError(t, err)
	require.Len(t, log.appended, 2)

	var sawC bool
	for _, change := range log.appended {
		if change.Object != nil && change.Object.ID == c.ID() {
			sawC = true
			decoded, err := objdefs.Decode(change.Object.ObjData)
			require.NoError(t, err)
			result, ok := decoded.ResultFor(ids.RefProfilePoint, 0)
			require.True(t, ok)
			require.Equal(t, moved, *result.Point)
		}
	}
	require.True(t, sawC, "dependent wall C should have been widened into the submit and re-materialized")
}

// TestSubmitPrunesDanglingReference covers §8 invariant 7: when the
// dependency graph names an owner whose external object has since been
// deleted (or is simply missing from the cache), propagation must clear
// the dangling reference rather than erroring the whole submit.
func TestSubmitPrunesDanglingReference(t *testing.T) {
	file := ids.NewFileId()
	user := ids.NewUserId()

	sheetID := ids.NewObjId()
	viewport := objdefs.NewViewport(ids.NewObjId(), sheetID, objdefs.ViewType{Preset: "Top"}, wire.Point3{})
	vpData, err := objdefs.Encode(viewport)
	require.NoError(t, err)
	vpObj := &wire.Object{ID: viewport.ID(), Dependencies: viewport.References(), ObjData: vpData}

	sheetExistenceRef := ids.RefId{Obj: sheetID, Kind: ids.RefExistence, Index: 0}
	ownerExistenceRef := ids.RefId{Obj: viewport.ID(), Kind: ids.RefExistence, Index: 0}

	sheet := objdefs.NewSheet(sheetExistenceRef.Obj, wire.Point3{})
	sheetData, err := objdefs.Encode(sheet)
	require.NoError(t, err)
	sheetObj := &wire.Object{ID: sheet.ID(), Dependencies: sheet.References(), ObjData: sheetData}

	cache := &fakeObjectCache{objects: map[ids.ObjId]*wire.ChangeMsg{
		viewport.ID(): {Kind: wire.KindModify, Object: vpObj},
		sheet.ID():    {Kind: wire.KindModify, Object: sheetObj},
	}}
	deps := &fakeDepCache{edges: []ids.Reference{
		{Owner: ownerExistenceRef, Other: sheetExistenceRef},
	}}
	log := &fakeChangeLog{}
	svc := submitpipe.NewService(log, cache, deps)

	_, err = svc.Submit(context.Background(), file, user, 0, []wire.ChangeMsg{
		{User: user, Kind: wire.KindDelete, Delete: sheet.ID(), Source: wire.UserAction()},
	})
	require.NoError(t, err)

	var sawViewport bool
	for _, change := range log.appended {
		if change.Object != nil && change.Object.ID == viewport.ID() {
			sawViewport = true
			decoded, err := objdefs.Decode(change.Object.ObjData)
			require.NoError(t, err)
			out, err := decoded.Representation(context.Background(), stubKernel{})
			require.NoError(t, err)
			require.Equal(t, wire.OutputDelete, out.Kind)
		}
	}
	require.True(t, sawViewport, "viewport should have been widened and re-materialized with its sheet ref cleared")
}

type stubKernel struct{}

func (stubKernel) MakePrism(ctx context.Context, first, second wire.Point3, width, height float64) (wire.MeshData, error) {
	return wire.MeshData{}, nil
}
