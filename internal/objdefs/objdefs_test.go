package objdefs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objdefs"
	"github.com/weaveform/weave/internal/wire"
)

type stubKernel struct{}

func (stubKernel) MakePrism(ctx context.Context, first, second wire.Point3, width, height float64) (wire.MeshData, error) {
	return wire.MeshData{Positions: []float64{first.X, first.Y, first.Z, second.X, second.Y, second.Z}}, nil
}

func TestWallEncodeDecodeRoundTrip(t *testing.T) {
	id := ids.NewObjId()
	w := objdefs.NewWall(id, wire.Point3{X: 0, Y: 0, Z: 0}, wire.Point3{X: 10, Y: 0, Z: 0}, 1, 3)

	data, err := objdefs.Encode(w)
	require.NoError(t, err)

	decoded, err := objdefs.Decode(data)
	require.NoError(t, err)
	require.Equal(t, objdefs.KindWall, decoded.Kind())
	require.Equal(t, id, decoded.ID())
}

// TestWallUpdateMovesProfilePoint mirrors the spirit of scenario S2: when
// an inbound Update changes a profile point, ResultFor reports the new
// point after Recalculate.
func TestWallUpdateMovesProfilePoint(t *testing.T) {
	w := objdefs.NewWall(ids.NewObjId(), wire.Point3{X: 0, Y: 0}, wire.Point3{X: 10, Y: 0}, 2, 4)

	moved := wire.Point3{X: 0, Y: 5}
	w.Update(ids.RefProfilePoint, 0, objdefs.RefResult{Point: &moved}, true)
	w.Recalculate()

	result, ok := w.ResultFor(ids.RefProfilePoint, 0)
	require.True(t, ok)
	require.Equal(t, moved, *result.Point)
}

func TestWallReferencesIncludeIntraObjectDerivations(t *testing.T) {
	w := objdefs.NewWall(ids.NewObjId(), wire.Point3{}, wire.Point3{X: 1}, 1, 1)
	refs := w.References()
	// 2 external point slots + 4 intra-object (bbox x2, line x2).
	require.Len(t, refs, 6)
	require.Nil(t, refs[0]) // first_pt unbound
	require.Nil(t, refs[1]) // second_pt unbound
	require.NotNil(t, refs[2])
}

func TestWallRepresentationCallsKernel(t *testing.T) {
	w := objdefs.NewWall(ids.NewObjId(), wire.Point3{X: 1, Y: 2}, wire.Point3{X: 3, Y: 4}, 1, 2)
	out, err := w.Representation(context.Background(), stubKernel{})
	require.NoError(t, err)
	require.Equal(t, wire.OutputMesh, out.Kind)
	require.NotNil(t, out.Mesh)
}

// TestViewportSelfDeletesWhenSheetRefCleared mirrors scenario S5: a
// viewport whose sheet reference has been pruned (e.g. the sheet object
// was deleted and C6 pruned the dangling reference to None) reports
// itself for deletion on its next representation, rather than drawing
// nothing silently.
func TestViewportSelfDeletesWhenSheetRefCleared(t *testing.T) {
	id := ids.NewObjId()
	sheet := ids.NewObjId()
	vp := objdefs.NewViewport(id, sheet, objdefs.ViewType{Preset: "Top"}, wire.Point3{})

	out, err := vp.Representation(context.Background(), stubKernel{})
	require.NoError(t, err)
	require.Equal(t, wire.OutputJSON, out.Kind)

	vp.ClearRefs()
	out, err = vp.Representation(context.Background(), stubKernel{})
	require.NoError(t, err)
	require.Equal(t, wire.OutputDelete, out.Kind)
}

func TestViewportUpdateWithAbsentOtherClearsSheet(t *testing.T) {
	vp := objdefs.NewViewport(ids.NewObjId(), ids.NewObjId(), objdefs.ViewType{}, wire.Point3{})
	vp.Update(ids.RefExistence, 0, objdefs.RefResult{}, false)

	out, err := vp.Representation(context.Background(), stubKernel{})
	require.NoError(t, err)
	require.Equal(t, wire.OutputDelete, out.Kind)
}

func TestVisibilityGroupDeleteRefTombstonesSlotWithoutShrinking(t *testing.T) {
	g := objdefs.NewVisibilityGroup(ids.NewObjId())
	other := ids.RefId{Obj: ids.NewObjId(), Kind: ids.RefDrawable, Index: 0}
	require.True(t, g.AddRef(ids.RefDrawable, objdefs.EmptyResult(), other))
	require.True(t, g.AddRef(ids.RefDrawable, objdefs.EmptyResult(), other))

	g.DeleteRef(ids.RefDrawable, 0)

	refs := g.References()
	require.Len(t, refs, 2)
	require.Nil(t, refs[0])
	require.NotNil(t, refs[1])
}

func TestPropagateOneSkipsSelfReference(t *testing.T) {
	w := objdefs.NewWall(ids.NewObjId(), wire.Point3{}, wire.Point3{X: 1}, 1, 1)
	objects := map[ids.ObjId]objdefs.Type{w.ID(): w}
	self := &ids.Reference{
		Owner: ids.RefId{Obj: w.ID(), Kind: ids.RefProfileLine, Index: 0},
		Other: ids.RefId{Obj: w.ID(), Kind: ids.RefProfilePoint, Index: 0},
	}
	// Must not panic or deadlock; propagation is a pure no-op here.
	objdefs.PropagateOne(objects, self)
}

func TestPropagateOneAbsentOtherMarksNotOK(t *testing.T) {
	w := objdefs.NewWall(ids.NewObjId(), wire.Point3{}, wire.Point3{X: 1}, 1, 1)
	other := ids.RefId{Obj: ids.NewObjId(), Kind: ids.RefProfilePoint, Index: 0}
	pt := wire.Point3{X: 9, Y: 9}
	w.SetRef(ids.RefProfilePoint, 0, objdefs.RefResult{Point: &pt}, other)
	require.NotNil(t, w.References()[0])

	objects := map[ids.ObjId]objdefs.Type{w.ID(): w}
	dangling := &ids.Reference{
		Owner: ids.RefId{Obj: w.ID(), Kind: ids.RefProfilePoint, Index: 0},
		Other: other,
	}
	objdefs.PropagateOne(objects, dangling)
	require.Nil(t, w.References()[0]) // Update(ok=false) cleared the ref
}
