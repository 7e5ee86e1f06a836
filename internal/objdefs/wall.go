package objdefs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objdefs/geomutil"
	"github.com/weaveform/weave/internal/wire"
)

// updatablePoint pairs a derived Point3 with the RefId it was last set
// from, mirroring obj-traits::UpdatableInfo<Point3f>. A nil Ref means the
// slot is unbound and keeps whatever value it was last given directly.
type updatablePoint struct {
	Point wire.Point3 `json:"point"`
	Ref   *ids.RefId  `json:"ref,omitempty"`
}

// Wall is a prism between two profile points, offset by width and
// extruded by height, plus an open-ended list of openings (doors/windows
// cut into it), each tracked by an anchor point. Grounded on
// obj-defs/src/wall.rs.
type Wall struct {
	id       ids.ObjId
	FirstPt  updatablePoint    `json:"first_pt"`
	SecondPt updatablePoint    `json:"second_pt"`
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	// Openings track only their anchor point; wall.rs's ProfilePlane
	// openings carry a full plane, but nothing downstream of this module
	// consumes the extra orientation data, so the anchor point doubles
	// for both the reference payload and the recalculated position.
	Openings []*updatablePoint `json:"openings"`
}

func NewWall(id ids.ObjId, first, second wire.Point3, width, height float64) *Wall {
	return &Wall{id: id, FirstPt: updatablePoint{Point: first}, SecondPt: updatablePoint{Point: second}, Width: width, Height: height}
}

func decodeWall(data []byte) (Type, error) {
	w := &Wall{}
	if _, err := unmarshalInto(data, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Wall) ID() ids.ObjId { return w.id }
func (w *Wall) Kind() Kind    { return KindWall }

func (w *Wall) MarshalJSON() ([]byte, error) {
	type alias Wall
	return json.Marshal(struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{ID: w.id, alias: (*alias)(w)})
}

func (w *Wall) UnmarshalJSON(data []byte) error {
	type alias Wall
	aux := struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{alias: (*alias)(w)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.id = aux.ID
	return nil
}

func (w *Wall) selfBBoxRef() ids.RefId   { return ids.RefId{Obj: w.id, Kind: ids.RefAxisAlignedBBox, Index: 0} }
func (w *Wall) selfLineRef() ids.RefId   { return ids.RefId{Obj: w.id, Kind: ids.RefProfileLine, Index: 0} }
func (w *Wall) selfPointRef(i uint64) ids.RefId {
	return ids.RefId{Obj: w.id, Kind: ids.RefProfilePoint, Index: i}
}
func (w *Wall) selfPlaneRef(i uint64) ids.RefId {
	return ids.RefId{Obj: w.id, Kind: ids.RefProfilePlane, Index: i}
}

func (w *Wall) References() []*ids.Reference {
	var out []*ids.Reference
	push := func(owner ids.RefId, other *ids.RefId) {
		if other == nil {
			out = append(out, nil)
			return
		}
		out = append(out, &ids.Reference{Owner: owner, Other: *other})
	}
	push(w.selfPointRef(0), w.FirstPt.Ref)
	push(w.selfPointRef(1), w.SecondPt.Ref)
	// The bbox and profile-line are intra-object derivations: they always
	// depend on both profile points, unconditionally (wall.rs's get_refs
	// pushes these as Some(...) regardless of whether the points
	// themselves are externally bound).
	out = append(out,
		&ids.Reference{Owner: w.selfBBoxRef(), Other: w.selfPointRef(0)},
		&ids.Reference{Owner: w.selfBBoxRef(), Other: w.selfPointRef(1)},
		&ids.Reference{Owner: w.selfLineRef(), Other: w.selfPointRef(0)},
		&ids.Reference{Owner: w.selfLineRef(), Other: w.selfPointRef(1)},
	)
	for i, open := range w.Openings {
		if open != nil && open.Ref != nil {
			push(w.selfPlaneRef(uint64(i)), open.Ref)
		} else {
			out = append(out, nil)
		}
	}
	return out
}

func (w *Wall) ResultFor(kind ids.RefType, index uint64) (RefResult, bool) {
	switch kind {
	case ids.RefDrawable, ids.RefExistence:
		if index == 0 {
			return EmptyResult(), true
		}
	case ids.RefAxisAlignedBBox:
		if index == 0 {
			bbox := w.AxisAlignedBoundingBox()
			return RefResult{Cube: &bbox}, true
		}
	case ids.RefProfilePoint:
		switch index {
		case 0:
			return RefResult{Point: &w.FirstPt.Point}, true
		case 1:
			return RefResult{Point: &w.SecondPt.Point}, true
		}
	case ids.RefProfileLine:
		if index == 0 {
			return RefResult{Line: &wire.Line{A: w.FirstPt.Point, B: w.SecondPt.Point}}, true
		}
	case ids.RefProfilePlane:
		if int(index) < len(w.Openings) && w.Openings[index] != nil {
			return RefResult{Point: &w.Openings[index].Point}, true
		}
	}
	return RefResult{}, false
}

func (w *Wall) ResultsForKind(kind ids.RefType) []RefResult {
	n := w.NumResultsForKind(kind)
	out := make([]RefResult, 0, n)
	for i := 0; i < n; i++ {
		if r, ok := w.ResultFor(kind, uint64(i)); ok {
			out = append(out, r)
		}
	}
	return out
}

func (w *Wall) NumResultsForKind(kind ids.RefType) int {
	switch kind {
	case ids.RefDrawable, ids.RefExistence, ids.RefAxisAlignedBBox, ids.RefProfileLine:
		return 1
	case ids.RefProfilePoint:
		return 2
	case ids.RefProfilePlane:
		return len(w.Openings)
	default:
		return 0
	}
}

func (w *Wall) ClearRefs() {
	w.FirstPt.Ref = nil
	w.SecondPt.Ref = nil
	for _, open := range w.Openings {
		if open != nil {
			open.Ref = nil
		}
	}
}

func (w *Wall) SetRef(kind ids.RefType, index uint64, result RefResult, other ids.RefId) {
	switch kind {
	case ids.RefProfilePoint:
		switch index {
		case 0:
			setUpdatablePoint(&w.FirstPt, result, other)
		case 1:
			setUpdatablePoint(&w.SecondPt, result, other)
		}
	case ids.RefProfilePlane:
		if int(index) < len(w.Openings) {
			if w.Openings[index] == nil {
				w.Openings[index] = &updatablePoint{}
			}
			setUpdatablePoint(w.Openings[index], result, other)
		}
	}
}

func setUpdatablePoint(u *updatablePoint, result RefResult, other ids.RefId) {
	if result.Point != nil {
		u.Point = *result.Point
		o := other
		u.Ref = &o
	}
}

func (w *Wall) AddRef(kind ids.RefType, result RefResult, other ids.RefId) bool {
	if kind != ids.RefProfilePlane {
		return false
	}
	open := &updatablePoint{}
	setUpdatablePoint(open, result, other)
	w.Openings = append(w.Openings, open)
	return true
}

func (w *Wall) DeleteRef(kind ids.RefType, index uint64) {
	switch kind {
	case ids.RefProfilePoint:
		switch index {
		case 0:
			w.FirstPt.Ref = nil
		case 1:
			w.SecondPt.Ref = nil
		}
	case ids.RefProfilePlane:
		if int(index) < len(w.Openings) {
			w.Openings[index] = nil
		}
	}
}

func (w *Wall) Update(kind ids.RefType, index uint64, result RefResult, ok bool) {
	switch kind {
	case ids.RefProfilePoint:
		var target *updatablePoint
		switch index {
		case 0:
			target = &w.FirstPt
		case 1:
			target = &w.SecondPt
		}
		if target == nil {
			return
		}
		if ok && result.Point != nil {
			target.Point = *result.Point
		} else if !ok {
			target.Ref = nil
		}
	case ids.RefProfilePlane:
		if int(index) >= len(w.Openings) || w.Openings[index] == nil {
			return
		}
		if ok && result.Point != nil {
			w.Openings[index].Point = *result.Point
		} else if !ok {
			w.Openings[index].Ref = nil
		}
	}
}

// Recalculate is a no-op for Wall: its bbox and profile-line are computed
// on demand from FirstPt/SecondPt in ResultFor/AxisAlignedBoundingBox,
// never cached.
func (w *Wall) Recalculate() {}

func (w *Wall) Representation(ctx context.Context, kernel GeomKernel) (wire.UpdateOutput, error) {
	mesh, err := kernel.MakePrism(ctx, w.FirstPt.Point, w.SecondPt.Point, w.Width, w.Height)
	if err != nil {
		return wire.UpdateOutput{}, fmt.Errorf("objdefs: wall %s make_prism: %w", w.id, err)
	}
	return wire.UpdateOutput{Kind: wire.OutputMesh, Mesh: &mesh}, nil
}

func (w *Wall) Clone() Type {
	cp := *w
	cp.Openings = make([]*updatablePoint, len(w.Openings))
	for i, o := range w.Openings {
		if o != nil {
			oc := *o
			cp.Openings[i] = &oc
		}
	}
	return &cp
}

func (w *Wall) AsPosition() (Position, bool)         { return w, true }
func (w *Wall) AsDrawingViews() (DrawingViews, bool) { return w, true }

func (w *Wall) MoveObj(delta wire.Point3) {
	w.FirstPt.Point = geomutil.Add(w.FirstPt.Point, delta)
	w.SecondPt.Point = geomutil.Add(w.SecondPt.Point, delta)
}

func (w *Wall) AxisAlignedBoundingBox() wire.BBox {
	box := geomutil.BBoxFromWallFootprint(w.FirstPt.Point, w.SecondPt.Point, w.Width, w.Height)
	if box == nil {
		return wire.BBox{}
	}
	return *box
}

// GetViews renders each view as one line segment, mirroring wall.rs's
// get_top/get_front/get_left/get_right/get_back/get_bottom: top/bottom
// get the footprint diagonal from corner a to corner c, and
// front/left/right/back all get the same face diagonal from the origin
// to (horizontal span, height); no closed rectangle is drawn. ViewFlags
// filtering is honored by returning zero-value slices for unset flags.
func (w *Wall) GetViews(flags ViewFlags) wire.DrawingViews {
	var out wire.DrawingViews
	a, _, c, _ := geomutil.OffsetLine(w.FirstPt.Point, w.SecondPt.Point, w.Width)
	footprint := []wire.Line{{A: wire.Point3{X: a.X, Y: a.Y}, B: wire.Point3{X: c.X, Y: c.Y}}}
	if flags&ViewTop != 0 {
		out.Top = footprint
	}
	if flags&ViewBottom != 0 {
		out.Bottom = footprint
	}
	if flags&(ViewFront|ViewLeft|ViewRight|ViewBack) != 0 {
		face := w.prismFaceOutline()
		if flags&ViewFront != 0 {
			out.Front = face
		}
		if flags&ViewBack != 0 {
			out.Back = face
		}
		if flags&ViewLeft != 0 {
			out.Left = face
		}
		if flags&ViewRight != 0 {
			out.Right = face
		}
	}
	return out
}

func (w *Wall) prismFaceOutline() []wire.Line {
	p0 := wire.Point3{X: 0, Y: 0}
	p1 := wire.Point3{X: geomutil.HorizontalSpan(w.FirstPt.Point, w.SecondPt.Point), Y: w.Height}
	return []wire.Line{{A: p0, B: p1}}
}
