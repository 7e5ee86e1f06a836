package objdefs

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objdefs/geomutil"
	"github.com/weaveform/weave/internal/wire"
)

// Door is a wall opening: a directed line segment (the swing pivot plus
// travel direction), a width and a height. Its representation is a prism
// from FirstPt to SecondPt rotated 45 degrees about FirstPt (the door
// drawn half open) — grounded on obj-defs/src/door.rs, which rotates the
// second point by pi/4 before handing the pair to make_prism.
type Door struct {
	id       ids.ObjId
	FirstPt  updatablePoint `json:"first_pt"`
	SecondPt updatablePoint `json:"second_pt"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
}

func NewDoor(id ids.ObjId, first, second wire.Point3, width, height float64) *Door {
	return &Door{id: id, FirstPt: updatablePoint{Point: first}, SecondPt: updatablePoint{Point: second}, Width: width, Height: height}
}

func decodeDoor(data []byte) (Type, error) {
	d := &Door{}
	if _, err := unmarshalInto(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Door) ID() ids.ObjId { return d.id }
func (d *Door) Kind() Kind    { return KindDoor }

func (d *Door) MarshalJSON() ([]byte, error) {
	type alias Door
	return json.Marshal(struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{ID: d.id, alias: (*alias)(d)})
}

func (d *Door) UnmarshalJSON(data []byte) error {
	type alias Door
	aux := struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.id = aux.ID
	return nil
}

func (d *Door) selfPointRef(i uint64) ids.RefId {
	return ids.RefId{Obj: d.id, Kind: ids.RefProfilePoint, Index: i}
}
func (d *Door) selfBBoxRef() ids.RefId { return ids.RefId{Obj: d.id, Kind: ids.RefAxisAlignedBBox, Index: 0} }

func (d *Door) References() []*ids.Reference {
	var out []*ids.Reference
	push := func(owner ids.RefId, other *ids.RefId) {
		if other == nil {
			out = append(out, nil)
			return
		}
		out = append(out, &ids.Reference{Owner: owner, Other: *other})
	}
	push(d.selfPointRef(0), d.FirstPt.Ref)
	push(d.selfPointRef(1), d.SecondPt.Ref)
	out = append(out,
		&ids.Reference{Owner: d.selfBBoxRef(), Other: d.selfPointRef(0)},
		&ids.Reference{Owner: d.selfBBoxRef(), Other: d.selfPointRef(1)},
	)
	return out
}

func (d *Door) ResultFor(kind ids.RefType, index uint64) (RefResult, bool) {
	switch kind {
	case ids.RefDrawable, ids.RefExistence:
		if index == 0 {
			return EmptyResult(), true
		}
	case ids.RefAxisAlignedBBox:
		if index == 0 {
			box := d.AxisAlignedBoundingBox()
			return RefResult{Cube: &box}, true
		}
	case ids.RefProfilePoint:
		switch index {
		case 0:
			return RefResult{Point: &d.FirstPt.Point}, true
		case 1:
			return RefResult{Point: &d.SecondPt.Point}, true
		}
	}
	return RefResult{}, false
}

func (d *Door) ResultsForKind(kind ids.RefType) []RefResult {
	n := d.NumResultsForKind(kind)
	out := make([]RefResult, 0, n)
	for i := 0; i < n; i++ {
		if r, ok := d.ResultFor(kind, uint64(i)); ok {
			out = append(out, r)
		}
	}
	return out
}

func (d *Door) NumResultsForKind(kind ids.RefType) int {
	switch kind {
	case ids.RefDrawable, ids.RefExistence, ids.RefAxisAlignedBBox:
		return 1
	case ids.RefProfilePoint:
		return 2
	default:
		return 0
	}
}

func (d *Door) ClearRefs() {
	d.FirstPt.Ref = nil
	d.SecondPt.Ref = nil
}

func (d *Door) SetRef(kind ids.RefType, index uint64, result RefResult, other ids.RefId) {
	if kind != ids.RefProfilePoint {
		return
	}
	switch index {
	case 0:
		setUpdatablePoint(&d.FirstPt, result, other)
	case 1:
		setUpdatablePoint(&d.SecondPt, result, other)
	}
}

func (d *Door) AddRef(ids.RefType, RefResult, ids.RefId) bool { return false }

func (d *Door) DeleteRef(kind ids.RefType, index uint64) {
	if kind != ids.RefProfilePoint {
		return
	}
	switch index {
	case 0:
		d.FirstPt.Ref = nil
	case 1:
		d.SecondPt.Ref = nil
	}
}

func (d *Door) Update(kind ids.RefType, index uint64, result RefResult, ok bool) {
	if kind != ids.RefProfilePoint {
		return
	}
	var target *updatablePoint
	switch index {
	case 0:
		target = &d.FirstPt
	case 1:
		target = &d.SecondPt
	}
	if target == nil {
		return
	}
	if ok && result.Point != nil {
		target.Point = *result.Point
	} else if !ok {
		target.Ref = nil
	}
}

func (d *Door) Recalculate() {}

// swingEndpoint rotates SecondPt about FirstPt by 45 degrees in the XY
// plane, matching door.rs's rotate_point_through_angle_2d(..., pi/4) used
// to sweep the prism through the open quarter of its swing arc.
func (d *Door) swingEndpoint() wire.Point3 {
	const angle = math.Pi / 4
	ox, oy := d.FirstPt.Point.X, d.FirstPt.Point.Y
	px, py := d.SecondPt.Point.X-ox, d.SecondPt.Point.Y-oy
	cos, sin := math.Cos(angle), math.Sin(angle)
	return wire.Point3{
		X: ox + px*cos - py*sin,
		Y: oy + px*sin + py*cos,
		Z: d.SecondPt.Point.Z,
	}
}

func (d *Door) Representation(ctx context.Context, kernel GeomKernel) (wire.UpdateOutput, error) {
	mesh, err := kernel.MakePrism(ctx, d.FirstPt.Point, d.swingEndpoint(), d.Width, d.Height)
	if err != nil {
		return wire.UpdateOutput{}, fmt.Errorf("objdefs: door %s make_prism: %w", d.id, err)
	}
	return wire.UpdateOutput{Kind: wire.OutputMesh, Mesh: &mesh}, nil
}

func (d *Door) Clone() Type {
	cp := *d
	return &cp
}

func (d *Door) AsPosition() (Position, bool)         { return d, true }
func (d *Door) AsDrawingViews() (DrawingViews, bool) { return d, true }

func (d *Door) MoveObj(delta wire.Point3) {
	d.FirstPt.Point = geomutil.Add(d.FirstPt.Point, delta)
	d.SecondPt.Point = geomutil.Add(d.SecondPt.Point, delta)
}

func (d *Door) AxisAlignedBoundingBox() wire.BBox {
	box := geomutil.BBoxFromWallFootprint(d.FirstPt.Point, d.SecondPt.Point, d.Width, d.Height)
	if box == nil {
		return wire.BBox{}
	}
	return *box
}

// GetViews renders the door's footprint plus a four-segment polyline
// approximating the 90-degree swing arc in the top view, where door.rs
// draws a true Arc2D primitive — the wire protocol here only carries
// straight Line segments, so the arc is tessellated.
func (d *Door) GetViews(flags ViewFlags) wire.DrawingViews {
	var out wire.DrawingViews
	a, _, c, _ := geomutil.OffsetLine(d.FirstPt.Point, d.SecondPt.Point, d.Width)
	footprint := wire.Line{A: wire.Point3{X: a.X, Y: a.Y}, B: wire.Point3{X: c.X, Y: c.Y}}
	arc := d.swingArc()
	if flags&ViewTop != 0 {
		out.Top = append([]wire.Line{footprint}, arc...)
	}
	if flags&ViewBottom != 0 {
		out.Bottom = []wire.Line{footprint}
	}
	return out
}

func (d *Door) swingArc() []wire.Line {
	const segments = 4
	radius := geomutil.HorizontalSpan(d.FirstPt.Point, d.SecondPt.Point)
	center := d.FirstPt.Point
	prev := d.SecondPt.Point
	base := math.Atan2(d.SecondPt.Point.Y-center.Y, d.SecondPt.Point.X-center.X)
	lines := make([]wire.Line, 0, segments)
	for i := 1; i <= segments; i++ {
		theta := base + (math.Pi/2)*(float64(i)/segments)
		pt := wire.Point3{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
			Z: center.Z,
		}
		lines = append(lines, wire.Line{A: prev, B: pt})
		prev = pt
	}
	return lines
}
