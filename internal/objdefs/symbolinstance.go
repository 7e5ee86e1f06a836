package objdefs

import (
	"context"
	"encoding/json"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// SymbolInstance places a SymbolDef's bounding box into the current file
// at Transform, tracking the def's bbox as an UpdatableInfo so moving the
// def (or the instance) keeps the transformed box correct. Grounded on
// obj-defs/src/symbol_instance.rs.
type SymbolInstance struct {
	id        ids.ObjId
	BBox      wire.BBox  `json:"bbox"`
	bboxRef   *ids.RefId
	Transform [16]float64 `json:"transform"`
}

func NewSymbolInstance(id ids.ObjId) *SymbolInstance {
	return &SymbolInstance{id: id, Transform: identityMatrix()}
}

func identityMatrix() [16]float64 {
	var m [16]float64
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

func decodeSymbolInstance(data []byte) (Type, error) {
	s := &SymbolInstance{}
	if _, err := unmarshalInto(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SymbolInstance) ID() ids.ObjId { return s.id }
func (s *SymbolInstance) Kind() Kind    { return KindSymbolInstance }

type symbolInstanceWire struct {
	ID        ids.ObjId   `json:"id"`
	BBox      wire.BBox   `json:"bbox"`
	BBoxRef   *ids.RefId  `json:"bbox_ref,omitempty"`
	Transform [16]float64 `json:"transform"`
}

func (s *SymbolInstance) MarshalJSON() ([]byte, error) {
	return json.Marshal(symbolInstanceWire{ID: s.id, BBox: s.BBox, BBoxRef: s.bboxRef, Transform: s.Transform})
}

func (s *SymbolInstance) UnmarshalJSON(data []byte) error {
	var w symbolInstanceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.id, s.BBox, s.bboxRef, s.Transform = w.ID, w.BBox, w.BBoxRef, w.Transform
	return nil
}

func (s *SymbolInstance) selfBBoxRef() ids.RefId {
	return ids.RefId{Obj: s.id, Kind: ids.RefAxisAlignedBBox, Index: 0}
}

func (s *SymbolInstance) References() []*ids.Reference {
	if s.bboxRef == nil {
		return []*ids.Reference{nil}
	}
	return []*ids.Reference{{Owner: s.selfBBoxRef(), Other: *s.bboxRef}}
}

func (s *SymbolInstance) transformedBBox() wire.BBox {
	return applyTransform(s.Transform, s.BBox)
}

func (s *SymbolInstance) ResultFor(kind ids.RefType, index uint64) (RefResult, bool) {
	if kind == ids.RefAxisAlignedBBox && index == 0 {
		box := s.transformedBBox()
		return RefResult{Cube: &box}, true
	}
	return RefResult{}, false
}

func (s *SymbolInstance) ResultsForKind(kind ids.RefType) []RefResult {
	if kind == ids.RefAxisAlignedBBox {
		box := s.transformedBBox()
		return []RefResult{{Cube: &box}}
	}
	return nil
}

func (s *SymbolInstance) NumResultsForKind(kind ids.RefType) int {
	if kind == ids.RefAxisAlignedBBox {
		return 1
	}
	return 0
}

func (s *SymbolInstance) ClearRefs() { s.bboxRef = nil }

func (s *SymbolInstance) SetRef(kind ids.RefType, index uint64, result RefResult, other ids.RefId) {
	if kind != ids.RefAxisAlignedBBox || index != 0 {
		return
	}
	if result.Cube != nil {
		s.BBox = *result.Cube
		o := other
		s.bboxRef = &o
	}
}

func (s *SymbolInstance) AddRef(ids.RefType, RefResult, ids.RefId) bool { return false }

func (s *SymbolInstance) DeleteRef(kind ids.RefType, index uint64) {
	if kind == ids.RefAxisAlignedBBox && index == 0 {
		s.bboxRef = nil
	}
}

func (s *SymbolInstance) Update(kind ids.RefType, index uint64, result RefResult, ok bool) {
	if kind != ids.RefAxisAlignedBBox || index != 0 {
		return
	}
	if ok && result.Cube != nil {
		s.BBox = *result.Cube
	} else if !ok {
		s.bboxRef = nil
	}
}

func (s *SymbolInstance) Recalculate() {}

// Representation carries the transformed geometry only; the source file
// (which SymbolDef this instance ultimately resolves to) is filled in by
// the caller, since a bare SymbolInstance only knows its bboxRef's RefId,
// not which file that def's symbol content lives in.
func (s *SymbolInstance) Representation(ctx context.Context, kernel GeomKernel) (wire.UpdateOutput, error) {
	return wire.UpdateOutput{Kind: wire.OutputInstance, Instance: &wire.InstanceData{
		Transform: s.Transform,
		BBox:      s.transformedBBox(),
	}}, nil
}

func (s *SymbolInstance) Clone() Type {
	cp := *s
	if s.bboxRef != nil {
		r := *s.bboxRef
		cp.bboxRef = &r
	}
	return &cp
}

func (s *SymbolInstance) AsPosition() (Position, bool)         { return s, true }
func (s *SymbolInstance) AsDrawingViews() (DrawingViews, bool) { return nil, false }

func (s *SymbolInstance) MoveObj(delta wire.Point3) {
	s.Transform[12] += delta.X
	s.Transform[13] += delta.Y
	s.Transform[14] += delta.Z
}

func (s *SymbolInstance) AxisAlignedBoundingBox() wire.BBox { return s.transformedBBox() }

// applyTransform applies a column-major 4x4 affine matrix (translation in
// elements 12/13/14) to a box's corners and re-derives the axis-aligned
// union, mirroring symbol_instance.rs's apply_transform.
func applyTransform(m [16]float64, box wire.BBox) wire.BBox {
	corners := []wire.Point3{
		{X: box.Min.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Max.Z},
	}
	min, max := transformPoint(m, corners[0]), transformPoint(m, corners[0])
	for _, c := range corners {
		p := transformPoint(m, c)
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return wire.BBox{Min: min, Max: max}
}

func transformPoint(m [16]float64, p wire.Point3) wire.Point3 {
	return wire.Point3{
		X: m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		Y: m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		Z: m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}
