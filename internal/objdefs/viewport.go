package objdefs

import (
	"context"
	"encoding/json"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// ViewType selects which orthographic projection (or a custom camera) a
// Viewport frames onto its sheet.
type ViewType struct {
	Preset    string      `json:"preset,omitempty"` // Top|Front|Left|Right|Back|Bottom|Custom
	CameraPos wire.Point3 `json:"camera_pos,omitempty"`
	Target    wire.Point3 `json:"target,omitempty"`
}

// Viewport places a view of the model onto a Sheet. If its sheet
// reference is ever cleared (the sheet was deleted, pruning the
// reference to None per §7's dangling-prune rule), Representation emits
// a Delete sentinel on the next update instead of drawing anything —
// grounded verbatim on obj-defs/src/viewport.rs's "delete itself on
// update" comment, the mechanism behind scenario S5.
type Viewport struct {
	id     ids.ObjId
	View   ViewType    `json:"view"`
	Sheet  *ids.ObjId  `json:"sheet,omitempty"`
	Origin wire.Point3 `json:"origin"`
}

func NewViewport(id ids.ObjId, sheet ids.ObjId, view ViewType, origin wire.Point3) *Viewport {
	s := sheet
	return &Viewport{id: id, View: view, Sheet: &s, Origin: origin}
}

func decodeViewport(data []byte) (Type, error) {
	v := &Viewport{}
	if _, err := unmarshalInto(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Viewport) ID() ids.ObjId { return v.id }
func (v *Viewport) Kind() Kind    { return KindViewport }

func (v *Viewport) MarshalJSON() ([]byte, error) {
	type alias Viewport
	return json.Marshal(struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{ID: v.id, alias: (*alias)(v)})
}

func (v *Viewport) UnmarshalJSON(data []byte) error {
	type alias Viewport
	aux := struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{alias: (*alias)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v.id = aux.ID
	return nil
}

func (v *Viewport) selfExistenceRef() ids.RefId {
	return ids.RefId{Obj: v.id, Kind: ids.RefExistence, Index: 0}
}

func (v *Viewport) References() []*ids.Reference {
	if v.Sheet == nil {
		return []*ids.Reference{nil}
	}
	return []*ids.Reference{{
		Owner: v.selfExistenceRef(),
		Other: ids.RefId{Obj: *v.Sheet, Kind: ids.RefExistence, Index: 0},
	}}
}

func (v *Viewport) ResultFor(kind ids.RefType, index uint64) (RefResult, bool) {
	if kind == ids.RefExistence && index == 0 {
		return EmptyResult(), true
	}
	return RefResult{}, false
}

func (v *Viewport) ResultsForKind(kind ids.RefType) []RefResult {
	if kind == ids.RefExistence {
		return []RefResult{EmptyResult()}
	}
	return nil
}

func (v *Viewport) NumResultsForKind(kind ids.RefType) int {
	if kind == ids.RefExistence {
		return 1
	}
	return 0
}

// ClearRefs drops the sheet reference; the next Representation call then
// emits Delete.
func (v *Viewport) ClearRefs() { v.Sheet = nil }

func (v *Viewport) SetRef(kind ids.RefType, index uint64, _ RefResult, other ids.RefId) {
	if kind == ids.RefExistence && index == 0 {
		sheet := other.Obj
		v.Sheet = &sheet
	}
}

func (v *Viewport) AddRef(ids.RefType, RefResult, ids.RefId) bool { return false }

func (v *Viewport) DeleteRef(kind ids.RefType, index uint64) {
	if kind == ids.RefExistence && index == 0 {
		v.Sheet = nil
	}
}

// Update only ever concerns the Existence slot, and it has no payload to
// react to beyond presence: an absent other (ok=false, the sheet was
// deleted) clears the reference the same way DeleteRef does.
func (v *Viewport) Update(kind ids.RefType, index uint64, _ RefResult, ok bool) {
	if kind == ids.RefExistence && index == 0 && !ok {
		v.Sheet = nil
	}
}

func (v *Viewport) Recalculate() {}

func (v *Viewport) Representation(ctx context.Context, kernel GeomKernel) (wire.UpdateOutput, error) {
	if v.Sheet == nil {
		return wire.UpdateOutput{Kind: wire.OutputDelete}, nil
	}
	payload, err := json.Marshal(map[string]any{
		"view":   v.View,
		"sheet":  v.Sheet.String(),
		"origin": v.Origin,
	})
	if err != nil {
		return wire.UpdateOutput{}, err
	}
	return wire.UpdateOutput{Kind: wire.OutputJSON, JSON: payload}, nil
}

func (v *Viewport) Clone() Type {
	cp := *v
	if v.Sheet != nil {
		s := *v.Sheet
		cp.Sheet = &s
	}
	return &cp
}

func (v *Viewport) AsPosition() (Position, bool)         { return nil, false }
func (v *Viewport) AsDrawingViews() (DrawingViews, bool) { return nil, false }
