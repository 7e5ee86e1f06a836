package objdefs

import (
	"context"
	"encoding/json"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// VisibilityGroup is an open-ended, positionally stable list of children
// it draws together. Slots are never removed, only cleared to nil, so
// existing indices keep meaning — grounded on
// obj-defs/src/visibility_group.rs, including its comment about why
// deletion only tombstones a slot.
type VisibilityGroup struct {
	id       ids.ObjId
	Children []*ids.RefId `json:"children"`
}

func NewVisibilityGroup(id ids.ObjId) *VisibilityGroup {
	return &VisibilityGroup{id: id}
}

func decodeVisibilityGroup(data []byte) (Type, error) {
	g := &VisibilityGroup{}
	if _, err := unmarshalInto(data, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *VisibilityGroup) ID() ids.ObjId { return g.id }
func (g *VisibilityGroup) Kind() Kind    { return KindVisibilityGroup }

func (g *VisibilityGroup) MarshalJSON() ([]byte, error) {
	type alias VisibilityGroup
	return json.Marshal(struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{ID: g.id, alias: (*alias)(g)})
}

func (g *VisibilityGroup) UnmarshalJSON(data []byte) error {
	type alias VisibilityGroup
	aux := struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{alias: (*alias)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	g.id = aux.ID
	return nil
}

func (g *VisibilityGroup) References() []*ids.Reference {
	out := make([]*ids.Reference, len(g.Children))
	for i, c := range g.Children {
		if c == nil {
			continue
		}
		out[i] = &ids.Reference{
			Owner: ids.RefId{Obj: g.id, Kind: ids.RefDrawable, Index: uint64(i)},
			Other: *c,
		}
	}
	return out
}

func (g *VisibilityGroup) ResultFor(ids.RefType, uint64) (RefResult, bool) { return RefResult{}, false }
func (g *VisibilityGroup) ResultsForKind(ids.RefType) []RefResult          { return nil }
func (g *VisibilityGroup) NumResultsForKind(ids.RefType) int               { return 0 }

func (g *VisibilityGroup) ClearRefs() { g.Children = nil }

func (g *VisibilityGroup) SetRef(ids.RefType, uint64, RefResult, ids.RefId) {}

func (g *VisibilityGroup) AddRef(kind ids.RefType, _ RefResult, other ids.RefId) bool {
	if kind != ids.RefDrawable {
		return false
	}
	o := other
	g.Children = append(g.Children, &o)
	return true
}

func (g *VisibilityGroup) DeleteRef(kind ids.RefType, index uint64) {
	if kind == ids.RefDrawable && int(index) < len(g.Children) {
		g.Children[index] = nil
	}
}

func (g *VisibilityGroup) Update(kind ids.RefType, index uint64, _ RefResult, ok bool) {
	if kind == ids.RefDrawable && !ok && int(index) < len(g.Children) {
		g.Children[index] = nil
	}
}

func (g *VisibilityGroup) Recalculate() {}

func (g *VisibilityGroup) Representation(ctx context.Context, kernel GeomKernel) (wire.UpdateOutput, error) {
	childIDs := make([]string, 0, len(g.Children))
	for _, c := range g.Children {
		if c != nil {
			childIDs = append(childIDs, c.Obj.String())
		}
	}
	payload, err := json.Marshal(map[string]any{"children": childIDs})
	if err != nil {
		return wire.UpdateOutput{}, err
	}
	return wire.UpdateOutput{Kind: wire.OutputJSON, JSON: payload}, nil
}

func (g *VisibilityGroup) Clone() Type {
	cp := *g
	cp.Children = make([]*ids.RefId, len(g.Children))
	for i, c := range g.Children {
		if c != nil {
			cc := *c
			cp.Children[i] = &cc
		}
	}
	return &cp
}

func (g *VisibilityGroup) AsPosition() (Position, bool)         { return nil, false }
func (g *VisibilityGroup) AsDrawingViews() (DrawingViews, bool) { return nil, false }
