package objdefs

import (
	"context"
	"encoding/json"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// SymbolDef is a handle onto content defined in another file: it carries
// that file's id and the change offset it was resolved against, plus the
// axis-aligned bounding box (rooted at the origin) that instances of it
// transform into place. Grounded on obj-defs/src/symbol_def.rs.
type SymbolDef struct {
	id      ids.ObjId
	SymFile ids.FileId `json:"sym_file"`
	Change  ids.Offset `json:"change"`
	BBox    wire.BBox  `json:"bbox"`
}

func NewSymbolDef(id ids.ObjId, symFile ids.FileId, change ids.Offset, bbox wire.BBox) *SymbolDef {
	return &SymbolDef{id: id, SymFile: symFile, Change: change, BBox: bbox}
}

// SetBBox updates the resolved symbol-file coordinates, mirroring
// symbol_def.rs's set_bbox — called when the referenced file republishes
// a fresher representation of the symbol.
func (s *SymbolDef) SetBBox(symFile ids.FileId, change ids.Offset, bbox wire.BBox) {
	s.SymFile = symFile
	s.Change = change
	s.BBox = bbox
}

func decodeSymbolDef(data []byte) (Type, error) {
	s := &SymbolDef{}
	if _, err := unmarshalInto(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SymbolDef) ID() ids.ObjId { return s.id }
func (s *SymbolDef) Kind() Kind    { return KindSymbolDef }

func (s *SymbolDef) MarshalJSON() ([]byte, error) {
	type alias SymbolDef
	return json.Marshal(struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{ID: s.id, alias: (*alias)(s)})
}

func (s *SymbolDef) UnmarshalJSON(data []byte) error {
	type alias SymbolDef
	aux := struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.id = aux.ID
	return nil
}

func (s *SymbolDef) References() []*ids.Reference { return nil }

func (s *SymbolDef) ResultFor(kind ids.RefType, index uint64) (RefResult, bool) {
	switch kind {
	case ids.RefExistence:
		if index == 0 {
			return EmptyResult(), true
		}
	case ids.RefAxisAlignedBBox:
		if index == 0 {
			box := s.BBox
			return RefResult{Cube: &box}, true
		}
	}
	return RefResult{}, false
}

func (s *SymbolDef) ResultsForKind(kind ids.RefType) []RefResult {
	switch kind {
	case ids.RefExistence:
		return []RefResult{EmptyResult()}
	case ids.RefAxisAlignedBBox:
		box := s.BBox
		return []RefResult{{Cube: &box}}
	default:
		return nil
	}
}

func (s *SymbolDef) NumResultsForKind(kind ids.RefType) int {
	switch kind {
	case ids.RefExistence, ids.RefAxisAlignedBBox:
		return 1
	default:
		return 0
	}
}

func (s *SymbolDef) ClearRefs()                                       {}
func (s *SymbolDef) SetRef(ids.RefType, uint64, RefResult, ids.RefId) {}
func (s *SymbolDef) AddRef(ids.RefType, RefResult, ids.RefId) bool    { return false }
func (s *SymbolDef) DeleteRef(ids.RefType, uint64)                    {}
func (s *SymbolDef) Update(ids.RefType, uint64, RefResult, bool)      {}
func (s *SymbolDef) Recalculate()                                     {}

func (s *SymbolDef) Representation(ctx context.Context, kernel GeomKernel) (wire.UpdateOutput, error) {
	file := s.SymFile
	return wire.UpdateOutput{Kind: wire.OutputFileRef, FileRef: &file}, nil
}

func (s *SymbolDef) Clone() Type {
	cp := *s
	return &cp
}

func (s *SymbolDef) AsPosition() (Position, bool)         { return nil, false }
func (s *SymbolDef) AsDrawingViews() (DrawingViews, bool) { return nil, false }
