package objdefs

import (
	"context"
	"encoding/json"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// Sheet is a print-layout page viewports are placed onto. Grounded on
// obj-defs/src/sheet.rs; it has no outbound references and carries its
// representation as opaque JSON, like the original's UpdateOutput::Other.
type Sheet struct {
	id        ids.ObjId
	PrintSize wire.Point3 `json:"print_size"`
}

func NewSheet(id ids.ObjId, printSize wire.Point3) *Sheet {
	return &Sheet{id: id, PrintSize: printSize}
}

func decodeSheet(data []byte) (Type, error) {
	s := &Sheet{}
	if _, err := unmarshalInto(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sheet) ID() ids.ObjId { return s.id }
func (s *Sheet) Kind() Kind    { return KindSheet }

func (s *Sheet) MarshalJSON() ([]byte, error) {
	type alias Sheet
	return json.Marshal(struct {
		ID ids.ObjId `json:"id"`
		*alias
	}{ID: s.id, alias: (*alias)(s)})
}

func (s *Sheet) UnmarshalJSON(data []byte) error {
	type alias Sheet
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

func (s *Sheet) References() []*ids.Reference { return nil }

func (s *Sheet) ResultFor(kind ids.RefType, index uint64) (RefResult, bool) {
	if kind == ids.RefExistence && index == 0 {
		return EmptyResult(), true
	}
	return RefResult{}, false
}

func (s *Sheet) ResultsForKind(kind ids.RefType) []RefResult {
	if kind == ids.RefExistence {
		return []RefResult{EmptyResult()}
	}
	return nil
}

func (s *Sheet) NumResultsForKind(kind ids.RefType) int {
	if kind == ids.RefExistence {
		return 1
	}
	return 0
}

func (s *Sheet) ClearRefs()                                       {}
func (s *Sheet) SetRef(ids.RefType, uint64, RefResult, ids.RefId) {}
func (s *Sheet) AddRef(ids.RefType, RefResult, ids.RefId) bool    { return false }
func (s *Sheet) DeleteRef(ids.RefType, uint64)                    {}
func (s *Sheet) Update(ids.RefType, uint64, RefResult, bool)      {}
func (s *Sheet) Recalculate()                                     {}

func (s *Sheet) Representation(ctx context.Context, kernel GeomKernel) (wire.UpdateOutput, error) {
	payload, err := json.Marshal(map[string]any{"print_size": s.PrintSize})
	if err != nil {
		return wire.UpdateOutput{}, err
	}
	return wire.UpdateOutput{Kind: wire.OutputJSON, JSON: payload}, nil
}

func (s *Sheet) Clone() Type {
	cp := *s
	return &cp
}

func (s *Sheet) AsPosition() (Position, bool)         { return nil, false }
func (s *Sheet) AsDrawingViews() (DrawingViews, bool) { return nil, false }
