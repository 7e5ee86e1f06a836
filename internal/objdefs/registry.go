package objdefs

import "github.com/weaveform/weave/internal/ids"

// AllKinds lists the closed catalog in a fixed order, for callers that
// need to range over every member (e.g. diagnostics, tests).
var AllKinds = []Kind{
	KindWall,
	KindDoor,
	KindSheet,
	KindViewport,
	KindSymbolDef,
	KindSymbolInstance,
	KindVisibilityGroup,
}

// PropagateOne realizes one reference edge's UpdateKind recipe (§4.5's
// update(kind, index, other_result)): it fetches other's current result
// and feeds it to owner's slot, skipping self-references, mirroring
// operations-lib/src/updates.rs's update_reference.
func PropagateOne(objects map[ids.ObjId]Type, ref *ids.Reference) {
	if ref == nil || ref.Owner.Obj == ref.Other.Obj {
		return
	}
	owner, ok := objects[ref.Owner.Obj]
	if !ok {
		return
	}
	other, ok := objects[ref.Other.Obj]
	if !ok {
		owner.Update(ref.Owner.Kind, ref.Owner.Index, RefResult{}, false)
		return
	}
	result, ok := other.ResultFor(ref.Other.Kind, ref.Other.Index)
	owner.Update(ref.Owner.Kind, ref.Owner.Index, result, ok)
}
