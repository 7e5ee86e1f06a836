// Package objdefs is the closed, pluggable object type registry (§4.5): a
// fixed catalog of tagged variants, each a *pure* implementation of
// references/results_for/update/recalculate/representation plus the
// optional Position and DrawingViews capability projections. Nothing here
// performs I/O except Representation, which calls out to a GeomKernel for
// mesh generation — every other method is a deterministic function of the
// object's own state, grounded on original_source's obj-traits::Data trait
// and its per-type obj-defs implementations (wall.rs, door.rs, sheet.rs,
// viewport.rs, symbol_def.rs, symbol_instance.rs, visibility_group.rs).
package objdefs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// Kind discriminates the closed catalog of object types. Adding a new
// member means adding a case to Decode and to every switch that ranges
// over the catalog — there is no open extension point, matching the
// spec's "closed, pluggable set" framing.
type Kind string

const (
	KindWall            Kind = "Wall"
	KindDoor            Kind = "Door"
	KindSheet           Kind = "Sheet"
	KindViewport        Kind = "Viewport"
	KindSymbolDef       Kind = "SymbolDef"
	KindSymbolInstance  Kind = "SymbolInstance"
	KindVisibilityGroup Kind = "VisibilityGroup"
)

// RefResult is the value a reference carries: the evaluated datum at one
// RefId at one instant. Mirrors obj-traits/src/references.rs's RefResult
// enum.
type RefResult struct {
	Empty    bool
	Point    *wire.Point3
	Line     *wire.Line
	Plane    *wire.Plane
	Cube     *wire.BBox
	Property json.RawMessage
}

func EmptyResult() RefResult { return RefResult{Empty: true} }

// Type is the interface every catalog member implements. Its methods are
// pure except Representation, whose only I/O is the kernel call.
type Type interface {
	ID() ids.ObjId
	Kind() Kind

	// References enumerates outbound references positionally; a nil
	// entry marks a slot that is declared but currently unbound (§3
	// invariant 4, positional stability).
	References() []*ids.Reference

	// ResultFor returns the datum at (kind, index), if the object
	// defines one there.
	ResultFor(kind ids.RefType, index uint64) (RefResult, bool)

	// ResultsForKind returns every datum the object defines for kind, in
	// index order.
	ResultsForKind(kind ids.RefType) []RefResult

	// NumResultsForKind reports how many indices are populated for kind.
	NumResultsForKind(kind ids.RefType) int

	// ClearRefs unbinds every outbound reference (used when an object is
	// about to be re-pointed wholesale).
	ClearRefs()

	// SetRef rebinds the reference at (kind, index) to point at other,
	// seeding the local derived value from result.
	SetRef(kind ids.RefType, index uint64, result RefResult, other ids.RefId)

	// AddRef appends a new reference slot of kind kind, returning false
	// if the type has no variable-length slot of that kind (e.g. a wall
	// accepts new ProfilePlane opening slots and a VisibilityGroup new
	// Drawable children; a Sheet accepts none).
	AddRef(kind ids.RefType, result RefResult, other ids.RefId) bool

	// DeleteRef clears the reference at (kind, index) without shrinking
	// any backing slice, preserving positional stability.
	DeleteRef(kind ids.RefType, index uint64)

	// Update realizes one UpdateKind recipe step: it is called once per
	// inbound reference during C6 propagation with the other side's
	// freshly computed result (or ok=false if the other side is absent,
	// e.g. pruned as dangling).
	Update(kind ids.RefType, index uint64, result RefResult, ok bool)

	// Recalculate restores internal invariants after a batch of Update
	// calls (e.g. recompute a cached bounding box from profile points).
	Recalculate()

	// Representation produces the client-visible output for this
	// object, calling kernel only when mesh generation is required.
	Representation(ctx context.Context, kernel GeomKernel) (wire.UpdateOutput, error)

	// Clone returns a deep, independent copy.
	Clone() Type

	AsPosition() (Position, bool)
	AsDrawingViews() (DrawingViews, bool)
}

// Position is the capability to be translated and to report an
// axis-aligned bounding box, mirrored from obj-traits::Position.
type Position interface {
	MoveObj(delta wire.Point3)
	AxisAlignedBoundingBox() wire.BBox
}

// ViewFlags selects which of the six orthographic views to compute,
// mirroring obj-traits's bitflags ViewFlags.
type ViewFlags uint8

const (
	ViewTop ViewFlags = 1 << iota
	ViewFront
	ViewLeft
	ViewRight
	ViewBack
	ViewBottom
	ViewAll = ViewTop | ViewFront | ViewLeft | ViewRight | ViewBack | ViewBottom
)

// DrawingViews is the capability to project six orthographic 2D vector
// drawings, mirrored from obj-traits::DrawingViews.
type DrawingViews interface {
	GetViews(flags ViewFlags) wire.DrawingViews
}

// GeomKernel is the client interface to the geometry kernel service
// (GEOM_URL); the only trait method the catalog currently exercises is
// make_prism, grounded on obj-defs/src/geom_kernel.rs's GeomConn.
type GeomKernel interface {
	MakePrism(ctx context.Context, first, second wire.Point3, width, height float64) (wire.MeshData, error)
}

// objEnvelope is the self-describing wrapper wire.Object.ObjData is
// encoded as: a Kind discriminator plus the kind-specific payload. This is
// the Go analogue of typetag::serde's runtime-tagged trait objects.
type objEnvelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Decode interprets raw ObjData bytes, dispatching on the embedded Kind
// tag.
func Decode(data []byte) (Type, error) {
	var env objEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("objdefs: decode envelope: %w", err)
	}
	switch env.Kind {
	case KindWall:
		return decodeWall(env.Data)
	case KindDoor:
		return decodeDoor(env.Data)
	case KindSheet:
		return decodeSheet(env.Data)
	case KindViewport:
		return decodeViewport(env.Data)
	case KindSymbolDef:
		return decodeSymbolDef(env.Data)
	case KindSymbolInstance:
		return decodeSymbolInstance(env.Data)
	case KindVisibilityGroup:
		return decodeVisibilityGroup(env.Data)
	default:
		return nil, fmt.Errorf("objdefs: unknown kind %q", env.Kind)
	}
}

// Encode is the inverse of Decode.
func Encode(t Type) ([]byte, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("objdefs: encode %s: %w", t.Kind(), err)
	}
	env := objEnvelope{Kind: t.Kind(), Data: payload}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("objdefs: encode envelope: %w", err)
	}
	return out, nil
}

func unmarshalInto[T any](data []byte, v *T) (*T, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("objdefs: unmarshal %T: %w", *v, err)
	}
	return v, nil
}
