// Package wire defines the messages that cross a component boundary:
// ChangeMsg and its Add/Modify/Delete payload, the OffsetedChange log
// entry, and the UpdateOutput variants a representation computes. Every
// message written to Kafka carries a version so it can be extended
// without breaking old readers, the "length-delimited, versioned
// structural record" §6 asks for; the JSON envelope is the concrete
// encoding this module ships. HTTP bodies are plain JSON, not enveloped.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/weaveform/weave/internal/ids"
)

// EnvelopeVersion is bumped whenever a breaking change is made to the
// payload shapes below.
const EnvelopeVersion = 1

// Envelope is the outer, versioned frame a message is wrapped in before
// it is written as a Kafka record value.
type Envelope struct {
	Version int             `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

func Wrap(v any) (Envelope, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("wire: wrap: %w", err)
	}
	return Envelope{Version: EnvelopeVersion, Payload: b}, nil
}

func (e Envelope) Unwrap(v any) error {
	if e.Version > EnvelopeVersion {
		return fmt.Errorf("wire: envelope version %d newer than supported %d", e.Version, EnvelopeVersion)
	}
	return json.Unmarshal(e.Payload, v)
}

// ChangeKind discriminates the three shapes a change to an object can
// take.
type ChangeKind int

const (
	KindAdd ChangeKind = iota
	KindModify
	KindDelete
)

func (k ChangeKind) String() string {
	switch k {
	case KindAdd:
		return "Add"
	case KindModify:
		return "Modify"
	case KindDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// SourceKind discriminates a fresh user edit from an undo/redo replay.
// This tag is what lets the undo store route a committed entry between
// the undo and redo stacks without heuristics.
type SourceKind int

const (
	SourceUserAction SourceKind = iota
	SourceUndo
	SourceRedo
)

// Source names why a change was submitted. Event is the zero EventId
// when Kind is SourceUserAction.
type Source struct {
	Kind  SourceKind
	Event ids.EventId
}

func UserAction() Source { return Source{Kind: SourceUserAction} }
func Undo(e ids.EventId) Source { return Source{Kind: SourceUndo, Event: e} }
func Redo(e ids.EventId) Source { return Source{Kind: SourceRedo, Event: e} }

// Object is the value carried by an Add or Modify change.
type Object struct {
	ID ids.ObjId `json:"id"`
	// Dependencies is positional; a nil entry at index i is a tombstone
	// for a reference slot that was once bound (§3 invariant 4) and must
	// never be removed, only cleared.
	Dependencies []*ids.Reference `json:"dependencies"`
	// ObjData is opaque to every component except internal/objdefs,
	// which interprets it via a self-describing type tag.
	ObjData []byte `json:"obj_data"`
	// Results is always recomputable from ObjData plus the current
	// values of Dependencies[*].Other's results (§3 invariant 5); it is
	// carried on the wire as a convenience/cache, never as a source of
	// truth a reader may assume is fresh.
	Results Results `json:"results"`
}

// Clone returns a deep copy sufficient for in-place mutation by
// internal/objdefs without aliasing the caller's value.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	deps := make([]*ids.Reference, len(o.Dependencies))
	for i, d := range o.Dependencies {
		if d == nil {
			continue
		}
		cp := *d
		deps[i] = &cp
	}
	data := make([]byte, len(o.ObjData))
	copy(data, o.ObjData)
	return &Object{
		ID:           o.ID,
		Dependencies: deps,
		ObjData:      data,
		Results:      o.Results.Clone(),
	}
}

// Results is the derived, recomputable state of an object.
type Results struct {
	Profile    Profile        `json:"profile"`
	BBox       *BBox          `json:"bbox,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Visible    bool           `json:"visible"`
}

func (r Results) Clone() Results {
	props := make(map[string]any, len(r.Properties))
	for k, v := range r.Properties {
		props[k] = v
	}
	var bbox *BBox
	if r.BBox != nil {
		cp := *r.BBox
		bbox = &cp
	}
	return Results{
		Profile:    r.Profile.Clone(),
		BBox:       bbox,
		Properties: props,
		Visible:    r.Visible,
	}
}

type Point3 struct{ X, Y, Z float64 }

type Line struct{ A, B Point3 }

type Plane struct {
	Origin Point3
	Normal Point3
}

type BBox struct {
	Min Point3
	Max Point3
}

type Profile struct {
	Points []Point3 `json:"points"`
	Lines  []Line   `json:"lines"`
	Planes []Plane  `json:"planes"`
}

func (p Profile) Clone() Profile {
	return Profile{
		Points: append([]Point3(nil), p.Points...),
		Lines:  append([]Line(nil), p.Lines...),
		Planes: append([]Plane(nil), p.Planes...),
	}
}

// ChangeMsg is one user-visible mutation of one object.
type ChangeMsg struct {
	User   ids.UserId `json:"user"`
	Kind   ChangeKind `json:"kind"`
	Object *Object    `json:"object,omitempty"` // set for Add/Modify
	Delete ids.ObjId  `json:"delete,omitempty"` // set for Delete
	Source Source     `json:"source"`
}

func (c ChangeMsg) ObjId() ids.ObjId {
	if c.Kind == KindDelete {
		return c.Delete
	}
	if c.Object != nil {
		return c.Object.ID
	}
	return ids.ObjId{}
}

// OffsetedChange is one persisted change-log entry.
type OffsetedChange struct {
	Offset ids.Offset `json:"offset"`
	Change ChangeMsg  `json:"change"`
}

// OutputKind discriminates the shape of a representation.
type OutputKind int

const (
	OutputEmpty OutputKind = iota
	OutputDelete
	OutputMesh
	OutputFileRef
	OutputInstance
	OutputJSON
)

// UpdateOutput is a client-visible representation of one object.
type UpdateOutput struct {
	Kind     OutputKind      `json:"kind"`
	Mesh     *MeshData       `json:"mesh,omitempty"`
	FileRef  *ids.FileId     `json:"file_ref,omitempty"`
	Instance *InstanceData   `json:"instance,omitempty"`
	Views    *DrawingViews   `json:"views,omitempty"`
	JSON     json.RawMessage `json:"json,omitempty"`
}

type MeshData struct {
	Positions []float64 `json:"positions"`
	Indices   []uint64  `json:"indices"`
	MetaJSON  string    `json:"meta_json"`
}

type InstanceData struct {
	Transform [16]float64 `json:"transform"`
	BBox      BBox        `json:"bbox"`
	Source    ids.FileId  `json:"source"`
}

// DrawingViews bundles the six orthographic 2D vector drawings an object
// can project.
type DrawingViews struct {
	Top, Front, Left, Right, Back, Bottom []Line `json:"-"`
}

// UpdateChangeMsg is what internal/reprpipe publishes per committed
// change.
type UpdateChangeMsg struct {
	File   ids.FileId    `json:"file"`
	User   ids.UserId    `json:"user"`
	ObjID  ids.ObjId     `json:"obj_id"`
	Output UpdateOutput  `json:"output"`
}
