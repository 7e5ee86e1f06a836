// Package ids defines the identifier and addressing types shared by every
// component: object, file, user and event identifiers, the monotonic
// per-file offset, and the RefId/Reference addressing scheme that the
// dependency graph is built from.
package ids

import (
	"fmt"

	"github.com/google/uuid"
)

// ObjId names one object within a file.
type ObjId uuid.UUID

// FileId names one document.
type FileId uuid.UUID

// UserId names one collaborator.
type UserId uuid.UUID

// EventId names one undo/redo group.
type EventId uuid.UUID

// Offset is a monotonically increasing, per-file sequence number assigned
// by the change log. It is never reused and, across submits, strictly
// increasing.
type Offset int64

func NewObjId() ObjId   { return ObjId(uuid.New()) }
func NewFileId() FileId { return FileId(uuid.New()) }
func NewUserId() UserId { return UserId(uuid.New()) }
func NewEventId() EventId { return EventId(uuid.New()) }

func (o ObjId) String() string   { return uuid.UUID(o).String() }
func (f FileId) String() string  { return uuid.UUID(f).String() }
func (u UserId) String() string  { return uuid.UUID(u).String() }
func (e EventId) String() string { return uuid.UUID(e).String() }

func ParseObjId(s string) (ObjId, error) {
	u, err := uuid.Parse(s)
	return ObjId(u), err
}

func ParseFileId(s string) (FileId, error) {
	u, err := uuid.Parse(s)
	return FileId(u), err
}

func ParseUserId(s string) (UserId, error) {
	u, err := uuid.Parse(s)
	return UserId(u), err
}

func ParseEventId(s string) (EventId, error) {
	u, err := uuid.Parse(s)
	return EventId(u), err
}

// RefType tags a kind of sub-entity addressable on an object.
type RefType int

const (
	RefEmpty RefType = iota
	RefDrawable
	RefExistence
	RefAxisAlignedBBox
	RefProfilePoint
	RefProfileLine
	RefProfilePlane
	RefProperty
)

// AllRefTypes enumerates the closed set of RefType tags, the Go analogue
// of references.rs's IntoEnumIterator derive on RefType, used by C6 to
// discover every slot an object might expose without hand-maintaining a
// second list.
var AllRefTypes = []RefType{
	RefDrawable, RefExistence, RefAxisAlignedBBox,
	RefProfilePoint, RefProfileLine, RefProfilePlane, RefProperty,
}

func (k RefType) String() string {
	switch k {
	case RefDrawable:
		return "Drawable"
	case RefExistence:
		return "Existence"
	case RefAxisAlignedBBox:
		return "AxisAlignedBBox"
	case RefProfilePoint:
		return "ProfilePoint"
	case RefProfileLine:
		return "ProfileLine"
	case RefProfilePlane:
		return "ProfilePlane"
	case RefProperty:
		return "Property"
	default:
		return "Empty"
	}
}

// RefId uniquely names one piece of referable information on one object:
// the object, the kind of datum, and a positional index within that kind
// (e.g. profile point 0, profile point 1 of a wall).
type RefId struct {
	Obj   ObjId
	Kind  RefType
	Index uint64
}

func (r RefId) String() string {
	return fmt.Sprintf("%s/%s/%d", r.Obj, r.Kind, r.Index)
}

// UpdateKind is the declarative recipe describing how an owner's
// sub-datum is derived from a referenced "other" datum.
type UpdateKind struct {
	// Equals copies other's sub-index OtherSubIdx into owner's sub-index
	// OwnerSubIdx unchanged. Interp is set instead of Equals when Interp
	// is non-nil.
	Equals *EqualsUpdate
	Interp *InterpUpdate
}

type EqualsUpdate struct {
	OwnerSubIdx uint64
	OtherSubIdx uint64
}

type InterpUpdate struct {
	FirstOtherIdx  uint64
	SecondOtherIdx uint64
	T              float64
}

// Reference is a directed edge: when Other changes, Owner must be
// recomputed according to Update.
type Reference struct {
	Owner  RefId
	Other  RefId
	Update UpdateKind
}
