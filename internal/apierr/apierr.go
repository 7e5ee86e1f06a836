// Package apierr defines the error taxonomy of §7: sentinel errors any
// component may return, classified by errors.Is rather than a generic
// error-code enum, in the style of blueprints/githome's feature/*/api.go
// sentinel errors.
package apierr

import "errors"

var (
	// ErrNotFound means an object, ref, or undo event is absent at the
	// requested coordinates.
	ErrNotFound = errors.New("apierr: not found")
	// ErrInvalidArgument means a malformed message or a missing required
	// enum variant.
	ErrInvalidArgument = errors.New("apierr: invalid argument")
	// ErrFailedPrecondition means submit with an empty batch, undo with
	// no open event, or a reference into an already-deleted object when
	// the caller asked to error rather than prune.
	ErrFailedPrecondition = errors.New("apierr: failed precondition")
	// ErrUnavailable means a transient store/RPC failure; the caller may
	// retry.
	ErrUnavailable = errors.New("apierr: unavailable")
	// ErrInternal means a serialization failure or an invariant
	// violation (e.g. "Modify after Delete" during inversion).
	ErrInternal = errors.New("apierr: internal")

	// ErrNoUndoEvent means undo_latest/redo_latest was called on an
	// empty stack (§4.4).
	ErrNoUndoEvent = errors.New("apierr: no undo event")
	// ErrNoObjInUndoEvent means record() was routed by an Undo(e)/Redo(e)
	// source tag but obj_id is not present in event e (§4.4).
	ErrNoObjInUndoEvent = errors.New("apierr: object not in undo event")
)

// Classify maps an error to the nearest sentinel in the taxonomy, for
// callers (e.g. HTTP handlers) that need to choose a status code. It
// walks the wrap chain with errors.Is and defaults to ErrInternal.
func Classify(err error) error {
	for _, sentinel := range []error{
		ErrNotFound,
		ErrInvalidArgument,
		ErrFailedPrecondition,
		ErrUnavailable,
		ErrNoUndoEvent,
		ErrNoObjInUndoEvent,
		ErrInternal,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return ErrInternal
}
