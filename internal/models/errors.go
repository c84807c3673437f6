package models

import "errors"

// Kind is a stable, enumerable classification of a core failure.
type Kind string

const (
	KindUnknown                Kind = "Unknown"
	KindValidation             Kind = "ValidationError"
	KindInvalidStateTransition Kind = "InvalidStateTransition"
	KindCapacityExceeded       Kind = "CapacityExceeded"
	KindIncompleteSelection    Kind = "IncompleteSelection"
	KindNotFound               Kind = "NotFound"
	KindConflict               Kind = "Conflict"
)

var (
	ErrValidation             = errors.New("validation error")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrCapacityExceeded       = errors.New("capacity exceeded")
	ErrIncompleteSelection    = errors.New("incomplete selection")
	ErrNotFound               = errors.New("not found")

	// ErrConflict is returned by stores when an optimistic version check fails.
	ErrConflict = errors.New("version conflict")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, KindValidation},
	{ErrInvalidStateTransition, KindInvalidStateTransition},
	{ErrCapacityExceeded, KindCapacityExceeded},
	{ErrIncompleteSelection, KindIncompleteSelection},
	{ErrNotFound, KindNotFound},
	{ErrConflict, KindConflict},
}

// KindOf returns the kind of the first sentinel error wrapped by err.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
