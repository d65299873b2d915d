package types

import "errors"

// Failure taxonomy. Every error returned by the engine wraps exactly one of
// these sentinels; callers classify with errors.Is or KindOf.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidParent = errors.New("invalid parent")
	ErrCycleDetected = errors.New("cycle detected")
	ErrInternal      = errors.New("internal error")
)

// Kind is the stable, wire-safe name of a failure class.
type Kind string

// Failure kinds, one per sentinel.
const (
	KindNone          Kind = ""
	KindNotFound      Kind = "not_found"
	KindForbidden     Kind = "forbidden"
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidParent Kind = "invalid_parent"
	KindCycleDetected Kind = "cycle_detected"
	KindInternal      Kind = "internal"
)

// kindOrder fixes the classification order. ErrInternal is checked last so
// a typed failure that also wraps a store error keeps its own kind.
var kindOrder = []struct {
	err  error
	kind Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrForbidden, KindForbidden},
	{ErrInvalidInput, KindInvalidInput},
	{ErrInvalidParent, KindInvalidParent},
	{ErrCycleDetected, KindCycleDetected},
	{ErrInternal, KindInternal},
}

// KindOf classifies err. A nil error is KindNone; an error that wraps no
// sentinel of this package is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kindOrder {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsUserError reports whether err is a typed failure caused by the request
// rather than by the store.
func IsUserError(err error) bool {
	k := KindOf(err)
	return k != KindNone && k != KindInternal
}
