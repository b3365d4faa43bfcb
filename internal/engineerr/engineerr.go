// Package engineerr defines the engine's closed family of error kinds
// (spec §7). Callers distinguish them with errors.Is/errors.As the same way
// the standard library itself composes sentinel errors and wrapped detail.
package engineerr

import "fmt"

// Kind identifies which of the fixed error categories an error belongs to.
type Kind int

const (
	_ Kind = iota
	KindInvariantViolation
	KindIllegalChoice
	KindCostUnpayable
	KindStackFizzle
	KindSnapshotVersionMismatch
	KindSnapshotCorrupt
	KindCardDefinitionMissing
)

func (k Kind) String() string {
	switch k {
	case KindInvariantViolation:
		return "InvariantViolation"
	case KindIllegalChoice:
		return "IllegalChoice"
	case KindCostUnpayable:
		return "CostUnpayable"
	case KindStackFizzle:
		return "StackFizzle"
	case KindSnapshotVersionMismatch:
		return "SnapshotVersionMismatch"
	case KindSnapshotCorrupt:
		return "SnapshotCorrupt"
	case KindCardDefinitionMissing:
		return "CardDefinitionMissing"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with contextual detail and an optional underlying
// cause. Engine code constructs these with the Kind-specific helpers below
// rather than building Error literals directly.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, engineerr.InvariantViolation) match any *Error of
// that Kind, regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinel values usable with errors.Is to test the Kind of an arbitrary
// error without caring about its message.
var (
	InvariantViolation      = &Error{Kind: KindInvariantViolation}
	IllegalChoice           = &Error{Kind: KindIllegalChoice}
	CostUnpayable           = &Error{Kind: KindCostUnpayable}
	StackFizzle             = &Error{Kind: KindStackFizzle}
	SnapshotVersionMismatch = &Error{Kind: KindSnapshotVersionMismatch}
	SnapshotCorrupt         = &Error{Kind: KindSnapshotCorrupt}
	CardDefinitionMissing   = &Error{Kind: KindCardDefinitionMissing}
)

func NewInvariantViolation(format string, args ...any) error {
	return newf(KindInvariantViolation, format, args...)
}

func NewIllegalChoice(format string, args ...any) error {
	return newf(KindIllegalChoice, format, args...)
}

func NewCostUnpayable(format string, args ...any) error {
	return newf(KindCostUnpayable, format, args...)
}

func NewStackFizzle(format string, args ...any) error {
	return newf(KindStackFizzle, format, args...)
}

func NewSnapshotVersionMismatch(got, want int) error {
	return newf(KindSnapshotVersionMismatch, "snapshot version %d, engine expects %d", got, want)
}

func NewSnapshotCorrupt(cause error, format string, args ...any) error {
	return wrapf(KindSnapshotCorrupt, cause, format, args...)
}

func NewCardDefinitionMissing(name string) error {
	return newf(KindCardDefinitionMissing, "no card definition for %q", name)
}
