package reactor

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind is the closed set of structured-error categories this module raises
// (spec.md §7), realized as one error type with a Kind tag rather than nine
// distinct Go types: the set is small and enumerable, and this repo's
// idiom (see ResolveError in the teacher) favors errors.As over a type
// hierarchy.
type Kind string

const (
	KindDependencyCycle        Kind = "DependencyCycle"
	KindSelfObservation        Kind = "SelfObservation"
	KindNullAccess             Kind = "NullAccess"
	KindResourceNotInitialized Kind = "ResourceNotInitialized"
	KindTypeMismatch           Kind = "TypeMismatch"
	KindInvalidState           Kind = "InvalidState"
	KindThreadSafetyViolation  Kind = "ThreadSafetyViolation"
	KindBatchOperationConflict Kind = "BatchOperationConflict"
	KindUnknown                Kind = "Unknown"
)

// ReactorError is the structured error type every exported operation in
// this module returns on failure. File/Line are captured at construction,
// mirroring the stack capture in the teacher's CreateResolveError.
type ReactorError struct {
	Kind    Kind
	Message string
	File    string
	Line    int

	SourceID, TargetID     ID
	SourceName, TargetName string

	NodeID ID

	ExpectedType, ActualType     string
	CurrentState, RequiredState string
	ConflictDescription         string

	Cause error
}

func (e *ReactorError) Error() string {
	loc := ""
	if e.File != "" {
		loc = fmt.Sprintf(" (%s:%d)", e.File, e.Line)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s%s", e.Kind, loc)
	}
	return fmt.Sprintf("%s: %s%s", e.Kind, e.Message, loc)
}

func (e *ReactorError) Unwrap() error { return e.Cause }

// IsKind reports whether err is a *ReactorError of the given kind,
// unwrapping through any wrapping errors via errors.As.
func IsKind(err error, k Kind) bool {
	var re *ReactorError
	if errors.As(err, &re) {
		return re.Kind == k
	}
	return false
}

func newErr(kind Kind, msg string) *ReactorError {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file, line = "", 0
	}
	return &ReactorError{Kind: kind, Message: msg, File: file, Line: line}
}

func dependencyCycleError(dependent, upstream *observerNode) *ReactorError {
	e := newErr(KindDependencyCycle, fmt.Sprintf("%s depending on %s would close a cycle",
		dependent.displayName(), upstream.displayName()))
	e.SourceID, e.SourceName = dependent.id, dependent.displayName()
	e.TargetID, e.TargetName = upstream.id, upstream.displayName()
	return e
}

func selfObservationError(n *observerNode) *ReactorError {
	e := newErr(KindSelfObservation, fmt.Sprintf("%s attempted to depend on itself directly", n.displayName()))
	e.NodeID = n.id
	return e
}

func nullAccessError(n *observerNode) *ReactorError {
	e := newErr(KindNullAccess, fmt.Sprintf("get() on closed or never-evaluated cell %s", n.displayName()))
	e.NodeID = n.id
	return e
}

func resourceNotInitializedError(n *observerNode, resourceType string) *ReactorError {
	e := newErr(KindResourceNotInitialized, fmt.Sprintf("%s accessed before its %s resource was constructed",
		n.displayName(), resourceType))
	e.NodeID = n.id
	return e
}

func typeMismatchError(n *observerNode, expected, actual string) *ReactorError {
	e := newErr(KindTypeMismatch, fmt.Sprintf("%s expected %s, got %s", n.displayName(), expected, actual))
	e.NodeID = n.id
	e.ExpectedType, e.ActualType = expected, actual
	return e
}

func invalidStateError(n *observerNode, current, required string) *ReactorError {
	e := newErr(KindInvalidState, fmt.Sprintf("%s is %s, operation requires %s", n.displayName(), current, required))
	e.NodeID = n.id
	e.CurrentState, e.RequiredState = current, required
	return e
}

func threadSafetyViolationError(n *observerNode, op string) *ReactorError {
	e := newErr(KindThreadSafetyViolation, fmt.Sprintf("%s: %s observed from an unregistered thread after arming", n.displayName(), op))
	e.NodeID = n.id
	return e
}

func batchOperationConflictError(desc string) *ReactorError {
	e := newErr(KindBatchOperationConflict, desc)
	e.ConflictDescription = desc
	return e
}

// wrapEvaluationError converts an error returned (or panic recovered) from
// a user-supplied Calc/Action body into InvalidState, per spec.md §7
// ("errors raised during user-supplied computation ... are caught at the
// evaluation boundary, converted to InvalidState, and logged at Error").
// Already-structured errors pass through unchanged.
func wrapEvaluationError(n *observerNode, err error) *ReactorError {
	var re *ReactorError
	if errors.As(err, &re) {
		return re
	}
	e := newErr(KindInvalidState, fmt.Sprintf("evaluation of %s failed: %v", n.displayName(), err))
	e.NodeID = n.id
	e.CurrentState, e.RequiredState = "error", "evaluated"
	e.Cause = err
	return e
}
