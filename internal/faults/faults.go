// Package faults provides the structured error taxonomy shared by the
// claims engine: precondition violations, stale-version conflicts, and
// incomplete gate input. Callers match by kind via errors.Is.
package faults

// #region kind
// Kind is a machine-readable error category.
type Kind string

const (
	// KindPreconditionFailed means the requested mutation or evaluation
	// violates an invariant of the current state. Never retried.
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"

	// KindStaleVersion means the action was conditioned on a version or
	// status that has since advanced. Recoverable by refetching state and
	// re-evaluating; retried at most once without fresh human confirmation.
	KindStaleVersion Kind = "STALE_VERSION"

	// KindIncompleteEvaluation means a gate aggregation was requested
	// before every required gate had an answer. The evaluator never
	// defaults to a result in this situation.
	KindIncompleteEvaluation Kind = "INCOMPLETE_EVALUATION"
)

// #endregion kind

// #region error
// Error is the domain error type with structured metadata.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// #endregion error

// #region constructors
// New creates a domain error with a kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithMetadata creates a domain error carrying extra context fields.
func WithMetadata(kind Kind, message string, metadata map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Metadata: metadata}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Precondition creates a PRECONDITION_FAILED error.
func Precondition(message string) *Error {
	return New(KindPreconditionFailed, message)
}

// Stale creates a STALE_VERSION error.
func Stale(message string) *Error {
	return New(KindStaleVersion, message)
}

// Incomplete creates an INCOMPLETE_EVALUATION error.
func Incomplete(message string) *Error {
	return New(KindIncompleteEvaluation, message)
}

// #endregion constructors

// #region predicates
// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsStale reports whether err is a stale-version conflict, the only kind a
// caller may recover from by refetching and retrying.
func IsStale(err error) bool {
	return IsKind(err, KindStaleVersion)
}

// #endregion predicates
