package fault

import "fmt"

// ScriptThrow is a user-authored, language-level throw surfaced by a
// command hook. The lifecycle driver must never re-wrap it: its identity
// has to survive end-to-end so user error handling can catch it by shape.
type ScriptThrow struct {
	// Reason is the user-supplied message or error carried by the throw.
	Reason error
}

// Error implements the error interface.
func (t *ScriptThrow) Error() string {
	return fmt.Sprintf("throw: %v", t.Reason)
}

// Unwrap exposes the thrown reason.
func (t *ScriptThrow) Unwrap() error {
	return t.Reason
}

// InvocationError wraps an engine-detected failure raised inside a
// command's per-record hook with the full invocation context. Explicit
// throws and domain faults never take this path.
type InvocationError struct {
	Invocation InvocationInfo
	Err        error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("command '%s' failed: %v", e.Invocation.Command, e.Err)
}

// Unwrap exposes the original hook error.
func (e *InvocationError) Unwrap() error {
	return e.Err
}
