// Package execctx models the ambient execution and security context a
// pipeline stage runs under: the language mode, the active action
// preferences, the error-output redirection stack and the cooperative stop
// flag. The engine reads and brackets this state; it does not own the
// policy that drives it.
package execctx

import (
	"context"
	"sync/atomic"

	"github.com/PowerShell/PowerShell-sub006/internal/fault"
)

// LanguageMode is the language/security mode an invocation runs under.
type LanguageMode int

const (
	// FullLanguage allows everything.
	FullLanguage LanguageMode = iota
	// ConstrainedLanguage restricts type conversion and method access.
	ConstrainedLanguage
	// RestrictedLanguage allows data expressions only.
	RestrictedLanguage
)

// String returns the canonical name of the mode.
func (m LanguageMode) String() string {
	switch m {
	case FullLanguage:
		return "FullLanguage"
	case ConstrainedLanguage:
		return "ConstrainedLanguage"
	case RestrictedLanguage:
		return "RestrictedLanguage"
	default:
		return "UnknownLanguage"
	}
}

// ErrorSink is an ordered channel isolated faults are written to. Writes
// must not fail; a sink that cannot accept a write should panic, which the
// engine treats as fatal.
type ErrorSink interface {
	WriteError(ctx context.Context, f *fault.Fault)
}

// WarningSink receives deferred warnings (obsolete parameters and command
// warnings) honoring the active warning preference.
type WarningSink interface {
	WriteWarning(ctx context.Context, message string)
}

// Context is the ambient state for one pipeline. A single stage mutates it
// only with save/restore bracketing; stages never run concurrently within
// one pipeline, so no locking is needed beyond the stop flag, which may be
// set from outside the pull loop.
type Context struct {
	languageMode      LanguageMode
	warningPreference ActionPreference
	errorTargets      []ErrorSink
	stop              atomic.Bool
}

// New returns a context in full language mode with warnings enabled and
// the given sink as the base error target.
func New(base ErrorSink) *Context {
	return &Context{
		languageMode:      FullLanguage,
		warningPreference: PreferenceContinue,
		errorTargets:      []ErrorSink{base},
	}
}

// LanguageMode returns the currently active language mode.
func (c *Context) LanguageMode() LanguageMode {
	return c.languageMode
}

// EnterLanguageMode switches the active language mode and returns the
// function that restores the prior one. Callers must invoke the restore on
// every exit path, fault exits included.
func (c *Context) EnterLanguageMode(m LanguageMode) (restore func()) {
	prior := c.languageMode
	c.languageMode = m
	return func() { c.languageMode = prior }
}

// WarningPreference returns the active warning action preference.
func (c *Context) WarningPreference() ActionPreference {
	return c.warningPreference
}

// SetWarningPreference replaces the active warning action preference.
func (c *Context) SetWarningPreference(p ActionPreference) {
	c.warningPreference = p
}

// PushErrorTarget redirects error output to sink and returns the function
// that restores the prior target. Redirection is stack-disciplined: the
// restore must run on every exit path around one record's processing.
func (c *Context) PushErrorTarget(sink ErrorSink) (restore func()) {
	c.errorTargets = append(c.errorTargets, sink)
	return func() {
		c.errorTargets = c.errorTargets[:len(c.errorTargets)-1]
	}
}

// ErrorTarget returns the sink currently receiving isolated faults.
func (c *Context) ErrorTarget() ErrorSink {
	return c.errorTargets[len(c.errorTargets)-1]
}

// Redirected reports whether an error redirection is active, i.e. the
// current target is not the base sink.
func (c *Context) Redirected() bool {
	return len(c.errorTargets) > 1
}

// RequestStop raises the cooperative stop flag. The stage observes it at
// the top of each Read/ProcessRecord cycle and aborts deterministically.
func (c *Context) RequestStop() {
	c.stop.Store(true)
}

// Stopping reports whether a stop has been requested.
func (c *Context) Stopping() bool {
	return c.stop.Load()
}
