// Package fault defines the structured error taxonomy for the command
// engine. A Fault is created at the point of detection and is either
// isolated (attached to the offending record and written to the error sink)
// or terminal (unwinds the whole stage). Callers classify faults by Kind
// rather than by string matching.
package fault

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind classifies a Fault.
type Kind int

const (
	// Construction means the command could not be instantiated. Terminal:
	// it aborts the stage before any record is read.
	Construction Kind = iota
	// Binding means a pipeline object or argument could not be matched or
	// bound. Isolated per record.
	Binding
	// MandatoryMissing means a record bound, but a required parameter of
	// the active set is still without a value. Isolated per record.
	MandatoryMissing
	// Cast means a type-coercion step failed. A cast fault always surfaces
	// as the cause of a Binding fault.
	Cast
	// PipelineStopped means the stage was cooperatively cancelled.
	// Terminal and never isolated.
	PipelineStopped
)

// String returns the canonical name of the fault kind.
func (k Kind) String() string {
	switch k {
	case Construction:
		return "ConstructionFault"
	case Binding:
		return "BindingFault"
	case MandatoryMissing:
		return "MandatoryMissingFault"
	case Cast:
		return "CastFault"
	case PipelineStopped:
		return "PipelineStoppedFault"
	default:
		return fmt.Sprintf("Fault(%d)", int(k))
	}
}

// templates maps each kind to its human-readable message template.
var templates = map[Kind]string{
	Construction:     "the command '%s' could not be constructed",
	Binding:          "the input object could not be bound to any parameters of the command '%s'",
	MandatoryMissing: "the command '%s' is missing mandatory parameters: %s",
	Cast:             "cannot convert value to type %s",
	PipelineStopped:  "the pipeline has been stopped",
}

// InvocationInfo identifies the invocation a fault belongs to.
type InvocationInfo struct {
	// Command is the resolved name of the command being executed.
	Command string
	// ParameterSet is the active parameter set at the time of the fault,
	// empty if binding never selected one.
	ParameterSet string
}

// Fault is the engine's structured error value.
type Fault struct {
	Kind       Kind
	Invocation InvocationInfo

	// Target is the pipeline object the fault is attached to. It is
	// cty.NilVal for faults with no per-record target (construction,
	// cancellation).
	Target cty.Value

	// Message is the rendered human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Kind, f.Message)
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, f.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (f *Fault) Unwrap() error {
	return f.Err
}

// HasTarget reports whether the fault carries an offending record.
func (f *Fault) HasTarget() bool {
	return f.Target != cty.NilVal
}

// NewConstruction builds the terminal fault for a command that could not
// be instantiated.
func NewConstruction(inv InvocationInfo, cause error) *Fault {
	return &Fault{
		Kind:       Construction,
		Invocation: inv,
		Message:    fmt.Sprintf(templates[Construction], inv.Command),
		Err:        cause,
	}
}

// NewBinding builds an isolated fault for a record that could not be bound.
func NewBinding(inv InvocationInfo, target cty.Value, cause error) *Fault {
	return &Fault{
		Kind:       Binding,
		Invocation: inv,
		Target:     target,
		Message:    fmt.Sprintf(templates[Binding], inv.Command),
		Err:        cause,
	}
}

// NewMandatoryMissing builds an isolated fault for a record that bound but
// left mandatory parameters of the active set unsatisfied.
func NewMandatoryMissing(inv InvocationInfo, target cty.Value, missing []string) *Fault {
	return &Fault{
		Kind:       MandatoryMissing,
		Invocation: inv,
		Target:     target,
		Message:    fmt.Sprintf(templates[MandatoryMissing], inv.Command, strings.Join(missing, ", ")),
	}
}

// NewCast builds the normalized fault for a failed coercion step. Every
// failure mode inside the coercion chain collapses to this one shape.
func NewCast(targetType string, cause error) *Fault {
	return &Fault{
		Kind:    Cast,
		Message: fmt.Sprintf(templates[Cast], targetType),
		Err:     cause,
	}
}

// NewPipelineStopped builds the terminal cancellation fault.
func NewPipelineStopped(inv InvocationInfo) *Fault {
	return &Fault{
		Kind:       PipelineStopped,
		Invocation: inv,
		Message:    templates[PipelineStopped],
	}
}

// As extracts a *Fault from an error chain.
func As(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err carries a Fault of the given kind anywhere in
// its chain.
func IsKind(err error, kind Kind) bool {
	if f, ok := As(err); ok {
		return f.Kind == kind
	}
	return false
}
