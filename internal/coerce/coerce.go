package coerce

import (
	"errors"
	"fmt"

	"github.com/PowerShell/PowerShell-sub006/internal/execctx"
	"github.com/PowerShell/PowerShell-sub006/internal/fault"
	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Request describes one conversion through the chain.
type Request struct {
	// Targets is the ordered list of target types, length >= 1. A length
	// greater than one only occurs for special multi-step conversions,
	// such as reference capture followed by the final element type.
	Targets []cty.Type

	// Value is the raw input value, possibly carrying provenance marks.
	Value cty.Value

	// BindingParameters is set when the request originates from parameter
	// binding. Reference-capture targets are look-only in this mode and
	// provenance marks propagate to the output.
	BindingParameters bool

	// BindingScriptCmdlet is set for compiled/script-cmdlet binding. It
	// enables the array-to-string restriction and per-element boolean
	// gating for collection targets.
	BindingScriptCmdlet bool
}

// Result carries either the converted value or the fault that stopped the
// chain. Exactly one of the two is meaningful.
type Result struct {
	Value cty.Value
	Fault *fault.Fault
}

// Ok reports whether the conversion succeeded.
func (r Result) Ok() bool {
	return r.Fault == nil
}

// Convert runs the coercion chain for req. All cast failures from any step
// come back as a single Cast fault; a nested fault of another kind passes
// through unchanged.
func Convert(req Request) Result {
	if len(req.Targets) == 0 {
		return Result{Fault: fault.NewCast("unknown", errors.New("coercion request names no target types"))}
	}

	cur := req.Value
	for _, target := range req.Targets {
		next, f := convertOne(cur, target, req)
		if f != nil {
			return Result{Fault: f}
		}
		cur = next
	}

	// The converted value inherits the input's provenance when the request
	// came from parameter binding, regardless of which conversions ran.
	if req.BindingParameters {
		cur = object.PropagateTrust(req.Value, cur)
	}
	return Result{Value: cur}
}

// convertOne applies the full step sequence for a single target type.
func convertOne(val cty.Value, target cty.Type, req Request) (cty.Value, *fault.Fault) {
	bare := object.Unwrap(val)

	// Reference-capture targets are look-only under parameter binding: the
	// value either already unwraps to a reference cell or the step fails.
	// No conversion is ever attempted into a reference.
	if req.BindingParameters {
		if target.Equals(object.RefType) {
			if _, ok := object.AsReference(val); ok {
				return bare, nil
			}
			return cty.NilVal, fault.NewCast(target.FriendlyName(),
				fmt.Errorf("a value of type %s cannot bind to a reference parameter", bare.Type().FriendlyName()))
		}
		// Any other target sees through a reference implicitly.
		if deref, ok := object.Dereference(val); ok {
			val = deref
			bare = object.Unwrap(deref)
		}
	}

	// Compiled commands refuse array-valued input for a plain string
	// parameter. Ordinary assignment keeps the array-to-string conversion
	// for compatibility.
	if req.BindingScriptCmdlet && target.Equals(cty.String) && isSequence(bare.Type()) {
		return cty.NilVal, fault.NewCast(target.FriendlyName(),
			errors.New("cannot convert an array to a string parameter of a compiled command"))
	}

	// Boolean-like targets apply a strict gate before any generic
	// conversion gets a chance: only numeric and boolean-like sources pass.
	if object.IsBooleanLike(target) {
		if err := checkBooleanSource(bare); err != nil {
			return cty.NilVal, fault.NewCast(target.FriendlyName(), err)
		}
		return booleanValue(bare, target), nil
	}

	// Collections of boolean-like elements gate each element individually
	// under script-cmdlet binding, or the whole value when it is scalar.
	if req.BindingScriptCmdlet && isBooleanCollection(target) {
		return convertBooleanCollection(bare, target)
	}

	// Preference targets convert through their textual names.
	if target.Equals(execctx.PreferenceType) {
		return convertPreference(bare, req)
	}

	// Generic conversion. cty's conversions use invariant formatting.
	if target.Equals(cty.DynamicPseudoType) {
		return bare, nil
	}
	out, err := convert.Convert(bare, target)
	if err != nil {
		// A scalar may still bind to a collection parameter as its single
		// element.
		if (target.IsListType() || target.IsSetType()) && !isSequence(bare.Type()) && !bare.IsNull() {
			wrapped := cty.TupleVal([]cty.Value{bare})
			if out, wrapErr := convert.Convert(wrapped, target); wrapErr == nil {
				return out, nil
			}
		}
		return cty.NilVal, fault.NewCast(target.FriendlyName(), err)
	}
	return out, nil
}

// isSequence reports whether t is an array-shaped type.
func isSequence(t cty.Type) bool {
	return t.IsListType() || t.IsSetType() || t.IsTupleType()
}

// isBooleanCollection reports whether t is a list or set of boolean-like
// elements.
func isBooleanCollection(t cty.Type) bool {
	return (t.IsListType() || t.IsSetType()) && object.IsBooleanLike(t.ElementType())
}

// checkBooleanSource enforces the pre-conversion gate for boolean-like
// targets.
func checkBooleanSource(v cty.Value) error {
	if v.IsNull() {
		return errors.New("null cannot be bound to a non-nullable boolean parameter")
	}
	t := v.Type()
	if t.Equals(cty.Bool) || t.Equals(cty.Number) || object.IsFlagType(t) {
		return nil
	}
	return fmt.Errorf("a value of type %s cannot be converted to a boolean parameter; only numeric and boolean values are accepted", t.FriendlyName())
}

// booleanValue builds the boolean-like result for a source that already
// passed the gate.
func booleanValue(v cty.Value, target cty.Type) cty.Value {
	set := false
	switch {
	case v.Type().Equals(cty.Bool):
		set = v.True()
	case v.Type().Equals(cty.Number):
		set = v.AsBigFloat().Sign() != 0
	default:
		set, _ = object.FlagIsSet(v)
	}
	if object.IsFlagType(target) {
		return object.FlagVal(set)
	}
	return cty.BoolVal(set)
}

// convertBooleanCollection gates and converts each element of an
// array-shaped source, or wraps a gated scalar into a single-element
// collection.
func convertBooleanCollection(v cty.Value, target cty.Type) (cty.Value, *fault.Fault) {
	elemType := target.ElementType()

	if !isSequence(v.Type()) {
		if err := checkBooleanSource(v); err != nil {
			return cty.NilVal, fault.NewCast(target.FriendlyName(), err)
		}
		return cty.ListVal([]cty.Value{booleanValue(v, elemType)}), nil
	}

	if v.LengthInt() == 0 {
		return cty.ListValEmpty(elemType), nil
	}
	elems := make([]cty.Value, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if err := checkBooleanSource(object.Unwrap(elem)); err != nil {
			return cty.NilVal, fault.NewCast(target.FriendlyName(), err)
		}
		elems = append(elems, booleanValue(object.Unwrap(elem), elemType))
	}
	if target.IsSetType() {
		return cty.SetVal(elems), nil
	}
	return cty.ListVal(elems), nil
}

// convertPreference converts v into an action-preference value, rejecting
// the Suspend member on the direct-assignment path. Suspend stays legal on
// binding paths because workflow activities bind it internally.
func convertPreference(v cty.Value, req Request) (cty.Value, *fault.Fault) {
	pref, ok := execctx.AsPreference(v)
	if !ok {
		str, err := convert.Convert(v, cty.String)
		if err != nil {
			return cty.NilVal, fault.NewCast("preference", err)
		}
		if str.IsNull() {
			return cty.NilVal, fault.NewCast("preference", errors.New("null is not a valid action preference"))
		}
		pref, err = execctx.ParsePreference(str.AsString())
		if err != nil {
			return cty.NilVal, fault.NewCast("preference", err)
		}
	}

	directAssignment := !req.BindingParameters && !req.BindingScriptCmdlet
	if directAssignment && pref == execctx.PreferenceSuspend {
		return cty.NilVal, fault.NewCast("preference",
			errors.New("the Suspend preference may not be assigned to a preference variable"))
	}
	return execctx.PreferenceVal(pref), nil
}
