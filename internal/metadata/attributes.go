package metadata

import (
	"fmt"
	"strings"

	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// Attribute is a validation directive attached to a parameter. Attributes
// run against the converted value during binding; they never run on the
// display path.
type Attribute interface {
	// Validate checks a converted value before it is bound.
	Validate(v cty.Value) error
}

// ValidateNotNull rejects null bound values.
type ValidateNotNull struct{}

// Validate implements Attribute.
func (ValidateNotNull) Validate(v cty.Value) error {
	if object.Unwrap(v).IsNull() {
		return fmt.Errorf("the argument is null; provide a non-null value")
	}
	return nil
}

// ValidateSet restricts a string parameter to a fixed set of values,
// matched case-insensitively.
type ValidateSet struct {
	Allowed []string
}

// Validate implements Attribute.
func (a ValidateSet) Validate(v cty.Value) error {
	bare := object.Unwrap(v)
	if bare.IsNull() || !bare.Type().Equals(cty.String) {
		return nil
	}
	got := bare.AsString()
	for _, allowed := range a.Allowed {
		if strings.EqualFold(got, allowed) {
			return nil
		}
	}
	return fmt.Errorf("the argument %q does not belong to the set [%s]", got, strings.Join(a.Allowed, ", "))
}

// ValidateRange restricts a numeric parameter to an inclusive range.
type ValidateRange struct {
	Min, Max int64
}

// Validate implements Attribute.
func (a ValidateRange) Validate(v cty.Value) error {
	bare := object.Unwrap(v)
	if bare.IsNull() || !bare.Type().Equals(cty.Number) {
		return nil
	}
	got, _ := bare.AsBigFloat().Int64()
	if got < a.Min || got > a.Max {
		return fmt.Errorf("the argument %d is outside the range %d to %d", got, a.Min, a.Max)
	}
	return nil
}

// ObsoleteInfo marks a parameter as deprecated. Binding still succeeds;
// the message is queued as a warning and drained at the next lifecycle
// boundary, where the ambient warning preference governs visibility.
type ObsoleteInfo struct {
	Message string
}
