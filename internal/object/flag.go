package object

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// FlagType is the capsule type for switch parameters. A flag is
// boolean-like but distinct from cty.Bool: its presence on the command
// line implies true, and coercion into it is gated to numeric and
// boolean-like sources only.
var FlagType = cty.Capsule("flag", reflect.TypeOf(false))

// FlagVal wraps a bool as a flag value.
func FlagVal(set bool) cty.Value {
	return cty.CapsuleVal(FlagType, &set)
}

// IsFlagType reports whether t is the switch-parameter type.
func IsFlagType(t cty.Type) bool {
	return t.Equals(FlagType)
}

// FlagIsSet unwraps v to its flag state. The second result is false when v
// is not a flag value.
func FlagIsSet(v cty.Value) (bool, bool) {
	bare := Unwrap(v)
	if bare.IsNull() || !bare.Type().Equals(FlagType) {
		return false, false
	}
	return *bare.EncapsulatedValue().(*bool), true
}

// IsBooleanLike reports whether t is cty.Bool or the flag type. The
// coercion chain applies its strict pre-conversion gate to both.
func IsBooleanLike(t cty.Type) bool {
	return t.Equals(cty.Bool) || IsFlagType(t)
}
