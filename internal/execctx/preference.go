package execctx

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// ActionPreference controls how a stream event (warning, error, progress)
// is surfaced.
type ActionPreference string

const (
	PreferenceSilentlyContinue ActionPreference = "SilentlyContinue"
	PreferenceStop             ActionPreference = "Stop"
	PreferenceContinue         ActionPreference = "Continue"
	PreferenceInquire          ActionPreference = "Inquire"
	PreferenceIgnore           ActionPreference = "Ignore"
	// PreferenceSuspend is only valid in workflow contexts and is rejected
	// when assigned directly to a preference variable.
	PreferenceSuspend ActionPreference = "Suspend"
)

// PreferenceType is the capsule type for action-preference values, so the
// coercion chain can recognize a preference target structurally.
var PreferenceType = cty.Capsule("preference", reflect.TypeOf(ActionPreference("")))

// PreferenceVal wraps a preference as a cty value.
func PreferenceVal(p ActionPreference) cty.Value {
	return cty.CapsuleVal(PreferenceType, &p)
}

// AsPreference unwraps v to an ActionPreference. The second result is
// false when v is not a preference value.
func AsPreference(v cty.Value) (ActionPreference, bool) {
	if v.IsNull() || !v.Type().Equals(PreferenceType) {
		return "", false
	}
	return *v.EncapsulatedValue().(*ActionPreference), true
}

// ParsePreference converts a textual name into an ActionPreference.
func ParsePreference(name string) (ActionPreference, error) {
	switch ActionPreference(name) {
	case PreferenceSilentlyContinue, PreferenceStop, PreferenceContinue,
		PreferenceInquire, PreferenceIgnore, PreferenceSuspend:
		return ActionPreference(name), nil
	}
	return "", fmt.Errorf("'%s' is not a valid action preference", name)
}
