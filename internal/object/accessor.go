package object

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// PropertyAccessor is the capability the binder needs from an upstream
// record for by-property-name matching: enumerate and look up named
// properties. Implementations decide what "property" means for their
// representation; the binder depends only on this interface.
type PropertyAccessor interface {
	// Property returns the named property's value. The second result is
	// false when the record has no such property.
	Property(name string) (cty.Value, bool)
	// PropertyNames returns the record's property names in a stable order.
	PropertyNames() []string
}

// valueAccessor adapts a cty object or map value to PropertyAccessor.
// Property values inherit the record's provenance mark.
type valueAccessor struct {
	record cty.Value
	attrs  map[string]cty.Value
}

// AccessorFor adapts v to a PropertyAccessor. The second result is false
// when v has no enumerable properties (primitives, collections, null and
// unknown values).
func AccessorFor(v cty.Value) (PropertyAccessor, bool) {
	bare := Unwrap(v)
	if bare.IsNull() || !bare.IsKnown() {
		return nil, false
	}
	ty := bare.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, false
	}
	if ty.IsMapType() && bare.LengthInt() == 0 {
		return &valueAccessor{record: v, attrs: map[string]cty.Value{}}, true
	}
	return &valueAccessor{record: v, attrs: bare.AsValueMap()}, true
}

func (a *valueAccessor) Property(name string) (cty.Value, bool) {
	val, ok := a.attrs[name]
	if !ok {
		return cty.NilVal, false
	}
	return PropagateTrust(a.record, val), true
}

func (a *valueAccessor) PropertyNames() []string {
	names := make([]string, 0, len(a.attrs))
	for name := range a.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
