package object

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Reference is a mutable cell captured by a reference parameter. A command
// that declares a reference-capture parameter receives the cell itself and
// may overwrite its contents; the caller observes the mutation.
type Reference struct {
	val cty.Value
}

// NewReferenceCell allocates a reference cell holding the given value.
func NewReferenceCell(v cty.Value) *Reference {
	return &Reference{val: v}
}

// Get returns the value currently held by the cell.
func (r *Reference) Get() cty.Value {
	return r.val
}

// Set replaces the value held by the cell.
func (r *Reference) Set(v cty.Value) {
	r.val = v
}

// RefType is the capsule type for reference cells. Under parameter binding
// it is look-only: a value either already is a reference or the bind fails;
// no conversion ever manufactures one.
var RefType = cty.Capsule("reference", reflect.TypeOf(Reference{}))

// ReferenceVal wraps a cell as a cty value so it can travel through the
// pipeline and the binder like any other record.
func ReferenceVal(r *Reference) cty.Value {
	return cty.CapsuleVal(RefType, r)
}

// AsReference unwraps v (stripping any marks) to a reference cell. The
// second result is false when v is not a reference value.
func AsReference(v cty.Value) (*Reference, bool) {
	bare := Unwrap(v)
	if bare.IsNull() || !bare.Type().Equals(RefType) {
		return nil, false
	}
	return bare.EncapsulatedValue().(*Reference), true
}

// Dereference resolves a reference value to its current contents,
// propagating the provenance mark of the reference onto the result. The
// second result is false when v is not a reference value.
func Dereference(v cty.Value) (cty.Value, bool) {
	ref, ok := AsReference(v)
	if !ok {
		return cty.NilVal, false
	}
	return PropagateTrust(v, ref.Get()), true
}
