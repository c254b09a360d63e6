package binder

import (
	"sort"

	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// Provenance records where a bound value came from. Command-line values
// persist across records; pipeline values are rebuilt per record.
type Provenance int

const (
	FromCommandLine Provenance = iota
	FromPipeline
)

// Argument is one raw command-line argument. Name is empty for positional
// arguments. A named argument with cty.NilVal is presence-only, as produced
// by a bare switch on the command line.
type Argument struct {
	Name  string
	Value cty.Value
}

// BoundValue is one entry of the bound-parameter table.
type BoundValue struct {
	Value      cty.Value
	Provenance Provenance
}

// BoundArguments is the read view a command hook receives: the fully
// rebuilt bound-parameter table for the current record.
type BoundArguments struct {
	values map[string]BoundValue
}

// Value returns the bound value for a parameter name.
func (a *BoundArguments) Value(name string) (cty.Value, bool) {
	bv, ok := a.values[name]
	return bv.Value, ok
}

// Has reports whether the parameter is bound.
func (a *BoundArguments) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// String returns a bound string parameter, or def when unbound or null.
func (a *BoundArguments) String(name, def string) string {
	bv, ok := a.values[name]
	if !ok {
		return def
	}
	bare := object.Unwrap(bv.Value)
	if bare.IsNull() || !bare.Type().Equals(cty.String) {
		return def
	}
	return bare.AsString()
}

// Flag reports whether a switch parameter is bound and set.
func (a *BoundArguments) Flag(name string) bool {
	bv, ok := a.values[name]
	if !ok {
		return false
	}
	set, ok := object.FlagIsSet(bv.Value)
	return ok && set
}

// Names returns the bound parameter names in a stable order.
func (a *BoundArguments) Names() []string {
	names := make([]string, 0, len(a.values))
	for name := range a.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
