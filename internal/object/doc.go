// Package object defines the value envelope for pipeline records.
//
// Records, bound arguments, and declared parameter types are cty values and
// cty types. This package adds the engine-specific pieces layered on top of
// that model: a trust mark for provenance tracking, a capsule type for
// reference-capture parameters, a capsule type for switch/flag parameters,
// and the property-accessor capability the binder uses for by-property-name
// matching. Nothing outside this package assumes a concrete record shape.
package object
