// Package coerce implements the type-coercion chain that converts bound
// values to declared parameter types.
//
// A Request names an ordered list of target types and the binding mode the
// conversion runs under; Convert walks the chain and returns an explicit
// Result instead of signaling through panics or sentinel error strings.
// Every failure mode inside the chain is normalized to a single cast-fault
// shape before returning, so callers handle one fault kind regardless of
// which step failed. Faults that are already engine faults pass through
// verbatim.
package coerce
