package object

import "github.com/zclconf/go-cty/cty"

// trustMark is the mark type used for provenance tracking. It is unexported
// so no other package can forge or strip it without going through the
// helpers below.
type trustMark string

// untrusted marks a value that originated from an untrusted source. The
// coercion chain propagates it to converted values; a downstream security
// policy consumes it.
const untrusted = trustMark("untrusted")

// MarkUntrusted returns v carrying the untrusted provenance mark.
func MarkUntrusted(v cty.Value) cty.Value {
	return v.Mark(untrusted)
}

// IsUntrusted reports whether v carries the untrusted provenance mark.
func IsUntrusted(v cty.Value) bool {
	return v.HasMark(untrusted)
}

// PropagateTrust transfers the untrusted mark from src onto dst. It is the
// identity when src is trusted.
func PropagateTrust(src, dst cty.Value) cty.Value {
	if IsUntrusted(src) && !IsUntrusted(dst) {
		return MarkUntrusted(dst)
	}
	return dst
}

// Unwrap strips all marks from v, returning the bare value. Conversion and
// type inspection operate on the bare value; marks are reapplied by the
// caller via PropagateTrust.
func Unwrap(v cty.Value) cty.Value {
	bare, _ := v.Unmark()
	return bare
}
