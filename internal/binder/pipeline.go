package binder

import (
	"context"
	"strings"

	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/metadata"
	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// BindPipelineParameters attempts to bind one upstream record against the
// active set. The per-record table is fully rebuilt first: only
// command-line values persist across records.
//
// Descriptors are tried in priority order: by-value (the whole record),
// then by-property-name (via the record's property accessor, matched by
// declared name or alias), then the remaining-arguments absorber. The
// return value reports whether at least one descriptor bound; a false
// return means the caller must treat the record as unbound.
func (c *Controller) BindPipelineParameters(ctx context.Context, record cty.Value) bool {
	logger := ctxlog.FromContext(ctx).With("command", c.invocation.Command)
	c.rebuildBound()

	boundAny := false

	// Priority 1: descriptors that take the record itself.
	for _, desc := range c.view.ByValue() {
		if _, dup := c.bound[desc.Name]; dup {
			continue
		}
		if c.tryBindRecord(ctx, desc, record) {
			boundAny = true
		}
	}

	// Priority 2: descriptors fed from the record's properties.
	if accessor, ok := object.AccessorFor(record); ok {
		for _, desc := range c.view.ByPropertyName() {
			if _, dup := c.bound[desc.Name]; dup {
				continue
			}
			val, found := lookupProperty(accessor, desc)
			if !found {
				continue
			}
			if c.tryBindRecord(ctx, desc, val) {
				boundAny = true
			}
		}
	}

	// Priority 3: an unmatched record falls into the remaining-arguments
	// descriptor when the set declares one.
	if !boundAny {
		if desc, ok := c.view.Remaining(); ok {
			if _, dup := c.bound[desc.Name]; !dup {
				if c.tryBindRecord(ctx, desc, wrapForCollection(desc, record)) {
					boundAny = true
				}
			}
		}
	}

	logger.Debug("Pipeline binding attempt finished.", "bound", boundAny)
	return boundAny
}

// tryBindRecord coerces and validates a candidate value for one
// descriptor. A coercion or validation failure means only that this
// descriptor did not bind; the record may still bind elsewhere.
func (c *Controller) tryBindRecord(ctx context.Context, desc *metadata.ParameterDescriptor, raw cty.Value) bool {
	val, err := c.convertFor(desc, raw)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Descriptor rejected pipeline value.",
			"parameter", desc.Name, "error", err)
		return false
	}
	if err := c.validate(desc, val); err != nil {
		ctxlog.FromContext(ctx).Debug("Descriptor validation rejected pipeline value.",
			"parameter", desc.Name, "error", err)
		return false
	}
	c.queueObsolete(ctx, desc)
	c.bound[desc.Name] = BoundValue{Value: val, Provenance: FromPipeline}
	return true
}

// lookupProperty finds the record property matching a descriptor by its
// declared name first, then by each alias in order, case-insensitively.
func lookupProperty(accessor object.PropertyAccessor, desc *metadata.ParameterDescriptor) (cty.Value, bool) {
	names := append([]string{desc.Name}, desc.Aliases...)
	for _, want := range names {
		if val, ok := accessor.Property(want); ok {
			return val, true
		}
	}
	// Fall back to a case-insensitive scan of the record's properties.
	props := accessor.PropertyNames()
	for _, want := range names {
		for _, have := range props {
			if strings.EqualFold(want, have) {
				if val, ok := accessor.Property(have); ok {
					return val, true
				}
			}
		}
	}
	return cty.NilVal, false
}

// wrapForCollection wraps a scalar record so it can coerce into an
// array-shaped remaining-arguments descriptor.
func wrapForCollection(desc *metadata.ParameterDescriptor, record cty.Value) cty.Value {
	t := desc.Type
	if !t.IsListType() && !t.IsSetType() && !t.IsTupleType() {
		return record
	}
	bare := object.Unwrap(record)
	if bare.Type().IsListType() || bare.Type().IsSetType() || bare.Type().IsTupleType() {
		return record
	}
	return object.PropagateTrust(record, cty.TupleVal([]cty.Value{object.Unwrap(record)}))
}
