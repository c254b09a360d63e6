// Package binder implements the parameter-binder controller: it matches
// command-line arguments and pipeline records to the active parameter
// set's descriptors, delegates value conversion to the coercion chain, and
// tracks mandatory satisfaction and deferred obsolete-parameter warnings.
package binder

import (
	"context"
	"fmt"
	"strings"

	"github.com/PowerShell/PowerShell-sub006/internal/coerce"
	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/fault"
	"github.com/PowerShell/PowerShell-sub006/internal/metadata"
	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// Controller binds one command instance's parameters. It is owned by the
// lifecycle driver and never shared across stages.
type Controller struct {
	view         *metadata.SetView
	invocation   fault.InvocationInfo
	scriptCmdlet bool

	// cmdline holds values bound from the command line (defaults
	// included). They persist across records.
	cmdline map[string]BoundValue
	// bound is the full table for the current record: cmdline plus the
	// pipeline bindings of the record being processed. Fully rebuilt, not
	// merged, before each record.
	bound map[string]BoundValue

	leftover         []Argument
	warnings         []string
	commandLineBound bool
}

// New builds a controller for the given per-set view.
func New(view *metadata.SetView, scriptCmdlet bool) *Controller {
	return &Controller{
		view: view,
		invocation: fault.InvocationInfo{
			Command:      view.Command,
			ParameterSet: view.Set,
		},
		scriptCmdlet: scriptCmdlet,
		cmdline:      make(map[string]BoundValue),
		bound:        make(map[string]BoundValue),
	}
}

// Invocation returns the invocation metadata recorded at construction.
func (c *Controller) Invocation() fault.InvocationInfo {
	return c.invocation
}

// Leftover returns command-line arguments that bound to nothing.
func (c *Controller) Leftover() []Argument {
	return c.leftover
}

// BindCommandLineParameters performs the one-shot command-line bind:
// named arguments first, then positional arguments in position order, then
// the remaining-arguments absorber, then defaults for still-unbound
// parameters. Calling it twice is a programmer error.
func (c *Controller) BindCommandLineParameters(ctx context.Context, args []Argument, defaults map[string]cty.Value) error {
	if c.commandLineBound {
		return fmt.Errorf("command-line parameters for '%s' are already bound", c.invocation.Command)
	}
	c.commandLineBound = true
	logger := ctxlog.FromContext(ctx).With("command", c.invocation.Command)

	var positional []Argument
	for _, arg := range args {
		if arg.Name == "" {
			positional = append(positional, arg)
			continue
		}
		desc, ok := c.view.Lookup(arg.Name)
		if !ok {
			c.leftover = append(c.leftover, arg)
			continue
		}
		if _, dup := c.cmdline[desc.Name]; dup {
			return fault.NewBinding(c.invocation, cty.NilVal,
				fmt.Errorf("parameter '%s' is specified more than once", desc.Name))
		}
		if err := c.bindCommandLine(ctx, desc, arg.Value); err != nil {
			return err
		}
	}

	// Positional pass: unbound positional descriptors take the remaining
	// unnamed arguments in position order. The remaining-arguments absorber
	// never binds a single position; it collects every leftover below.
	idx := 0
	for _, desc := range c.view.Positional() {
		if idx >= len(positional) {
			break
		}
		if desc.ValueFromRemainingArguments {
			continue
		}
		if _, dup := c.cmdline[desc.Name]; dup {
			continue
		}
		if err := c.bindCommandLine(ctx, desc, positional[idx].Value); err != nil {
			return err
		}
		idx++
	}
	c.leftover = append(c.leftover, positional[idx:]...)

	// Whatever is left goes to the set's remaining-arguments descriptor,
	// or fails the bind when the set declares none.
	if len(c.leftover) > 0 {
		if err := c.absorbLeftover(ctx); err != nil {
			return err
		}
	}

	// Defaults fill unbound parameters only; they never override an
	// explicit argument.
	for name, val := range defaults {
		desc, ok := c.view.Lookup(name)
		if !ok {
			continue
		}
		if _, dup := c.cmdline[desc.Name]; dup {
			continue
		}
		if err := c.bindCommandLine(ctx, desc, val); err != nil {
			return err
		}
	}

	// The per-record table starts as the command-line table.
	c.rebuildBound()
	logger.Debug("Command-line binding complete.", "bound", len(c.cmdline), "leftover", len(c.leftover))
	return nil
}

// bindCommandLine coerces, validates and records one command-line value.
func (c *Controller) bindCommandLine(ctx context.Context, desc *metadata.ParameterDescriptor, raw cty.Value) error {
	val, err := c.convertFor(desc, raw)
	if err != nil {
		return fault.NewBinding(c.invocation, cty.NilVal, err)
	}
	if err := c.validate(desc, val); err != nil {
		return fault.NewBinding(c.invocation, cty.NilVal, err)
	}
	c.queueObsolete(ctx, desc)
	c.cmdline[desc.Name] = BoundValue{Value: val, Provenance: FromCommandLine}
	return nil
}

// absorbLeftover hands unmatched command-line arguments to the set's
// remaining-arguments descriptor.
func (c *Controller) absorbLeftover(ctx context.Context) error {
	desc, ok := c.view.Remaining()
	if !ok {
		names := make([]string, 0, len(c.leftover))
		for _, arg := range c.leftover {
			if arg.Name != "" {
				names = append(names, arg.Name)
			} else {
				names = append(names, "<positional>")
			}
		}
		return fault.NewBinding(c.invocation, cty.NilVal,
			fmt.Errorf("cannot bind arguments [%s]: no matching parameter in set '%s'",
				strings.Join(names, ", "), c.view.Set))
	}
	if _, dup := c.cmdline[desc.Name]; dup {
		return fault.NewBinding(c.invocation, cty.NilVal,
			fmt.Errorf("parameter '%s' is already bound and cannot absorb remaining arguments", desc.Name))
	}
	vals := make([]cty.Value, 0, len(c.leftover))
	for _, arg := range c.leftover {
		vals = append(vals, arg.Value)
	}
	var collected cty.Value
	if len(vals) == 0 {
		collected = cty.EmptyTupleVal
	} else {
		collected = cty.TupleVal(vals)
	}
	if err := c.bindCommandLine(ctx, desc, collected); err != nil {
		return err
	}
	// Absorbed arguments are bound, not leftover.
	c.leftover = nil
	return nil
}

// convertFor runs the coercion chain for one descriptor.
func (c *Controller) convertFor(desc *metadata.ParameterDescriptor, raw cty.Value) (cty.Value, error) {
	// A presence-only argument is only meaningful for a switch parameter.
	if raw == cty.NilVal {
		if object.IsFlagType(desc.Type) {
			return object.FlagVal(true), nil
		}
		return cty.NilVal, fmt.Errorf("parameter '%s' requires an argument", desc.Name)
	}
	res := coerce.Convert(coerce.Request{
		Targets:             []cty.Type{desc.Type},
		Value:               raw,
		BindingParameters:   true,
		BindingScriptCmdlet: c.scriptCmdlet,
	})
	if !res.Ok() {
		return cty.NilVal, res.Fault
	}
	return res.Value, nil
}

// validate runs the descriptor's operational attributes against the
// converted value.
func (c *Controller) validate(desc *metadata.ParameterDescriptor, val cty.Value) error {
	for _, attr := range desc.Attributes() {
		if err := attr.Validate(val); err != nil {
			return fmt.Errorf("parameter '%s': %w", desc.Name, err)
		}
	}
	return nil
}

// queueObsolete queues the deferred warning for an obsolete parameter. The
// queue drains at the next lifecycle boundary so the warning preference in
// force there governs visibility.
func (c *Controller) queueObsolete(ctx context.Context, desc *metadata.ParameterDescriptor) {
	if desc.Obsolete == nil {
		return
	}
	msg := desc.Obsolete.Message
	if msg == "" {
		msg = fmt.Sprintf("parameter '%s' is obsolete", desc.Name)
	}
	ctxlog.FromContext(ctx).Debug("Queued obsolete-parameter warning.", "parameter", desc.Name)
	c.warnings = append(c.warnings, msg)
}

// DrainObsoleteWarnings returns the queued warnings and clears the queue.
func (c *Controller) DrainObsoleteWarnings() []string {
	out := c.warnings
	c.warnings = nil
	return out
}

// HandleUnboundMandatoryParameters returns the mandatory descriptors of
// the active set that still lack a value after the latest bind attempt.
// This path never prompts; it is strictly non-interactive.
func (c *Controller) HandleUnboundMandatoryParameters() []*metadata.ParameterDescriptor {
	var missing []*metadata.ParameterDescriptor
	for _, desc := range c.view.Mandatory() {
		if _, ok := c.bound[desc.Name]; !ok {
			missing = append(missing, desc)
		}
	}
	return missing
}

// Arguments returns the bound-parameter table for the current record.
func (c *Controller) Arguments() *BoundArguments {
	snapshot := make(map[string]BoundValue, len(c.bound))
	for name, bv := range c.bound {
		snapshot[name] = bv
	}
	return &BoundArguments{values: snapshot}
}

// PipelineBindable reports whether the active set accepts pipeline input.
func (c *Controller) PipelineBindable() bool {
	return c.view.PipelineBindable()
}

// rebuildBound resets the per-record table to the command-line values.
func (c *Controller) rebuildBound() {
	c.bound = make(map[string]BoundValue, len(c.cmdline))
	for name, bv := range c.cmdline {
		c.bound[name] = bv
	}
}
