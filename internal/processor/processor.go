// Package processor implements the command lifecycle driver. One Processor
// owns one in-flight command instance for one pipeline stage and sequences
// Prepare, the lazy BeginProcessing, and the per-record Read/ProcessRecord
// loop, converting faults into a per-record-isolated error stream.
package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/PowerShell/PowerShell-sub006/internal/binder"
	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/execctx"
	"github.com/PowerShell/PowerShell-sub006/internal/fault"
	"github.com/zclconf/go-cty/cty"
)

// state is the Read state machine.
type state int

const (
	stateNotStarted state = iota
	stateAwaitingMandatory
	stateBailing
	stateStopped
)

// Processor drives one command instance through its lifecycle. It is the
// sole consumer of its upstream reader and never processes more than one
// record at a time.
type Processor struct {
	resolved *command.Resolved
	execCtx  *execctx.Context
	upstream Reader
	warnings execctx.WarningSink
	emit     func(cty.Value)

	// redirect, when set, is the error target processing of each record
	// runs under, bracketed with save/restore around the hook call.
	redirect execctx.ErrorSink

	// setName selects the parameter set the binder views; empty resolves
	// to the command's declared default set.
	setName string

	instance   command.Command
	ctrl       *binder.Controller
	st         state
	prepared   bool
	beginDone  bool
	current    cty.Value
	hasCurrent bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithErrorRedirection routes the stage's isolated faults to sink for the
// duration of each record's processing.
func WithErrorRedirection(sink execctx.ErrorSink) Option {
	return func(p *Processor) { p.redirect = sink }
}

// WithParameterSet binds against the named parameter set instead of the
// command's default set. An unknown name fails Prepare.
func WithParameterSet(name string) Option {
	return func(p *Processor) { p.setName = name }
}

// New builds a driver for one resolved command. emit receives the
// command's output records; it must not be nil.
func New(resolved *command.Resolved, execCtx *execctx.Context, upstream Reader,
	warnings execctx.WarningSink, emit func(cty.Value), opts ...Option) *Processor {
	p := &Processor{
		resolved: resolved,
		execCtx:  execCtx,
		upstream: upstream,
		warnings: warnings,
		emit:     emit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare constructs the command instance and binds command-line
// arguments, exactly once per instance. When the command declares its own
// language mode, binding and default evaluation run under it; the ambient
// mode is restored on every exit path.
func (p *Processor) Prepare(ctx context.Context, args []binder.Argument, defaults map[string]cty.Value) error {
	if p.prepared {
		return fmt.Errorf("command '%s' is already prepared", p.resolved.Name)
	}
	p.prepared = true
	logger := ctxlog.FromContext(ctx).With("command", p.resolved.Name)

	instance, err := p.resolved.NewInstance()
	if err != nil {
		return err
	}
	p.instance = instance

	view, err := p.resolved.Metadata.ForSet(p.setName)
	if err != nil {
		return fault.NewConstruction(fault.InvocationInfo{Command: p.resolved.Name}, err)
	}
	p.ctrl = binder.New(view, p.resolved.ScriptCmdlet)

	if p.resolved.LanguageMode != nil && *p.resolved.LanguageMode != p.execCtx.LanguageMode() {
		restore := p.execCtx.EnterLanguageMode(*p.resolved.LanguageMode)
		defer restore()
	}

	logger.Debug("Binding command-line parameters.", "set", view.Set)
	return p.ctrl.BindCommandLineParameters(ctx, args, defaults)
}

// BeginProcessing drains the warnings queued from command-line-bound
// obsolete parameters, then calls the command's begin hook. It runs
// exactly once, lazily, on the first record attempt.
func (p *Processor) BeginProcessing(ctx context.Context) error {
	p.drainWarnings(ctx)
	return p.classify(p.instance.BeginProcessing(ctx, p.invocation(ctx)))
}

// Read pulls and binds the next upstream record. It returns true when a
// record is bound and ready to process, false when the stage is done. A
// bind or mandatory failure on one record is isolated to the error target
// and never prevents subsequent records from being attempted.
func (p *Processor) Read(ctx context.Context) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("command", p.resolved.Name)

	if p.execCtx.Stopping() {
		p.st = stateStopped
		return false, fault.NewPipelineStopped(p.ctrl.Invocation())
	}
	if p.st == stateBailing || p.st == stateStopped {
		return false, nil
	}

	// A command with no pipeline-bindable parameters runs exactly once,
	// regardless of upstream content. Mandatory satisfaction still holds:
	// with no records to bind from, an unbound mandatory parameter faults
	// here and the run never happens.
	if !p.ctrl.PipelineBindable() {
		p.st = stateBailing
		p.hasCurrent = false
		if missing := p.ctrl.HandleUnboundMandatoryParameters(); len(missing) > 0 {
			names := make([]string, 0, len(missing))
			for _, d := range missing {
				names = append(names, d.Name)
			}
			p.isolate(ctx, fault.NewMandatoryMissing(p.ctrl.Invocation(), cty.NilVal, names))
			return false, nil
		}
		logger.Debug("No pipeline-bindable parameters; running once.")
		return true, nil
	}

	for {
		if p.execCtx.Stopping() {
			p.st = stateStopped
			return false, fault.NewPipelineStopped(p.ctrl.Invocation())
		}

		record, err := p.upstream.ReadObject(ctx)
		if errors.Is(err, ErrEndOfStream) {
			p.st = stateBailing
			return false, nil
		}
		if err != nil {
			// An upstream failure is terminal for this stage; it is not a
			// per-record condition of ours to isolate.
			return false, err
		}

		if !p.ctrl.BindPipelineParameters(ctx, record) {
			p.isolate(ctx, fault.NewBinding(p.ctrl.Invocation(), record, nil))
			continue
		}

		if missing := p.ctrl.HandleUnboundMandatoryParameters(); len(missing) > 0 {
			p.st = stateAwaitingMandatory
			names := make([]string, 0, len(missing))
			for _, d := range missing {
				names = append(names, d.Name)
			}
			p.isolate(ctx, fault.NewMandatoryMissing(p.ctrl.Invocation(), record, names))
			continue
		}

		p.st = stateNotStarted
		p.current = record
		p.hasCurrent = true
		return true, nil
	}
}

// ProcessRecord invokes the command's per-record hook for the record the
// last Read bound. On the first invocation it triggers BeginProcessing.
// Error redirection, when requested or already active upstream, brackets
// the hook call with save/restore of the prior target.
func (p *Processor) ProcessRecord(ctx context.Context) error {
	if p.execCtx.Stopping() {
		p.st = stateStopped
		return fault.NewPipelineStopped(p.ctrl.Invocation())
	}

	if !p.beginDone {
		p.beginDone = true
		if err := p.BeginProcessing(ctx); err != nil {
			return err
		}
	}

	// Warnings queued by pipeline binding drain at this boundary so the
	// preference in force now governs their visibility.
	p.drainWarnings(ctx)

	if p.redirect != nil || p.execCtx.Redirected() {
		target := p.redirect
		if target == nil {
			target = p.execCtx.ErrorTarget()
		}
		restore := p.execCtx.PushErrorTarget(target)
		defer restore()
	}

	return p.classify(p.instance.ProcessRecord(ctx, p.invocation(ctx)))
}

// Complete drives the command's end hook, if it declares one. The pipeline
// coordinator calls it after upstream is drained.
func (p *Processor) Complete(ctx context.Context) error {
	p.drainWarnings(ctx)
	ender, ok := p.instance.(command.Ender)
	if !ok {
		return nil
	}
	return p.classify(ender.EndProcessing(ctx, p.invocation(ctx)))
}

// CurrentRecord returns the record bound by the last successful Read.
func (p *Processor) CurrentRecord() (cty.Value, bool) {
	return p.current, p.hasCurrent
}

// Controller exposes the binder for the coordinator and tests.
func (p *Processor) Controller() *binder.Controller {
	return p.ctrl
}

// classify sorts a hook error into the propagation policy: an explicit
// language-level throw and a pipeline-stop keep their identity end-to-end;
// engine faults pass through; anything else is wrapped with the full
// invocation context.
func (p *Processor) classify(err error) error {
	if err == nil {
		return nil
	}
	var throw *fault.ScriptThrow
	if errors.As(err, &throw) {
		return err
	}
	if _, ok := fault.As(err); ok {
		return err
	}
	return &fault.InvocationError{Invocation: p.ctrl.Invocation(), Err: err}
}

// isolate writes a per-record fault to the current error target and keeps
// going. Sink writes are fire-and-forget by contract.
func (p *Processor) isolate(ctx context.Context, f *fault.Fault) {
	ctxlog.FromContext(ctx).Debug("Isolated per-record fault.",
		"command", p.resolved.Name, "kind", f.Kind.String())
	p.execCtx.ErrorTarget().WriteError(ctx, f)
}

// drainWarnings flushes queued obsolete-parameter warnings through the
// warning sink, honoring the ambient warning preference.
func (p *Processor) drainWarnings(ctx context.Context) {
	for _, msg := range p.ctrl.DrainObsoleteWarnings() {
		p.warn(ctx, msg)
	}
}

// warn writes one warning, unless the ambient preference suppresses it.
func (p *Processor) warn(ctx context.Context, msg string) {
	switch p.execCtx.WarningPreference() {
	case execctx.PreferenceIgnore, execctx.PreferenceSilentlyContinue:
		return
	}
	if p.warnings != nil {
		p.warnings.WriteWarning(ctx, msg)
	}
}

// invocation builds the hook surface for the current record.
func (p *Processor) invocation(ctx context.Context) *command.Invocation {
	return &command.Invocation{
		Args:         p.ctrl.Arguments(),
		WriteObject:  p.emit,
		WriteWarning: func(msg string) { p.warn(ctx, msg) },
	}
}
