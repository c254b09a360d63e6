// Package pipeline coordinates the lifecycle drivers of a linear pipeline.
//
// Scheduling is single-threaded, cooperative and pull-based: each stage is
// the sole consumer of the stage before it, and pulling a record from
// upstream recursively drives the upstream stage's own Read/ProcessRecord
// loop. There is no parallel execution of two stages of one pipeline, so
// records flow strictly in pull order.
package pipeline

import (
	"context"

	"github.com/PowerShell/PowerShell-sub006/internal/binder"
	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/execctx"
	"github.com/PowerShell/PowerShell-sub006/internal/processor"
	"github.com/zclconf/go-cty/cty"
)

// StageSpec describes one stage of a pipeline invocation: the resolved
// command name, its command-line arguments, any applicable default
// parameter values, and an optional parameter-set selector. An empty Set
// resolves to the command's declared default set.
type StageSpec struct {
	Command  string
	Args     []binder.Argument
	Defaults map[string]cty.Value
	Set      string
}

// stage couples a lifecycle driver with its output queue. The queue holds
// records the command emitted that the downstream stage has not pulled yet.
type stage struct {
	proc      *processor.Processor
	out       []cty.Value
	completed bool
}

// Pipeline is the outer coordinator driving a chain of stages.
type Pipeline struct {
	execCtx *execctx.Context
	stages  []*stage
}

// Build resolves and prepares every stage. Construction and command-line
// binding faults surface here, before any record is read.
func Build(ctx context.Context, reg *command.Registry, execCtx *execctx.Context,
	warnings execctx.WarningSink, input processor.Reader, specs []StageSpec) (*Pipeline, error) {
	p := &Pipeline{execCtx: execCtx}
	logger := ctxlog.FromContext(ctx)

	for i, spec := range specs {
		resolved, err := reg.Resolve(spec.Command)
		if err != nil {
			return nil, err
		}

		st := &stage{}
		upstream := input
		if i > 0 {
			upstream = &stageReader{pipe: p, idx: i - 1}
		}
		var opts []processor.Option
		if spec.Set != "" {
			opts = append(opts, processor.WithParameterSet(spec.Set))
		}
		st.proc = processor.New(resolved, execCtx, upstream, warnings,
			func(v cty.Value) { st.out = append(st.out, v) }, opts...)

		if err := st.proc.Prepare(ctx, spec.Args, spec.Defaults); err != nil {
			return nil, err
		}
		p.stages = append(p.stages, st)
		logger.Debug("Stage prepared.", "index", i, "command", spec.Command)
	}
	return p, nil
}

// Run drives the pipeline to completion and returns the records emitted by
// the final stage. Isolated faults have already been written to the error
// sink by the time Run returns; only terminal faults come back as errors.
func (p *Pipeline) Run(ctx context.Context) ([]cty.Value, error) {
	last := p.stages[len(p.stages)-1]
	var results []cty.Value

	drain := func() {
		results = append(results, last.out...)
		last.out = last.out[:0]
	}

	for {
		ok, err := last.proc.Read(ctx)
		if err != nil {
			p.completeAll(ctx)
			return results, err
		}
		if !ok {
			break
		}
		if err := last.proc.ProcessRecord(ctx); err != nil {
			p.completeAll(ctx)
			return results, err
		}
		drain()
	}

	// End hooks run after upstream is drained, exactly once per stage.
	// Upstream stages were completed by their consumers inside the pull
	// loop; only the final stage is left.
	if !last.completed {
		last.completed = true
		if err := last.proc.Complete(ctx); err != nil {
			return results, err
		}
		drain()
	}
	return results, nil
}

// completeAll drives every end hook that has not run yet. It runs on the
// terminal-fault exit paths, so each stage's end hook still fires exactly
// once; a hook failure here is logged and never masks the fault that ended
// the pipeline.
func (p *Pipeline) completeAll(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, st := range p.stages {
		if st.completed {
			continue
		}
		st.completed = true
		if err := st.proc.Complete(ctx); err != nil {
			logger.Warn("End hook failed after the pipeline terminated.", "error", err)
		}
	}
}

// Stop raises the cooperative stop flag. Each stage observes it at the
// top of its next Read/ProcessRecord cycle and aborts deterministically;
// already-emitted output stays emitted.
func (p *Pipeline) Stop() {
	p.execCtx.RequestStop()
}

// stageReader adapts an upstream stage into the Reader the downstream
// driver pulls from. Each pull advances the upstream stage's own lifecycle
// loop until it emits a record or its stream ends; this is the coroutine
// handoff point of the whole engine.
type stageReader struct {
	pipe *Pipeline
	idx  int
}

// ReadObject implements processor.Reader.
func (r *stageReader) ReadObject(ctx context.Context) (cty.Value, error) {
	st := r.pipe.stages[r.idx]
	for {
		if len(st.out) > 0 {
			rec := st.out[0]
			st.out = st.out[1:]
			return rec, nil
		}

		ok, err := st.proc.Read(ctx)
		if err != nil {
			return cty.NilVal, err
		}
		if !ok {
			if !st.completed {
				// Flush the upstream command's end hook before declaring
				// the stream over, so end-emitted records still flow down.
				st.completed = true
				if err := st.proc.Complete(ctx); err != nil {
					return cty.NilVal, err
				}
				continue
			}
			return cty.NilVal, processor.ErrEndOfStream
		}
		if err := st.proc.ProcessRecord(ctx); err != nil {
			return cty.NilVal, err
		}
	}
}
