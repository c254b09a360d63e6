package app

import (
	"context"
	"fmt"

	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/execctx"
	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/PowerShell/PowerShell-sub006/internal/pipeline"
	"github.com/PowerShell/PowerShell-sub006/internal/processor"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Run executes the pipeline described by the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	execCtx := execctx.New(pipeline.WriterErrorSink{W: a.outW})
	switch appConfig.LanguageMode {
	case "constrained":
		execCtx.EnterLanguageMode(execctx.ConstrainedLanguage)
	case "restricted":
		execCtx.EnterLanguageMode(execctx.RestrictedLanguage)
	}

	specs := make([]pipeline.StageSpec, len(appConfig.Stages))
	for i, st := range appConfig.Stages {
		specs[i] = pipeline.StageSpec{
			Command:  st.Command,
			Args:     st.Args,
			Defaults: a.defaults.For(st.Command),
		}
	}

	input := make([]cty.Value, len(appConfig.Input))
	for i, rec := range appConfig.Input {
		input[i] = cty.StringVal(rec)
	}

	pipe, err := pipeline.Build(ctx, a.registry, execCtx,
		pipeline.WriterWarningSink{W: a.outW}, processor.NewSliceReader(input), specs)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	a.logger.Debug("Pipeline built.", "stages", len(specs))

	results, err := pipe.Run(ctx)
	for _, rec := range results {
		a.writeRecord(rec)
	}
	if err != nil {
		return fmt.Errorf("pipeline execution failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.", "records", len(results))
	return nil
}

// writeRecord renders one emitted record to the output stream. Strings
// print bare; everything else renders as JSON.
func (a *App) writeRecord(rec cty.Value) {
	bare := object.Unwrap(rec)
	if bare.IsNull() {
		fmt.Fprintln(a.outW, "null")
		return
	}
	if bare.Type().Equals(cty.String) {
		fmt.Fprintln(a.outW, bare.AsString())
		return
	}
	buf, err := ctyjson.Marshal(bare, bare.Type())
	if err != nil {
		fmt.Fprintf(a.outW, "%#v\n", bare)
		return
	}
	fmt.Fprintln(a.outW, string(buf))
}
