package pipeline

import (
	"context"
	"testing"

	"github.com/PowerShell/PowerShell-sub006/internal/binder"
	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/internal/execctx"
	"github.com/PowerShell/PowerShell-sub006/internal/fault"
	"github.com/PowerShell/PowerShell-sub006/internal/metadata"
	"github.com/PowerShell/PowerShell-sub006/internal/processor"
	"github.com/PowerShell/PowerShell-sub006/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func forwarderMeta(name string) *metadata.CommandMetadata {
	return &metadata.CommandMetadata{
		Name: name,
		Parameters: []*metadata.ParameterSpec{
			{
				Name: "input",
				Type: cty.String,
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {Position: metadata.PositionUnspecified, ValueFromPipeline: true},
				},
			},
			{
				Name: "suffix",
				Type: cty.String,
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {Position: 0},
				},
			},
		},
	}
}

// registerForwarder registers a command that appends its persistent suffix
// to every record and forwards the result.
func registerForwarder(t *testing.T, reg *command.Registry, name string, begins *int) {
	t.Helper()
	err := reg.Register(&command.RegisteredCommand{
		New: func() any {
			return &testutil.HookCommand{
				OnBegin: func(ctx context.Context, inv *command.Invocation) error {
					if begins != nil {
						*begins++
					}
					return nil
				},
				OnProcess: func(ctx context.Context, inv *command.Invocation) error {
					inv.WriteObject(cty.StringVal(inv.Args.String("input", "") + inv.Args.String("suffix", "")))
					return nil
				},
			}
		},
		Metadata: forwarderMeta(name),
	})
	require.NoError(t, err)
}

func stringResults(t *testing.T, results []cty.Value) []string {
	t.Helper()
	out := make([]string, 0, len(results))
	for _, v := range results {
		require.True(t, v.Type().Equals(cty.String))
		out = append(out, v.AsString())
	}
	return out
}

func TestPipeline_PersistentCommandLineValueAcrossRecords(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	begins := 0
	registerForwarder(t, reg, "suffixer", &begins)

	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	input := processor.NewSliceReader([]cty.Value{cty.StringVal("o1"), cty.StringVal("o2")})
	pipe, err := Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{}, input, []StageSpec{
		{Command: "suffixer", Args: []binder.Argument{{Name: "suffix", Value: cty.StringVal("-x")}}},
	})
	require.NoError(t, err)

	results, err := pipe.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, begins, "begin hook runs once per stage, not per record")
	if diff := cmp.Diff([]string{"o1-x", "o2-x"}, stringResults(t, results)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_TwoStagesChainInPullOrder(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	registerForwarder(t, reg, "first", nil)
	registerForwarder(t, reg, "second", nil)

	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	input := processor.NewSliceReader([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})
	pipe, err := Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{}, input, []StageSpec{
		{Command: "first", Args: []binder.Argument{{Value: cty.StringVal(".1")}}},
		{Command: "second", Args: []binder.Argument{{Value: cty.StringVal(".2")}}},
	})
	require.NoError(t, err)

	results, err := pipe.Run(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a.1.2", "b.1.2"}, stringResults(t, results)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_EndEmittedRecordsFlowDownstream(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	require.NoError(t, reg.Register(&command.RegisteredCommand{
		New: func() any {
			return &testutil.HookCommand{
				OnProcess: func(ctx context.Context, inv *command.Invocation) error {
					inv.WriteObject(cty.StringVal(inv.Args.String("input", "")))
					return nil
				},
				OnEnd: func(ctx context.Context, inv *command.Invocation) error {
					inv.WriteObject(cty.StringVal("tail"))
					return nil
				},
			}
		},
		Metadata: forwarderMeta("emitter"),
	}))
	registerForwarder(t, reg, "suffixer", nil)

	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	input := processor.NewSliceReader([]cty.Value{cty.StringVal("a")})
	pipe, err := Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{}, input, []StageSpec{
		{Command: "emitter"},
		{Command: "suffixer", Args: []binder.Argument{{Value: cty.StringVal("!")}}},
	})
	require.NoError(t, err)

	results, err := pipe.Run(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a!", "tail!"}, stringResults(t, results)); diff != "" {
		t.Fatalf("end-hook output must pass through the downstream stage (-want +got):\n%s", diff)
	}
}

func TestPipeline_BindingFailureIsIsolatedMidStream(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	require.NoError(t, reg.Register(&command.RegisteredCommand{
		New: func() any {
			return &testutil.HookCommand{
				OnProcess: func(ctx context.Context, inv *command.Invocation) error {
					got, _ := inv.Args.Value("size")
					inv.WriteObject(got)
					return nil
				},
			}
		},
		Metadata: &metadata.CommandMetadata{
			Name: "sizes",
			Parameters: []*metadata.ParameterSpec{
				{
					Name: "size",
					Type: cty.Number,
					Sets: map[string]metadata.SetOverride{
						metadata.AllSets: {Position: metadata.PositionUnspecified, ValueFromPipelineByPropertyName: true},
					},
				},
			},
		},
	}))

	errSink := &testutil.CollectingErrorSink{}
	execCtx := execctx.New(errSink)
	input := processor.NewSliceReader([]cty.Value{
		cty.ObjectVal(map[string]cty.Value{"size": cty.NumberIntVal(1)}),
		cty.StringVal("unbindable"),
		cty.ObjectVal(map[string]cty.Value{"size": cty.NumberIntVal(3)}),
	})
	pipe, err := Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{}, input, []StageSpec{
		{Command: "sizes"},
	})
	require.NoError(t, err)

	results, err := pipe.Run(ctx)
	require.NoError(t, err)

	require.Len(t, results, 2, "records around the failure must still process")
	require.Len(t, errSink.Faults, 1)
	assert.Equal(t, fault.Binding, errSink.Faults[0].Kind)
	require.True(t, cty.StringVal("unbindable").RawEquals(errSink.Faults[0].Target),
		"the fault must carry the offending record")
}

func TestPipeline_StopAbortsBeforeNextRecord(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	var pipe *Pipeline
	require.NoError(t, reg.Register(&command.RegisteredCommand{
		New: func() any {
			return &testutil.HookCommand{
				OnProcess: func(ctx context.Context, inv *command.Invocation) error {
					// Request cancellation from inside the first record.
					pipe.Stop()
					inv.WriteObject(cty.StringVal(inv.Args.String("input", "")))
					return nil
				},
			}
		},
		Metadata: forwarderMeta("selfstop"),
	}))

	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	input := processor.NewSliceReader([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})
	var err error
	pipe, err = Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{}, input, []StageSpec{
		{Command: "selfstop"},
	})
	require.NoError(t, err)

	results, err := pipe.Run(ctx)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.PipelineStopped))
	assert.Equal(t, []string{"a"}, stringResults(t, results), "output emitted before the stop stays emitted")
}

func TestPipeline_EndHookRunsAfterTerminalStop(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	ends := 0
	var pipe *Pipeline
	require.NoError(t, reg.Register(&command.RegisteredCommand{
		New: func() any {
			return &testutil.HookCommand{
				OnProcess: func(ctx context.Context, inv *command.Invocation) error {
					pipe.Stop()
					inv.WriteObject(cty.StringVal(inv.Args.String("input", "")))
					return nil
				},
				OnEnd: func(ctx context.Context, inv *command.Invocation) error {
					ends++
					return nil
				},
			}
		},
		Metadata: forwarderMeta("stopender"),
	}))

	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	input := processor.NewSliceReader([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})
	var err error
	pipe, err = Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{}, input, []StageSpec{
		{Command: "stopender"},
	})
	require.NoError(t, err)

	results, err := pipe.Run(ctx)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.PipelineStopped))
	assert.Equal(t, 1, ends, "the end hook still runs exactly once after a stop")
	assert.Equal(t, []string{"a"}, stringResults(t, results))
}

func TestPipeline_StageSelectsNamedParameterSet(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	meta := &metadata.CommandMetadata{
		Name:                "dual",
		DefaultParameterSet: "byname",
		Parameters: []*metadata.ParameterSpec{
			{
				Name: "name",
				Type: cty.String,
				Sets: map[string]metadata.SetOverride{"byname": {Position: 0}},
			},
			{
				Name: "id",
				Type: cty.Number,
				Sets: map[string]metadata.SetOverride{"byid": {Position: 0}},
			},
		},
	}
	reg := command.NewRegistry()
	require.NoError(t, reg.Register(&command.RegisteredCommand{
		New: func() any {
			return &testutil.HookCommand{
				OnProcess: func(ctx context.Context, inv *command.Invocation) error {
					v, ok := inv.Args.Value("id")
					require.True(t, ok, "the byid set must be active")
					inv.WriteObject(v)
					return nil
				},
			}
		},
		Metadata: meta,
	}))

	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	pipe, err := Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{},
		processor.NewSliceReader(nil), []StageSpec{
			{Command: "dual", Set: "byid", Args: []binder.Argument{{Value: cty.StringVal("7")}}},
		})
	require.NoError(t, err)

	results, err := pipe.Run(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, cty.NumberIntVal(7).RawEquals(results[0]))
}

func TestPipeline_UnknownParameterSetFailsBuild(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	registerForwarder(t, reg, "suffixer", nil)

	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	_, err := Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{},
		processor.NewSliceReader(nil), []StageSpec{
			{Command: "suffixer", Set: "nosuch"},
		})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Construction))
	assert.Contains(t, err.Error(), "nosuch")
}

func TestPipeline_UnknownCommandFailsBuild(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	_, err := Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{},
		processor.NewSliceReader(nil), []StageSpec{{Command: "ghost"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestPipeline_CommandLineBindingFaultSurfacesAtBuild(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	reg := command.NewRegistry()
	registerForwarder(t, reg, "suffixer", nil)

	execCtx := execctx.New(&testutil.CollectingErrorSink{})
	_, err := Build(ctx, reg, execCtx, &testutil.CollectingWarningSink{},
		processor.NewSliceReader(nil), []StageSpec{
			{Command: "suffixer", Args: []binder.Argument{{Name: "nosuch", Value: cty.StringVal("x")}}},
		})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Binding))
}
