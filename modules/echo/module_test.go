package echo

import (
	"context"
	"testing"

	"github.com/PowerShell/PowerShell-sub006/internal/binder"
	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func bind(t *testing.T, args []binder.Argument, record cty.Value) *binder.BoundArguments {
	t.Helper()
	view, err := Metadata().ForSet("")
	require.NoError(t, err)
	c := binder.New(view, false)
	require.NoError(t, c.BindCommandLineParameters(context.Background(), args, nil))
	if record != cty.NilVal {
		require.True(t, c.BindPipelineParameters(context.Background(), record))
	}
	return c.Arguments()
}

func TestMetadata_IsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Metadata().Validate())
}

func TestProcessRecord_ForwardsUnchanged(t *testing.T) {
	t.Parallel()

	var got []cty.Value
	inv := &command.Invocation{
		Args:        bind(t, nil, cty.NumberIntVal(7)),
		WriteObject: func(v cty.Value) { got = append(got, v) },
	}
	require.NoError(t, (&Echo{}).ProcessRecord(context.Background(), inv))
	require.Len(t, got, 1)
	require.True(t, cty.NumberIntVal(7).RawEquals(got[0]))
}

func TestProcessRecord_PrefixesStrings(t *testing.T) {
	t.Parallel()

	var got []cty.Value
	inv := &command.Invocation{
		Args: bind(t,
			[]binder.Argument{{Name: "prefix", Value: cty.StringVal(">> ")}},
			cty.StringVal("hello")),
		WriteObject: func(v cty.Value) { got = append(got, v) },
	}
	require.NoError(t, (&Echo{}).ProcessRecord(context.Background(), inv))
	require.Len(t, got, 1)
	require.True(t, cty.StringVal(">> hello").RawEquals(got[0]))
}

func TestProcessRecord_PrefixLeavesNonStringsAlone(t *testing.T) {
	t.Parallel()

	var got []cty.Value
	inv := &command.Invocation{
		Args: bind(t,
			[]binder.Argument{{Name: "p", Value: cty.StringVal(">> ")}},
			cty.NumberIntVal(3)),
		WriteObject: func(v cty.Value) { got = append(got, v) },
	}
	require.NoError(t, (&Echo{}).ProcessRecord(context.Background(), inv))
	require.Len(t, got, 1)
	require.True(t, cty.NumberIntVal(3).RawEquals(got[0]), "a numeric record passes through unprefixed")
}

func TestRegister(t *testing.T) {
	t.Parallel()

	reg := command.NewRegistry()
	(&Module{}).Register(reg)
	_, err := reg.Resolve("echo")
	assert.NoError(t, err)
}
