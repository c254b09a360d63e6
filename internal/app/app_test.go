package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PowerShell/PowerShell-sub006/internal/binder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestNewConfig_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})
	require.Error(t, err)

	_, err = NewConfig(Config{Stages: []Stage{{Command: ""}}})
	require.Error(t, err)

	config, err := NewConfig(Config{Stages: []Stage{{Command: "echo"}}})
	require.NoError(t, err)
	assert.Len(t, config.Stages, 1)
}

func TestApp_RunsEchoPipeline(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{
		Stages: []Stage{{
			Command: "echo",
			Args:    []binder.Argument{{Name: "prefix", Value: cty.StringVal(">> ")}},
		}},
		Input:    []string{"one", "two"},
		LogLevel: "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	a := NewApp(&out, config)
	require.NoError(t, a.Run(context.Background(), config))

	assert.Equal(t, ">> one\n>> two\n", out.String())
}

func TestApp_TwoStagePipeline(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{
		Stages: []Stage{
			{Command: "echo"},
			{Command: "project", Args: []binder.Argument{{Value: cty.StringVal("name")}}},
		},
		Input:    []string{"scalar records do not project"},
		LogLevel: "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	a := NewApp(&out, config)
	require.NoError(t, a.Run(context.Background(), config))

	// Scalar records have no properties, so nothing is emitted; the end
	// summary warning still fires.
	assert.Contains(t, out.String(), "WARNING: project: emitted 0 records")
}

func TestApp_DefaultsFileFeedsBinding(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "defaults.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
		defaults "echo" {
			prefix = "cfg: "
		}
	`), 0o600))

	config, err := NewConfig(Config{
		Stages:       []Stage{{Command: "echo"}},
		Input:        []string{"hello"},
		DefaultsPath: path,
		LogLevel:     "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	a := NewApp(&out, config)
	require.NoError(t, a.Run(context.Background(), config))
	assert.Equal(t, "cfg: hello\n", out.String())
}

func TestApp_BadDefaultsFilePanics(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{
		Stages:       []Stage{{Command: "echo"}},
		DefaultsPath: filepath.Join(t.TempDir(), "missing.hcl"),
		LogLevel:     "error",
	})
	require.NoError(t, err)

	assert.Panics(t, func() { NewApp(&bytes.Buffer{}, config) })
}

func TestApp_UnknownCommandFailsRun(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{
		Stages:   []Stage{{Command: "nosuchcmd"}},
		LogLevel: "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	a := NewApp(&out, config)
	err = a.Run(context.Background(), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nosuchcmd")
}

func TestApp_ScalarRecordBindsByValue(t *testing.T) {
	t.Parallel()

	config, err := NewConfig(Config{
		Stages: []Stage{{
			Command: "project",
			Args:    []binder.Argument{{Value: cty.StringVal("name")}},
		}},
		Input:    []string{"plain string"},
		LogLevel: "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	a := NewApp(&out, config)
	require.NoError(t, a.Run(context.Background(), config))
	assert.NotContains(t, out.String(), "ERROR:", "a scalar still binds project's by-value input")
}

func TestNewLogger_LevelsAndFormats(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger := newLogger("debug", "text", &out)
	logger.Debug("visible")
	assert.Contains(t, out.String(), "visible")

	out.Reset()
	logger = newLogger("warn", "json", &out)
	logger.Info("hidden")
	assert.Empty(t, out.String())
	logger.Warn("shown")
	assert.Contains(t, out.String(), `"shown"`)
	assert.True(t, strings.HasPrefix(out.String(), "{"), "json format emits objects")
}
