package defaults

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeDefaults(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defaults.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_GlobalAndScopedEntries(t *testing.T) {
	t.Parallel()

	path := writeDefaults(t, `
		prefix = ">> "

		defaults "webrequest" {
			method  = "GET"
			timeout = 30
		}
	`)
	table, err := Load(context.Background(), path)
	require.NoError(t, err)

	web := table.For("webrequest")
	require.True(t, cty.StringVal(">> ").RawEquals(web["prefix"]), "global entries apply everywhere")
	require.True(t, cty.StringVal("GET").RawEquals(web["method"]))
	require.True(t, cty.NumberIntVal(30).RawEquals(web["timeout"]))

	other := table.For("echo")
	assert.Len(t, other, 1)
	require.True(t, cty.StringVal(">> ").RawEquals(other["prefix"]))
}

func TestLoad_ScopedEntryWinsOverGlobal(t *testing.T) {
	t.Parallel()

	path := writeDefaults(t, `
		prefix = "global"

		defaults "echo" {
			prefix = "scoped"
		}
	`)
	table, err := Load(context.Background(), path)
	require.NoError(t, err)

	require.True(t, cty.StringVal("scoped").RawEquals(table.For("echo")["prefix"]))
	require.True(t, cty.StringVal("global").RawEquals(table.For("other")["prefix"]))
}

func TestLoad_DuplicateCommandBlockFails(t *testing.T) {
	t.Parallel()

	path := writeDefaults(t, `
		defaults "echo" {}
		defaults "echo" {}
	`)
	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoad_NonLiteralValueFails(t *testing.T) {
	t.Parallel()

	path := writeDefaults(t, `
		prefix = some_variable
	`)
	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "literal")
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
}

func TestFor_NilTable(t *testing.T) {
	t.Parallel()

	var table *Table
	assert.Nil(t, table.For("anything"))
}

func TestFor_EmptyResultIsNil(t *testing.T) {
	t.Parallel()

	path := writeDefaults(t, `
		defaults "echo" {
			prefix = "p"
		}
	`)
	table, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, table.For("unrelated"))
}
