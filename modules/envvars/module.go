// Package envvars provides the 'envvars' built-in: it emits the process
// environment as one record per variable. It declares no pipeline-bindable
// parameters, so it runs exactly once regardless of upstream content.
package envvars

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/internal/metadata"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the command.Module interface for this package.
type Module struct{}

// EnvVars is one instance of the envvars command.
type EnvVars struct{}

// Metadata declares the envvars parameters.
func Metadata() *metadata.CommandMetadata {
	return &metadata.CommandMetadata{
		Name: "envvars",
		Parameters: []*metadata.ParameterSpec{
			{
				Name: "prefix",
				Type: cty.String,
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {Position: 0},
				},
			},
		},
	}
}

// BeginProcessing implements command.Command.
func (c *EnvVars) BeginProcessing(ctx context.Context, inv *command.Invocation) error {
	return nil
}

// ProcessRecord implements command.Command.
func (c *EnvVars) ProcessRecord(ctx context.Context, inv *command.Invocation) error {
	prefix := inv.Args.String("prefix", "")

	environ := os.Environ()
	sort.Strings(environ)
	for _, entry := range environ {
		pair := strings.SplitN(entry, "=", 2)
		if len(pair) != 2 {
			continue
		}
		if prefix != "" && !strings.HasPrefix(pair[0], prefix) {
			continue
		}
		inv.WriteObject(cty.ObjectVal(map[string]cty.Value{
			"name":  cty.StringVal(pair[0]),
			"value": cty.StringVal(pair[1]),
		}))
	}
	return nil
}

// Register registers the command with the engine.
func (m *Module) Register(r *command.Registry) {
	err := r.Register(&command.RegisteredCommand{
		New:      func() any { return new(EnvVars) },
		Metadata: Metadata(),
	})
	if err != nil {
		panic(err)
	}
}
