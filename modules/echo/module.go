// Package echo provides the 'echo' built-in: it forwards pipeline records
// downstream unchanged, optionally prefixing string records.
package echo

import (
	"context"

	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/internal/metadata"
	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the command.Module interface for this package.
type Module struct{}

// Echo is one instance of the echo command.
type Echo struct{}

// Metadata declares the echo parameters.
func Metadata() *metadata.CommandMetadata {
	return &metadata.CommandMetadata{
		Name: "echo",
		Parameters: []*metadata.ParameterSpec{
			{
				Name: "input",
				Type: cty.DynamicPseudoType,
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {
						Position:          0,
						ValueFromPipeline: true,
					},
				},
			},
			{
				Name:    "prefix",
				Type:    cty.String,
				Aliases: []string{"p"},
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {Position: metadata.PositionUnspecified},
				},
			},
		},
	}
}

// BeginProcessing implements command.Command.
func (c *Echo) BeginProcessing(ctx context.Context, inv *command.Invocation) error {
	return nil
}

// ProcessRecord implements command.Command.
func (c *Echo) ProcessRecord(ctx context.Context, inv *command.Invocation) error {
	val, ok := inv.Args.Value("input")
	if !ok {
		return nil
	}
	if prefix := inv.Args.String("prefix", ""); prefix != "" {
		bare := object.Unwrap(val)
		if !bare.IsNull() && bare.Type().Equals(cty.String) {
			val = object.PropagateTrust(val, cty.StringVal(prefix+bare.AsString()))
		}
	}
	inv.WriteObject(val)
	return nil
}

// Register registers the command with the engine.
func (m *Module) Register(r *command.Registry) {
	err := r.Register(&command.RegisteredCommand{
		New:      func() any { return new(Echo) },
		Metadata: Metadata(),
	})
	if err != nil {
		panic(err)
	}
}
