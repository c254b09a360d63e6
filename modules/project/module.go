// Package project provides the 'project' built-in: for each pipeline
// record it emits a new object holding only the named properties, plus a
// summary record at the end of the stream.
package project

import (
	"context"
	"fmt"

	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/internal/metadata"
	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the command.Module interface for this package.
type Module struct{}

// Project is one instance of the project command.
type Project struct {
	seen int
}

// Metadata declares the project parameters.
func Metadata() *metadata.CommandMetadata {
	return &metadata.CommandMetadata{
		Name: "project",
		Parameters: []*metadata.ParameterSpec{
			{
				Name: "input",
				Type: cty.DynamicPseudoType,
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {
						Mandatory:         true,
						Position:          metadata.PositionUnspecified,
						ValueFromPipeline: true,
					},
				},
			},
			{
				Name:       "property",
				Type:       cty.List(cty.String),
				Aliases:    []string{"prop"},
				Attributes: []metadata.Attribute{metadata.ValidateNotNull{}},
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {
						Mandatory:                   true,
						Position:                    0,
						ValueFromRemainingArguments: true,
					},
				},
			},
			{
				Name: "strict",
				Type: object.FlagType,
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {Position: metadata.PositionUnspecified},
				},
			},
		},
	}
}

// BeginProcessing implements command.Command.
func (c *Project) BeginProcessing(ctx context.Context, inv *command.Invocation) error {
	return nil
}

// ProcessRecord implements command.Command.
func (c *Project) ProcessRecord(ctx context.Context, inv *command.Invocation) error {
	record, _ := inv.Args.Value("input")
	props, _ := inv.Args.Value("property")
	strict := inv.Args.Flag("strict")

	accessor, ok := object.AccessorFor(record)
	if !ok {
		if strict {
			return fmt.Errorf("input record of type %s has no properties",
				object.Unwrap(record).Type().FriendlyName())
		}
		return nil
	}

	out := make(map[string]cty.Value)
	for it := object.Unwrap(props).ElementIterator(); it.Next(); {
		_, name := it.Element()
		want := name.AsString()
		val, found := accessor.Property(want)
		if !found {
			if strict {
				return fmt.Errorf("input record has no property named '%s'", want)
			}
			continue
		}
		out[want] = object.Unwrap(val)
	}
	if len(out) == 0 {
		return nil
	}

	c.seen++
	inv.WriteObject(object.PropagateTrust(record, cty.ObjectVal(out)))
	return nil
}

// EndProcessing implements command.Ender.
func (c *Project) EndProcessing(ctx context.Context, inv *command.Invocation) error {
	inv.WriteWarning(fmt.Sprintf("project: emitted %d records", c.seen))
	return nil
}

// Register registers the command with the engine.
func (m *Module) Register(r *command.Registry) {
	err := r.Register(&command.RegisteredCommand{
		New:      func() any { return new(Project) },
		Metadata: Metadata(),
	})
	if err != nil {
		panic(err)
	}
}
