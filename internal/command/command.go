// Package command defines the contract a resolved command implements and
// the registry that maps command names to validated construction closures.
//
// The registry is the boundary to command resolution: by the time a
// lifecycle driver is constructed, the command has already been resolved to
// a Resolved entry. Construction failures past that point surface as
// construction faults.
package command

import (
	"context"

	"github.com/PowerShell/PowerShell-sub006/internal/binder"
	"github.com/zclconf/go-cty/cty"
)

// Invocation is the surface a command hook talks to: its bound arguments
// for the current record and the stage's output and warning channels.
type Invocation struct {
	// Args is the bound-parameter table, fully rebuilt per record.
	Args *binder.BoundArguments

	// WriteObject emits one record to the downstream stage.
	WriteObject func(cty.Value)

	// WriteWarning emits a warning through the stage's warning sink,
	// subject to the ambient warning preference.
	WriteWarning func(string)
}

// Command is the lifecycle contract of a registered command. Begin runs
// exactly once, lazily, before the first record; Process runs once per
// bound record.
type Command interface {
	BeginProcessing(ctx context.Context, inv *Invocation) error
	ProcessRecord(ctx context.Context, inv *Invocation) error
}

// Ender is implemented by commands that need an end hook. The pipeline
// coordinator drives it after upstream is drained; the lifecycle driver
// itself never calls it.
type Ender interface {
	EndProcessing(ctx context.Context, inv *Invocation) error
}
