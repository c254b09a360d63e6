package testutil

import (
	"context"

	"github.com/PowerShell/PowerShell-sub006/internal/command"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single command.
type SimpleModule struct {
	Command *command.RegisteredCommand
}

// Register implements the command.Module interface.
func (m *SimpleModule) Register(r *command.Registry) {
	if m.Command != nil {
		if err := r.Register(m.Command); err != nil {
			panic(err)
		}
	}
}

// HookCommand is a command fixture whose lifecycle hooks are plain
// function fields. Nil hooks succeed silently.
type HookCommand struct {
	OnBegin   func(ctx context.Context, inv *command.Invocation) error
	OnProcess func(ctx context.Context, inv *command.Invocation) error
	OnEnd     func(ctx context.Context, inv *command.Invocation) error
}

// BeginProcessing implements command.Command.
func (c *HookCommand) BeginProcessing(ctx context.Context, inv *command.Invocation) error {
	if c.OnBegin == nil {
		return nil
	}
	return c.OnBegin(ctx, inv)
}

// ProcessRecord implements command.Command.
func (c *HookCommand) ProcessRecord(ctx context.Context, inv *command.Invocation) error {
	if c.OnProcess == nil {
		return nil
	}
	return c.OnProcess(ctx, inv)
}

// EndProcessing implements command.Ender.
func (c *HookCommand) EndProcessing(ctx context.Context, inv *command.Invocation) error {
	if c.OnEnd == nil {
		return nil
	}
	return c.OnEnd(ctx, inv)
}
