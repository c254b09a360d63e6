// Package testutil provides shared fixtures for engine tests: collecting
// sinks, configurable command fixtures and context helpers.
package testutil

import (
	"context"
	"io"
	"log/slog"

	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/fault"
)

// CollectingErrorSink records every isolated fault it receives, in order.
type CollectingErrorSink struct {
	Faults []*fault.Fault
}

// WriteError implements execctx.ErrorSink.
func (s *CollectingErrorSink) WriteError(ctx context.Context, f *fault.Fault) {
	s.Faults = append(s.Faults, f)
}

// CollectingWarningSink records every warning it receives, in order.
type CollectingWarningSink struct {
	Messages []string
}

// WriteWarning implements execctx.WarningSink.
func (s *CollectingWarningSink) WriteWarning(ctx context.Context, message string) {
	s.Messages = append(s.Messages, message)
}

// Context returns a background context carrying a discard logger, so test
// runs stay quiet without touching the global default.
func Context() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}
