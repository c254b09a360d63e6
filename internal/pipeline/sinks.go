package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/fault"
)

// SlogErrorSink writes isolated faults through the context logger.
type SlogErrorSink struct{}

// WriteError implements execctx.ErrorSink.
func (SlogErrorSink) WriteError(ctx context.Context, f *fault.Fault) {
	ctxlog.FromContext(ctx).Error("Pipeline fault.",
		"kind", f.Kind.String(), "command", f.Invocation.Command, "error", f.Error())
}

// SlogWarningSink writes warnings through the context logger.
type SlogWarningSink struct{}

// WriteWarning implements execctx.WarningSink.
func (SlogWarningSink) WriteWarning(ctx context.Context, message string) {
	ctxlog.FromContext(ctx).Warn(message)
}

// WriterErrorSink renders isolated faults to a stream, one line each.
type WriterErrorSink struct {
	W io.Writer
}

// WriteError implements execctx.ErrorSink.
func (s WriterErrorSink) WriteError(ctx context.Context, f *fault.Fault) {
	fmt.Fprintf(s.W, "ERROR: %s\n", f.Error())
}

// WriterWarningSink renders warnings to a stream, one line each.
type WriterWarningSink struct {
	W io.Writer
}

// WriteWarning implements execctx.WarningSink.
func (s WriterWarningSink) WriteWarning(ctx context.Context, message string) {
	fmt.Fprintf(s.W, "WARNING: %s\n", message)
}
