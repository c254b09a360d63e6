// Package webrequest provides the 'webrequest' built-in: it performs one
// HTTP request per bound record and emits the response as an object.
package webrequest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/metadata"
	"github.com/PowerShell/PowerShell-sub006/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the command.Module interface for this package.
type Module struct{}

// WebRequest is one instance of the webrequest command. The client is
// created in the begin hook and shared across records of this stage only.
type WebRequest struct {
	client *http.Client
}

// Metadata declares the webrequest parameters.
func Metadata() *metadata.CommandMetadata {
	return &metadata.CommandMetadata{
		Name: "webrequest",
		Parameters: []*metadata.ParameterSpec{
			{
				Name:    "uri",
				Type:    cty.String,
				Aliases: []string{"url"},
				Attributes: []metadata.Attribute{
					metadata.ValidateNotNull{},
				},
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {
						Mandatory:                       true,
						Position:                        0,
						ValueFromPipeline:               true,
						ValueFromPipelineByPropertyName: true,
					},
				},
			},
			{
				Name: "method",
				Type: cty.String,
				Attributes: []metadata.Attribute{
					metadata.ValidateSet{Allowed: []string{"GET", "HEAD"}},
				},
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {Position: metadata.PositionUnspecified},
				},
			},
			{
				Name: "timeout",
				Type: cty.Number,
				Attributes: []metadata.Attribute{
					metadata.ValidateRange{Min: 1, Max: 600},
				},
				Sets: map[string]metadata.SetOverride{
					metadata.AllSets: {Position: metadata.PositionUnspecified},
				},
			},
		},
	}
}

// BeginProcessing implements command.Command.
func (c *WebRequest) BeginProcessing(ctx context.Context, inv *command.Invocation) error {
	timeout := 30 * time.Second
	if val, ok := inv.Args.Value("timeout"); ok {
		secs, _ := object.Unwrap(val).AsBigFloat().Int64()
		timeout = time.Duration(secs) * time.Second
	}
	c.client = &http.Client{Timeout: timeout}
	return nil
}

// ProcessRecord implements command.Command.
func (c *WebRequest) ProcessRecord(ctx context.Context, inv *command.Invocation) error {
	uri := inv.Args.String("uri", "")
	method := inv.Args.String("method", http.MethodGet)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request.", "method", method, "uri", uri)

	req, err := http.NewRequestWithContext(ctx, method, uri, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for '%s': %w", uri, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to '%s' failed: %w", uri, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body from '%s': %w", uri, err)
	}
	logger.Info("Received HTTP response.", "status", resp.Status)

	inv.WriteObject(cty.ObjectVal(map[string]cty.Value{
		"uri":         cty.StringVal(uri),
		"status_code": cty.NumberIntVal(int64(resp.StatusCode)),
		"body":        cty.StringVal(string(body)),
	}))
	return nil
}

// Register registers the command with the engine.
func (m *Module) Register(r *command.Registry) {
	err := r.Register(&command.RegisteredCommand{
		New:      func() any { return new(WebRequest) },
		Metadata: Metadata(),
	})
	if err != nil {
		panic(err)
	}
}
