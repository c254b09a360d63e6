// Package defaults loads default parameter values from an HCL file.
//
// Top-level attributes apply to every command declaring that parameter;
// a `defaults "command" { ... }` block scopes its attributes to one
// command and wins over the global entries. Values must be literals: they
// are evaluated with a nil evaluation context, so no variables or
// functions are available.
package defaults

import (
	"context"
	"fmt"

	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// fileSchema is the HCL schema for a defaults file body.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "defaults", LabelNames: []string{"command"}},
	},
}

// Table holds the parsed defaults file.
type Table struct {
	global     map[string]cty.Value
	perCommand map[string]map[string]cty.Value
}

// Load parses and evaluates a defaults file.
func Load(ctx context.Context, path string) (*Table, error) {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse defaults file %s: %w", path, diags)
	}

	content, remain, diags := file.Body.PartialContent(fileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid defaults file %s: %w", path, diags)
	}

	table := &Table{
		global:     make(map[string]cty.Value),
		perCommand: make(map[string]map[string]cty.Value),
	}

	globalAttrs, diags := remain.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid defaults file %s: %w", path, diags)
	}
	for name, attr := range globalAttrs {
		val, err := literalValue(name, path, attr)
		if err != nil {
			return nil, err
		}
		table.global[name] = val
	}

	for _, block := range content.Blocks {
		commandName := block.Labels[0]
		if _, dup := table.perCommand[commandName]; dup {
			return nil, fmt.Errorf("duplicate defaults block for command '%s' in %s", commandName, path)
		}
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid defaults block for command '%s' in %s: %w", commandName, path, diags)
		}
		scoped := make(map[string]cty.Value, len(attrs))
		for name, attr := range attrs {
			val, err := literalValue(name, path, attr)
			if err != nil {
				return nil, err
			}
			scoped[name] = val
		}
		table.perCommand[commandName] = scoped
	}

	logger.Debug("Defaults file loaded.", "path", path,
		"global_entries", len(table.global), "command_blocks", len(table.perCommand))
	return table, nil
}

// literalValue evaluates one attribute with a nil eval context, which
// restricts defaults to literal values.
func literalValue(name, path string, attr *hcl.Attribute) (cty.Value, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("default '%s' in %s must be a literal value: %w", name, path, diags)
	}
	return val, nil
}

// For selects the defaults applying to one command, parameter name to
// value. Command-scoped entries win over global ones.
func (t *Table) For(command string) map[string]cty.Value {
	if t == nil {
		return nil
	}
	out := make(map[string]cty.Value)
	for name, val := range t.global {
		out[name] = val
	}
	for name, val := range t.perCommand[command] {
		out[name] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
