package metadata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ParameterDescriptor is the effective view of one parameter within one
// parameter set. Immutable once derived; many descriptors may share a
// parameter name across different sets with different flags.
type ParameterDescriptor struct {
	Name                            string
	Type                            cty.Type
	Mandatory                       bool
	Dynamic                         bool
	Position                        int
	ValueFromPipeline               bool
	ValueFromPipelineByPropertyName bool
	ValueFromRemainingArguments     bool
	Aliases                         []string
	HelpMessage                     string
	Obsolete                        *ObsoleteInfo

	attributes []Attribute
}

// Attributes returns the operational attribute list consulted by the
// coercion chain and validators.
func (d *ParameterDescriptor) Attributes() []Attribute {
	return d.attributes
}

// DisplayAttributes returns a read-only copy of the attribute list for
// display and help rendering. It is a distinct slice so display code can
// never influence binding behavior.
func (d *ParameterDescriptor) DisplayAttributes() []Attribute {
	return append([]Attribute(nil), d.attributes...)
}

// Matches reports whether nameOrAlias refers to this parameter,
// case-insensitively, by declared name or any alias.
func (d *ParameterDescriptor) Matches(nameOrAlias string) bool {
	if strings.EqualFold(d.Name, nameOrAlias) {
		return true
	}
	for _, alias := range d.Aliases {
		if strings.EqualFold(alias, nameOrAlias) {
			return true
		}
	}
	return false
}

// SetView is the derived, per-set view the binder works against. Static
// descriptors are present from derivation; dynamic ones are added at bind
// time and are not available for introspection before that.
type SetView struct {
	Command string
	Set     string

	descriptors []*ParameterDescriptor
	byName      map[string]*ParameterDescriptor
}

// add registers a descriptor under its name and aliases.
func (v *SetView) add(d *ParameterDescriptor) error {
	for _, name := range append([]string{d.Name}, d.Aliases...) {
		key := strings.ToLower(name)
		if prior, dup := v.byName[key]; dup {
			return fmt.Errorf("command '%s': name or alias '%s' already belongs to parameter '%s' in set '%s'",
				v.Command, name, prior.Name, v.Set)
		}
		v.byName[key] = d
	}
	v.descriptors = append(v.descriptors, d)
	return nil
}

// AddDynamic registers a dynamically discovered descriptor. Dynamic
// descriptors join the view at bind time with the Dynamic flag forced on.
func (v *SetView) AddDynamic(d *ParameterDescriptor) error {
	d.Dynamic = true
	return v.add(d)
}

// Descriptors returns every descriptor in the view, static before dynamic,
// in declaration order.
func (v *SetView) Descriptors() []*ParameterDescriptor {
	return v.descriptors
}

// Lookup resolves a name or alias case-insensitively.
func (v *SetView) Lookup(nameOrAlias string) (*ParameterDescriptor, bool) {
	d, ok := v.byName[strings.ToLower(nameOrAlias)]
	return d, ok
}

// Positional returns the positionally bindable descriptors ordered by
// position.
func (v *SetView) Positional() []*ParameterDescriptor {
	var out []*ParameterDescriptor
	for _, d := range v.descriptors {
		if d.Position != PositionUnspecified {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// ByValue returns descriptors that bind the whole pipeline record.
func (v *SetView) ByValue() []*ParameterDescriptor {
	var out []*ParameterDescriptor
	for _, d := range v.descriptors {
		if d.ValueFromPipeline {
			out = append(out, d)
		}
	}
	return out
}

// ByPropertyName returns descriptors that bind a record property.
func (v *SetView) ByPropertyName() []*ParameterDescriptor {
	var out []*ParameterDescriptor
	for _, d := range v.descriptors {
		if d.ValueFromPipelineByPropertyName {
			out = append(out, d)
		}
	}
	return out
}

// Remaining returns the single descriptor absorbing remaining arguments,
// if the set declares one.
func (v *SetView) Remaining() (*ParameterDescriptor, bool) {
	for _, d := range v.descriptors {
		if d.ValueFromRemainingArguments {
			return d, true
		}
	}
	return nil, false
}

// Mandatory returns the mandatory descriptors of the set.
func (v *SetView) Mandatory() []*ParameterDescriptor {
	var out []*ParameterDescriptor
	for _, d := range v.descriptors {
		if d.Mandatory {
			out = append(out, d)
		}
	}
	return out
}

// PipelineBindable reports whether any descriptor in the set can receive
// pipeline input at all. A command whose active set has none runs exactly
// once regardless of upstream content.
func (v *SetView) PipelineBindable() bool {
	for _, d := range v.descriptors {
		if d.ValueFromPipeline || d.ValueFromPipelineByPropertyName {
			return true
		}
	}
	return false
}
