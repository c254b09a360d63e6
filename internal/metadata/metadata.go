package metadata

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// PositionUnspecified is the sentinel for parameters that never bind
// positionally.
const PositionUnspecified = math.MinInt32

// AllSets is the implicit parameter set a parameter belongs to when its
// declaration names no set explicitly.
const AllSets = "__AllParameterSets"

// SetOverride holds the flags of one parameter within one parameter set.
// The same parameter may carry different flags in different sets. Position
// must be PositionUnspecified for parameters that only bind by name;
// position zero is a real position.
type SetOverride struct {
	Mandatory                       bool
	Position                        int
	ValueFromPipeline               bool
	ValueFromPipelineByPropertyName bool
	ValueFromRemainingArguments     bool
}

// ParameterSpec is a parameter's set-independent declaration plus its
// per-set overrides.
type ParameterSpec struct {
	Name        string
	Type        cty.Type
	Aliases     []string
	HelpMessage string
	Obsolete    *ObsoleteInfo

	// Attributes is the operational attribute list consulted during
	// binding. The display copy is derived from it, never the other way
	// around.
	Attributes []Attribute

	// Sets maps parameter-set names to that set's flags. An empty or nil
	// map places the parameter in AllSets with zero-value flags and
	// PositionUnspecified.
	Sets map[string]SetOverride
}

// CommandMetadata is a command's full parameter declaration.
type CommandMetadata struct {
	Name                string
	DefaultParameterSet string
	Parameters          []*ParameterSpec
}

// Validate checks the declaration for internal consistency. It is run once
// at command registration, never during binding.
func (m *CommandMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("command metadata has no name")
	}

	sets := m.SetNames()
	for _, set := range sets {
		seen := make(map[string]string)
		positions := make(map[int]string)
		remaining := ""
		for _, spec := range m.Parameters {
			ov, in := spec.overrideFor(set)
			if !in {
				continue
			}
			for _, name := range append([]string{spec.Name}, spec.Aliases...) {
				key := strings.ToLower(name)
				if prior, dup := seen[key]; dup {
					return fmt.Errorf("command '%s': name or alias '%s' of parameter '%s' collides with parameter '%s' in set '%s'",
						m.Name, name, spec.Name, prior, set)
				}
				seen[key] = spec.Name
			}
			if ov.Position != PositionUnspecified {
				if prior, dup := positions[ov.Position]; dup {
					return fmt.Errorf("command '%s': parameters '%s' and '%s' share position %d in set '%s'",
						m.Name, prior, spec.Name, ov.Position, set)
				}
				positions[ov.Position] = spec.Name
			}
			if ov.ValueFromRemainingArguments {
				if remaining != "" {
					return fmt.Errorf("command '%s': parameters '%s' and '%s' both claim remaining arguments in set '%s'",
						m.Name, remaining, spec.Name, set)
				}
				remaining = spec.Name
			}
		}
	}

	if m.DefaultParameterSet != "" {
		found := false
		for _, set := range sets {
			if set == m.DefaultParameterSet {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("command '%s': default parameter set '%s' is not declared by any parameter",
				m.Name, m.DefaultParameterSet)
		}
	}
	return nil
}

// SetNames returns every parameter-set name the declaration mentions, in a
// stable order, always including AllSets.
func (m *CommandMetadata) SetNames() []string {
	seen := map[string]struct{}{AllSets: {}}
	names := []string{AllSets}
	for _, spec := range m.Parameters {
		for set := range spec.Sets {
			if _, ok := seen[set]; !ok {
				seen[set] = struct{}{}
				names = append(names, set)
			}
		}
	}
	// Keep AllSets first, the rest sorted for determinism.
	sort.Strings(names[1:])
	return names
}

// overrideFor resolves the flags spec carries in the given set. The second
// result is false when the parameter does not belong to the set at all.
func (s *ParameterSpec) overrideFor(set string) (SetOverride, bool) {
	if len(s.Sets) == 0 {
		return SetOverride{Position: PositionUnspecified}, true
	}
	if ov, ok := s.Sets[set]; ok {
		return ov, true
	}
	// A parameter declared in AllSets is visible from every named set.
	if ov, ok := s.Sets[AllSets]; ok && set != AllSets {
		return ov, true
	}
	return SetOverride{}, false
}

// ForSet derives the effective per-parameter view for the given selector.
// An empty selector resolves to the default set when declared, AllSets
// otherwise. An unknown selector is an error.
func (m *CommandMetadata) ForSet(set string) (*SetView, error) {
	if set == "" {
		set = m.DefaultParameterSet
	}
	if set == "" {
		set = AllSets
	}
	known := false
	for _, name := range m.SetNames() {
		if name == set {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("command '%s' has no parameter set named '%s'", m.Name, set)
	}

	view := &SetView{
		Command: m.Name,
		Set:     set,
		byName:  make(map[string]*ParameterDescriptor),
	}
	for _, spec := range m.Parameters {
		ov, in := spec.overrideFor(set)
		if !in {
			continue
		}
		desc := &ParameterDescriptor{
			Name:                            spec.Name,
			Type:                            spec.Type,
			Mandatory:                       ov.Mandatory,
			Position:                        ov.Position,
			ValueFromPipeline:               ov.ValueFromPipeline,
			ValueFromPipelineByPropertyName: ov.ValueFromPipelineByPropertyName,
			ValueFromRemainingArguments:     ov.ValueFromRemainingArguments,
			Aliases:                         append([]string(nil), spec.Aliases...),
			HelpMessage:                     spec.HelpMessage,
			Obsolete:                        spec.Obsolete,
			attributes:                      append([]Attribute(nil), spec.Attributes...),
		}
		if err := view.add(desc); err != nil {
			return nil, err
		}
	}
	return view, nil
}
