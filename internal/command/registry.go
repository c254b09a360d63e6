package command

import (
	"fmt"
	"log/slog"

	"github.com/PowerShell/PowerShell-sub006/internal/execctx"
	"github.com/PowerShell/PowerShell-sub006/internal/fault"
	"github.com/PowerShell/PowerShell-sub006/internal/metadata"
)

// RegisteredCommand holds the compiled Go parts of one command: its
// construction closure, its declared parameter metadata, and its binding
// characteristics.
type RegisteredCommand struct {
	// New constructs a fresh command instance. One instance is created per
	// pipeline stage and never shared or cached across invocations.
	New func() any

	// Metadata is the command's parameter declaration.
	Metadata *metadata.CommandMetadata

	// ScriptCmdlet marks compiled/script-cmdlet binding semantics, which
	// tighten parts of the coercion chain.
	ScriptCmdlet bool

	// LanguageMode, when set, is the mode the command's own binding and
	// default evaluation must run under, regardless of the ambient mode.
	LanguageMode *execctx.LanguageMode
}

// Module is the interface built-in command packages implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry maps command names to validated, memoized construction
// closures for a single application instance.
type Registry struct {
	commands map[string]*Resolved
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Resolved)}
}

// Register validates and stores a command under its metadata name. The
// capability check runs here, once, so a capability mismatch is reported
// at registration instead of surfacing as a runtime type inspection
// failure. Registering the same name twice is a programmer error.
func (r *Registry) Register(rc *RegisteredCommand) error {
	if rc.Metadata == nil {
		return fmt.Errorf("registered command has no metadata")
	}
	name := rc.Metadata.Name
	if _, exists := r.commands[name]; exists {
		panic(fmt.Sprintf("command with name '%s' already registered", name))
	}
	if rc.New == nil {
		return fmt.Errorf("command '%s': no construction function", name)
	}
	if err := rc.Metadata.Validate(); err != nil {
		return err
	}

	// Explicit capability check: probe one instance and verify the
	// contract. This classifies "wrong type" apart from "constructor
	// failed" once and for all.
	probe := rc.New()
	if _, ok := probe.(Command); !ok {
		return fmt.Errorf("command '%s': constructed type %T does not implement the command contract", name, probe)
	}

	construct := func() (Command, error) {
		instance, err := invokeConstructor(name, rc.New)
		if err != nil {
			return nil, err
		}
		return instance, nil
	}

	slog.Debug("Registering command.", "name", name)
	r.commands[name] = &Resolved{
		Name:         name,
		Metadata:     rc.Metadata,
		ScriptCmdlet: rc.ScriptCmdlet,
		LanguageMode: rc.LanguageMode,
		construct:    construct,
	}
	return nil
}

// invokeConstructor runs the construction function, converting a panic
// into a classified constructor-exception error.
func invokeConstructor(name string, newFn func() any) (instance Command, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("constructor of command '%s' failed: %v", name, rec)
		}
	}()
	built := newFn()
	cmd, ok := built.(Command)
	if !ok {
		// The registration-time probe makes this unreachable for sane
		// constructors; guard against ones that change their return type.
		return nil, fmt.Errorf("constructor of command '%s' returned %T, which does not implement the command contract", name, built)
	}
	return cmd, nil
}

// Resolve looks a command up by name. The result is the collaborator the
// lifecycle driver is built around.
func (r *Registry) Resolve(name string) (*Resolved, error) {
	res, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("no command registered with name '%s'", name)
	}
	return res, nil
}

// Names returns every registered command name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	return names
}

// Resolved is a command resolved by name: the memoized construction
// closure plus the metadata the binder consults.
type Resolved struct {
	Name         string
	Metadata     *metadata.CommandMetadata
	ScriptCmdlet bool
	LanguageMode *execctx.LanguageMode

	construct func() (Command, error)
}

// NewInstance constructs a fresh command instance, surfacing any failure
// as a construction fault.
func (res *Resolved) NewInstance() (Command, error) {
	instance, err := res.construct()
	if err != nil {
		return nil, fault.NewConstruction(fault.InvocationInfo{Command: res.Name}, err)
	}
	return instance, nil
}
