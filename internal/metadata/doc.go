// Package metadata holds the parameter-set descriptor model the binder
// consults.
//
// A command declares its parameters once, set-independently, with per-set
// overrides (CommandMetadata / ParameterSpec). ForSet derives the effective
// view for one parameter-set selector: each parameter's position, mandatory
// flag, the three pipeline-binding flags, help text and alias list
// (SetView / ParameterDescriptor). Statically declared parameters are
// distinguished from dynamic ones, which are only discovered at bind time.
package metadata
