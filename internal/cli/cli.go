package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PowerShell/PowerShell-sub006/internal/app"
	"github.com/PowerShell/PowerShell-sub006/internal/binder"
	"github.com/zclconf/go-cty/cty"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pshost", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
pshost - An object-pipeline command host.

Usage:
  pshost [options] COMMAND [-param value ...] [ "|" COMMAND ... ]

Arguments:
  COMMAND
    The name of a registered command. Stages are chained with a literal
    "|" argument; records emitted by one stage feed the next.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaultsFlag := flagSet.String("defaults", "", "Path to an HCL file with default parameter values.")
	inputFlag := flagSet.String("input", "", "Comma-separated string records fed into the first stage.")
	langModeFlag := flagSet.String("language-mode", "full", "Language mode for script commands. Options: 'full', 'constrained', or 'restricted'.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No pipeline expression provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	langMode := strings.ToLower(*langModeFlag)
	switch langMode {
	case "full", "constrained", "restricted":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid language-mode: must be 'full', 'constrained', or 'restricted'"}
	}
	slog.Debug("CLI parameter validation complete.")

	stages, err := SplitPipeline(flagSet.Args())
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Pipeline expression split into stages.", "count", len(stages))

	var input []string
	if *inputFlag != "" {
		input = strings.Split(*inputFlag, ",")
	}

	config, err := app.NewConfig(app.Config{
		Stages:       stages,
		Input:        input,
		DefaultsPath: *defaultsFlag,
		LanguageMode: langMode,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "stages", len(config.Stages))
	return config, false, nil
}

// SplitPipeline turns the positional arguments into one stage per "|"
// separated segment. Within a segment the first token names the command;
// a "-name" token introduces a named argument consuming the following
// token as its value unless that token is itself "-"-prefixed or absent,
// in which case the argument is presence-only. Every other token is
// positional.
func SplitPipeline(tokens []string) ([]app.Stage, error) {
	var stages []app.Stage
	var cur []string

	flush := func() error {
		if len(cur) == 0 {
			return fmt.Errorf("empty pipeline stage")
		}
		stage, err := parseStage(cur)
		if err != nil {
			return err
		}
		stages = append(stages, stage)
		cur = nil
		return nil
	}

	for _, tok := range tokens {
		if tok == "|" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		cur = append(cur, tok)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return stages, nil
}

func parseStage(tokens []string) (app.Stage, error) {
	name := tokens[0]
	if strings.HasPrefix(name, "-") {
		return app.Stage{}, fmt.Errorf("stage must start with a command name, got parameter '%s'", name)
	}

	var args []binder.Argument
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "-") {
			args = append(args, binder.Argument{Value: cty.StringVal(tok)})
			continue
		}
		arg := binder.Argument{Name: strings.TrimPrefix(tok, "-"), Value: cty.NilVal}
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
			arg.Value = cty.StringVal(tokens[i+1])
			i++
		}
		args = append(args, arg)
	}
	return app.Stage{Command: name, Args: args}, nil
}
