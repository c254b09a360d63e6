package app

import (
	"errors"
	"fmt"

	"github.com/PowerShell/PowerShell-sub006/internal/binder"
)

// Stage is one segment of the pipeline expression as the CLI parsed it:
// a command name and its raw command-line arguments.
type Stage struct {
	Command string
	Args    []binder.Argument
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Stages []Stage  // the pipeline expression, one entry per stage
	Input  []string // string records fed into the first stage

	DefaultsPath string // optional hcl defaults file
	LanguageMode string
	LogFormat    string
	LogLevel     string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Stages) == 0 {
		return nil, errors.New("at least one pipeline stage is required")
	}
	for i, st := range cfg.Stages {
		if st.Command == "" {
			return nil, fmt.Errorf("stage %d has no command name", i)
		}
	}
	return &cfg, nil
}
