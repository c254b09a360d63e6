package app

import (
	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/modules/echo"
	"github.com/PowerShell/PowerShell-sub006/modules/envvars"
	"github.com/PowerShell/PowerShell-sub006/modules/project"
	"github.com/PowerShell/PowerShell-sub006/modules/webrequest"
)

// coreModules is the default set of built-in commands registered when no
// explicit module list is supplied.
var coreModules = []command.Module{
	&echo.Module{},
	&envvars.Module{},
	&project.Module{},
	&webrequest.Module{},
}
