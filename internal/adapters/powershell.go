package adapters

import (
	"strings"

	"rewin/internal/ports"
	"rewin/internal/types"
)

const defaultShell = "powershell.exe"

// PowerShellAdapter builds the command line used for every script the
// restore side runs.
type PowerShellAdapter struct {
	Shell string
}

func NewPowerShellAdapter(shell string) PowerShellAdapter {
	if strings.TrimSpace(shell) == "" {
		shell = defaultShell
	}
	return PowerShellAdapter{Shell: shell}
}

func (a PowerShellAdapter) ScriptCommand(scriptPath string, dir string) types.ProcessSpec {
	shell := a.Shell
	if shell == "" {
		shell = defaultShell
	}
	return types.ProcessSpec{
		Program: shell,
		Args:    []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-File", scriptPath},
		Dir:     dir,
	}
}

var _ ports.ScriptCommandPort = PowerShellAdapter{}
