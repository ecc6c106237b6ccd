package ports

import (
	"context"

	"rewin/internal/types"
)

// ProcessRunnerPort runs one external process, handing each line of its
// combined output to onLine as it arrives. The exit code is returned with a
// nil error when the process ran to completion.
type ProcessRunnerPort interface {
	Run(ctx context.Context, spec types.ProcessSpec, onLine func(string)) (int, error)
}

// ScriptCommandPort turns a script file into a runnable process spec.
type ScriptCommandPort interface {
	ScriptCommand(scriptPath string, dir string) types.ProcessSpec
}
