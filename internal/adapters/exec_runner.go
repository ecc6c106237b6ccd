package adapters

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"

	"rewin/internal/ports"
	"rewin/internal/shared"
	"rewin/internal/types"
)

const (
	maxOutputLine = 1024 * 1024
	killWaitDelay = 5 * time.Second
)

// ExecRunnerAdapter runs a process with stdout and stderr merged and
// forwards each non-blank line as soon as it is read. Canceling ctx kills
// the whole process tree, since scripts spawn installers of their own.
type ExecRunnerAdapter struct{}

func NewExecRunnerAdapter() ExecRunnerAdapter {
	return ExecRunnerAdapter{}
}

func (a ExecRunnerAdapter) Run(ctx context.Context, spec types.ProcessSpec, onLine func(string)) (int, error) {
	if strings.TrimSpace(spec.Program) == "" {
		return -1, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("process program is empty")
	}
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = spec.Dir
	configureProcAttr(cmd)
	cmd.Cancel = func() error {
		killProcessTree(ctx, int32(cmd.Process.Pid))
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = killWaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to attach process output").
			WithCause(err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return -1, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to start " + spec.Program).
			WithCause(err)
	}
	log.Ctx(ctx).Debug().Int("pid", cmd.Process.Pid).Str("command", spec.String()).Msg("process started")

	readErr := readLines(stdout, maxOutputLine, func(raw string) {
		line := strings.TrimSpace(shared.StripBOMString(raw))
		if line != "" && onLine != nil {
			onLine(line)
		}
	})
	if readErr != nil {
		log.Ctx(ctx).Warn().Err(readErr).Msg("process output read failed")
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return exitCode(cmd), ctx.Err()
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("process did not finish").
			WithCause(waitErr)
	}
	return 0, nil
}

// readLines hands every line of r to emit. A line longer than maxLine is
// split into maxLine-sized pieces, so output is always consumed and a
// chatty child never blocks on a full pipe.
func readLines(r io.Reader, maxLine int, emit func(string)) error {
	reader := bufio.NewReaderSize(r, min(maxLine, 64*1024))
	var line []byte
	for {
		part, isPrefix, err := reader.ReadLine()
		line = append(line, part...)
		if (err == nil && !isPrefix) || len(line) >= maxLine {
			emit(string(line))
			line = line[:0]
		}
		if err != nil {
			if len(line) > 0 {
				emit(string(line))
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

// killProcessTree kills the descendants of pid, deepest first. The root is
// left to the caller.
func killProcessTree(ctx context.Context, pid int32) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return
	}
	children, err := proc.Children()
	if err != nil {
		return
	}
	for _, child := range children {
		killProcessTree(ctx, child.Pid)
		if killErr := child.Kill(); killErr != nil {
			log.Ctx(ctx).Debug().Err(killErr).Int32("pid", child.Pid).Msg("failed to kill child process")
		}
	}
}

var _ ports.ProcessRunnerPort = ExecRunnerAdapter{}
