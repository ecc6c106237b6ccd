package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/adapters"
	"rewin/internal/core"
	"rewin/internal/types"
)

// ErrRestoreFailed is the task error of a restore run that ended in the
// failed state.
var ErrRestoreFailed = errors.New("restore failed")

// StartRestore validates the package and runs its restore phases as a
// task. The task result is the run's *types.RestoreReport.
func (s Service) StartRestore(ctx context.Context, req RestoreRequest) (*Task, error) {
	packageDir, err := s.packageDir(req.PackageDir)
	if err != nil {
		return nil, err
	}
	for _, phase := range req.Phases {
		if _, ok := types.ParsePhase(string(phase)); !ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unknown restore phase: " + string(phase))
		}
	}
	plan := types.RestorePlan{PackageDir: packageDir, Phases: req.Phases, Options: req.Options}

	task := s.Tasks.Start(ctx, TaskRestore, packageDir, func(ctx context.Context, task *Task) (any, error) {
		orchestrator := core.RestoreOrchestrator{
			Runner:        s.Runner,
			Scripts:       s.ScriptLocator,
			Commands:      s.Commands,
			ConfigRestore: s.ConfigRestore,
			Sink:          s.operationLog(filepath.Join(packageDir, adapters.RestoreLogFile), task),
			Clock:         s.Clock,
			OnState:       task.SetState,
		}
		report, err := orchestrator.Run(ctx, plan)
		if err != nil {
			return &report, err
		}
		if report.State == types.RestoreStateFailed {
			return &report, ErrRestoreFailed
		}
		return &report, nil
	})
	log.Ctx(ctx).Debug().Str("task", task.ID).Str("package_dir", packageDir).Msg("restore started")
	return task, nil
}

// packageDir resolves a package file or directory to the directory and
// checks that it holds a readable migration package.
func (s Service) packageDir(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package directory is required")
	}
	if strings.EqualFold(filepath.Base(path), types.PackageFileName) {
		path = filepath.Dir(path)
	}
	if _, err := s.PackageReader.ReadPackage(path); err != nil {
		return "", err
	}
	return path, nil
}
