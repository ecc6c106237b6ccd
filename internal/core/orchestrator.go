package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/ports"
	"rewin/internal/types"
)

const bannerRule = "=================================================="

// RestoreOrchestrator runs the restore phases of one package strictly in
// order: winget installs, chocolatey installs, configuration restore.
// Install phases are best effort; a failed phase is logged and the run
// moves on.
type RestoreOrchestrator struct {
	Runner        ports.ProcessRunnerPort
	Scripts       ports.ScriptLocatorPort
	Commands      ports.ScriptCommandPort
	ConfigRestore ports.ConfigRestorePort
	Sink          ports.LogSinkPort
	Clock         func() time.Time
	OnState       func(types.RestoreState)
}

func (o RestoreOrchestrator) Run(ctx context.Context, plan types.RestorePlan) (report types.RestoreReport, err error) {
	if strings.TrimSpace(plan.PackageDir) == "" {
		return types.RestoreReport{State: types.RestoreStateIdle}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package directory is required")
	}
	machine := newRestoreMachine(o.OnState)
	report = types.RestoreReport{State: machine.State(), StartedAt: o.now()}
	requested := requestedPhases(plan.Phases)

	defer func() {
		if recovered := recover(); recovered != nil {
			o.log(fmt.Sprintf("ERROR: restore aborted: %v", recovered))
			machine.Fail()
			report.State = machine.State()
			report.FinishedAt = o.now()
			err = errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("restore aborted").
				WithCause(fmt.Errorf("%v", recovered))
		}
	}()

	o.banner("PHASE 1: Installing Software")
	for _, backend := range types.Backends {
		if advanceErr := machine.Advance(backendState(backend)); advanceErr != nil {
			return o.finish(machine, report), advanceErr
		}
		phase := backendPhase(backend)
		if !requested[phase] {
			report.Phases = append(report.Phases, types.PhaseOutcome{Phase: phase, Status: types.PhaseStatusNotRun})
			continue
		}
		report.Phases = append(report.Phases, o.runBackend(ctx, plan.PackageDir, backend))
		if ctx.Err() != nil {
			return o.cancel(ctx, machine, report)
		}
	}

	o.banner("PHASE 2: Restoring Configuration")
	if advanceErr := machine.Advance(types.RestoreStateRestoringConfig); advanceErr != nil {
		return o.finish(machine, report), advanceErr
	}
	if requested[types.PhaseConfig] {
		report.Phases = append(report.Phases, o.runConfig(ctx, plan))
		if ctx.Err() != nil {
			return o.cancel(ctx, machine, report)
		}
	} else {
		report.Phases = append(report.Phases, types.PhaseOutcome{Phase: types.PhaseConfig, Status: types.PhaseStatusNotRun})
	}

	if allAttemptedFailed(report.Phases) {
		o.log("Restore failed: every phase that ran failed")
		machine.Fail()
	} else if advanceErr := machine.Advance(types.RestoreStateCompleted); advanceErr != nil {
		return o.finish(machine, report), advanceErr
	}
	report = o.finish(machine, report)
	log.Ctx(ctx).Info().
		Str("state", string(report.State)).
		Int("failed_phases", len(report.Failed())).
		Msg("restore finished")
	o.log(fmt.Sprintf("Restore %s", report.State))
	return report, nil
}

func (o RestoreOrchestrator) runBackend(ctx context.Context, packageDir string, backend types.Backend) types.PhaseOutcome {
	phase := backendPhase(backend)
	scriptPath, ok := o.Scripts.LocateScript(packageDir, backend)
	if !ok {
		o.log(fmt.Sprintf("%s phase skipped — no script", backendLabel(backend)))
		return types.PhaseOutcome{Phase: phase, Status: types.PhaseStatusSkipped}
	}
	o.log(fmt.Sprintf("Installing via %s...", backendLabel(backend)))
	spec := o.Commands.ScriptCommand(scriptPath, packageDir)
	return o.runProcess(ctx, phase, spec)
}

func (o RestoreOrchestrator) runConfig(ctx context.Context, plan types.RestorePlan) types.PhaseOutcome {
	o.log("Starting configuration restore...")
	spec, cleanup, err := o.ConfigRestore.PrepareConfigRestore(plan.PackageDir, plan.Options)
	if err != nil {
		return o.phaseFailed(ctx, &types.PhaseError{Phase: types.PhaseConfig, ExitCode: -1, Err: err})
	}
	if cleanup != nil {
		defer cleanup()
	}
	outcome := o.runProcess(ctx, types.PhaseConfig, spec)
	if outcome.Status == types.PhaseStatusSucceeded {
		o.log("Configuration restore complete!")
	}
	return outcome
}

func (o RestoreOrchestrator) runProcess(ctx context.Context, phase types.Phase, spec types.ProcessSpec) types.PhaseOutcome {
	log.Ctx(ctx).Debug().Str("phase", string(phase)).Str("command", spec.String()).Msg("starting phase process")
	exitCode, err := o.Runner.Run(ctx, spec, o.log)
	if err != nil {
		return o.phaseFailed(ctx, &types.PhaseError{Phase: phase, ExitCode: exitCode, Err: err})
	}
	if exitCode != 0 {
		return o.phaseFailed(ctx, &types.PhaseError{Phase: phase, ExitCode: exitCode})
	}
	log.Ctx(ctx).Debug().Str("phase", string(phase)).Msg("phase succeeded")
	return types.PhaseOutcome{Phase: phase, Status: types.PhaseStatusSucceeded}
}

func (o RestoreOrchestrator) phaseFailed(ctx context.Context, phaseErr *types.PhaseError) types.PhaseOutcome {
	o.log("ERROR: " + phaseErr.Error())
	log.Ctx(ctx).Warn().Err(phaseErr).Str("phase", string(phaseErr.Phase)).Msg("phase failed")
	return types.PhaseOutcome{
		Phase:    phaseErr.Phase,
		Status:   types.PhaseStatusFailed,
		ExitCode: phaseErr.ExitCode,
		Error:    phaseErr.Error(),
	}
}

func (o RestoreOrchestrator) cancel(ctx context.Context, machine *restoreMachine, report types.RestoreReport) (types.RestoreReport, error) {
	o.log("Restore canceled")
	machine.Fail()
	return o.finish(machine, report), errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("restore canceled").
		WithCause(ctx.Err())
}

func (o RestoreOrchestrator) finish(machine *restoreMachine, report types.RestoreReport) types.RestoreReport {
	report.State = machine.State()
	report.FinishedAt = o.now()
	return report
}

func (o RestoreOrchestrator) banner(title string) {
	o.log(bannerRule)
	o.log(title)
	o.log(bannerRule)
}

func (o RestoreOrchestrator) log(line string) {
	if o.Sink != nil {
		o.Sink.Append(line)
	}
}

func (o RestoreOrchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

func requestedPhases(phases []types.Phase) map[types.Phase]bool {
	requested := map[types.Phase]bool{}
	if len(phases) == 0 {
		for _, phase := range types.Phases {
			requested[phase] = true
		}
		return requested
	}
	for _, phase := range phases {
		requested[phase] = true
	}
	return requested
}

func allAttemptedFailed(outcomes []types.PhaseOutcome) bool {
	attempted := 0
	failed := 0
	for _, outcome := range outcomes {
		switch outcome.Status {
		case types.PhaseStatusSucceeded:
			attempted++
		case types.PhaseStatusFailed:
			attempted++
			failed++
		}
	}
	return attempted > 0 && failed == attempted
}

func backendLabel(backend types.Backend) string {
	switch backend {
	case types.BackendWinget:
		return "Winget"
	case types.BackendChocolatey:
		return "Chocolatey"
	default:
		return string(backend)
	}
}
