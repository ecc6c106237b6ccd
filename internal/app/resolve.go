package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/adapters"
	"rewin/internal/core"
	"rewin/internal/policies"
	"rewin/internal/types"
)

// StartResolve runs the manual download resolver over the package's
// software as a task. The task result is a *ResolveResult.
func (s Service) StartResolve(ctx context.Context, req ResolveRequest) (*Task, error) {
	packageDir, err := s.packageDir(req.PackageDir)
	if err != nil {
		return nil, err
	}
	pkg, err := s.PackageReader.ReadPackage(packageDir)
	if err != nil {
		return nil, err
	}
	software := resolverSoftware(pkg.Software, req.ManualOnly)

	task := s.Tasks.Start(ctx, TaskResolve, packageDir, func(ctx context.Context, task *Task) (any, error) {
		sink := s.operationLog(filepath.Join(packageDir, adapters.ResolverLogFile), task)
		sink.Append(fmt.Sprintf("Searching download links for %d programs...", len(software)))
		invocation, cleanup, err := s.Resolver.PrepareResolve(packageDir, software)
		if err != nil {
			sink.Append("ERROR: " + err.Error())
			return nil, err
		}
		defer cleanup()

		result := &ResolveResult{ReportPath: invocation.ReportPath}
		exitCode, err := s.Runner.Run(ctx, invocation.Spec, sink.Append)
		result.ExitCode = exitCode
		if err != nil {
			sink.Append("ERROR: resolver failed to start: " + err.Error())
			return result, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("resolver failed to run").
				WithCause(err)
		}
		if exitCode != 0 {
			sink.Append(fmt.Sprintf("ERROR: resolver exited with code %d", exitCode))
			return result, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("resolver exited with code %d", exitCode))
		}

		text, found, err := s.Resolver.ReadReport(invocation.ReportPath)
		if err != nil {
			return result, err
		}
		if !found {
			sink.Append("Resolver produced no report.")
		}
		result.Report = SelectDownloadable(core.NewReportParser().Parse(text))
		sink.Append(fmt.Sprintf("Found %d download links.", len(result.Report.URLs)))
		sink.Append("Manual download search complete.")
		log.Ctx(ctx).Info().
			Int("items", result.Report.ItemCount).
			Int("urls", len(result.Report.URLs)).
			Msg("manual download search complete")
		return result, nil
	})
	return task, nil
}

// resolverSoftware returns the entries handed to the resolver. With
// manualOnly set, entries a package manager can install are left out.
func resolverSoftware(entries []types.SoftwareEntry, manualOnly bool) []types.SoftwareEntry {
	out := make([]types.SoftwareEntry, 0, len(entries))
	policy := policies.NewBackendPolicy()
	for _, entry := range entries {
		if manualOnly && policy.Classify(entry) != types.InstallMethodManual {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// SelectDownloadable marks every Direct candidate selected.
func SelectDownloadable(report types.ResolverReport) types.ResolverReport {
	for idx := range report.Candidates {
		report.Candidates[idx].Selected = report.Candidates[idx].Classification == types.CandidateDirect
	}
	return report
}
