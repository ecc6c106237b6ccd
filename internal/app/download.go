package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rewin/internal/adapters"
	"rewin/internal/core"
	"rewin/internal/types"
)

const defaultDownloadWorkers = 2

// StartDownload fetches the selected installers of the package's last
// resolver report into req.DestDir as a task. The task result is a
// *DownloadResult.
func (s Service) StartDownload(ctx context.Context, req DownloadRequest) (*Task, error) {
	packageDir, err := s.packageDir(req.PackageDir)
	if err != nil {
		return nil, err
	}
	destDir := strings.TrimSpace(req.DestDir)
	if destDir == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("destination directory is required")
	}
	if info, err := os.Stat(destDir); err != nil || !info.IsDir() {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("destination directory does not exist: " + destDir)
	}

	text, found, err := s.Resolver.ReadReport(filepath.Join(packageDir, adapters.ManualDownloadsReport))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no manual download report in " + packageDir + "; run resolve first")
	}
	report := core.NewReportParser().Parse(text)
	candidates := selectCandidates(report.Candidates, req.URLs)
	items := core.PlanDownloads(candidates)
	if len(items) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no downloadable links selected")
	}
	workers := req.Workers
	if workers <= 0 {
		workers = defaultDownloadWorkers
	}

	task := s.Tasks.Start(ctx, TaskDownload, packageDir, func(ctx context.Context, task *Task) (any, error) {
		sink := s.operationLog(filepath.Join(packageDir, adapters.ResolverLogFile), task)
		sink.Append(fmt.Sprintf("Downloading %d installers to %s", len(items), destDir))
		batch := core.DownloadBatch{Fetcher: s.Fetcher, Sink: sink, Workers: workers}
		result := summarizeDownloads(batch.Run(ctx, items, destDir))
		sink.Append(fmt.Sprintf("Download complete: %d downloaded, %d failed, %d skipped", result.Downloaded, result.Failed, result.Skipped))
		log.Ctx(ctx).Info().
			Int("downloaded", result.Downloaded).
			Int("failed", result.Failed).
			Msg("installer downloads finished")
		return result, ctx.Err()
	})
	return task, nil
}

// selectCandidates marks the candidates to fetch. An empty filter selects
// every Direct candidate; otherwise only Direct candidates whose URL is
// listed are selected.
func selectCandidates(candidates []types.ManualDownloadCandidate, urls []string) []types.ManualDownloadCandidate {
	wanted := map[string]struct{}{}
	for _, url := range urls {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			wanted[trimmed] = struct{}{}
		}
	}
	out := make([]types.ManualDownloadCandidate, len(candidates))
	for idx, candidate := range candidates {
		candidate.Selected = candidate.Classification == types.CandidateDirect
		if len(wanted) > 0 {
			_, ok := wanted[candidate.URL]
			candidate.Selected = candidate.Selected && ok
		}
		out[idx] = candidate
	}
	return out
}

func summarizeDownloads(outcomes []types.DownloadOutcome) *DownloadResult {
	result := &DownloadResult{Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case types.DownloadStatusDownloaded:
			result.Downloaded++
		case types.DownloadStatusFailed:
			result.Failed++
		case types.DownloadStatusSkipped:
			result.Skipped++
		}
	}
	return result
}
