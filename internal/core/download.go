package core

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"rewin/internal/policies"
	"rewin/internal/ports"
	"rewin/internal/types"
)

const defaultInstallerName = "installer.exe"

// DownloadItem is one planned fetch. Items with a PackageID are resolved by
// a package manager and are not fetched.
type DownloadItem struct {
	URL       string
	FileName  string
	PackageID string
}

// PlanDownloads keeps the selected Direct candidates and assigns each a
// file name that is unique within the batch.
func PlanDownloads(candidates []types.ManualDownloadCandidate) []DownloadItem {
	var items []DownloadItem
	used := map[string]int{}
	for _, candidate := range candidates {
		if !candidate.Selected || candidate.Classification != types.CandidateDirect {
			continue
		}
		if id, ok := policies.PackageManagerID(candidate.URL); ok {
			items = append(items, DownloadItem{URL: candidate.URL, PackageID: id})
			continue
		}
		items = append(items, DownloadItem{
			URL:      candidate.URL,
			FileName: uniqueFileName(InstallerFileName(candidate.URL), used),
		})
	}
	return items
}

// InstallerFileName derives a file name from the last path segment of a
// URL, ignoring query and fragment.
func InstallerFileName(rawURL string) string {
	trimmed := rawURL
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	name := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return defaultInstallerName
	}
	return name
}

func uniqueFileName(name string, used map[string]int) string {
	key := strings.ToLower(name)
	count := used[key]
	used[key] = count + 1
	if count == 0 {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for {
		count++
		candidate := fmt.Sprintf("%s-%d%s", base, count, ext)
		if used[strings.ToLower(candidate)] == 0 {
			used[strings.ToLower(candidate)] = 1
			return candidate
		}
	}
}

// DownloadBatch fetches planned items with up to Workers concurrent
// fetches. A failed item is recorded and logged; it never stops the batch.
// Outcomes keep the order of the planned items.
type DownloadBatch struct {
	Fetcher ports.FetcherPort
	Sink    ports.LogSinkPort
	Workers int
}

func (b DownloadBatch) Run(ctx context.Context, items []DownloadItem, destDir string) []types.DownloadOutcome {
	outcomes := make([]types.DownloadOutcome, len(items))
	workerCount := b.Workers
	if workerCount <= 0 {
		workerCount = 1
	}
	sem := make(chan struct{}, workerCount)
	var wg sync.WaitGroup
	for idx, item := range items {
		if item.PackageID != "" {
			b.log(fmt.Sprintf("Installer found via Winget: %s", item.PackageID))
			b.log("  Note: install it with the winget restore phase.")
			outcomes[idx] = types.DownloadOutcome{URL: item.URL, Status: types.DownloadStatusSkipped, Reason: "resolved by winget"}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[idx] = b.fetch(ctx, idx, len(items), item, destDir)
		}()
	}
	wg.Wait()
	return outcomes
}

func (b DownloadBatch) fetch(ctx context.Context, idx int, total int, item DownloadItem, destDir string) types.DownloadOutcome {
	if ctx.Err() != nil {
		return types.DownloadOutcome{URL: item.URL, FileName: item.FileName, Status: types.DownloadStatusFailed, Reason: ctx.Err().Error()}
	}
	dest := filepath.Join(destDir, item.FileName)
	b.log(fmt.Sprintf("Downloading (%d/%d): %s", idx+1, total, item.FileName))
	written, err := b.Fetcher.Fetch(ctx, item.URL, dest)
	if err != nil {
		itemErr := &types.DownloadItemError{URL: item.URL, Err: err}
		b.log(fmt.Sprintf("Failed to download %s: %v", item.URL, err))
		log.Ctx(ctx).Warn().Err(itemErr).Msg("download failed")
		return types.DownloadOutcome{
			URL:      item.URL,
			FileName: item.FileName,
			Status:   types.DownloadStatusFailed,
			Reason:   err.Error(),
		}
	}
	b.log(fmt.Sprintf("Downloaded: %s", item.FileName))
	return types.DownloadOutcome{
		URL:      item.URL,
		FileName: item.FileName,
		Path:     dest,
		Bytes:    written,
		Status:   types.DownloadStatusDownloaded,
	}
}

func (b DownloadBatch) log(line string) {
	if b.Sink != nil {
		b.Sink.Append(line)
	}
}
