package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rewin/internal/adapters"
	"rewin/internal/types"
)

var testClock = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

const testInventory = `{
  "InstalledSoftware": [
    {"Name": "Git", "Version": "2.45.0", "Publisher": "The Git Development Community"},
    {"Name": "7-Zip", "Version": "23.01", "Publisher": "Igor Pavlov"},
    {"Name": "Legacy Tool", "Version": "1.0", "Publisher": "Acme"}
  ],
  "StoreApps": [
    {"Name": "Calculator", "Version": "11.2", "Publisher": "Microsoft", "PackageFamilyName": "Microsoft.WindowsCalculator_8wekyb3d8bbwe"}
  ]
}`

const testMappings = `[
  {"SoftwareName": "Git", "Version": "2.45.0", "Publisher": "The Git Development Community", "InstallMethod": "winget", "WingetId": "Git.Git"},
  {"SoftwareName": "7-Zip", "Version": "23.01", "Publisher": "Igor Pavlov", "InstallMethod": "chocolatey", "ChocolateyId": "7zip"},
  {"SoftwareName": "Legacy Tool", "Version": "1.0", "Publisher": "Acme", "InstallMethod": "Manual"}
]`

const testLicenses = `{
  "Windows": {"RecommendedKey": "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE", "Edition": "Professional"},
  "Office": [{"Product": "Office 16", "ProductKey": "XXXXX-PARTIAL"}],
  "WiFiProfiles": [{"ProfileName": "home", "Password": "secret"}]
}`

func writeTestFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeTestScan(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "software_inventory.json"), testInventory)
	writeTestFile(t, filepath.Join(dir, "package_mappings.json"), testMappings)
	writeTestFile(t, filepath.Join(dir, "license_keys.json"), testLicenses)
	return dir
}

func writeTestPackage(t *testing.T, pkg types.MigrationPackage) string {
	t.Helper()
	dir := t.TempDir()
	_, err := adapters.NewPackageFileAdapter().WritePackage(dir, pkg)
	require.NoError(t, err)
	return dir
}

func testPackage() types.MigrationPackage {
	return types.MigrationPackage{
		ExportDate: "2026-03-14T09:30:00Z",
		Drives:     types.DefaultDrives(),
		Software: []types.SoftwareEntry{
			{Name: "Git", Version: "2.45.0", InstallMethod: types.InstallMethodWinget, WingetID: "Git.Git"},
			{Name: "7-Zip", Version: "23.01", InstallMethod: types.InstallMethodChocolatey, ChocolateyID: "7zip"},
			{Name: "Legacy Tool", Version: "1.0", InstallMethod: types.InstallMethodManual},
		},
		StoreApps: []types.StoreAppEntry{},
		Configs:   types.DefaultConfigToggles(),
	}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	service := NewService(ServiceConfig{})
	service.Clock = testClock
	service.Drives = fakeDrives{}
	return service
}

type fakeDrives struct {
	drives []string
	err    error
}

func (f fakeDrives) MountedDrives() ([]string, error) {
	return f.drives, f.err
}

// scriptRunner fakes the process runner, keyed by the base name of the
// script a spec runs.
type scriptRunner struct {
	mu     sync.Mutex
	calls  []string
	output map[string][]string
	exits  map[string]int
	onRun  func(ctx context.Context, spec types.ProcessSpec) error
}

func (r *scriptRunner) Run(ctx context.Context, spec types.ProcessSpec, onLine func(string)) (int, error) {
	key := filepath.Base(spec.Args[len(spec.Args)-1])
	r.mu.Lock()
	r.calls = append(r.calls, key)
	r.mu.Unlock()
	if r.onRun != nil {
		if err := r.onRun(ctx, spec); err != nil {
			return -1, err
		}
	}
	for _, line := range r.output[key] {
		onLine(line)
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	return r.exits[key], nil
}

func (r *scriptRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fileFetcher struct {
	mu      sync.Mutex
	failing map[string]bool
	fetched []string
}

func (f *fileFetcher) Fetch(ctx context.Context, url string, destPath string) (int64, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	if f.failing[url] {
		return 0, errors.New("connection refused")
	}
	content := []byte("installer:" + url)
	if err := os.WriteFile(destPath, content, 0644); err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

func waitTask(t *testing.T, task *Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()
	select {
	case <-task.Done():
	case <-ctx.Done():
		t.Fatalf("task %s did not finish", task.ID)
	}
	return task.Err()
}
