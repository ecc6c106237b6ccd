//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"rewin/internal/app"
	"rewin/internal/types"
)

// installerServerScript serves two installers and answers 500 for
// anything under /broken/.
const installerServerScript = `
import http.server, os
root = "/srv/installers"
os.makedirs(os.path.join(root, "tools"), exist_ok=True)
with open(os.path.join(root, "tools", "setup.exe"), "wb") as f:
    f.write(b"MZ" + b"\x00" * 4094)
with open(os.path.join(root, "legacy-tool.msi"), "wb") as f:
    f.write(b"\xd0\xcf\x11\xe0" + b"\x00" * 1020)
class Handler(http.server.SimpleHTTPRequestHandler):
    def __init__(self, *args, **kwargs):
        super().__init__(*args, directory=root, **kwargs)
    def do_GET(self):
        if self.path.startswith("/broken/"):
            self.send_error(500)
            return
        super().do_GET()
http.server.ThreadingHTTPServer(("0.0.0.0", 8082), Handler).serve_forever()
`

func startInstallerServer(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8082/tcp"},
		Cmd:          []string{"python", "-c", installerServerScript},
		WaitingFor:   wait.ForListeningPort("8082/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8082/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}

func TestDownloadInstallersWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers download in short mode")
	}
	ctx := t.Context()
	endpoint, cleanup := startInstallerServer(ctx, t)
	t.Cleanup(cleanup)

	service := app.NewService(app.ServiceConfig{HTTPTimeoutSec: 10, HTTPRetries: 2, HTTPRetryDelayMs: 50})

	session, err := service.LoadScan(ctx, writeScanDir(t, sourceMappings))
	require.NoError(t, err)
	packageDir := filepath.Join(t.TempDir(), "ReWin")
	_, err = service.Export(ctx, session, app.ExportRequest{OutputDir: packageDir})
	require.NoError(t, err)

	report := fmt.Sprintf(`# Manual downloads

### Legacy Tool
- Installer: [legacy-tool.msi](%[1]s/legacy-tool.msi)

### Vendor Tools
- Installer: %[1]s/tools/setup.exe?source=rewin
- Mirror: %[1]s/broken/setup.exe

### Git
- winget://Git.Git
`, endpoint)
	require.NoError(t, os.WriteFile(filepath.Join(packageDir, "manual_downloads.md"), []byte(report), 0644))

	destDir := t.TempDir()
	task, err := service.StartDownload(ctx, app.DownloadRequest{PackageDir: packageDir, DestDir: destDir})
	require.NoError(t, err)
	waitCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	require.NoError(t, task.Wait(waitCtx))

	result, ok := task.Result().(*app.DownloadResult)
	require.True(t, ok)
	assert.Equal(t, 2, result.Downloaded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)

	statuses := map[string]types.DownloadStatus{}
	for _, outcome := range result.Outcomes {
		statuses[outcome.URL] = outcome.Status
	}
	assert.Equal(t, types.DownloadStatusDownloaded, statuses[endpoint+"/legacy-tool.msi"])
	assert.Equal(t, types.DownloadStatusFailed, statuses[endpoint+"/broken/setup.exe"])

	info, err := os.Stat(filepath.Join(destDir, "setup.exe"))
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size())
	info, err = os.Stat(filepath.Join(destDir, "legacy-tool.msi"))
	require.NoError(t, err)
	assert.Equal(t, int64(1024), info.Size())
	_, err = os.Stat(filepath.Join(destDir, "setup-2.exe"))
	assert.True(t, os.IsNotExist(err))

	lookupLog, err := os.ReadFile(filepath.Join(packageDir, "restore_installer_lookup_debug.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(lookupLog), "Failed to download "+endpoint+"/broken/setup.exe")
}
