package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewin/internal/adapters"
	"rewin/internal/app"
	"rewin/internal/types"
)

type blockingRunner struct {
	mu      sync.Mutex
	block   bool
	started chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context, spec types.ProcessSpec, onLine func(string)) (int, error) {
	onLine("running " + filepath.Base(spec.Args[len(spec.Args)-1]))
	r.mu.Lock()
	block := r.block
	r.mu.Unlock()
	if block {
		close(r.started)
		<-ctx.Done()
		return -1, ctx.Err()
	}
	return 0, nil
}

func newTestServer(t *testing.T, runner *blockingRunner) (*httptest.Server, *Server, string) {
	t.Helper()
	service := app.NewService(app.ServiceConfig{})
	service.Runner = runner
	packageDir := t.TempDir()
	_, err := adapters.NewPackageFileAdapter().WritePackage(packageDir, types.MigrationPackage{
		ExportDate: "2026-03-14T09:30:00Z",
		Software:   []types.SoftwareEntry{{Name: "Git", WingetID: "Git.Git"}},
		StoreApps:  []types.StoreAppEntry{},
		Configs:    types.DefaultConfigToggles(),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(packageDir, "install_winget.ps1"), []byte("winget install"), 0644))

	server := NewServer(service)
	httpServer := httptest.NewServer(NewRouter(server))
	t.Cleanup(httpServer.Close)
	return httpServer, server, packageDir
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func startRestore(t *testing.T, baseURL string, packageDir string) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{"package_dir": packageDir, "phases": []string{"winget"}})
	require.NoError(t, err)
	resp := postJSON(t, baseURL+"/api/restore", string(body))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var started taskStarted
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	require.NotEmpty(t, started.TaskID)
	return started.TaskID
}

func waitFinished(t *testing.T, server *Server, id string) *app.Task {
	t.Helper()
	task, err := server.Service.Task(id)
	require.NoError(t, err)
	select {
	case <-task.Done():
	case <-time.After(10 * time.Second):
		t.Fatalf("task %s did not finish", id)
	}
	return task
}

func TestRestoreTaskLifecycle(t *testing.T) {
	httpServer, server, packageDir := newTestServer(t, &blockingRunner{})
	id := startRestore(t, httpServer.URL, packageDir)
	waitFinished(t, server, id)

	resp, err := http.Get(httpServer.URL + "/api/tasks/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snapshot struct {
		ID     string         `json:"id"`
		Kind   app.TaskKind   `json:"kind"`
		Status app.TaskStatus `json:"status"`
		Output []string       `json:"output"`
		Result struct {
			State types.RestoreState `json:"state"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.Equal(t, id, snapshot.ID)
	assert.Equal(t, app.TaskRestore, snapshot.Kind)
	assert.Equal(t, app.TaskCompleted, snapshot.Status)
	assert.Equal(t, types.RestoreStateCompleted, snapshot.Result.State)
	assert.Contains(t, snapshot.Output, "running install_winget.ps1")

	listResp, err := http.Get(httpServer.URL + "/api/tasks")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var list []app.TaskSnapshot
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list, 1)
}

func TestStartRestoreErrors(t *testing.T) {
	httpServer, _, packageDir := newTestServer(t, &blockingRunner{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "invalid json", body: "{", status: http.StatusBadRequest},
		{name: "unknown field", body: `{"package":"x"}`, status: http.StatusBadRequest},
		{name: "missing package dir", body: `{}`, status: http.StatusBadRequest},
		{name: "no package", body: `{"package_dir":"` + filepath.ToSlash(t.TempDir()) + `"}`, status: http.StatusNotFound},
		{name: "unknown phase", body: `{"package_dir":"` + filepath.ToSlash(packageDir) + `","phases":["drivers"]}`, status: http.StatusBadRequest},
		{name: "unknown preset", body: `{"package_dir":"` + filepath.ToSlash(packageDir) + `","preset":"most"}`, status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, httpServer.URL+"/api/restore", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestCancelTask(t *testing.T) {
	runner := &blockingRunner{block: true, started: make(chan struct{})}
	httpServer, server, packageDir := newTestServer(t, runner)
	id := startRestore(t, httpServer.URL, packageDir)
	<-runner.started

	resp := postJSON(t, httpServer.URL+"/api/tasks/"+id+"/cancel", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	task := waitFinished(t, server, id)
	assert.Equal(t, app.TaskCanceled, task.Status())

	again := postJSON(t, httpServer.URL+"/api/tasks/"+id+"/cancel", "")
	assert.Equal(t, http.StatusConflict, again.StatusCode)

	missing := postJSON(t, httpServer.URL+"/api/tasks/nope/cancel", "")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestStreamTaskLogs(t *testing.T) {
	httpServer, server, packageDir := newTestServer(t, &blockingRunner{})
	id := startRestore(t, httpServer.URL, packageDir)
	waitFinished(t, server, id)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws/tasks/" + id + "/logs"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	var lines []string
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			require.ErrorAs(t, err, &closeErr)
			assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
			assert.Equal(t, string(app.TaskCompleted), closeErr.Text)
			break
		}
		lines = append(lines, string(message))
	}
	assert.Contains(t, lines, "running install_winget.ps1")
	assert.Contains(t, lines, "PHASE 1: Installing Software")
}

func TestStreamUnknownTask(t *testing.T) {
	httpServer, _, _ := newTestServer(t, &blockingRunner{})
	resp, err := http.Get(httpServer.URL + "/ws/tasks/nope/logs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRejectsCrossOriginRequests(t *testing.T) {
	httpServer, server, packageDir := newTestServer(t, &blockingRunner{})
	body := `{"package_dir":"` + filepath.ToSlash(packageDir) + `"}`

	tests := []struct {
		name        string
		origin      string
		contentType string
		status      int
	}{
		{name: "foreign origin json", origin: "http://evil.example", contentType: "application/json", status: http.StatusForbidden},
		{name: "foreign origin text", origin: "http://evil.example", contentType: "text/plain", status: http.StatusForbidden},
		{name: "no origin text", contentType: "text/plain", status: http.StatusUnsupportedMediaType},
		{name: "form post", contentType: "application/x-www-form-urlencoded", status: http.StatusUnsupportedMediaType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, httpServer.URL+"/api/restore", strings.NewReader(body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", tc.contentType)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
	assert.Empty(t, server.Service.Tasks.List())
}

func TestAcceptsSameOriginRequests(t *testing.T) {
	httpServer, server, packageDir := newTestServer(t, &blockingRunner{})
	req, err := http.NewRequest(http.MethodPost, httpServer.URL+"/api/restore",
		strings.NewReader(`{"package_dir":"`+filepath.ToSlash(packageDir)+`"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Origin", httpServer.URL)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Len(t, server.Service.Tasks.List(), 1)
}

func TestStreamRejectsForeignOrigin(t *testing.T) {
	httpServer, server, packageDir := newTestServer(t, &blockingRunner{})
	id := startRestore(t, httpServer.URL, packageDir)
	waitFinished(t, server, id)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws/tasks/" + id + "/logs"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
