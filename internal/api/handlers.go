package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"rewin/internal/app"
	"rewin/internal/types"
)

type restoreBody struct {
	PackageDir string                `json:"package_dir"`
	Phases     []string              `json:"phases"`
	Preset     string                `json:"preset"`
	Options    *types.RestoreOptions `json:"options"`
}

type resolveBody struct {
	PackageDir string `json:"package_dir"`
	ManualOnly bool   `json:"manual_only"`
}

type downloadBody struct {
	PackageDir string   `json:"package_dir"`
	DestDir    string   `json:"dest_dir"`
	URLs       []string `json:"urls"`
	Workers    int      `json:"workers"`
}

type taskStarted struct {
	TaskID string `json:"task_id"`
}

func (s *Server) StartRestore(w http.ResponseWriter, r *http.Request) {
	var body restoreBody
	if !decodeBody(w, r, &body) {
		return
	}
	options, err := types.RestoreOptionsPreset(body.Preset)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Options != nil {
		options = *body.Options
	}
	phases := make([]types.Phase, 0, len(body.Phases))
	for _, value := range body.Phases {
		phase, ok := types.ParsePhase(value)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown restore phase: "+value)
			return
		}
		phases = append(phases, phase)
	}
	task, err := s.Service.StartRestore(r.Context(), app.RestoreRequest{
		PackageDir: body.PackageDir,
		Phases:     phases,
		Options:    options,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, taskStarted{TaskID: task.ID})
}

func (s *Server) StartResolve(w http.ResponseWriter, r *http.Request) {
	var body resolveBody
	if !decodeBody(w, r, &body) {
		return
	}
	task, err := s.Service.StartResolve(r.Context(), app.ResolveRequest{
		PackageDir: body.PackageDir,
		ManualOnly: body.ManualOnly,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, taskStarted{TaskID: task.ID})
}

func (s *Server) StartDownload(w http.ResponseWriter, r *http.Request) {
	var body downloadBody
	if !decodeBody(w, r, &body) {
		return
	}
	task, err := s.Service.StartDownload(r.Context(), app.DownloadRequest{
		PackageDir: body.PackageDir,
		DestDir:    body.DestDir,
		URLs:       body.URLs,
		Workers:    body.Workers,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, taskStarted{TaskID: task.ID})
}

func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.Service.Tasks.List()
	snapshots := make([]app.TaskSnapshot, 0, len(tasks))
	for _, task := range tasks {
		snapshots = append(snapshots, task.Snapshot())
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.Service.Task(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task.Snapshot())
}

// CancelTask cancels a running task.
func (s *Server) CancelTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.Service.Task(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if task.Status() != app.TaskRunning {
		writeError(w, http.StatusConflict, "task is not running")
		return
	}
	task.Append("CANCELLED: stopped by user")
	task.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

func statusForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return http.StatusBadRequest
	case errbuilder.CodeNotFound:
		return http.StatusNotFound
	case errbuilder.CodePermissionDenied:
		return http.StatusForbidden
	case errbuilder.CodeFailedPrecondition, errbuilder.CodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
