package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"rewin/internal/app"
)

const logPollInterval = 200 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: sameOrigin,
}

// StreamTaskLogs streams task output lines over WebSocket and closes the
// connection with the task's final status once every line has been sent.
func (s *Server) StreamTaskLogs(w http.ResponseWriter, r *http.Request) {
	task, err := s.Service.Task(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	offset := 0
	ticker := time.NewTicker(logPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		status := task.Status()
		lines := task.LogsSince(offset)
		for _, line := range lines {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
			offset++
		}
		// Status was read before the lines, so nothing can follow them.
		if status != app.TaskRunning {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(status)))
			return
		}
	}
}
