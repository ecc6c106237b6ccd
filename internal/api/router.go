package api

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router with all task routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(sameOriginOnly)
	r.Use(requireJSONBody)

	r.Route("/api", func(r chi.Router) {
		// Operations (async)
		r.Post("/restore", s.StartRestore)
		r.Post("/resolve", s.StartResolve)
		r.Post("/download", s.StartDownload)

		// Tasks
		r.Get("/tasks", s.ListTasks)
		r.Get("/tasks/{id}", s.GetTask)
		r.Post("/tasks/{id}/cancel", s.CancelTask)
	})

	// WebSocket stays outside /api, which always answers JSON.
	r.Get("/ws/tasks/{id}/logs", s.StreamTaskLogs)

	return r
}

// sameOriginOnly rejects cross-site requests. Browsers always send Origin
// on cross-origin POSTs and websocket handshakes; clients without a browser
// send none.
func sameOriginOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sameOrigin(r) {
			writeError(w, http.StatusForbidden, "cross-origin requests are not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, r.Host)
}

// requireJSONBody only accepts POSTs declared as application/json, which a
// plain HTML form or a no-preflight fetch cannot send.
func requireJSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
