// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/holomush/luahost/internal/executor"
	"github.com/holomush/luahost/internal/output"
	"github.com/holomush/luahost/internal/scripts"
	"github.com/holomush/luahost/pkg/errutil"
)

// Route names used for request metrics.
const (
	RouteRunScript   = "run_script"
	RouteListScripts = "list_scripts"
)

// RunResponse is the body returned by the run endpoint.
type RunResponse struct {
	RunID      string         `json:"run_id"`
	Script     string         `json:"script"`
	State      string         `json:"state"`
	ErrorCode  string         `json:"error_code,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Events     []output.Event `json:"events"`
}

// ListResponse is the body returned by the list endpoint.
type ListResponse struct {
	Scripts []string `json:"scripts"`
}

// MountAPI mounts the script routes:
//
//	GET  /scripts             list script names
//	POST /scripts/{name}/run  run a script and return its events
func (s *Server) MountAPI(exec *executor.Executor, store scripts.Store) {
	s.Handle("GET /scripts", RouteListScripts, ListHandler(store))
	s.Handle("POST /scripts/{name}/run", RouteRunScript, RunHandler(exec))
}

// RunHandler runs the script named by the {name} path value. Each request
// collects its own events. A missing script answers 404, any other failed
// run 422.
func RunHandler(exec *executor.Executor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if err := scripts.ValidateName(name); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errutil.Describe(err)})
			return
		}

		c := &output.Collector{}
		res := exec.Redirect(output.NewRouter(c.Sinks())).Run(r.Context(), name)

		status := http.StatusOK
		switch {
		case res.Succeeded():
		case scripts.IsNotFound(res.Err):
			status = http.StatusNotFound
		default:
			status = http.StatusUnprocessableEntity
		}

		events := c.Events()
		if events == nil {
			events = []output.Event{}
		}
		writeJSON(w, status, RunResponse{
			RunID:      res.RunID,
			Script:     res.Script,
			State:      res.State.String(),
			ErrorCode:  errutil.Code(res.Err),
			DurationMS: res.Duration.Milliseconds(),
			Events:     events,
		})
	})
}

// ListHandler lists the script names in store.
func ListHandler(store scripts.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		names, err := store.List(r.Context())
		if err != nil {
			errutil.LogErrorContext(r.Context(), slog.Default(), "list scripts", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errutil.Describe(err)})
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, ListResponse{Scripts: names})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("write response", "error", err)
	}
}
