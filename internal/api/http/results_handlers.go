package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/prepared/internal/results"
	"github.com/mind-engage/prepared/internal/workspace"
)

// ListResultsHandler returns the learner's completed attempts, newest first.
// Optional query: module, limit, offset.
func ListResultsHandler(rs results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := strings.TrimSpace(chi.URLParam(r, "learnerID"))
		if learnerID == "" {
			writeError(w, workspace.ErrEmptyLearner)
			return
		}
		list, err := rs.List(r.Context(), results.ListOpts{
			LearnerID: learnerID,
			ModuleID:  strings.TrimSpace(r.URL.Query().Get("module")),
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GetResultHandler returns one stored attempt. Results that belong to another
// learner are reported as missing.
func GetResultHandler(rs results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := strings.TrimSpace(chi.URLParam(r, "learnerID"))
		if learnerID == "" {
			writeError(w, workspace.ErrEmptyLearner)
			return
		}
		id := chi.URLParam(r, "resultID")
		res, err := rs.Get(r.Context(), id)
		if err == nil && res.LearnerID != learnerID {
			err = fmt.Errorf("result %s for %s: %w", id, learnerID, results.ErrNotFound)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func DashboardHandler(ws *workspace.Workspace, rs results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := strings.TrimSpace(chi.URLParam(r, "learnerID"))
		if learnerID == "" {
			writeError(w, workspace.ErrEmptyLearner)
			return
		}
		d, err := results.LoadDashboard(r.Context(), rs, ws.Catalog(), learnerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}
