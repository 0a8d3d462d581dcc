package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/prepared/internal/results"
	"github.com/mind-engage/prepared/internal/viewer"
	"github.com/mind-engage/prepared/internal/workspace"
)

// MountLearners serves per-learner view state, quiz flow and history. r is
// expected to carry a {learnerID} URL parameter.
func MountLearners(r chi.Router, ws *workspace.Workspace, rs results.Store, ev EventLog) {
	r.Route("/view", func(vr chi.Router) {
		vr.Post("/", OpenViewHandler(ws))
		vr.Get("/", GetViewHandler(ws))
		vr.Delete("/", CloseViewHandler(ws))
		vr.Put("/tab", SwitchTabHandler(ws))
		vr.Post("/media/{videoID}", OpenMediaHandler(ws))
		vr.Delete("/media", CloseMediaHandler(ws))

		vr.Get("/quiz", GetQuizHandler(ws))
		vr.Post("/quiz/answer", SelectAnswerHandler(ws))
		vr.Post("/quiz/advance", AdvanceHandler(ws, rs, ev))
		vr.Post("/quiz/reset", ResetQuizHandler(ws))
		vr.Get("/quiz/results", QuizResultsHandler(ws, rs, ev))
	})
	r.Get("/results", ListResultsHandler(rs))
	r.Get("/results/{resultID}", GetResultHandler(rs))
	r.Get("/dashboard", DashboardHandler(ws, rs))
}

// withActive runs fn against the learner's open module. Only OpenViewHandler
// creates learner state; every other route looks it up.
func withActive(ws *workspace.Workspace, learnerID string, fn func(*viewer.Controller) error) error {
	return ws.Existing(learnerID, func(n *viewer.Navigator) error {
		c, ok := n.Active()
		if !ok {
			return errNoModuleOpen
		}
		return fn(c)
	})
}

func OpenViewHandler(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ModuleID string `json:"module_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ModuleID == "" {
			http.Error(w, "module_id required", http.StatusBadRequest)
			return
		}
		var st viewer.State
		err := ws.With(chi.URLParam(r, "learnerID"), func(n *viewer.Navigator) error {
			c, err := n.Select(req.ModuleID)
			if err != nil {
				return err
			}
			st = c.State()
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func GetViewHandler(ws *workspace.Workspace) http.HandlerFunc {
	return viewStateHandler(ws, func(*viewer.Controller) error { return nil })
}

// CloseViewHandler returns the learner to the module list by dropping their
// state, including any unfinished attempt.
func CloseViewHandler(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := strings.TrimSpace(chi.URLParam(r, "learnerID"))
		if learnerID == "" {
			writeError(w, workspace.ErrEmptyLearner)
			return
		}
		ws.Forget(learnerID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func SwitchTabHandler(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Tab string `json:"tab"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		tab, err := viewer.ParseTab(req.Tab)
		if err != nil {
			writeError(w, err)
			return
		}
		viewStateHandler(ws, func(c *viewer.Controller) error {
			c.SwitchTab(tab)
			return nil
		})(w, r)
	}
}

func OpenMediaHandler(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "videoID")
		viewStateHandler(ws, func(c *viewer.Controller) error {
			return c.OpenMedia(videoID)
		})(w, r)
	}
}

func CloseMediaHandler(ws *workspace.Workspace) http.HandlerFunc {
	return viewStateHandler(ws, func(c *viewer.Controller) error {
		c.CloseMedia()
		return nil
	})
}

// viewStateHandler applies fn to the open module and responds with the
// resulting view state.
func viewStateHandler(ws *workspace.Workspace, fn func(*viewer.Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st viewer.State
		err := withActive(ws, chi.URLParam(r, "learnerID"), func(c *viewer.Controller) error {
			if err := fn(c); err != nil {
				return err
			}
			st = c.State()
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
