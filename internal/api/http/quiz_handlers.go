package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/prepared/internal/quiz"
	"github.com/mind-engage/prepared/internal/results"
	syncx "github.com/mind-engage/prepared/internal/sync"
	"github.com/mind-engage/prepared/internal/viewer"
	"github.com/mind-engage/prepared/internal/workspace"
)

func GetQuizHandler(ws *workspace.Workspace) http.HandlerFunc {
	return quizSnapshotHandler(ws, func(*quiz.Engine) error { return nil })
}

func SelectAnswerHandler(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OptionIndex *int `json:"option_index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.OptionIndex == nil {
			http.Error(w, "option_index required", http.StatusBadRequest)
			return
		}
		quizSnapshotHandler(ws, func(e *quiz.Engine) error {
			return e.SelectAnswer(*req.OptionIndex)
		})(w, r)
	}
}

func ResetQuizHandler(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snap quiz.Snapshot
		err := withActive(ws, chi.URLParam(r, "learnerID"), func(c *viewer.Controller) error {
			c.ResetQuiz()
			snap = c.Quiz().Snapshot()
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

type advanceResponse struct {
	Quiz     quiz.Snapshot `json:"quiz"`
	Results  *quiz.Results `json:"results,omitempty"`
	ResultID string        `json:"result_id,omitempty"`
}

// AdvanceHandler moves to the next question. Once the attempt is complete it
// is recorded in rs and appended to ev when set. A completed attempt whose
// recording failed is recorded again by the next advance.
func AdvanceHandler(ws *workspace.Workspace, rs results.Store, ev EventLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := chi.URLParam(r, "learnerID")
		var resp advanceResponse
		err := withActive(ws, learnerID, func(c *viewer.Controller) error {
			e := c.Quiz()
			if !e.Completed() {
				if err := e.Advance(); err != nil {
					return err
				}
			} else if _, done := c.RecordedResult(); done {
				return e.Advance()
			}
			resp.Quiz = e.Snapshot()
			if !e.Completed() {
				return nil
			}
			res, err := e.Results()
			if err != nil {
				return err
			}
			resp.Results = &res
			resp.ResultID, err = recordAttempt(r.Context(), learnerID, c, rs, ev)
			return err
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type quizResultsResponse struct {
	quiz.Results
	ResultID string `json:"result_id"`
}

// QuizResultsHandler returns the completed attempt's results, recording the
// attempt first if that has not happened yet.
func QuizResultsHandler(ws *workspace.Workspace, rs results.Store, ev EventLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := chi.URLParam(r, "learnerID")
		var resp quizResultsResponse
		err := withActive(ws, learnerID, func(c *viewer.Controller) error {
			var err error
			if resp.Results, err = c.Quiz().Results(); err != nil {
				return err
			}
			resp.ResultID, err = recordAttempt(r.Context(), learnerID, c, rs, ev)
			return err
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// recordAttempt stores c's completed attempt once and returns its result id.
// It runs under the learner's lock so concurrent calls cannot record twice.
func recordAttempt(ctx context.Context, learnerID string, c *viewer.Controller, rs results.Store, ev EventLog) (string, error) {
	if id, ok := c.RecordedResult(); ok {
		return id, nil
	}
	rec, err := results.FromAttempt(learnerID, c.Module(), c.Quiz())
	if err != nil {
		return "", err
	}
	if rec, err = rs.Record(ctx, rec); err != nil {
		return "", err
	}
	c.MarkRecorded(rec.ID)
	if ev != nil {
		if err := ev.Append(ctx, syncx.TypeAttemptCompleted, rec.ID, rec); err != nil {
			log.Printf("event log append %s: %v", rec.ID, err)
		}
	}
	log.Printf("attempt recorded: learner=%s module=%s score=%d/%d", rec.LearnerID, rec.ModuleID, rec.Correct, rec.Total)
	return rec.ID, nil
}

func quizSnapshotHandler(ws *workspace.Workspace, fn func(*quiz.Engine) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snap quiz.Snapshot
		err := withActive(ws, chi.URLParam(r, "learnerID"), func(c *viewer.Controller) error {
			if err := fn(c.Quiz()); err != nil {
				return err
			}
			snap = c.Quiz().Snapshot()
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
