package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/mind-engage/prepared/internal/quiz"
	"github.com/mind-engage/prepared/internal/results"
	"github.com/mind-engage/prepared/internal/storage"
	"github.com/mind-engage/prepared/internal/viewer"
	"github.com/mind-engage/prepared/internal/workspace"
)

// errNoModuleOpen is returned by view routes when the learner is on the
// module list.
var errNoModuleOpen = errors.New("no module open")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, viewer.ErrNotFound),
		errors.Is(err, results.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrInvalidKey):
		return http.StatusNotFound
	case errors.Is(err, quiz.ErrOptionOutOfRange),
		errors.Is(err, viewer.ErrUnknownTab),
		errors.Is(err, workspace.ErrEmptyLearner):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrInvalidOperation),
		errors.Is(err, errNoModuleOpen),
		errors.Is(err, workspace.ErrNoSession):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	http.Error(w, err.Error(), code)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
