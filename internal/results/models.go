package results

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/prepared/internal/catalog"
	"github.com/mind-engage/prepared/internal/quiz"
)

// Result is a completed quiz attempt kept for the learner's history.
type Result struct {
	ID          string         `json:"id"`
	LearnerID   string         `json:"learner_id"`
	ModuleID    string         `json:"module_id"`
	Correct     int            `json:"correct"`
	Total       int            `json:"total"`
	Percentage  int            `json:"percentage"`
	Answers     map[string]int `json:"answers"` // questionID -> option index
	CompletedAt int64          `json:"completed_at"`
}

// FromAttempt captures a completed attempt. It fails with
// quiz.ErrInvalidOperation while the attempt is still running.
func FromAttempt(learnerID string, m *catalog.Module, e *quiz.Engine) (Result, error) {
	res, err := e.Results()
	if err != nil {
		return Result{}, fmt.Errorf("record %s: %w", m.ID, err)
	}
	answers := map[string]int{}
	for i, opt := range e.Answers() {
		if i < len(m.Questions) {
			answers[m.Questions[i].ID] = opt
		}
	}
	return Result{
		ID:          uuid.NewString(),
		LearnerID:   learnerID,
		ModuleID:    m.ID,
		Correct:     res.Correct,
		Total:       res.Total,
		Percentage:  res.Percentage,
		Answers:     answers,
		CompletedAt: time.Now().Unix(),
	}, nil
}
