// Package quiz drives a single attempt through a module's fixed question list.
//
// The attempt is a small state machine: InProgress(i) for i in [0,N) and
// Completed. Advance moves forward one question at a time, and advancing past
// the last question completes the attempt with the index frozen on the last
// question. Only Reset leaves Completed.
//
// An Engine is owned by one view and is not safe for concurrent use.
package quiz

import (
	"errors"
	"fmt"

	"github.com/mind-engage/prepared/internal/catalog"
)

var (
	// ErrInvalidOperation is returned when an operation is not allowed in the
	// current state, e.g. answering after completion. State is left untouched.
	ErrInvalidOperation = errors.New("quiz: invalid operation")
	// ErrOptionOutOfRange is returned by SelectAnswer for an index that does
	// not address one of the current question's options.
	ErrOptionOutOfRange = errors.New("quiz: option out of range")
)

type State int

const (
	StateInProgress State = iota
	StateCompleted
)

func (s State) String() string {
	if s == StateCompleted {
		return "completed"
	}
	return "in_progress"
}

type Engine struct {
	questions []catalog.QuizQuestion
	current   int
	answers   map[int]int // question index -> option index; unanswered questions absent
	completed bool
}

// New starts a fresh attempt over questions. The slice is not copied and must
// not be modified while the engine is in use.
func New(questions []catalog.QuizQuestion) *Engine {
	return &Engine{questions: questions, answers: map[int]int{}}
}

// SelectAnswer records option as the answer to the current question,
// replacing any earlier choice for it.
func (e *Engine) SelectAnswer(option int) error {
	if e.completed {
		return fmt.Errorf("select answer on completed quiz: %w", ErrInvalidOperation)
	}
	if len(e.questions) == 0 {
		return fmt.Errorf("select answer on empty quiz: %w", ErrInvalidOperation)
	}
	if n := len(e.questions[e.current].Options); option < 0 || option >= n {
		return fmt.Errorf("option %d not in [0,%d): %w", option, n, ErrOptionOutOfRange)
	}
	e.answers[e.current] = option
	return nil
}

// Advance moves to the next question, or completes the attempt when called on
// the last one. It does not require the current question to be answered;
// unanswered questions simply score nothing.
func (e *Engine) Advance() error {
	if e.completed {
		return fmt.Errorf("advance completed quiz: %w", ErrInvalidOperation)
	}
	if e.current < len(e.questions)-1 {
		e.current++
		return nil
	}
	e.completed = true
	return nil
}

// Score counts answers that match the answer key.
func (e *Engine) Score() int {
	score := 0
	for i, opt := range e.answers {
		if i < len(e.questions) && e.questions[i].CorrectOptionIndex == opt {
			score++
		}
	}
	return score
}

// Reset abandons the attempt and returns to the first question.
func (e *Engine) Reset() {
	e.current = 0
	e.answers = map[int]int{}
	e.completed = false
}

// ProgressFraction is (index + 1 if completed) / N, in [0,1].
func (e *Engine) ProgressFraction() float64 {
	if len(e.questions) == 0 {
		return 0
	}
	done := e.current
	if e.completed {
		done++
	}
	return float64(done) / float64(len(e.questions))
}

func (e *Engine) State() State {
	if e.completed {
		return StateCompleted
	}
	return StateInProgress
}

func (e *Engine) Completed() bool    { return e.completed }
func (e *Engine) CurrentIndex() int  { return e.current }
func (e *Engine) Len() int           { return len(e.questions) }
func (e *Engine) AnsweredCount() int { return len(e.answers) }

// Answer returns the recorded option for question i.
func (e *Engine) Answer(i int) (int, bool) {
	opt, ok := e.answers[i]
	return opt, ok
}

// CanAdvance reports whether the presentation layer should enable its
// "next" control: the attempt is running and the current question is answered.
func (e *Engine) CanAdvance() bool {
	if e.completed {
		return false
	}
	_, ok := e.answers[e.current]
	return ok
}

// Answers returns a copy of the sparse answer map.
func (e *Engine) Answers() map[int]int {
	out := make(map[int]int, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}
