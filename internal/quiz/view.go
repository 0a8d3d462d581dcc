package quiz

import (
	"fmt"
	"math"

	"github.com/mind-engage/prepared/internal/catalog"
)

// Thresholds for result tiers, in percent.
const (
	ExcellentThreshold = 80
	GoodThreshold      = 60
	// CertificateThreshold is the percentage that unlocks the module certificate.
	CertificateThreshold = ExcellentThreshold
)

type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierReview    Tier = "review"
)

func TierFor(percentage int) Tier {
	switch {
	case percentage >= ExcellentThreshold:
		return TierExcellent
	case percentage >= GoodThreshold:
		return TierGood
	default:
		return TierReview
	}
}

// Percentage rounds correct/total to a whole percent. A zero total yields 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

type Option struct {
	Index int    `json:"index"`
	Label string `json:"label"` // A, B, C, D
	Text  string `json:"text"`
}

// QuestionView is the current question as shown to the learner. It never
// carries the answer key.
type QuestionView struct {
	Number   int      `json:"number"` // 1-based
	Total    int      `json:"total"`
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []Option `json:"options"`
	Selected *int     `json:"selected,omitempty"`
	IsLast   bool     `json:"is_last"`
}

// Snapshot is the read-only view model of the whole attempt.
type Snapshot struct {
	State      string        `json:"state"`
	Progress   float64       `json:"progress"`
	Answered   int           `json:"answered"`
	CanAdvance bool          `json:"can_advance"`
	Question   *QuestionView `json:"question,omitempty"`
}

type ItemResult struct {
	QuestionID    string `json:"question_id"`
	Prompt        string `json:"prompt"`
	Selected      *int   `json:"selected,omitempty"`
	CorrectOption int    `json:"correct_option"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
}

type Results struct {
	Correct             int          `json:"correct"`
	Total               int          `json:"total"`
	Percentage          int          `json:"percentage"`
	Tier                Tier         `json:"tier"`
	CertificateEligible bool         `json:"certificate_eligible"`
	Items               []ItemResult `json:"items"`
}

// OptionLabel is the letter shown next to option i: A, B, C, D.
func OptionLabel(i int) string {
	if i >= 0 && i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprint(i + 1)
}

// Options renders a question's choices with their labels. It is the only
// place option labels are assigned.
func Options(q catalog.QuizQuestion) []Option {
	out := make([]Option, len(q.Options))
	for i, text := range q.Options {
		out[i] = Option{Index: i, Label: OptionLabel(i), Text: text}
	}
	return out
}

// Current renders the question at the current index. ok is false only for an
// engine built over an empty question list.
func (e *Engine) Current() (QuestionView, bool) {
	if len(e.questions) == 0 {
		return QuestionView{}, false
	}
	q := e.questions[e.current]
	v := QuestionView{
		Number:  e.current + 1,
		Total:   len(e.questions),
		ID:      q.ID,
		Prompt:  q.Prompt,
		Options: Options(q),
		IsLast:  e.current == len(e.questions)-1,
	}
	if opt, ok := e.answers[e.current]; ok {
		v.Selected = &opt
	}
	return v, true
}

func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		State:      e.State().String(),
		Progress:   e.ProgressFraction(),
		Answered:   len(e.answers),
		CanAdvance: e.CanAdvance(),
	}
	if !e.completed {
		if q, ok := e.Current(); ok {
			s.Question = &q
		}
	}
	return s
}

// Results is available once the attempt is completed.
func (e *Engine) Results() (Results, error) {
	if !e.completed {
		return Results{}, fmt.Errorf("results before completion: %w", ErrInvalidOperation)
	}
	correct := e.Score()
	pct := Percentage(correct, len(e.questions))
	r := Results{
		Correct:             correct,
		Total:               len(e.questions),
		Percentage:          pct,
		Tier:                TierFor(pct),
		CertificateEligible: pct >= CertificateThreshold,
		Items:               make([]ItemResult, len(e.questions)),
	}
	for i, q := range e.questions {
		item := ItemResult{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			CorrectOption: q.CorrectOptionIndex,
			Explanation:   q.Explanation,
		}
		if opt, ok := e.answers[i]; ok {
			item.Selected = &opt
			item.Correct = opt == q.CorrectOptionIndex
		}
		r.Items[i] = item
	}
	return r, nil
}
