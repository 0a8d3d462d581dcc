package results

import (
	"context"
	"math"

	"github.com/mind-engage/prepared/internal/catalog"
	"github.com/mind-engage/prepared/internal/quiz"
)

type ModuleProgress struct {
	ModuleID       string `json:"module_id"`
	Title          string `json:"title"`
	Attempts       int    `json:"attempts"`
	BestPercentage int    `json:"best_percentage"`
	LastPercentage int    `json:"last_percentage"`
	Completed      bool   `json:"completed"`
	Certified      bool   `json:"certified"`
}

// Dashboard summarizes a learner's history across the whole catalog.
type Dashboard struct {
	LearnerID         string           `json:"learner_id"`
	Attempts          int              `json:"attempts"`
	AveragePercentage int              `json:"average_percentage"`
	ModulesCompleted  int              `json:"modules_completed"`
	Certificates      int              `json:"certificates"`
	Modules           []ModuleProgress `json:"modules"`
}

// BuildDashboard folds history (newest first, as returned by Store.List) into
// one row per catalog module. Results for modules no longer in the catalog
// still count toward the totals.
func BuildDashboard(learnerID string, cat *catalog.Catalog, history []Result) Dashboard {
	d := Dashboard{LearnerID: learnerID, Modules: []ModuleProgress{}}

	byModule := map[string]*ModuleProgress{}
	for _, m := range cat.Modules() {
		d.Modules = append(d.Modules, ModuleProgress{ModuleID: m.ID, Title: m.Title})
	}
	for i := range d.Modules {
		byModule[d.Modules[i].ModuleID] = &d.Modules[i]
	}

	sum := 0
	for _, r := range history {
		d.Attempts++
		sum += r.Percentage
		mp, ok := byModule[r.ModuleID]
		if !ok {
			continue
		}
		if mp.Attempts == 0 {
			mp.LastPercentage = r.Percentage
		}
		mp.Attempts++
		mp.Completed = true
		if r.Percentage > mp.BestPercentage {
			mp.BestPercentage = r.Percentage
		}
		if r.Percentage >= quiz.CertificateThreshold {
			mp.Certified = true
		}
	}
	if d.Attempts > 0 {
		d.AveragePercentage = int(math.Round(float64(sum) / float64(d.Attempts)))
	}
	for _, mp := range d.Modules {
		if mp.Completed {
			d.ModulesCompleted++
		}
		if mp.Certified {
			d.Certificates++
		}
	}
	return d
}

// LoadDashboard lists every stored result for the learner and builds the
// dashboard from it.
func LoadDashboard(ctx context.Context, s Store, cat *catalog.Catalog, learnerID string) (Dashboard, error) {
	var history []Result
	for offset := 0; ; {
		page, err := s.List(ctx, ListOpts{LearnerID: learnerID, Limit: 500, Offset: offset})
		if err != nil {
			return Dashboard{}, err
		}
		history = append(history, page...)
		if len(page) < 500 {
			break
		}
		offset += len(page)
	}
	return BuildDashboard(learnerID, cat, history), nil
}
