package viewer

import "github.com/mind-engage/prepared/internal/catalog"

// Navigator is the top-level module list. At most one module is open at a
// time; leaving it or selecting another discards its controller and quiz.
type Navigator struct {
	cat    *catalog.Catalog
	active *Controller
}

func NewNavigator(cat *catalog.Catalog) *Navigator {
	return &Navigator{cat: cat}
}

func (n *Navigator) Modules() []catalog.Summary { return n.cat.Summaries() }

// Select opens moduleID. Selecting the module that is already open keeps its
// state; any other module starts from a fresh controller.
func (n *Navigator) Select(moduleID string) (*Controller, error) {
	if n.active != nil && n.active.mod.ID == moduleID {
		return n.active, nil
	}
	c, err := Open(n.cat, moduleID)
	if err != nil {
		return nil, err
	}
	n.active = c
	return c, nil
}

// Back returns to the module list, abandoning any quiz progress.
func (n *Navigator) Back() { n.active = nil }

func (n *Navigator) Active() (*Controller, bool) {
	return n.active, n.active != nil
}
