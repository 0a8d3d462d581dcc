package catalog

// Catalog is the immutable, ordered list of modules loaded at startup.
// Callers must treat the returned modules as read-only.
type Catalog struct {
	modules []Module
	byID    map[string]int
}

// New validates modules and builds a Catalog. The slice is copied so later
// mutation by the caller cannot reach the catalog.
func New(modules []Module) (*Catalog, error) {
	if err := Validate(modules); err != nil {
		return nil, err
	}
	c := &Catalog{
		modules: make([]Module, len(modules)),
		byID:    make(map[string]int, len(modules)),
	}
	copy(c.modules, modules)
	for i, m := range c.modules {
		c.byID[m.ID] = i
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.modules) }

// Modules returns the modules in catalog order.
func (c *Catalog) Modules() []Module {
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

func (c *Catalog) Module(id string) (*Module, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.modules[i], true
}

func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, 0, len(c.modules))
	for _, m := range c.modules {
		out = append(out, Summary{
			ID:            m.ID,
			Title:         m.Title,
			Description:   m.Description,
			VideoCount:    len(m.Videos),
			DocumentCount: len(m.Documents),
			QuestionCount: len(m.Questions),
		})
	}
	return out
}
