package catalog

import (
	"fmt"
	"strings"
)

// ConfigurationError reports malformed static catalog data. ItemID names the
// offending video, document or question when the problem is below module level.
type ConfigurationError struct {
	ModuleID string
	ItemID   string
	Reason   string
	Err      error // underlying parse error, if any
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Error() string {
	switch {
	case e.ModuleID == "" && e.ItemID == "":
		return "catalog: " + e.Reason
	case e.ItemID == "":
		return fmt.Sprintf("catalog: module %q: %s", e.ModuleID, e.Reason)
	default:
		return fmt.Sprintf("catalog: module %q item %q: %s", e.ModuleID, e.ItemID, e.Reason)
	}
}

func confErr(moduleID, itemID, format string, args ...any) error {
	return &ConfigurationError{ModuleID: moduleID, ItemID: itemID, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks every module against the catalog invariants and returns the
// first violation found.
func Validate(modules []Module) error {
	if len(modules) == 0 {
		return confErr("", "", "no modules defined")
	}
	seen := make(map[string]struct{}, len(modules))
	for i := range modules {
		m := &modules[i]
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return confErr("", "", "module #%d has empty id", i)
		}
		if _, dup := seen[id]; dup {
			return confErr(id, "", "duplicate module id")
		}
		seen[id] = struct{}{}
		if strings.TrimSpace(m.Title) == "" {
			return confErr(id, "", "title is required")
		}
		if err := validateVideos(m); err != nil {
			return err
		}
		if err := validateDocuments(m); err != nil {
			return err
		}
		if err := validateQuestions(m); err != nil {
			return err
		}
	}
	return nil
}

func validateVideos(m *Module) error {
	ids := map[string]struct{}{}
	for i, v := range m.Videos {
		if strings.TrimSpace(v.ID) == "" {
			return confErr(m.ID, "", "video #%d has empty id", i)
		}
		if _, dup := ids[v.ID]; dup {
			return confErr(m.ID, v.ID, "duplicate video id")
		}
		ids[v.ID] = struct{}{}
		if strings.TrimSpace(v.MediaRef) == "" {
			return confErr(m.ID, v.ID, "media reference is required")
		}
	}
	return nil
}

func validateDocuments(m *Module) error {
	ids := map[string]struct{}{}
	for i, d := range m.Documents {
		if strings.TrimSpace(d.ID) == "" {
			return confErr(m.ID, "", "document #%d has empty id", i)
		}
		if _, dup := ids[d.ID]; dup {
			return confErr(m.ID, d.ID, "duplicate document id")
		}
		ids[d.ID] = struct{}{}
		if strings.TrimSpace(d.DownloadRef) == "" {
			return confErr(m.ID, d.ID, "download reference is required")
		}
		hasSize := strings.TrimSpace(d.SizeLabel) != ""
		hasPages := d.PageCount > 0
		if hasSize == hasPages {
			return confErr(m.ID, d.ID, "exactly one of size or pages must be set")
		}
	}
	return nil
}

func validateQuestions(m *Module) error {
	if len(m.Questions) == 0 {
		return confErr(m.ID, "", "quiz has no questions")
	}
	ids := map[string]struct{}{}
	for i, q := range m.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return confErr(m.ID, "", "question #%d has empty id", i)
		}
		if _, dup := ids[q.ID]; dup {
			return confErr(m.ID, q.ID, "duplicate question id")
		}
		ids[q.ID] = struct{}{}
		if strings.TrimSpace(q.Prompt) == "" {
			return confErr(m.ID, q.ID, "prompt is required")
		}
		if len(q.Options) != OptionCount {
			return confErr(m.ID, q.ID, "expected %d options, got %d", OptionCount, len(q.Options))
		}
		for j, o := range q.Options {
			if strings.TrimSpace(o) == "" {
				return confErr(m.ID, q.ID, "option %d is empty", j)
			}
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return confErr(m.ID, q.ID, "correct option index %d out of range [0,%d)", q.CorrectOptionIndex, len(q.Options))
		}
	}
	return nil
}
