package viewer

import (
	"errors"
	"fmt"

	"github.com/mind-engage/prepared/internal/catalog"
	"github.com/mind-engage/prepared/internal/quiz"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrUnknownTab = errors.New("unknown tab")
)

type Tab string

const (
	TabOverview  Tab = "overview"
	TabMedia     Tab = "media"
	TabResources Tab = "resources"
	TabQuiz      Tab = "quiz"
)

// ParseTab accepts the wire names of the four tabs.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabOverview, TabMedia, TabResources, TabQuiz:
		return t, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownTab)
}

// Controller holds the view state of one opened module: which tab is active,
// which video (if any) is open for inline playback, and the quiz attempt.
type Controller struct {
	mod         *catalog.Module
	tab         Tab
	openMediaID string
	quiz        *quiz.Engine
	recordedID  string // stored result for the completed attempt
}

// Open mounts a controller for moduleID with a fresh quiz attempt.
func Open(cat *catalog.Catalog, moduleID string) (*Controller, error) {
	m, ok := cat.Module(moduleID)
	if !ok {
		return nil, fmt.Errorf("module %q: %w", moduleID, ErrNotFound)
	}
	return &Controller{
		mod:  m,
		tab:  TabOverview,
		quiz: quiz.New(m.Questions),
	}, nil
}

func (c *Controller) Module() *catalog.Module { return c.mod }
func (c *Controller) ActiveTab() Tab          { return c.tab }
func (c *Controller) Quiz() *quiz.Engine      { return c.quiz }

func (c *Controller) SwitchTab(t Tab) { c.tab = t }

// ResetQuiz starts a new attempt and forgets that the previous one was
// recorded.
func (c *Controller) ResetQuiz() {
	c.quiz.Reset()
	c.recordedID = ""
}

// MarkRecorded notes the stored result id of the completed attempt.
func (c *Controller) MarkRecorded(resultID string) { c.recordedID = resultID }

// RecordedResult returns the stored result id, if the completed attempt has
// been recorded.
func (c *Controller) RecordedResult() (string, bool) {
	return c.recordedID, c.recordedID != ""
}

// OpenMedia selects a video for inline playback without changing the tab.
func (c *Controller) OpenMedia(videoID string) error {
	if _, ok := c.mod.Video(videoID); !ok {
		return fmt.Errorf("video %q in module %q: %w", videoID, c.mod.ID, ErrNotFound)
	}
	c.openMediaID = videoID
	return nil
}

func (c *Controller) CloseMedia() { c.openMediaID = "" }

// OpenMediaItem returns the video currently open, if any.
func (c *Controller) OpenMediaItem() (catalog.VideoItem, bool) {
	if c.openMediaID == "" {
		return catalog.VideoItem{}, false
	}
	return c.mod.Video(c.openMediaID)
}

type State struct {
	ModuleID  string             `json:"module_id"`
	ActiveTab Tab                `json:"active_tab"`
	OpenMedia *catalog.VideoItem `json:"open_media,omitempty"`
	Quiz      quiz.Snapshot      `json:"quiz"`
}

func (c *Controller) State() State {
	s := State{
		ModuleID:  c.mod.ID,
		ActiveTab: c.tab,
		Quiz:      c.quiz.Snapshot(),
	}
	if v, ok := c.OpenMediaItem(); ok {
		s.OpenMedia = &v
	}
	return s
}
