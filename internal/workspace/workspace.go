// Package workspace keeps one module navigator per learner so the
// single-owner viewer and quiz types can sit behind a concurrent HTTP API.
package workspace

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mind-engage/prepared/internal/catalog"
	"github.com/mind-engage/prepared/internal/viewer"
)

var (
	ErrEmptyLearner = errors.New("learner id required")
	// ErrNoSession is returned by Existing for a learner with no navigator.
	ErrNoSession = errors.New("no session for learner")
)

type session struct {
	mu       sync.Mutex
	nav      *viewer.Navigator
	lastUsed atomic.Int64 // unix nanos
}

func (s *session) touch(now time.Time) { s.lastUsed.Store(now.UnixNano()) }

type Workspace struct {
	cat *catalog.Catalog
	now func() time.Time

	mu       sync.RWMutex
	learners map[string]*session
}

func New(cat *catalog.Catalog) *Workspace {
	return &Workspace{cat: cat, now: time.Now, learners: map[string]*session{}}
}

func (w *Workspace) Catalog() *catalog.Catalog { return w.cat }

// With runs fn against the learner's navigator, creating it on first use.
// Calls for the same learner are serialized.
func (w *Workspace) With(learnerID string, fn func(*viewer.Navigator) error) error {
	if strings.TrimSpace(learnerID) == "" {
		return ErrEmptyLearner
	}
	return w.run(w.session(learnerID), fn)
}

// Existing is With without the implicit creation: a learner that has no
// navigator yet gets ErrNoSession and no state is allocated.
func (w *Workspace) Existing(learnerID string, fn func(*viewer.Navigator) error) error {
	if strings.TrimSpace(learnerID) == "" {
		return ErrEmptyLearner
	}
	w.mu.RLock()
	s, ok := w.learners[learnerID]
	w.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	return w.run(s, fn)
}

func (w *Workspace) run(s *session, fn func(*viewer.Navigator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(w.now())
	return fn(s.nav)
}

func (w *Workspace) session(learnerID string) *session {
	w.mu.RLock()
	s, ok := w.learners[learnerID]
	w.mu.RUnlock()
	if ok {
		return s
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.learners[learnerID]; ok {
		return s
	}
	s = &session{nav: viewer.NewNavigator(w.cat)}
	s.touch(w.now())
	w.learners[learnerID] = s
	return s
}

// Forget drops the learner's navigator and any open attempt.
func (w *Workspace) Forget(learnerID string) {
	w.mu.Lock()
	delete(w.learners, learnerID)
	w.mu.Unlock()
}

// Sweep forgets every learner idle for longer than maxIdle and returns how
// many were dropped.
func (w *Workspace) Sweep(maxIdle time.Duration) int {
	cutoff := w.now().Add(-maxIdle).UnixNano()
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for id, s := range w.learners {
		if s.lastUsed.Load() < cutoff {
			delete(w.learners, id)
			n++
		}
	}
	return n
}

// ScheduleSweep registers a Sweep of learners idle for maxIdle on c under the
// cron spec. The caller owns c and starts and stops it.
func (w *Workspace) ScheduleSweep(c *cron.Cron, spec string, maxIdle time.Duration) error {
	_, err := c.AddFunc(spec, func() {
		if n := w.Sweep(maxIdle); n > 0 {
			log.Printf("workspace: dropped %d idle learners (remaining=%d)", n, w.Len())
		}
	})
	if err != nil {
		return fmt.Errorf("workspace: sweep schedule %q: %w", spec, err)
	}
	return nil
}

func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.learners)
}
