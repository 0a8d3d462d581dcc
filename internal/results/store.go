package results

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	results map[string]Result
}

func NewInMemoryStore() Store {
	return &memoryStore{results: map[string]Result{}}
}

func (m *memoryStore) Record(_ context.Context, r Result) (Result, error) {
	if r.LearnerID == "" || r.ModuleID == "" {
		return Result{}, errors.New("learner_id and module_id required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.ID] = cloneResult(r)
	return r, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return Result{}, ErrNotFound
	}
	return cloneResult(r), nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Result, error) {
	m.mu.RLock()
	out := make([]Result, 0, len(m.results))
	for _, r := range m.results {
		if opts.LearnerID != "" && r.LearnerID != opts.LearnerID {
			continue
		}
		if opts.ModuleID != "" && r.ModuleID != opts.ModuleID {
			continue
		}
		out = append(out, cloneResult(r))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt != out[j].CompletedAt {
			return out[i].CompletedAt > out[j].CompletedAt
		}
		return out[i].ID < out[j].ID
	})

	if opts.Offset >= len(out) {
		return []Result{}, nil
	}
	out = out[opts.Offset:]
	if limit := normLimit(opts.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneResult(r Result) Result {
	answers := make(map[string]int, len(r.Answers))
	for k, v := range r.Answers {
		answers[k] = v
	}
	r.Answers = answers
	return r
}
