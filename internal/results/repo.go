package results

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("result not found")

type ListOpts struct {
	LearnerID string
	ModuleID  string // optional
	Limit     int
	Offset    int
}

// Store keeps completed attempts. Lists are newest first.
type Store interface {
	Record(ctx context.Context, r Result) (Result, error)
	Get(ctx context.Context, id string) (Result, error)
	List(ctx context.Context, opts ListOpts) ([]Result, error)
}

const defaultListLimit = 50

func normLimit(n int) int {
	if n <= 0 || n > 500 {
		return defaultListLimit
	}
	return n
}
