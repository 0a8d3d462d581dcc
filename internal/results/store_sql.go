package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SQLStore persists results in the quiz_results table created by db.Open.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Record(ctx context.Context, r Result) (Result, error) {
	if r.LearnerID == "" || r.ModuleID == "" {
		return Result{}, errors.New("learner_id and module_id required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Answers == nil {
		r.Answers = map[string]int{}
	}
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return Result{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_results
		(id,learner_id,module_id,correct,total,percentage,answers_json,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.LearnerID, r.ModuleID, r.Correct, r.Total, r.Percentage, string(aj), r.CompletedAt)
	if err != nil {
		return Result{}, fmt.Errorf("insert result: %w", err)
	}
	return r, nil
}

const resultColumns = `id,learner_id,module_id,correct,total,percentage,answers_json,completed_at`

func (s *SQLStore) Get(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM quiz_results WHERE id=$1`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	return r, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Result, error) {
	var (
		where []string
		args  []any
	)
	if opts.LearnerID != "" {
		args = append(args, opts.LearnerID)
		where = append(where, fmt.Sprintf("learner_id=$%d", len(args)))
	}
	if opts.ModuleID != "" {
		args = append(args, opts.ModuleID)
		where = append(where, fmt.Sprintf("module_id=$%d", len(args)))
	}

	q := `SELECT ` + resultColumns + ` FROM quiz_results`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, normLimit(opts.Limit), offset)
	q += fmt.Sprintf(` ORDER BY completed_at DESC, id ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (Result, error) {
	var (
		r  Result
		aj string
	)
	if err := sc.Scan(&r.ID, &r.LearnerID, &r.ModuleID, &r.Correct, &r.Total, &r.Percentage, &aj, &r.CompletedAt); err != nil {
		return Result{}, err
	}
	r.Answers = map[string]int{}
	if aj != "" {
		if err := json.Unmarshal([]byte(aj), &r.Answers); err != nil {
			return Result{}, fmt.Errorf("decode answers for %s: %w", r.ID, err)
		}
	}
	return r, nil
}
