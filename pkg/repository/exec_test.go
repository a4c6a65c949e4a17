package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

type fakeResult struct{ rows int64 }

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.rows, nil }

type fakeExecutor struct {
	rows int64
	err  error
}

func (f fakeExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return fakeResult{rows: f.rows}, nil
}

func TestExecExpectOne(t *testing.T) {
	tests := []struct {
		name     string
		executor fakeExecutor
		expected error
	}{
		{
			name:     "one row affected",
			executor: fakeExecutor{rows: 1},
			expected: nil,
		},
		{
			name:     "no rows affected",
			executor: fakeExecutor{rows: 0},
			expected: sql.ErrNoRows,
		},
		{
			name:     "execution failure passes through",
			executor: fakeExecutor{err: errors.New("relation missing")},
			expected: errors.New("relation missing"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repository.ExecExpectOne(context.Background(), tt.executor, "UPDATE t SET x = $1", 1)
			switch {
			case tt.expected == nil && err != nil:
				t.Errorf("got %v, want nil", err)
			case tt.expected != nil && (err == nil || err.Error() != tt.expected.Error()):
				t.Errorf("got %v, want %v", err, tt.expected)
			}
		})
	}
}
