package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

const sequenceTable = "global_sequence"

// rowQuerier is *sql.DB or *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sequence hands out one increasing number shared by LLM events, runs and
// questions, so rows from different tables can be ordered against each
// other ("which calls belong to this run").
type sequence struct {
	mu sync.Mutex
}

// seedSequence inserts the single counter row unless it already exists.
func seedSequence(ctx context.Context, db *sql.DB) error {
	query, args := sqlite.Insert(sequenceTable).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// next draws a number on q. Pass the transaction when inside one so the
// draw rides on the same connection.
func (s *sequence) next(ctx context.Context, q rowQuerier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err := q.QueryRowContext(ctx,
		`UPDATE `+sequenceTable+` SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
