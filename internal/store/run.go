package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var runColumns = []string{
	"id", "sequence", "timestamp", "mode", "topic", "chapter",
	"requested", "accepted", "rejected", "disagreements", "degraded",
	"attempts", "outcome", "error", "spec",
}

var questionColumns = []string{
	"id", "run_id", "sequence", "timestamp", "topic", "type",
	"difficulty", "text", "score", "body",
}

// runRepo implements RunRepo backed by SQLite.
type runRepo struct {
	db  *sql.DB
	seq *sequence
}

func (r *runRepo) SaveRun(ctx context.Context, run RunRecord, questions []QuestionRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if len(run.Spec) == 0 {
		run.Spec = []byte("{}")
	}
	now := time.Now().UnixMilli()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run transaction: %w", err)
	}
	defer tx.Rollback()

	seqNum, err := r.seq.next(ctx, tx)
	if err != nil {
		return "", err
	}

	query, args := sqlite.Insert(runsTable).
		Columns(runColumns...).
		Values(
			run.ID, seqNum, now, run.Mode, run.Topic, run.Chapter,
			run.Requested, run.Accepted, run.Rejected, run.Disagreements, run.Degraded,
			run.Attempts, run.Outcome, run.Error, string(run.Spec),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	for i, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if len(q.Body) == 0 {
			q.Body = []byte("{}")
		}
		qSeq, err := r.seq.next(ctx, tx)
		if err != nil {
			return "", err
		}
		query, args := sqlite.Insert(questionsTable).
			Columns(questionColumns...).
			Values(
				q.ID, run.ID, qSeq, now, q.Topic, q.Type,
				q.Difficulty, q.Text, q.Score, string(q.Body),
			).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return "", fmt.Errorf("save question %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

func (r *runRepo) ListRuns(ctx context.Context, opts QueryOpts) ([]RunRecord, error) {
	sel := sqlite.Select(runColumns...).
		From(sqlite.Table(runsTable)).
		OrderBy(entsql.Desc("sequence"))
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *runRepo) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	query, args := sqlite.Select(runColumns...).
		From(sqlite.Table(runsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	run, err := scanRun(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func (r *runRepo) ListQuestions(ctx context.Context, q QuestionQuery) ([]QuestionRecord, error) {
	sel := sqlite.Select(questionColumns...).
		From(sqlite.Table(questionsTable)).
		OrderBy(entsql.Desc("sequence"))
	if q.RunID != "" {
		sel.Where(entsql.EQ("run_id", q.RunID))
	}
	if q.Topic != "" {
		sel.Where(entsql.EQ("topic", q.Topic))
	}
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var records []QuestionRecord
	for rows.Next() {
		var rec QuestionRecord
		var ts int64
		var body string
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.Sequence, &ts, &rec.Topic, &rec.Type,
			&rec.Difficulty, &rec.Text, &rec.Score, &body,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts).UTC()
		rec.Body = []byte(body)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var run RunRecord
	var ts int64
	var spec string
	err := row.Scan(
		&run.ID, &run.Sequence, &ts, &run.Mode, &run.Topic, &run.Chapter,
		&run.Requested, &run.Accepted, &run.Rejected, &run.Disagreements, &run.Degraded,
		&run.Attempts, &run.Outcome, &run.Error, &spec,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Timestamp = time.UnixMilli(ts).UTC()
	run.Spec = []byte(spec)
	return &run, nil
}
