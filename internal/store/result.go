package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const resultsTable = "session_results"

var resultColumns = []string{
	"session_id", "sequence", "topic", "status", "reason",
	"started_at", "finished_at", "elapsed_seconds", "question_count",
	"answered_count", "mode_exits", "violations", "degraded", "payload",
}

type resultRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *resultRepo) Save(ctx context.Context, data ResultData) error {
	if data.SessionID == "" {
		return fmt.Errorf("save result: empty session id")
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var started int64
	if !data.StartedAt.IsZero() {
		started = data.StartedAt.UnixMilli()
	}
	finished := data.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(resultsTable).
		Columns(resultColumns...).
		Values(
			data.SessionID, seqNum, data.Topic, data.Status, data.Reason,
			started, finished.UnixMilli(), data.ElapsedSeconds, data.QuestionCount,
			data.AnsweredCount, data.ModeExits, data.Violations, data.Degraded, string(data.Payload),
		).
		OnConflict(
			entsql.ConflictColumns("session_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save result %s: %w", data.SessionID, err)
	}
	return nil
}

func (r *resultRepo) Get(ctx context.Context, sessionID string) (*ResultRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(resultColumns...).
		From(entsql.Table(resultsTable)).
		Where(entsql.EQ("session_id", sessionID)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("get result %s: %w", sessionID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanResult(&rows)
}

func (r *resultRepo) List(ctx context.Context, opts QueryOpts) ([]ResultRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(resultColumns...).
		From(entsql.Table(resultsTable)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts, "finished_at")

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		rec, err := scanResult(&rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanResult(rows *entsql.Rows) (*ResultRecord, error) {
	var (
		rec               ResultRecord
		started, finished int64
		payload           string
	)
	err := rows.Scan(
		&rec.SessionID, &rec.Sequence, &rec.Topic, &rec.Status, &rec.Reason,
		&started, &finished, &rec.ElapsedSeconds, &rec.QuestionCount,
		&rec.AnsweredCount, &rec.ModeExits, &rec.Violations, &rec.Degraded, &payload,
	)
	if err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}
	if started > 0 {
		rec.StartedAt = time.UnixMilli(started)
	}
	rec.FinishedAt = time.UnixMilli(finished)
	rec.Payload = []byte(payload)
	return &rec, nil
}
