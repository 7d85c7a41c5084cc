package store

import (
	"context"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter orders rows across tables, so an LLM call can be placed
// before or after the session result it fed. The single row lives in
// global_sequence, created by migrate.
type sequenceCounter struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

// Next returns the current value and bumps the stored one in the same
// statement.
func (c *sequenceCounter) Next(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rows entsql.Rows
	const bump = `UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`
	if err := c.drv.Query(ctx, bump, []any{}, &rows); err != nil {
		return 0, fmt.Errorf("bump sequence: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("bump sequence: %w", err)
		}
		return 0, fmt.Errorf("bump sequence: counter row missing")
	}
	var seq int64
	if err := rows.Scan(&seq); err != nil {
		return 0, fmt.Errorf("scan sequence: %w", err)
	}
	return seq, nil
}
