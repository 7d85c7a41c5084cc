// Package results hands finished session records to their consumers:
// the message bus, the local store, metrics, and spreadsheet export.
package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

// Sink receives terminal session records.
type Sink = session.Sink

// Fanout delivers to every sink in order and joins their errors. A
// failing sink does not stop the rest.
type Fanout []Sink

func (f Fanout) Deliver(ctx context.Context, rec session.Record) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Deliver(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Encode serializes a record for the bus and the store payload column.
func Encode(rec session.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record %s: %w", rec.SessionID, err)
	}
	return data, nil
}

// Decode parses a payload written by Encode.
func Decode(data []byte) (session.Record, error) {
	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return session.Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
