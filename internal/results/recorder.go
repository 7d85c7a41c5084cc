package results

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/store"
)

// Recorder persists records to the result store.
type Recorder struct {
	repo   store.ResultRepo
	logger *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(repo store.ResultRepo, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Deliver saves rec. Saving the same session again replaces the row.
func (r *Recorder) Deliver(ctx context.Context, rec session.Record) error {
	payload, err := Encode(rec)
	if err != nil {
		return err
	}
	return r.repo.Save(ctx, toResultData(rec, payload))
}

// Consume subscribes to topic and saves every message until ctx ends or
// the subscriber closes. The returned channel closes when consumption
// stops. Undecodable messages are acked and dropped; store failures are
// nacked for redelivery.
func (r *Recorder) Consume(ctx context.Context, sub message.Subscriber, topic string) (<-chan struct{}, error) {
	msgs, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			rec, err := Decode(msg.Payload)
			if err != nil {
				r.logger.Error("drop undecodable session record", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			if err := r.repo.Save(msg.Context(), toResultData(rec, msg.Payload)); err != nil {
				r.logger.Error("save session record", "session_id", rec.SessionID, "error", err)
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return done, nil
}

func toResultData(rec session.Record, payload []byte) store.ResultData {
	return store.ResultData{
		SessionID:      rec.SessionID,
		Topic:          rec.Topic,
		Status:         string(rec.Status),
		Reason:         string(rec.Reason),
		StartedAt:      rec.StartedAt,
		FinishedAt:     rec.FinishedAt,
		ElapsedSeconds: rec.ElapsedSeconds,
		QuestionCount:  len(rec.Questions),
		AnsweredCount:  rec.Answered(),
		ModeExits:      rec.Violations.ModeExits,
		Violations:     rec.Violations.Generic,
		Degraded:       rec.Degraded,
		Payload:        payload,
	}
}
