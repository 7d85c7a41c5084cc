package results

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

// Transports for Config.Transport.
const (
	TransportNone      = "none"
	TransportGoChannel = "gochannel"
	TransportKafka     = "kafka"
)

// Config selects where finished sessions are published.
type Config struct {
	// Transport is "none" (store only), "gochannel" (in-process bus
	// feeding the store), or "kafka".
	Transport    string   `yaml:"transport" validate:"oneof=none gochannel kafka"`
	Topic        string   `yaml:"topic" validate:"required"`
	KafkaBrokers []string `yaml:"kafka_brokers" validate:"required_if=Transport kafka"`
}

// DefaultConfig publishes on an in-process channel.
func DefaultConfig() Config {
	return Config{
		Transport: TransportGoChannel,
		Topic:     "clario.sessions.finished",
	}
}

// Bus is an opened transport. Subscriber is nil for Kafka, whose
// consumers live in other services.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Topic      string
}

// Close releases the transport.
func (b *Bus) Close() error {
	if b == nil || b.Publisher == nil {
		return nil
	}
	return b.Publisher.Close()
}

// OpenBus opens the configured transport. It returns nil for "none".
func OpenBus(cfg Config, logger *slog.Logger) (*Bus, error) {
	wlog := watermill.NewSlogLogger(logger)

	switch cfg.Transport {
	case TransportNone, "":
		return nil, nil
	case TransportGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		}, wlog)
		return &Bus{Publisher: ch, Subscriber: ch, Topic: cfg.Topic}, nil
	case TransportKafka:
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wlog)
		if err != nil {
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		return &Bus{Publisher: pub, Topic: cfg.Topic}, nil
	}
	return nil, fmt.Errorf("unknown results transport %q", cfg.Transport)
}

// Publisher is a Sink that publishes each record as a JSON message.
type Publisher struct {
	pub    message.Publisher
	topic  string
	logger *slog.Logger
}

// NewPublisher wraps pub.
func NewPublisher(pub message.Publisher, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{pub: pub, topic: topic, logger: logger}
}

func (p *Publisher) Deliver(ctx context.Context, rec session.Record) error {
	payload, err := Encode(rec)
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("session_id", rec.SessionID)
	msg.Metadata.Set("status", string(rec.Status))
	msg.Metadata.Set("reason", string(rec.Reason))
	msg.Metadata.Set("timestamp", rec.FinishedAt.Format(time.RFC3339))

	if err := p.pub.Publish(p.topic, msg); err != nil {
		p.logger.Error("publish session record", "session_id", rec.SessionID, "error", err)
		return fmt.Errorf("publish session record: %w", err)
	}
	p.logger.Info("published session record", "session_id", rec.SessionID, "topic", p.topic)
	return nil
}
