package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

type KafkaPublisher struct {
	writer   Writer
	producer string
	timeout  time.Duration
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewKafkaPublisher(
	writer Writer,
	producer string,
	timeout time.Duration,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{
		writer:   writer,
		producer: producer,
		timeout:  timeout,
		clock:    clk,
		metrics:  m,
		logger:   logger,
	}
}

// Publish is fire-and-log. A failed write is parked on the topic's dead
// letter topic and never reported to the caller, whose transaction has
// already committed.
func (p *KafkaPublisher) Publish(ctx context.Context, e event.Event) {
	// Outlive the request that triggered the event.
	ctx = context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg, err := p.message(ctx, e)
	if err != nil {
		p.metrics.EventPublished(e.Topic.String(), "failed")
		p.logger.Error("failed to encode event",
			"topic", e.Topic,
			"event_type", e.Type,
			"error", err.Error())
		return
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventPublished(e.Topic.String(), "failed")
		p.logger.Error("failed to publish event",
			"topic", e.Topic,
			"event_type", e.Type,
			"key", e.Key,
			"error", err.Error())
		p.deadLetter(ctx, msg, err)
		return
	}

	p.metrics.EventPublished(e.Topic.String(), "published")
	p.logger.Debug("event published", "topic", e.Topic, "event_type", e.Type, "key", e.Key)
}

func (p *KafkaPublisher) message(ctx context.Context, e event.Event) (kafka.Message, error) {
	now := p.clock.Now()
	body, err := json.Marshal(event.Envelope{
		EventID:    uuid.NewString(),
		EventType:  e.Type,
		OccurredAt: now,
		Producer:   p.producer,
		Payload:    e.Payload,
	})
	if err != nil {
		return kafka.Message{}, err
	}

	headers := headerCarrier{
		{Key: HeaderEventType, Value: []byte(e.Type)},
		{Key: HeaderTimestamp, Value: []byte(strconv.FormatInt(now.UnixMilli(), 10))},
	}
	otel.GetTextMapPropagator().Inject(ctx, &headers)

	msg := kafka.Message{
		Topic:   e.Topic.String(),
		Value:   body,
		Headers: headers,
		Time:    now,
	}
	if e.Key != "" {
		msg.Key = []byte(e.Key)
	}
	return msg, nil
}

// deadLetter forwards msg to <topic>-dlq. Its own failure is only logged.
func (p *KafkaPublisher) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	original := msg.Topic
	dlq := kafka.Message{
		Topic: event.Topic(original).DeadLetter().String(),
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(append([]kafka.Header{}, msg.Headers...),
			kafka.Header{Key: HeaderOriginalTopic, Value: []byte(original)},
			kafka.Header{Key: HeaderException, Value: []byte(cause.Error())},
		),
		Time: msg.Time,
	}

	if err := p.writer.WriteMessages(ctx, dlq); err != nil {
		p.metrics.EventPublished(dlq.Topic, "failed")
		p.logger.Error("failed to write dead letter",
			"topic", dlq.Topic,
			"original_topic", original,
			"error", err.Error())
		return
	}
	p.metrics.EventPublished(dlq.Topic, "dead_lettered")
	p.logger.Warn("event sent to dead letter topic", "topic", dlq.Topic, "original_topic", original)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
