package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const fetchRetryDelay = time.Second

// Handler processes one decoded event. A returned error sends the raw
// message to the dead letter topic.
type Handler func(ctx context.Context, topic event.Topic, env event.Envelope) error

type Subscription struct {
	Topic  event.Topic
	Reader Reader
}

// Consumer reads every subscribed topic concurrently and commits each message
// once it has been handled or dead-lettered.
type Consumer struct {
	subs    []Subscription
	handler Handler
	dlq     Writer
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewConsumer(subs []Subscription, handler Handler, dlq Writer, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		subs:    subs,
		handler: handler,
		dlq:     dlq,
		logger:  logger,
		tracer:  otel.Tracer("cinema-reservation/messaging"),
	}
}

// Run blocks until ctx is cancelled or a reader fails for good.
func (c *Consumer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, sub := range c.subs {
		g.Go(func() error {
			return c.consume(ctx, sub)
		})
	}
	return g.Wait()
}

func (c *Consumer) consume(ctx context.Context, sub Subscription) error {
	c.logger.Info("consumer started", "topic", sub.Topic)
	for {
		msg, err := sub.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped", "topic", sub.Topic)
				return nil
			}
			if errors.Is(err, io.EOF) {
				// Reader closed.
				return nil
			}
			c.logger.Error("failed to fetch message", "topic", sub.Topic, "error", err.Error())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		c.process(ctx, sub.Topic, msg)

		if err := sub.Reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit message",
				"topic", sub.Topic,
				"offset", msg.Offset,
				"error", err.Error())
		}
	}
}

func (c *Consumer) process(ctx context.Context, topic event.Topic, msg kafka.Message) {
	carrier := headerCarrier(msg.Headers)
	ctx = otel.GetTextMapPropagator().Extract(ctx, &carrier)
	ctx, span := c.tracer.Start(ctx, "consume "+topic.String(),
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.String("messaging.kafka.message.key", string(msg.Key)),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	var env event.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		span.RecordError(err)
		c.deadLetter(ctx, topic, msg, errs.Wrap(err, "decode envelope"))
		return
	}

	if err := c.handler(ctx, topic, env); err != nil {
		span.RecordError(err)
		c.deadLetter(ctx, topic, msg, err)
	}
}

func (c *Consumer) deadLetter(ctx context.Context, topic event.Topic, msg kafka.Message, cause error) {
	c.logger.Error("failed to handle message",
		"topic", topic,
		"offset", msg.Offset,
		"event_type", header(msg.Headers, HeaderEventType),
		"error", cause.Error())

	if c.dlq == nil {
		return
	}
	dlq := kafka.Message{
		Topic: topic.DeadLetter().String(),
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(append([]kafka.Header{}, msg.Headers...),
			kafka.Header{Key: HeaderOriginalTopic, Value: []byte(topic)},
			kafka.Header{Key: HeaderException, Value: []byte(cause.Error())},
		),
	}
	if err := c.dlq.WriteMessages(context.WithoutCancel(ctx), dlq); err != nil {
		c.logger.Error("failed to write dead letter", "topic", dlq.Topic, "error", err.Error())
	}
}

func (c *Consumer) Close() error {
	var errList []error
	for _, sub := range c.subs {
		if err := sub.Reader.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// ActivityLogger is the default handler: it records what happened to which
// reservation, sale or seat.
func ActivityLogger(logger *slog.Logger) Handler {
	return func(_ context.Context, topic event.Topic, env event.Envelope) error {
		if env.EventType == "" {
			return errs.New("event without type")
		}
		logger.Info("event received",
			"topic", topic,
			"event_id", env.EventID,
			"event_type", env.EventType,
			"producer", env.Producer,
			"occurred_at", env.OccurredAt)
		return nil
	}
}
