package messaging

import (
	"context"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/pkg/config"

	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType     = "x-event-type"
	HeaderTimestamp     = "timestamp"
	HeaderOriginalTopic = "original_topic"
	HeaderException     = "exception"
)

// Publish writes synchronously, so the writer must not sit on the kafka-go
// default one-second batch wait.
const (
	writerBatchTimeout = 10 * time.Millisecond
	writerBatchSize    = 100
)

//go:generate mockgen -source=kafka.go -destination=../../../tests/mock/messaging/kafka_mock.go -package=messagingmock

// Writer is the part of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reader is the part of *kafka.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter returns a writer without a default topic; every message names its own.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           writerBatchTimeout,
		BatchSize:              writerBatchSize,
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
		Transport: &kafka.Transport{
			ClientID: cfg.ClientID,
		},
	}
}

func NewReader(cfg config.KafkaConfig, topic event.Topic) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic.String(),
		GroupID:  GroupID(topic),
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func GroupID(topic event.Topic) string {
	return "cinema-" + topic.String() + "-consumer"
}
