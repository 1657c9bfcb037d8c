//go:build unit

package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/infra/messaging"
	"cinema-reservation/internal/pkg/clock"
	"cinema-reservation/internal/pkg/config"
	messagingmock "cinema-reservation/tests/mock/messaging"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func sampleEvent() event.Event {
	id := uuid.MustParse("0b6c2f64-58e3-4d8f-9a43-2f0f5c3b7a11")
	return event.Event{
		Topic: event.TopicReservations,
		Key:   id.String(),
		Type:  event.TypeReservationCancelled,
		Payload: event.ReservationCancelled{
			ReservationID: id,
			Reason:        "user_cancelled",
			CancelledAt:   fixedNow,
		},
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Run("writes envelope with headers and key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		writer := messagingmock.NewMockWriter(ctrl)
		pub := messaging.NewKafkaPublisher(writer, "cinema-test", time.Second, clock.NewMockClock(fixedNow), nil, nil)

		var got kafka.Message
		writer.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
				require.Len(t, msgs, 1)
				got = msgs[0]
				return nil
			})

		e := sampleEvent()
		pub.Publish(context.Background(), e)

		assert.Equal(t, "reservation-events", got.Topic)
		assert.Equal(t, e.Key, string(got.Key))
		assert.Equal(t, "reservation.cancelled", headerValue(got, messaging.HeaderEventType))
		assert.Equal(t, "1748800800000", headerValue(got, messaging.HeaderTimestamp))

		var env struct {
			EventID    string          `json:"eventId"`
			EventType  string          `json:"eventType"`
			OccurredAt time.Time       `json:"occurredAt"`
			Producer   string          `json:"producer"`
			Payload    json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(got.Value, &env))
		assert.NotEmpty(t, env.EventID)
		assert.Equal(t, "reservation.cancelled", env.EventType)
		assert.Equal(t, "cinema-test", env.Producer)
		assert.True(t, fixedNow.Equal(env.OccurredAt))
		assert.JSONEq(t,
			`{"reservationId":"0b6c2f64-58e3-4d8f-9a43-2f0f5c3b7a11","reason":"user_cancelled","cancelledAt":"2025-06-01T18:00:00Z"}`,
			string(env.Payload))
	})

	t.Run("outlives a cancelled caller context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		writer := messagingmock.NewMockWriter(ctrl)
		pub := messaging.NewKafkaPublisher(writer, "cinema-test", time.Second, clock.NewMockClock(fixedNow), nil, nil)

		writer.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ ...kafka.Message) error {
				assert.NoError(t, ctx.Err())
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return nil
			})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		pub.Publish(ctx, sampleEvent())
	})

	t.Run("failed write is forwarded to the dead letter topic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		writer := messagingmock.NewMockWriter(ctrl)
		pub := messaging.NewKafkaPublisher(writer, "cinema-test", time.Second, clock.NewMockClock(fixedNow), nil, nil)

		var dlq kafka.Message
		gomock.InOrder(
			writer.EXPECT().
				WriteMessages(gomock.Any(), gomock.Any()).
				Return(errors.New("broker down")),
			writer.EXPECT().
				WriteMessages(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
					dlq = msgs[0]
					return nil
				}),
		)

		e := sampleEvent()
		pub.Publish(context.Background(), e)

		assert.Equal(t, "reservation-events-dlq", dlq.Topic)
		assert.Equal(t, e.Key, string(dlq.Key))
		assert.Equal(t, "reservation-events", headerValue(dlq, messaging.HeaderOriginalTopic))
		assert.Equal(t, "broker down", headerValue(dlq, messaging.HeaderException))
		assert.Equal(t, "reservation.cancelled", headerValue(dlq, messaging.HeaderEventType))
	})

	t.Run("dead letter failure is swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		writer := messagingmock.NewMockWriter(ctrl)
		pub := messaging.NewKafkaPublisher(writer, "cinema-test", time.Second, clock.NewMockClock(fixedNow), nil, nil)

		writer.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			Return(errors.New("broker down")).
			Times(2)

		assert.NotPanics(t, func() {
			pub.Publish(context.Background(), sampleEvent())
		})
	})

	t.Run("unencodable payload never reaches the broker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		writer := messagingmock.NewMockWriter(ctrl)
		pub := messaging.NewKafkaPublisher(writer, "cinema-test", time.Second, clock.NewMockClock(fixedNow), nil, nil)

		e := sampleEvent()
		e.Payload = make(chan int)
		pub.Publish(context.Background(), e)
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWriter(t *testing.T) {
	cfg := config.KafkaConfig{
		Brokers:      []string{"kafka-1:9092"},
		ClientID:     "cinema-test",
		WriteTimeout: 3 * time.Second,
	}

	w := messaging.NewWriter(cfg)
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, 100, w.BatchSize)
	assert.Equal(t, 3*time.Second, w.WriteTimeout)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Empty(t, w.Topic)
	assert.Equal(t, "kafka-1:9092", w.Addr.String())

	transport, ok := w.Transport.(*kafka.Transport)
	require.True(t, ok)
	assert.Equal(t, "cinema-test", transport.ClientID)
}
