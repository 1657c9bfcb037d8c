package bootstrap

import (
	"context"
	"log/slog"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/infra/messaging"
	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/clock"
	"cinema-reservation/internal/pkg/config"
	"cinema-reservation/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

var KafkaModule = fx.Module("kafka",
	fx.Provide(
		NewKafkaWriter,
		fx.Annotate(
			NewEventPublisher,
			fx.As(new(shared.EventPublisher)),
		),
	),
	fx.Invoke(StartConsumer),
)

func NewKafkaWriter(lc fx.Lifecycle, cfg config.Config) *kafka.Writer {
	w := messaging.NewWriter(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return w.Close()
		},
	})
	return w
}

func NewEventPublisher(w *kafka.Writer, cfg config.Config, clk clock.Clock, m *metrics.Metrics, logger *slog.Logger) *messaging.KafkaPublisher {
	return messaging.NewKafkaPublisher(w, cfg.Kafka.ClientID, cfg.Kafka.WriteTimeout, clk, m, logger)
}

// StartConsumer runs the activity log consumer over every produced topic
// when enabled.
func StartConsumer(lc fx.Lifecycle, cfg config.Config, w *kafka.Writer, logger *slog.Logger) {
	if !cfg.Kafka.ConsumerEnabled {
		return
	}

	subs := make([]messaging.Subscription, 0, len(event.Topics))
	for _, topic := range event.Topics {
		subs = append(subs, messaging.Subscription{
			Topic:  topic,
			Reader: messaging.NewReader(cfg.Kafka, topic),
		})
	}
	consumer := messaging.NewConsumer(subs, messaging.ActivityLogger(logger), w, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				if err := consumer.Run(ctx); err != nil {
					logger.Error("consumer stopped", "error", err.Error())
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return consumer.Close()
		},
	})
}
