package natsjetstream

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	StreamName   string
	ConsumerName string
	Subject      string
	Durable      bool
}

type MessageHandler func(ctx context.Context, msg jetstream.Msg) error

type Subscriber struct {
	client *Client
	logger *zap.Logger
}

func NewSubscriber(client *Client, logger *zap.Logger) *Subscriber {
	return &Subscriber{client: client, logger: logger}
}

// Subscribe создаёт durable-консьюмер и обрабатывает сообщения handler'ом.
// Ошибка обработчика приводит к NAK и повторной доставке.
func (s *Subscriber) Subscribe(ctx context.Context, cfg ConsumerConfig, handler MessageHandler) error {
	consumerConfig := jetstream.ConsumerConfig{
		Name:          cfg.ConsumerName,
		FilterSubject: cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	if cfg.Durable {
		consumerConfig.Durable = cfg.ConsumerName
	}

	consumer, err := s.client.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", cfg.ConsumerName, err)
	}

	_, err = consumer.Consume(func(msg jetstream.Msg) {
		if handleErr := handler(ctx, msg); handleErr != nil {
			s.logger.Error("message handling failed",
				zap.String("subject", msg.Subject()), zap.Error(handleErr))
			msg.Nak()
		} else {
			msg.Ack()
		}
	})
	return err
}
