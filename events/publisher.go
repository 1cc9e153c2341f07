package events

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pongarena/tournament-engine/models"
)

// publishTimeout ограничивает каждый вызов канала: отказ внешней системы
// не должен держать запрос дольше этого времени.
const publishTimeout = 5 * time.Second

// Publisher — один канал доставки записанных событий.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event models.Event) error
}

// CompositePublisher раздаёт события всем каналам параллельно.
// Отказ одного канала логируется и не мешает доставке в остальные
// и не откатывает уже закоммиченное состояние.
type CompositePublisher struct {
	channels []Publisher
	logger   *zap.Logger
}

func NewCompositePublisher(logger *zap.Logger, channels ...Publisher) *CompositePublisher {
	return &CompositePublisher{channels: channels, logger: logger}
}

// PublishAll доставляет пачку событий. Внутри одного канала порядок
// событий сохраняется, каналы работают независимо друг от друга.
func (c *CompositePublisher) PublishAll(ctx context.Context, evts []models.Event) {
	if len(evts) == 0 {
		return
	}

	var g errgroup.Group
	for _, channel := range c.channels {
		channel := channel
		g.Go(func() error {
			for _, event := range evts {
				publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
				err := channel.Publish(publishCtx, event)
				cancel()
				if err != nil {
					c.logger.Error("event publish failed",
						zap.String("channel", channel.Name()),
						zap.String("event", event.EventName()),
						zap.String("tournament_id", event.AggregateID()),
						zap.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
