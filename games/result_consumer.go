package games

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/natsjetstream"
	"github.com/pongarena/tournament-engine/repositories"
)

// GameFinished — входящее сообщение игрового сервиса.
// Ключи JSON — внешний контракт, gameId совпадает с id матча.
type GameFinished struct {
	GameID   string `json:"gameId"`
	Score1   int    `json:"score1"`
	Score2   int    `json:"score2"`
	WinnerID string `json:"winnerId"`
}

// ResultHandler — use-case обработки результата матча.
type ResultHandler interface {
	ProcessMatchResult(ctx context.Context, matchID string, scoreA, scoreB int, winnerID string) error
}

// ResultConsumer слушает game.finished и заводит результат в агрегат.
type ResultConsumer struct {
	subscriber *natsjetstream.Subscriber
	handler    ResultHandler
	logger     *zap.Logger
}

func NewResultConsumer(subscriber *natsjetstream.Subscriber, handler ResultHandler, logger *zap.Logger) *ResultConsumer {
	return &ResultConsumer{subscriber: subscriber, handler: handler, logger: logger}
}

func (c *ResultConsumer) Start(ctx context.Context) error {
	return c.subscriber.Subscribe(ctx, natsjetstream.ConsumerConfig{
		StreamName:   StreamName,
		ConsumerName: "tournament-engine-game-results",
		Subject:      SubjectGameFinished,
		Durable:      true,
	}, c.handle)
}

func (c *ResultConsumer) handle(ctx context.Context, msg jetstream.Msg) error {
	var finished GameFinished
	if err := json.Unmarshal(msg.Data(), &finished); err != nil {
		// Битое сообщение ретраить бессмысленно.
		c.logger.Error("malformed game.finished payload", zap.Error(err))
		return nil
	}

	err := c.handler.ProcessMatchResult(ctx, finished.GameID, finished.Score1, finished.Score2, finished.WinnerID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentVersionConflict):
		// Конкурентная запись: NAK, сообщение придёт повторно.
		return fmt.Errorf("concurrent write for game %s: %w", finished.GameID, err)
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, models.ErrMatchNotFound),
		errors.Is(err, models.ErrMatchAlreadyFinished):
		// Дубликат или результат неизвестного матча: подтверждаем,
		// чтобы не зациклить доставку.
		c.logger.Warn("dropping game result",
			zap.String("game_id", finished.GameID), zap.Error(err))
		return nil
	default:
		return fmt.Errorf("failed to process game %s result: %w", finished.GameID, err)
	}
}
