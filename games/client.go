package games

import (
	"context"

	"github.com/pongarena/tournament-engine/natsjetstream"
)

const (
	// StreamName — JetStream stream игрового сервиса.
	StreamName = "GAMES"

	SubjectGameCreate   = "game.create"
	SubjectGameFinished = "game.finished"
)

// CreateGameCommand — команда игровому сервису на запуск матча.
type CreateGameCommand struct {
	MatchID      string `json:"match_id"`
	PlayerAID    string `json:"player_a_id"`
	PlayerBID    string `json:"player_b_id"`
	TournamentID string `json:"tournament_id"`
	IsFinal      bool   `json:"is_final"`
}

// Client выдаёт команды внешнему игровому сервису.
type Client interface {
	CreateGame(ctx context.Context, cmd CreateGameCommand) error
}

type natsClient struct {
	publisher *natsjetstream.Publisher
}

func NewNATSClient(publisher *natsjetstream.Publisher) Client {
	return &natsClient{publisher: publisher}
}

func (c *natsClient) CreateGame(ctx context.Context, cmd CreateGameCommand) error {
	return c.publisher.PublishJSON(ctx, SubjectGameCreate, cmd)
}
