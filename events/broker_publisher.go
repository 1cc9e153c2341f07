package events

import (
	"context"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/natsjetstream"
)

// SubjectPrefix — префикс routing key брокерного канала:
// tournament.created, tournament.player_joined и т.д.
const SubjectPrefix = "tournament."

// StreamName — JetStream stream, в который пишутся события турниров.
const StreamName = "TOURNAMENT"

// BrokerPublisher публикует события durable-каналом для внешних
// сервисов (например, игрового).
type BrokerPublisher struct {
	publisher *natsjetstream.Publisher
}

func NewBrokerPublisher(publisher *natsjetstream.Publisher) *BrokerPublisher {
	return &BrokerPublisher{publisher: publisher}
}

func (p *BrokerPublisher) Name() string {
	return "broker"
}

func (p *BrokerPublisher) Publish(ctx context.Context, event models.Event) error {
	return p.publisher.PublishJSON(ctx, SubjectPrefix+event.EventName(), event)
}
