package services

import (
	"context"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/scheduler"
)

// EventsPublisher — композитный издатель записанных событий.
type EventsPublisher interface {
	PublishAll(ctx context.Context, events []models.Event)
}

// RealtimeNotifier — внеполосные уведомления realtime-канала.
type RealtimeNotifier interface {
	NotifyMatchStarted(tournamentID, matchID string, round int)
	NotifyMatchScoreUpdated(tournamentID, matchID string, scoreA, scoreB int)
}

// RoundTimerControl — управление таймером раунда.
type RoundTimerControl interface {
	Start(tournamentID string, seconds int, onComplete scheduler.CompletionFunc)
	Stop(tournamentID string)
}
