package events

import (
	"context"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/realtime"
)

// lobbyEvents — события, транслируемые дополнительно в общую комнату lobby.
var lobbyEvents = map[string]bool{
	models.EventTournamentCreated:   true,
	models.EventPlayerJoined:        true,
	models.EventTournamentStarted:   true,
	models.EventTournamentCancelled: true,
	models.EventTournamentFinished:  true,
}

// RealtimePublisher доставляет события в комнату турнира и, для
// лобби-релевантных имён, в комнату lobby. Комнаты других турниров
// чужих событий не видят.
type RealtimePublisher struct {
	hub *realtime.Hub
}

func NewRealtimePublisher(hub *realtime.Hub) *RealtimePublisher {
	return &RealtimePublisher{hub: hub}
}

func (p *RealtimePublisher) Name() string {
	return "realtime"
}

func (p *RealtimePublisher) Publish(_ context.Context, event models.Event) error {
	room := realtime.TournamentRoom(event.AggregateID())
	message := realtime.Message{
		Type:    event.EventName(),
		Payload: event,
		RoomID:  room,
	}
	p.hub.BroadcastToRoom(room, message)

	if lobbyEvents[event.EventName()] {
		p.hub.BroadcastToRoom(realtime.LobbyRoom, message)
	}
	return nil
}

// Внеполосные уведомления: не события агрегата, а сигналы UI.

func (p *RealtimePublisher) NotifyMatchStarted(tournamentID, matchID string, round int) {
	room := realtime.TournamentRoom(tournamentID)
	p.hub.BroadcastToRoom(room, realtime.Message{
		Type: "match_started",
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"match_id":      matchID,
			"round":         round,
		},
		RoomID: room,
	})
}

func (p *RealtimePublisher) NotifyMatchScoreUpdated(tournamentID, matchID string, scoreA, scoreB int) {
	room := realtime.TournamentRoom(tournamentID)
	p.hub.BroadcastToRoom(room, realtime.Message{
		Type: "match_score_updated",
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"match_id":      matchID,
			"score_a":       scoreA,
			"score_b":       scoreB,
		},
		RoomID: room,
	})
}

func (p *RealtimePublisher) NotifyTimerTick(tournamentID string, remainingSeconds int) {
	room := realtime.TournamentRoom(tournamentID)
	p.hub.BroadcastToRoom(room, realtime.Message{
		Type: "round_timer_tick",
		Payload: map[string]interface{}{
			"tournament_id":     tournamentID,
			"remaining_seconds": remainingSeconds,
		},
		RoomID: room,
	})
}
