package models

import "time"

// Имена событий агрегата. Брокерный канал публикует их с ключом
// "tournament.<имя>", realtime-канал кладёт имя в поле eventName.
const (
	EventTournamentCreated   = "created"
	EventPlayerJoined        = "player_joined"
	EventPlayerLeft          = "player_left"
	EventTournamentStarted   = "started"
	EventTournamentCancelled = "cancelled"
	EventMatchFinished       = "match_finished"
	EventBracketUpdated      = "bracket_updated"
	EventTournamentFinished  = "finished"
)

// Event — неизменяемый факт, записанный агрегатом во время мутации.
// События копятся в буфере и публикуются только после успешного коммита.
type Event interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

type baseEvent struct {
	Name         string    `json:"event_name"`
	TournamentID string    `json:"aggregate_id"`
	At           time.Time `json:"occurred_at"`
}

func newBaseEvent(name, tournamentID string) baseEvent {
	return baseEvent{Name: name, TournamentID: tournamentID, At: time.Now().UTC()}
}

func (e baseEvent) EventName() string     { return e.Name }
func (e baseEvent) AggregateID() string   { return e.TournamentID }
func (e baseEvent) OccurredAt() time.Time { return e.At }

type TournamentCreated struct {
	baseEvent
	TournamentName string               `json:"name"`
	Size           int                  `json:"size"`
	OwnerID        string               `json:"owner_id"`
	Visibility     TournamentVisibility `json:"visibility"`
}

type PlayerJoined struct {
	baseEvent
	Participant Participant `json:"participant"`
}

type PlayerLeft struct {
	baseEvent
	ParticipantID string `json:"participant_id"`
}

type TournamentStarted struct {
	baseEvent
	Rounds int `json:"rounds"`
}

type TournamentCancelled struct {
	baseEvent
}

type MatchFinished struct {
	baseEvent
	MatchID   string    `json:"match_id"`
	Round     int       `json:"round"`
	ScoreA    int       `json:"score_a"`
	ScoreB    int       `json:"score_b"`
	WinnerID  string    `json:"winner_id"`
	WinReason WinReason `json:"win_reason"`
}

// BracketUpdated сигнализирует, что победитель продвинут в слот
// матча следующего раунда.
type BracketUpdated struct {
	baseEvent
	MatchID string `json:"match_id"`
	Round   int    `json:"round"`
}

type TournamentFinished struct {
	baseEvent
	Winner Participant `json:"winner"`
}
