package models

import (
	"math/bits"
	"strings"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentStatusCreated  TournamentStatus = "CREATED"
	TournamentStatusStarted  TournamentStatus = "STARTED"
	TournamentStatusFinished TournamentStatus = "FINISHED"
	TournamentStatusCanceled TournamentStatus = "CANCELED"
)

type TournamentVisibility string

const (
	VisibilityPublic  TournamentVisibility = "PUBLIC"
	VisibilityPrivate TournamentVisibility = "PRIVATE"
)

// SeedingStrategy формирует пары первого раунда из ростера.
// Реализации живут в пакете brackets.
type SeedingStrategy func(roster []Participant) [][2]Participant

// Tournament — корень агрегата. Все мутации ростера и матчей проходят
// только через его методы; нарушения инвариантов возвращаются типизированными
// доменными ошибками. События копятся в буфере recorded до явного дренажа.
type Tournament struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Size         int                  `json:"size"`
	OwnerID      string               `json:"owner_id"`
	Status       TournamentStatus     `json:"status"`
	Visibility   TournamentVisibility `json:"visibility"`
	Participants []Participant        `json:"participants"`
	Matches      []*Match             `json:"matches"`
	Winner       *Participant         `json:"winner,omitempty"`

	// Version используется репозиторием для оптимистической блокировки.
	Version int `json:"-"`

	seeding  SeedingStrategy
	recorded []Event
}

func NewTournament(name, ownerID string, size int, visibility TournamentVisibility, seeding SeedingStrategy) (*Tournament, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 3 || len(trimmed) > 50 {
		return nil, ErrTournamentNameInvalid
	}
	if size != 4 && size != 8 && size != 16 {
		return nil, ErrTournamentSizeInvalid
	}
	switch visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return nil, ErrTournamentVisibilityInvalid
	}

	t := &Tournament{
		ID:           uuid.NewString(),
		Name:         trimmed,
		Size:         size,
		OwnerID:      ownerID,
		Status:       TournamentStatusCreated,
		Visibility:   visibility,
		Participants: make([]Participant, 0, size),
		seeding:      seeding,
	}
	t.record(TournamentCreated{
		baseEvent:      newBaseEvent(EventTournamentCreated, t.ID),
		TournamentName: t.Name,
		Size:           t.Size,
		OwnerID:        t.OwnerID,
		Visibility:     t.Visibility,
	})
	return t, nil
}

// RestoreTournament восстанавливает агрегат из строк БД, без событий.
func RestoreTournament(
	id, name string,
	size int,
	ownerID string,
	status TournamentStatus,
	visibility TournamentVisibility,
	version int,
	participants []Participant,
	matches []*Match,
	winner *Participant,
	seeding SeedingStrategy,
) *Tournament {
	return &Tournament{
		ID:           id,
		Name:         name,
		Size:         size,
		OwnerID:      ownerID,
		Status:       status,
		Visibility:   visibility,
		Version:      version,
		Participants: participants,
		Matches:      matches,
		Winner:       winner,
		seeding:      seeding,
	}
}

// Join добавляет участника. Когда ростер достигает Size, генерируется
// полная сетка и турнир переходит в STARTED.
func (t *Tournament) Join(participant Participant) error {
	if t.Status != TournamentStatusCreated {
		return ErrTournamentEnrollmentClosed
	}
	if len(t.Participants) >= t.Size {
		return ErrTournamentFull
	}
	for _, p := range t.Participants {
		if p.ID == participant.ID {
			return ErrPlayerAlreadyRegistered
		}
		if p.DisplayName == participant.DisplayName {
			return ErrDuplicateParticipantName
		}
	}

	t.Participants = append(t.Participants, participant)
	t.record(PlayerJoined{
		baseEvent:   newBaseEvent(EventPlayerJoined, t.ID),
		Participant: participant,
	})

	if len(t.Participants) == t.Size {
		t.start()
	}
	return nil
}

// Leave удаляет участника из ростера, пока турнир не начался.
func (t *Tournament) Leave(participantID string) error {
	if t.Status != TournamentStatusCreated {
		return ErrTournamentEnrollmentClosed
	}
	for i, p := range t.Participants {
		if p.ID == participantID {
			t.Participants = append(t.Participants[:i], t.Participants[i+1:]...)
			t.record(PlayerLeft{
				baseEvent:     newBaseEvent(EventPlayerLeft, t.ID),
				ParticipantID: participantID,
			})
			return nil
		}
	}
	return ErrParticipantNotRegistered
}

// Cancel переводит турнир в терминальный статус CANCELED.
// Проверку владельца выполняет вызывающий сервис.
func (t *Tournament) Cancel() error {
	if t.Status != TournamentStatusCreated {
		return ErrTournamentCannotBeCancelled
	}
	t.Status = TournamentStatusCanceled
	t.record(TournamentCancelled{baseEvent: newBaseEvent(EventTournamentCancelled, t.ID)})
	return nil
}

// UpdateMatchScore делегирует счёт матчу и обрабатывает его завершение.
// Непустой winnerID принудительно закрывает матч, когда счёт сам не
// определил победителя: игровой сервис решает матч форфитом или
// дисконнектом с произвольным счётом.
func (t *Tournament) UpdateMatchScore(matchID string, scoreA, scoreB int, winnerID string) error {
	match, err := t.MatchByID(matchID)
	if err != nil {
		return err
	}
	if err := match.SetScore(scoreA, scoreB); err != nil {
		return err
	}
	if match.Status != MatchStatusFinished && winnerID != "" {
		if err := match.DeclareWalkover(winnerID); err != nil {
			return err
		}
	}
	if match.Status == MatchStatusFinished {
		t.onMatchFinished(match)
	}
	return nil
}

// DeclareWalkover завершает матч техническим поражением.
func (t *Tournament) DeclareWalkover(matchID, winnerID string) error {
	match, err := t.MatchByID(matchID)
	if err != nil {
		return err
	}
	if err := match.DeclareWalkover(winnerID); err != nil {
		return err
	}
	t.onMatchFinished(match)
	return nil
}

func (t *Tournament) onMatchFinished(match *Match) {
	t.record(MatchFinished{
		baseEvent: newBaseEvent(EventMatchFinished, t.ID),
		MatchID:   match.ID,
		Round:     match.Round,
		ScoreA:    match.ScoreA,
		ScoreB:    match.ScoreB,
		WinnerID:  match.Winner.ID,
		WinReason: *match.WinReason,
	})

	if match.Round == t.TotalRounds() {
		t.Status = TournamentStatusFinished
		t.Winner = match.Winner
		t.record(TournamentFinished{
			baseEvent: newBaseEvent(EventTournamentFinished, t.ID),
			Winner:    *match.Winner,
		})
		return
	}

	t.advanceWinner(match)
}

// advanceWinner продвигает победителя в слот матча следующего раунда.
// Матчи раунда r с позициями 2k-1 и 2k питают матч раунда r+1 с позицией k.
func (t *Tournament) advanceWinner(match *Match) {
	nextPosition := (match.Position + 1) / 2
	slot := SlotA
	if match.Position%2 == 0 {
		slot = SlotB
	}
	for _, next := range t.Matches {
		if next.Round == match.Round+1 && next.Position == nextPosition {
			// Слот следующего матча всегда PENDING в этот момент,
			// ошибка невозможна при целой сетке.
			_ = next.AssignParticipant(slot, *match.Winner)
			t.record(BracketUpdated{
				baseEvent: newBaseEvent(EventBracketUpdated, t.ID),
				MatchID:   next.ID,
				Round:     next.Round,
			})
			return
		}
	}
}

func (t *Tournament) start() {
	t.generateBracket()
	t.Status = TournamentStatusStarted
	t.record(TournamentStarted{
		baseEvent: newBaseEvent(EventTournamentStarted, t.ID),
		Rounds:    t.TotalRounds(),
	})
}

// generateBracket создаёт полную сетку: первый раунд засеян ростером,
// последующие раунды — пустые PENDING-заготовки.
func (t *Tournament) generateBracket() {
	pairs := t.seedRoundOne()
	totalRounds := t.TotalRounds()
	t.Matches = make([]*Match, 0, t.Size-1)

	for i, pair := range pairs {
		match := NewMatch(1, i+1)
		_ = match.AssignParticipant(SlotA, pair[0])
		_ = match.AssignParticipant(SlotB, pair[1])
		t.Matches = append(t.Matches, match)
	}
	for round := 2; round <= totalRounds; round++ {
		matchesInRound := t.Size >> uint(round)
		for position := 1; position <= matchesInRound; position++ {
			t.Matches = append(t.Matches, NewMatch(round, position))
		}
	}
}

func (t *Tournament) seedRoundOne() [][2]Participant {
	if t.seeding != nil {
		return t.seeding(t.Participants)
	}
	// По умолчанию — пары в порядке регистрации.
	pairs := make([][2]Participant, 0, len(t.Participants)/2)
	for i := 0; i+1 < len(t.Participants); i += 2 {
		pairs = append(pairs, [2]Participant{t.Participants[i], t.Participants[i+1]})
	}
	return pairs
}

func (t *Tournament) MatchByID(matchID string) (*Match, error) {
	for _, m := range t.Matches {
		if m.ID == matchID {
			return m, nil
		}
	}
	return nil, ErrMatchNotFound
}

func (t *Tournament) MatchesInRound(round int) []*Match {
	matches := make([]*Match, 0)
	for _, m := range t.Matches {
		if m.Round == round {
			matches = append(matches, m)
		}
	}
	return matches
}

// CurrentRound возвращает минимальный раунд с незавершённым матчем,
// либо 0, когда вся сетка сыграна или ещё не создана.
func (t *Tournament) CurrentRound() int {
	current := 0
	for _, m := range t.Matches {
		if m.Status == MatchStatusFinished {
			continue
		}
		if current == 0 || m.Round < current {
			current = m.Round
		}
	}
	return current
}

func (t *Tournament) IsRoundFinished(round int) bool {
	for _, m := range t.Matches {
		if m.Round == round && m.Status != MatchStatusFinished {
			return false
		}
	}
	return true
}

func (t *Tournament) TotalRounds() int {
	if t.Size == 0 {
		return 0
	}
	return bits.Len(uint(t.Size)) - 1
}

func (t *Tournament) HasParticipant(participantID string) bool {
	for _, p := range t.Participants {
		if p.ID == participantID {
			return true
		}
	}
	return false
}

func (t *Tournament) IsActive() bool {
	return t.Status == TournamentStatusCreated || t.Status == TournamentStatusStarted
}

// RecordedEvents возвращает накопленные события; вызывающий обязан
// опубликовать их и затем вызвать ClearRecordedEvents — только после
// успешного сохранения агрегата.
func (t *Tournament) RecordedEvents() []Event {
	return t.recorded
}

func (t *Tournament) ClearRecordedEvents() {
	t.recorded = nil
}

func (t *Tournament) record(event Event) {
	t.recorded = append(t.recorded, event)
}
