package models

import "github.com/google/uuid"

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "PENDING"
	MatchStatusInProgress MatchStatus = "IN_PROGRESS"
	MatchStatusFinished   MatchStatus = "FINISHED"
)

type WinReason string

const (
	WinReasonScore    WinReason = "SCORE"
	WinReasonWalkover WinReason = "WALKOVER"
)

type MatchSlot int

const (
	SlotA MatchSlot = iota
	SlotB
)

// TargetScore — счёт, при достижении которого матч завершается,
// если у соперника строго меньше очков.
const TargetScore = 11

// Match — одна ячейка сетки. Статус движется только вперёд:
// PENDING → IN_PROGRESS → FINISHED.
type Match struct {
	ID        string       `json:"id"`
	Round     int          `json:"round"`
	Position  int          `json:"position"`
	PlayerA   *Participant `json:"player_a,omitempty"`
	PlayerB   *Participant `json:"player_b,omitempty"`
	ScoreA    int          `json:"score_a"`
	ScoreB    int          `json:"score_b"`
	Winner    *Participant `json:"winner,omitempty"`
	Status    MatchStatus  `json:"status"`
	WinReason *WinReason   `json:"win_reason,omitempty"`
}

func NewMatch(round, position int) *Match {
	return &Match{
		ID:       uuid.NewString(),
		Round:    round,
		Position: position,
		Status:   MatchStatusPending,
	}
}

func (m *Match) IsReady() bool {
	return m.PlayerA != nil && m.PlayerB != nil
}

// AssignParticipant заполняет слот матча. Допустимо только пока матч не начат;
// как только оба слота заполнены, матч переходит в IN_PROGRESS.
func (m *Match) AssignParticipant(slot MatchSlot, participant Participant) error {
	if m.Status != MatchStatusPending {
		return ErrMatchAlreadyStarted
	}
	switch slot {
	case SlotA:
		m.PlayerA = &participant
	case SlotB:
		m.PlayerB = &participant
	}
	if m.IsReady() {
		m.Status = MatchStatusInProgress
	}
	return nil
}

// SetScore обновляет счёт и завершает матч, когда одна из сторон
// набирает TargetScore при меньшем счёте соперника.
func (m *Match) SetScore(scoreA, scoreB int) error {
	if m.Status == MatchStatusFinished {
		return ErrMatchAlreadyFinished
	}
	if !m.IsReady() {
		return ErrMatchNotReady
	}
	if scoreA < 0 || scoreB < 0 {
		return ErrInvalidMatchScore
	}

	m.ScoreA = scoreA
	m.ScoreB = scoreB
	m.Status = MatchStatusInProgress

	switch {
	case scoreA >= TargetScore && scoreA > scoreB:
		m.finish(m.PlayerA, WinReasonScore)
	case scoreB >= TargetScore && scoreB > scoreA:
		m.finish(m.PlayerB, WinReasonScore)
	}
	return nil
}

// DeclareWalkover завершает матч без игры, победителем объявляется winnerID.
func (m *Match) DeclareWalkover(winnerID string) error {
	if m.Status == MatchStatusFinished {
		return ErrMatchAlreadyFinished
	}
	if !m.IsReady() {
		return ErrMatchNotReady
	}

	var winner *Participant
	switch winnerID {
	case m.PlayerA.ID:
		winner = m.PlayerA
	case m.PlayerB.ID:
		winner = m.PlayerB
	default:
		return ErrPlayerNotInMatch
	}

	m.finish(winner, WinReasonWalkover)
	return nil
}

func (m *Match) finish(winner *Participant, reason WinReason) {
	m.Status = MatchStatusFinished
	m.Winner = winner
	m.WinReason = &reason
}
