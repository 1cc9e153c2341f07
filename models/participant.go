package models

import "strings"

type ParticipantType string

const (
	ParticipantTypeUser  ParticipantType = "USER"
	ParticipantTypeGuest ParticipantType = "GUEST"
)

const maxDisplayNameLength = 20

// Participant — значение-объект: идентичность участника внутри турнира.
// Неизменяем после создания.
type Participant struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Type        ParticipantType `json:"type"`
}

func NewParticipant(id, displayName string, participantType ParticipantType) (Participant, error) {
	if strings.TrimSpace(id) == "" {
		return Participant{}, ErrParticipantIDRequired
	}
	name := strings.TrimSpace(displayName)
	if name == "" || len([]rune(name)) > maxDisplayNameLength {
		return Participant{}, ErrParticipantNameInvalid
	}
	switch participantType {
	case ParticipantTypeUser, ParticipantTypeGuest:
	default:
		return Participant{}, ErrParticipantTypeInvalid
	}
	return Participant{ID: id, DisplayName: name, Type: participantType}, nil
}
