package models

import "errors"

// Доменные ошибки агрегата и сущностей. Сервисный слой пробрасывает их
// вызывающему без изменений, HTTP-слой маппит на статусы.
var (
	// Ошибки участника
	ErrParticipantIDRequired  = errors.New("participant id must not be empty")
	ErrParticipantNameInvalid = errors.New("participant display name must be 1-20 characters")
	ErrParticipantTypeInvalid = errors.New("participant type must be USER or GUEST")

	// Ошибки матча
	ErrMatchAlreadyStarted  = errors.New("match already started")
	ErrMatchAlreadyFinished = errors.New("match already finished")
	ErrMatchNotReady        = errors.New("match is not ready: both player slots must be filled")
	ErrInvalidMatchScore    = errors.New("match scores must not be negative")
	ErrPlayerNotInMatch     = errors.New("player does not belong to this match")
	ErrMatchNotFound        = errors.New("match not found in tournament bracket")

	// Ошибки турнира
	ErrTournamentNameInvalid       = errors.New("tournament name must be 3-50 characters")
	ErrTournamentSizeInvalid       = errors.New("tournament size must be 4, 8 or 16")
	ErrTournamentVisibilityInvalid = errors.New("tournament visibility must be PUBLIC or PRIVATE")
	ErrTournamentEnrollmentClosed  = errors.New("tournament enrollment is closed")
	ErrTournamentFull              = errors.New("tournament is full")
	ErrPlayerAlreadyRegistered     = errors.New("player is already registered in this tournament")
	ErrDuplicateParticipantName    = errors.New("display name is already taken in this tournament")
	ErrParticipantNotRegistered    = errors.New("participant is not registered in this tournament")
	ErrTournamentCannotBeCancelled = errors.New("tournament can only be cancelled before it starts")
)
