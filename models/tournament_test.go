package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTournament(t *testing.T, size int) *Tournament {
	t.Helper()
	tournament, err := NewTournament("Friday Cup", "p1", size, VisibilityPublic, nil)
	require.NoError(t, err)
	return tournament
}

// fillTournament регистрирует участников p1..pN до перехода в STARTED.
func fillTournament(t *testing.T, tournament *Tournament) {
	t.Helper()
	for i := 1; i <= tournament.Size; i++ {
		p := testParticipant(t, fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i))
		require.NoError(t, tournament.Join(p))
	}
}

func eventNames(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.EventName())
	}
	return names
}

func TestNewTournamentValidation(t *testing.T) {
	tests := []struct {
		name       string
		tournName  string
		size       int
		visibility TournamentVisibility
		wantErr    error
	}{
		{name: "name too short", tournName: "ab", size: 8, visibility: VisibilityPublic, wantErr: ErrTournamentNameInvalid},
		{name: "name only spaces", tournName: "     ", size: 8, visibility: VisibilityPublic, wantErr: ErrTournamentNameInvalid},
		{name: "size not power of two", size: 6, tournName: "Friday Cup", visibility: VisibilityPublic, wantErr: ErrTournamentSizeInvalid},
		{name: "size too large", size: 32, tournName: "Friday Cup", visibility: VisibilityPublic, wantErr: ErrTournamentSizeInvalid},
		{name: "unknown visibility", size: 8, tournName: "Friday Cup", visibility: TournamentVisibility("HIDDEN"), wantErr: ErrTournamentVisibilityInvalid},
		{name: "valid private", size: 16, tournName: "Friday Cup", visibility: VisibilityPrivate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tournament, err := NewTournament(tt.tournName, "p1", tt.size, tt.visibility, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TournamentStatusCreated, tournament.Status)
			assert.Equal(t, []string{EventTournamentCreated}, eventNames(tournament.RecordedEvents()))
		})
	}
}

func TestTournamentJoinStartsWhenFull(t *testing.T) {
	tournament := newTestTournament(t, 4)
	fillTournament(t, tournament)

	assert.Equal(t, TournamentStatusStarted, tournament.Status)
	require.Len(t, tournament.Matches, 3)

	// Первый раунд засеян в порядке регистрации, финал пустой.
	round1 := tournament.MatchesInRound(1)
	require.Len(t, round1, 2)
	assert.Equal(t, "p1", round1[0].PlayerA.ID)
	assert.Equal(t, "p2", round1[0].PlayerB.ID)
	assert.Equal(t, "p3", round1[1].PlayerA.ID)
	assert.Equal(t, "p4", round1[1].PlayerB.ID)
	assert.Equal(t, MatchStatusInProgress, round1[0].Status)

	final := tournament.MatchesInRound(2)
	require.Len(t, final, 1)
	assert.Equal(t, MatchStatusPending, final[0].Status)
	assert.False(t, final[0].IsReady())

	assert.Equal(t, []string{
		EventTournamentCreated,
		EventPlayerJoined, EventPlayerJoined, EventPlayerJoined, EventPlayerJoined,
		EventTournamentStarted,
	}, eventNames(tournament.RecordedEvents()))
}

func TestTournamentJoinGuards(t *testing.T) {
	tournament := newTestTournament(t, 4)
	require.NoError(t, tournament.Join(testParticipant(t, "p1", "Player 1")))

	t.Run("duplicate id", func(t *testing.T) {
		err := tournament.Join(testParticipant(t, "p1", "Other Name"))
		assert.ErrorIs(t, err, ErrPlayerAlreadyRegistered)
	})

	t.Run("duplicate display name", func(t *testing.T) {
		err := tournament.Join(testParticipant(t, "p9", "Player 1"))
		assert.ErrorIs(t, err, ErrDuplicateParticipantName)
	})

	t.Run("enrollment closed after start", func(t *testing.T) {
		started := newTestTournament(t, 4)
		fillTournament(t, started)
		err := started.Join(testParticipant(t, "p9", "Late Player"))
		assert.ErrorIs(t, err, ErrTournamentEnrollmentClosed)
	})
}

func TestTournamentLeave(t *testing.T) {
	tournament := newTestTournament(t, 4)
	require.NoError(t, tournament.Join(testParticipant(t, "p1", "Player 1")))
	require.NoError(t, tournament.Join(testParticipant(t, "p2", "Player 2")))
	tournament.ClearRecordedEvents()

	require.NoError(t, tournament.Leave("p2"))
	assert.Len(t, tournament.Participants, 1)
	assert.False(t, tournament.HasParticipant("p2"))
	assert.Equal(t, []string{EventPlayerLeft}, eventNames(tournament.RecordedEvents()))

	assert.ErrorIs(t, tournament.Leave("p2"), ErrParticipantNotRegistered)

	started := newTestTournament(t, 4)
	fillTournament(t, started)
	assert.ErrorIs(t, started.Leave("p1"), ErrTournamentEnrollmentClosed)
}

func TestTournamentCancel(t *testing.T) {
	t.Run("cancel before start is terminal", func(t *testing.T) {
		tournament := newTestTournament(t, 4)
		require.NoError(t, tournament.Cancel())
		assert.Equal(t, TournamentStatusCanceled, tournament.Status)
		assert.False(t, tournament.IsActive())

		assert.ErrorIs(t, tournament.Cancel(), ErrTournamentCannotBeCancelled)
		err := tournament.Join(testParticipant(t, "p2", "Player 2"))
		assert.ErrorIs(t, err, ErrTournamentEnrollmentClosed)
	})

	t.Run("started tournament cannot be cancelled", func(t *testing.T) {
		tournament := newTestTournament(t, 4)
		fillTournament(t, tournament)
		assert.ErrorIs(t, tournament.Cancel(), ErrTournamentCannotBeCancelled)
	})
}

func TestTournamentAdvancesWinner(t *testing.T) {
	tournament := newTestTournament(t, 4)
	fillTournament(t, tournament)
	tournament.ClearRecordedEvents()

	semi := tournament.MatchesInRound(1)[0]
	require.NoError(t, tournament.UpdateMatchScore(semi.ID, 11, 7, ""))

	assert.Equal(t, []string{EventMatchFinished, EventBracketUpdated},
		eventNames(tournament.RecordedEvents()))

	// Победитель первого полуфинала занимает слот A финала.
	final := tournament.MatchesInRound(2)[0]
	require.NotNil(t, final.PlayerA)
	assert.Equal(t, "p1", final.PlayerA.ID)
	assert.Nil(t, final.PlayerB)
	assert.Equal(t, MatchStatusPending, final.Status)

	assert.Equal(t, 1, tournament.CurrentRound())
	assert.False(t, tournament.IsRoundFinished(1))
}

func TestTournamentFullPlaythrough(t *testing.T) {
	tournament := newTestTournament(t, 4)
	fillTournament(t, tournament)
	tournament.ClearRecordedEvents()

	round1 := tournament.MatchesInRound(1)
	require.NoError(t, tournament.UpdateMatchScore(round1[0].ID, 11, 3, ""))
	require.NoError(t, tournament.UpdateMatchScore(round1[1].ID, 9, 11, ""))

	assert.True(t, tournament.IsRoundFinished(1))
	assert.Equal(t, 2, tournament.CurrentRound())

	final := tournament.MatchesInRound(2)[0]
	require.True(t, final.IsReady())
	assert.Equal(t, "p1", final.PlayerA.ID)
	assert.Equal(t, "p4", final.PlayerB.ID)

	require.NoError(t, tournament.UpdateMatchScore(final.ID, 11, 9, ""))

	assert.Equal(t, TournamentStatusFinished, tournament.Status)
	require.NotNil(t, tournament.Winner)
	assert.Equal(t, "p1", tournament.Winner.ID)
	assert.Equal(t, 0, tournament.CurrentRound())
	assert.False(t, tournament.IsActive())

	names := eventNames(tournament.RecordedEvents())
	assert.Equal(t, EventTournamentFinished, names[len(names)-1])
}

func TestTournamentDeclareWalkover(t *testing.T) {
	tournament := newTestTournament(t, 4)
	fillTournament(t, tournament)
	tournament.ClearRecordedEvents()

	semi := tournament.MatchesInRound(1)[0]
	require.NoError(t, tournament.DeclareWalkover(semi.ID, "p2"))

	events := tournament.RecordedEvents()
	require.NotEmpty(t, events)
	finished, ok := events[0].(MatchFinished)
	require.True(t, ok)
	assert.Equal(t, "p2", finished.WinnerID)
	assert.Equal(t, WinReasonWalkover, finished.WinReason)

	final := tournament.MatchesInRound(2)[0]
	require.NotNil(t, final.PlayerA)
	assert.Equal(t, "p2", final.PlayerA.ID)
}

func TestTournamentUpdateMatchScoreWithReportedWinner(t *testing.T) {
	t.Run("winner below target score closes the match", func(t *testing.T) {
		tournament := newTestTournament(t, 4)
		fillTournament(t, tournament)
		tournament.ClearRecordedEvents()

		// Игровой сервис решил матч дисконнектом при счёте 3:5.
		semi := tournament.MatchesInRound(1)[0]
		require.NoError(t, tournament.UpdateMatchScore(semi.ID, 3, 5, "p2"))

		assert.Equal(t, MatchStatusFinished, semi.Status)
		require.NotNil(t, semi.Winner)
		assert.Equal(t, "p2", semi.Winner.ID)
		require.NotNil(t, semi.WinReason)
		assert.Equal(t, WinReasonWalkover, *semi.WinReason)

		assert.Equal(t, []string{EventMatchFinished, EventBracketUpdated},
			eventNames(tournament.RecordedEvents()))

		final := tournament.MatchesInRound(2)[0]
		require.NotNil(t, final.PlayerA)
		assert.Equal(t, "p2", final.PlayerA.ID)
	})

	t.Run("score result ignores redundant winner id", func(t *testing.T) {
		tournament := newTestTournament(t, 4)
		fillTournament(t, tournament)

		semi := tournament.MatchesInRound(1)[0]
		require.NoError(t, tournament.UpdateMatchScore(semi.ID, 11, 6, "p1"))

		require.NotNil(t, semi.WinReason)
		assert.Equal(t, WinReasonScore, *semi.WinReason)
	})

	t.Run("reported winner must be in the match", func(t *testing.T) {
		tournament := newTestTournament(t, 4)
		fillTournament(t, tournament)

		semi := tournament.MatchesInRound(1)[0]
		err := tournament.UpdateMatchScore(semi.ID, 2, 2, "stranger")
		assert.ErrorIs(t, err, ErrPlayerNotInMatch)
		assert.Equal(t, MatchStatusInProgress, semi.Status)
	})
}

func TestTournamentMatchLookup(t *testing.T) {
	tournament := newTestTournament(t, 4)
	fillTournament(t, tournament)

	_, err := tournament.MatchByID("missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	err = tournament.UpdateMatchScore("missing", 1, 0, "")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestTournamentTotalRounds(t *testing.T) {
	for size, want := range map[int]int{4: 2, 8: 3, 16: 4} {
		tournament := newTestTournament(t, size)
		assert.Equal(t, want, tournament.TotalRounds())
	}
}

func TestRecordedEventsDrain(t *testing.T) {
	tournament := newTestTournament(t, 4)
	require.NotEmpty(t, tournament.RecordedEvents())

	tournament.ClearRecordedEvents()
	assert.Empty(t, tournament.RecordedEvents())
}
