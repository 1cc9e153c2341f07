package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pongarena/tournament-engine/models"
)

type recordingChannel struct {
	name string
	err  error

	mu     sync.Mutex
	events []string
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Publish(_ context.Context, event models.Event) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event.EventName())
	return nil
}

func (c *recordingChannel) published() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

func recordedEvents(t *testing.T) []models.Event {
	t.Helper()
	tournament, err := models.NewTournament("Friday Cup", "p1", 4, models.VisibilityPublic, nil)
	require.NoError(t, err)
	p, err := models.NewParticipant("p1", "Alice", models.ParticipantTypeUser)
	require.NoError(t, err)
	require.NoError(t, tournament.Join(p))
	return tournament.RecordedEvents()
}

func TestCompositePublisherDeliversToAllChannels(t *testing.T) {
	realtime := &recordingChannel{name: "realtime"}
	broker := &recordingChannel{name: "broker"}
	composite := NewCompositePublisher(zap.NewNop(), realtime, broker)

	composite.PublishAll(context.Background(), recordedEvents(t))

	want := []string{models.EventTournamentCreated, models.EventPlayerJoined}
	assert.Equal(t, want, realtime.published())
	assert.Equal(t, want, broker.published())
}

func TestCompositePublisherSurvivesChannelFailure(t *testing.T) {
	failing := &recordingChannel{name: "broker", err: errors.New("nats unavailable")}
	healthy := &recordingChannel{name: "realtime"}
	composite := NewCompositePublisher(zap.NewNop(), failing, healthy)

	// Отказ канала не должен ни паниковать, ни мешать остальным.
	composite.PublishAll(context.Background(), recordedEvents(t))

	assert.Empty(t, failing.published())
	assert.Equal(t,
		[]string{models.EventTournamentCreated, models.EventPlayerJoined},
		healthy.published())
}

func TestCompositePublisherEmptyBatch(t *testing.T) {
	channel := &recordingChannel{name: "realtime"}
	composite := NewCompositePublisher(zap.NewNop(), channel)

	composite.PublishAll(context.Background(), nil)
	assert.Empty(t, channel.published())
}
