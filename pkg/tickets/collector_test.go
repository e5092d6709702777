package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/stretchr/testify/require"
)

func fromUser(id string) func(m *discordgo.Message) bool {
	return func(m *discordgo.Message) bool {
		return m.Author != nil && m.Author.ID == id
	}
}

func message(id, author string) *discordgo.Message {
	return &discordgo.Message{ID: id, Author: &discordgo.User{ID: author}}
}

func TestCollector_FirstQualifyingMessage(t *testing.T) {
	c := newCollector(time.Second, fromUser("creator"))

	messages := make(chan *discordgo.Message, 4)
	messages <- message("1", "someone")
	messages <- nil
	messages <- message("2", "creator")
	messages <- message("3", "creator")

	got, err := c.collect(context.Background(), messages)
	require.NoError(t, err)
	require.Equal(t, "2", got.ID)
	require.True(t, c.resolved())

	// The message after the collected one is never read.
	require.Len(t, messages, 1)
}

func TestCollector_Timeout(t *testing.T) {
	c := newCollector(10*time.Millisecond, fromUser("creator"))

	messages := make(chan *discordgo.Message, 1)
	messages <- message("1", "someone")

	got, err := c.collect(context.Background(), messages)
	require.ErrorIs(t, err, ErrCollectorTimeout)
	require.Nil(t, got)
	require.True(t, c.resolved())
}

func TestCollector_Cancelled(t *testing.T) {
	c := newCollector(time.Minute, fromUser("creator"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := c.collect(ctx, make(chan *discordgo.Message))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, got)
}

func TestCollector_ClosedStreamWaitsForTimeout(t *testing.T) {
	c := newCollector(10*time.Millisecond, fromUser("creator"))

	messages := make(chan *discordgo.Message)
	close(messages)

	got, err := c.collect(context.Background(), messages)
	require.ErrorIs(t, err, ErrCollectorTimeout)
	require.Nil(t, got)
}

func TestCollector_ResolvesOnce(t *testing.T) {
	c := newCollector(10*time.Millisecond, fromUser("creator"))

	_, err := c.collect(context.Background(), make(chan *discordgo.Message))
	require.ErrorIs(t, err, ErrCollectorTimeout)

	messages := make(chan *discordgo.Message, 1)
	messages <- message("1", "creator")

	got, err := c.collect(context.Background(), messages)
	require.ErrorIs(t, err, errCollectorResolved)
	require.Nil(t, got)
}
