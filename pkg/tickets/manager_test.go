package tickets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/events"
	"github.com/stretchr/testify/require"
)

func TestManager_Resolve(t *testing.T) {
	h := newHarness(t)
	ticket := openTicket(t, h)

	tests := []struct {
		name    string
		ref     string
		guildID string
		wantID  string
	}{
		{name: "channel id", ref: ticket.ID, guildID: testGuild, wantID: ticket.ID},
		{name: "channel id without guild", ref: ticket.ID, guildID: "", wantID: ticket.ID},
		{name: "number", ref: "1", guildID: testGuild, wantID: ticket.ID},
		{name: "hash number", ref: "#1", guildID: testGuild, wantID: ticket.ID},
		{name: "unknown number", ref: "2", guildID: testGuild},
		{name: "other guild", ref: "1", guildID: "100000000000000002"},
		{name: "zero", ref: "0", guildID: testGuild},
		{name: "negative", ref: "-1", guildID: testGuild},
		{name: "garbage", ref: "ticket-1", guildID: testGuild},
		{name: "empty", ref: "", guildID: testGuild},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.m.Resolve(context.Background(), tt.ref, tt.guildID)
			require.NoError(t, err)
			if tt.wantID == "" {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, tt.wantID, got.ID)
		})
	}
}

type failingTickets struct {
	*fakeTickets
}

func (failingTickets) GetTicketByNumber(context.Context, string, int) (*entities.Ticket, error) {
	return nil, errors.New("server selection timeout")
}

func TestManager_Resolve_StoreError(t *testing.T) {
	h := newHarness(t, func(d *Dependencies) {
		d.Tickets = failingTickets{fakeTickets: newFakeTickets()}
	})

	got, err := h.m.Resolve(context.Background(), "1", testGuild)
	require.Error(t, err)
	require.Nil(t, got)
}

func TestManager_Cancel(t *testing.T) {
	h := newHarness(t, func(d *Dependencies) {
		d.TopicTimeout = time.Minute
	})
	h.category(t, func(c *entities.Category) {
		c.RequireTopic = true
	})

	ticket, err := h.m.Create(context.Background(), testGuild, testCreator, testCategory, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return h.gw.subscribed(ticket.ID)
	}, 2*time.Second, 5*time.Millisecond)

	require.True(t, h.m.Cancel(ticket.ID))
	h.m.Wait()
	require.False(t, h.m.Cancel(ticket.ID))

	for _, e := range h.drain() {
		require.NotEqual(t, events.KindReady, e.Kind)
	}
	require.True(t, h.tickets.get(t, ticket.ID).Open)
}

func TestManager_Stop(t *testing.T) {
	h := newHarness(t, func(d *Dependencies) {
		d.TopicTimeout = time.Minute
	})
	h.category(t, func(c *entities.Category) {
		c.RequireTopic = true
	})

	for i := 0; i < 3; i++ {
		_, err := h.m.Create(context.Background(), testGuild, testCreator, testCategory, "")
		require.NoError(t, err)
	}

	done := make(chan struct{})
	go func() {
		h.m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "stop did not return")
	}
}

func TestManager_StopRefusesNewWork(t *testing.T) {
	h := newHarness(t)
	ticket := openTicket(t, h)
	stored := h.tickets.len()

	h.m.Stop()

	created, err := h.m.Create(context.Background(), testGuild, testCreator, testCategory, "")
	require.ErrorIs(t, err, ErrStopped)
	require.Nil(t, created)
	require.Equal(t, stored, h.tickets.len())

	closed, err := h.m.Close(context.Background(), ticket.ID, testStaff, testGuild, "")
	require.ErrorIs(t, err, ErrStopped)
	require.Nil(t, closed)
	require.True(t, h.tickets.get(t, ticket.ID).Open)

	require.Empty(t, h.drain())
	h.m.Stop()
}

func TestManager_DeletionAfterStopRunsImmediately(t *testing.T) {
	h := newHarness(t, func(d *Dependencies) {
		d.CloseDelay = time.Hour
	})
	ticket := openTicket(t, h)

	h.m.Stop()
	h.m.scheduleDeletion(h.m.l, ticket.ID)

	h.gw.snapshot(func(g *fakeGateway) {
		require.Equal(t, []string{ticket.ID}, g.deletedChannels)
	})
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(nil, Dependencies{Events: events.NewBus(nil, 0)})
	require.Equal(t, DefaultTopicTimeout, m.topicTimeout)
	require.Equal(t, DefaultCloseDelay, m.closeDelay)
}

func TestManager_Settings(t *testing.T) {
	h := newHarness(t)

	got := h.m.settings(context.Background(), testGuild)
	require.Equal(t, entities.DefaultGuild(testGuild), got)

	require.NoError(t, h.guilds.SaveGuild(context.Background(), &entities.Guild{
		ID:     testGuild,
		Footer: "Acme",
	}))

	got = h.m.settings(context.Background(), testGuild)
	require.Equal(t, "Acme", got.Footer)
	require.Equal(t, entities.DefaultLocale, got.Locale)
	require.Equal(t, entities.DefaultColour, got.Colour)
	require.Equal(t, entities.DefaultSuccessColour, got.SuccessColour)
}
