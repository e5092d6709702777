package gateway

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/tickets"
	"github.com/stretchr/testify/require"
)

func newTestDiscord() *Discord {
	return &Discord{
		l:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		s:    &discordgo.Session{},
		subs: make(map[string]map[int]chan *discordgo.Message),
	}
}

func TestDiscord_Subscribe(t *testing.T) {
	d := newTestDiscord()

	first, unsubFirst := d.Subscribe("1")
	second, unsubSecond := d.Subscribe("1")
	other, unsubOther := d.Subscribe("2")
	defer unsubOther()

	d.dispatch(&discordgo.Message{ID: "a", ChannelID: "1"})

	require.Equal(t, "a", (<-first).ID)
	require.Equal(t, "a", (<-second).ID)
	require.Len(t, other, 0)

	unsubFirst()
	unsubFirst()

	_, ok := <-first
	require.False(t, ok)

	d.dispatch(&discordgo.Message{ID: "b", ChannelID: "1"})
	require.Equal(t, "b", (<-second).ID)

	unsubSecond()
	require.NotContains(t, d.subs, "1")
}

func TestDiscord_DispatchDropsWhenFull(t *testing.T) {
	d := newTestDiscord()

	ch, unsubscribe := d.Subscribe("1")
	defer unsubscribe()

	for i := 0; i < subscriptionBuffer+5; i++ {
		d.dispatch(&discordgo.Message{ID: fmt.Sprint(i), ChannelID: "1"})
	}
	require.Len(t, ch, subscriptionBuffer)
}

func TestDiscord_IsChannel(t *testing.T) {
	d := newTestDiscord()

	tests := []struct {
		ref  string
		want bool
	}{
		{ref: "123456789012345678", want: true},
		{ref: "12345678901234567", want: true},
		{ref: "1", want: false},
		{ref: "#12", want: false},
		{ref: "ticket-12", want: false},
		{ref: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			require.Equal(t, tt.want, d.IsChannel(tt.ref))
		})
	}
}

func TestWrapNotFound(t *testing.T) {
	restError := func(status, code int) *discordgo.RESTError {
		return &discordgo.RESTError{
			Response:     &http.Response{Status: http.StatusText(status), StatusCode: status},
			ResponseBody: []byte(`{"message": "error"}`),
			Message:      &discordgo.APIErrorMessage{Code: code},
		}
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unknown channel", err: restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel), want: true},
		{name: "wrapped unknown channel", err: fmt.Errorf("error getting channel: %w", restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel)), want: true},
		{name: "general 404", err: restError(http.StatusNotFound, discordgo.ErrCodeGeneralError), want: true},
		{name: "general 500", err: restError(http.StatusInternalServerError, discordgo.ErrCodeGeneralError), want: false},
		{name: "general 502", err: restError(http.StatusBadGateway, discordgo.ErrCodeGeneralError), want: false},
		{name: "missing access", err: restError(http.StatusForbidden, discordgo.ErrCodeMissingAccess), want: false},
		{name: "no response body", err: &discordgo.RESTError{Response: &http.Response{Status: "500", StatusCode: http.StatusInternalServerError}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapNotFound(tt.err)
			require.Equal(t, tt.want, errors.Is(got, tickets.ErrChannelNotFound))
			require.ErrorIs(t, got, tt.err)
		})
	}

	other := errors.New("connection reset")
	require.Equal(t, other, wrapNotFound(other))
}
