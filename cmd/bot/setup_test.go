package main

import (
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/i18n"
	"github.com/stretchr/testify/require"
)

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func boolOpt(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionBoolean,
		Value: value,
	}
}

func TestBuildCategory(t *testing.T) {
	parent := &discordgo.Channel{ID: "200", Name: "Support", Type: discordgo.ChannelTypeGuildCategory}

	tests := []struct {
		name string
		opts []*discordgo.ApplicationCommandInteractionDataOption
		want *entities.Category
	}{
		{
			name: "defaults",
			want: &entities.Category{
				ID:             "200",
				GuildID:        "100",
				Name:           "Support",
				NameFormat:     "ticket-{number}",
				OpeningMessage: defaultOpeningMessage,
			},
		},
		{
			name: "everything",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{
				stringOpt(nameFormatOptName, "{username}-{number}"),
				stringOpt(openingMessageOptName, "Hi {mention}"),
				stringOpt(questionsOptName, "Order number? | | When did it happen?"),
				boolOpt(requireTopicOptName, true),
				boolOpt(claimingOptName, true),
			},
			want: &entities.Category{
				ID:               "200",
				GuildID:          "100",
				Name:             "Support",
				NameFormat:       "{username}-{number}",
				OpeningMessage:   "Hi {mention}",
				RequireTopic:     true,
				Claiming:         true,
				OpeningQuestions: []string{"Order number?", "When did it happen?"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildCategory("100", parent, commandOptions(tt.opts))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPanelMessage(t *testing.T) {
	p, err := i18n.New(entities.DefaultLocale)
	require.NoError(t, err)

	msg := panelMessage(p.GetLocale(entities.DefaultLocale), &entities.Category{ID: "200"})
	require.Equal(t, "How can we help?", msg.Embed.Title)

	row, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	button, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	require.Equal(t, "open_ticket_button:200", button.CustomID)

	name, arg := splitCustomID(button.CustomID)
	require.Equal(t, openTicketButtonID, name)
	require.Equal(t, "200", arg)
}

func TestSplitCustomID(t *testing.T) {
	name, arg := splitCustomID("close_ticket_button")
	require.Equal(t, "close_ticket_button", name)
	require.Empty(t, arg)
}
