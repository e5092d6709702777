package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/tickets"
)

const (
	// TicketCmdName is the command for controlling tickets.
	TicketCmdName = "ticket"

	// OpenCmdName is the sub command for opening a ticket.
	OpenCmdName = "open"

	// CloseCmdName is the sub command for closing a ticket.
	CloseCmdName = "close"

	topicOptName  = "topic"
	ticketOptName = "ticket"
	reasonOptName = "reason"
)

var (
	// ticketCmd is the command for controlling tickets.
	ticketCmd = &discordgo.ApplicationCommand{
		Name:        TicketCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "This is the command for controlling tickets.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        OpenCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "This opens a new ticket.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:         categoryOptName,
						Type:         discordgo.ApplicationCommandOptionChannel,
						Description:  "The category to open the ticket in.",
						Required:     true,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
					},
					{
						Name:        topicOptName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "What the ticket is about.",
					},
				},
			},
			{
				Name:        CloseCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "This closes a ticket. Defaults to the ticket of the channel the command was executed in.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        ticketOptName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "The channel ID or number of the ticket.",
					},
					{
						Name:        reasonOptName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Why the ticket is being closed.",
					},
				},
			},
		},
	}
)

func ticketCmdController(_ IApp, _ *discordgo.InteractionCreate, subCmd string) (slashProcessor, error) {
	switch subCmd {
	case OpenCmdName:
		return openTicketCmdProcessor, nil
	case CloseCmdName:
		return closeTicketCmdProcessor, nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", subCmd)
	}
}

func openTicketCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i.ApplicationCommandData().Options[0].Options)

	categoryID := ""
	if o, ok := opts[categoryOptName]; ok {
		categoryID = fmt.Sprint(o.Value)
	}

	return openTicket(a, i, categoryID, stringOption(opts, topicOptName))
}

func openTicketButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	_, categoryID := splitCustomID(i.MessageComponentData().CustomID)
	return openTicket(a, i, categoryID, "")
}

// openTicket opens a ticket for the member of an interaction and tells them where it is.
func openTicket(a IApp, i *discordgo.InteractionCreate, categoryID, topic string) error {
	ctx := context.Background()
	local := a.Locale(ctx, i.GuildID)
	userID := i.Member.User.ID

	if !a.OpenLimiter().Allow(userID) {
		monitoring.RateLimitedOpens.Inc()
		return respondEphemeral(a, i, local("commands.new.response.rate_limited"))
	}

	ticket, err := a.Tickets().Create(ctx, i.GuildID, userID, categoryID, topic)
	switch {
	case errors.Is(err, tickets.ErrCategoryNotFound):
		return respondEphemeral(a, i, local("commands.new.response.category_not_found"))
	case errors.Is(err, tickets.ErrCategoryFull):
		return respondEphemeral(a, i, local("commands.new.response.category_full"))
	case err != nil:
		return fmt.Errorf("error creating ticket: %w", err)
	}

	return respondEphemeral(a, i, local("commands.new.response.created", fmt.Sprintf("<#%s>", ticket.ID)))
}

func closeTicketCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i.ApplicationCommandData().Options[0].Options)

	ref := stringOption(opts, ticketOptName)
	if ref == "" {
		ref = i.ChannelID
	}

	return closeTicket(a, i, ref, stringOption(opts, reasonOptName))
}

func closeTicketButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	return closeTicket(a, i, i.ChannelID, "")
}

// closeTicket closes a ticket on behalf of the member of an interaction.
func closeTicket(a IApp, i *discordgo.InteractionCreate, ref, reason string) error {
	ctx := context.Background()
	local := a.Locale(ctx, i.GuildID)

	ticket, err := a.Tickets().Resolve(ctx, ref, i.GuildID)
	if err != nil {
		return fmt.Errorf("error resolving ticket: %w", err)
	} else if ticket == nil || ticket.GuildID != i.GuildID {
		return respondEphemeral(a, i, local("commands.close.response.not_found", ref))
	}

	// Respond before closing, the channel may be deleted before a late response could be sent.
	if err := respondEphemeral(a, i, local("commands.close.response.closing", ticket.Number)); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}

	if _, err := a.Tickets().Close(ctx, ticket.ID, i.Member.User.ID, i.GuildID, reason); err != nil {
		// The interaction has already been responded to.
		a.Log().Error("Error closing ticket",
			slog.String(logging.KeyTicket, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}
	return nil
}
