package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/i18n"
)

const (
	// setupCmdName is the command for all configuration commands.
	setupCmdName = "setup"

	// setupTicketsCmdName is the sub command for configuring a ticket category.
	setupTicketsCmdName = "tickets"

	// channelOptName is the channel the ticket panel is posted in.
	channelOptName = "channel"

	// categoryOptName is the category tickets are created in.
	categoryOptName = "category"

	nameFormatOptName     = "name_format"
	openingMessageOptName = "opening_message"
	requireTopicOptName   = "require_topic"
	claimingOptName       = "claiming"
	questionsOptName      = "questions"
	pingOptName           = "ping"
)

const (
	defaultOpeningMessage = "Hello {name}, thank you for creating a ticket. A member of staff will soon be available to assist you."

	// questionSeparator separates the opening questions given to the setup command.
	questionSeparator = "|"
)

// openTicketButtonID is the custom ID prefix of the panel button. The category ID follows a colon.
const openTicketButtonID = "open_ticket_button"

var (
	// setupCmd is the command for all configuration commands.
	setupCmd = &discordgo.ApplicationCommand{
		Name:        setupCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "This is the command for all configuration commands.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        setupTicketsCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Enables tickets in a category and posts the panel to open them.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        channelOptName,
						Type:        discordgo.ApplicationCommandOptionChannel,
						Description: "The channel to post the ticket panel in.",
						Required:    true,
					},
					{
						Name:        categoryOptName,
						Type:        discordgo.ApplicationCommandOptionChannel,
						Description: "The category to create tickets in.",
						Required:    true,
					},
					{
						Name:        nameFormatOptName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "The ticket channel name, e.g. ticket-{number} or {username}-{number}.",
					},
					{
						Name:        openingMessageOptName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "The opening message. {name} and {mention} are replaced.",
					},
					{
						Name:        questionsOptName,
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Questions to ask when a ticket is opened, separated by |.",
					},
					{
						Name:        pingOptName,
						Type:        discordgo.ApplicationCommandOptionRole,
						Description: "A role to ping when a ticket is opened.",
					},
					{
						Name:        requireTopicOptName,
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Description: "Whether the creator must give a topic.",
					},
					{
						Name:        claimingOptName,
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Description: "Whether staff claim tickets.",
					},
				},
			},
		},
	}
)

func setupCmdController(a IApp, i *discordgo.InteractionCreate, subCmd string) (slashProcessor, error) {
	// Ensure the user is an administrator.
	if !isAdmin(i) {
		local := a.Locale(context.Background(), i.GuildID)
		if err := respondEphemeral(a, i, local("commands.setup.response.admin_only")); err != nil {
			return nil, fmt.Errorf("error responding to interaction: %w", err)
		}
		return nil, nil
	}

	switch subCmd {
	case setupTicketsCmdName:
		return setupTicketsProcessor, nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", subCmd)
	}
}

// setupTicketsProcessor saves the ticket configuration of a category and posts the panel.
func setupTicketsProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	local := a.Locale(ctx, i.GuildID)
	opts := commandOptions(i.ApplicationCommandData().Options[0].Options)

	channel := opts[channelOptName].ChannelValue(a.Session())
	if channel == nil || channel.Type != discordgo.ChannelTypeGuildText {
		return respondEphemeral(a, i, local("commands.setup.response.text_channel"))
	}

	parent := opts[categoryOptName].ChannelValue(a.Session())
	if parent == nil || parent.Type != discordgo.ChannelTypeGuildCategory {
		return respondEphemeral(a, i, local("commands.setup.response.category_channel"))
	}

	category := buildCategory(i.GuildID, parent, opts)
	if o, ok := opts[pingOptName]; ok {
		if role := o.RoleValue(a.Session(), i.GuildID); role != nil {
			category.Ping = []string{role.ID}
		}
	}

	if err := a.CategoryDal().SaveCategory(ctx, category); err != nil {
		return fmt.Errorf("error saving category: %w", err)
	}

	if _, err := a.Session().ChannelMessageSendComplex(channel.ID, panelMessage(local, category)); err != nil {
		return fmt.Errorf("error sending ticket panel: %w", err)
	}

	return respondEphemeral(a, i, local("commands.setup.response.done", channel.ID, category.Name))
}

// buildCategory creates the ticket configuration of a category from the setup command options.
func buildCategory(guildID string, parent *discordgo.Channel, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) *entities.Category {
	category := &entities.Category{
		ID:             parent.ID,
		GuildID:        guildID,
		Name:           parent.Name,
		NameFormat:     stringOption(opts, nameFormatOptName),
		OpeningMessage: stringOption(opts, openingMessageOptName),
	}

	if category.NameFormat == "" {
		category.NameFormat = "ticket-{number}"
	}
	if category.OpeningMessage == "" {
		category.OpeningMessage = defaultOpeningMessage
	}

	if o, ok := opts[requireTopicOptName]; ok {
		category.RequireTopic = o.BoolValue()
	}
	if o, ok := opts[claimingOptName]; ok {
		category.Claiming = o.BoolValue()
	}

	for _, q := range strings.Split(stringOption(opts, questionsOptName), questionSeparator) {
		if q = strings.TrimSpace(q); q != "" {
			category.OpeningQuestions = append(category.OpeningQuestions, q)
		}
	}

	return category
}

// panelMessage is the message members press to open a ticket in a category.
func panelMessage(local i18n.Localizer, category *entities.Category) *discordgo.MessageSend {
	// The ticket emoji is the emoji that will be used for the button. (Envelope with arrow)
	const ticketEmoji = "\U0001F4E9"

	return &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       local("panel.title"),
			Description: local("panel.description"),
			Color:       entities.DefaultColour,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s %s", ticketEmoji, local("panel.open")),
						Style:    discordgo.PrimaryButton,
						CustomID: openTicketButtonID + ":" + category.ID,
					},
				},
			},
		},
	}
}
