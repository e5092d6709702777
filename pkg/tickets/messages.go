package tickets

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/i18n"
)

const (
	// CloseTicketButtonID is the custom ID of the close button on the opening message.
	CloseTicketButtonID = "close_ticket_button"

	// ClaimEmoji is the reaction added to the opening message of claimable tickets. (Raised hands)
	ClaimEmoji = "\U0001F64C"

	// TopicAcceptedEmoji is the reaction added to the message a topic was taken from. (Check mark)
	TopicAcceptedEmoji = "✅"

	// warningEmoji prefixes the topic prompt title.
	warningEmoji = "⚠️"

	// closeEmoji is shown on the close button. (Padlock)
	closeEmoji = "\U0001F510"
)

// creatorPermissions are the permissions given to the creator of a ticket in its channel.
const creatorPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionSendMessages |
	discordgo.PermissionAttachFiles

// channelTopic is the topic line of a ticket channel.
func channelTopic(mention, topic string) string {
	if topic == "" {
		return mention
	}
	return fmt.Sprintf("%s | %s", mention, topic)
}

// pingContent turns the ping targets of a category into mentions.
func pingContent(targets []string) string {
	mentions := make([]string, 0, len(targets))
	for _, t := range targets {
		switch t {
		case entities.PingEveryone:
			mentions = append(mentions, "@everyone")
		case entities.PingHere:
			mentions = append(mentions, "@here")
		default:
			mentions = append(mentions, fmt.Sprintf("<@&%s>", t))
		}
	}
	return strings.Join(mentions, ", ")
}

// formatQuestions numbers the opening questions of a category.
func formatQuestions(questions []string) string {
	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = fmt.Sprintf("**%d.** %s", i+1, q)
	}
	return strings.Join(lines, "\n\n")
}

func footer(text, extra string) *discordgo.MessageEmbedFooter {
	if extra == "" {
		return &discordgo.MessageEmbedFooter{Text: text}
	}
	return &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s | %s", extra, text)}
}

func memberAuthor(member *discordgo.Member) *discordgo.MessageEmbedAuthor {
	return &discordgo.MessageEmbedAuthor{
		Name:    member.User.Username,
		IconURL: member.User.AvatarURL(""),
	}
}

// displayName is the name a member is shown as in the guild.
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}

// openingEmbed is the embed of the opening message. The topic field is left out when there is no topic.
func openingEmbed(settings *entities.Guild, local i18n.Localizer, member *discordgo.Member, description, topic string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color:       settings.Colour,
		Author:      memberAuthor(member),
		Description: description,
		Footer:      footer(settings.Footer, ""),
	}
	if topic != "" {
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:  local("commands.new.opening_message.fields.topic"),
				Value: topic,
			},
		}
	}
	return embed
}

func closeButtonRow(local i18n.Localizer) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("%s %s", closeEmoji, local("ticket.close")),
					Style:    discordgo.DangerButton,
					CustomID: CloseTicketButtonID,
				},
			},
		},
	}
}

// closedEmbed is the notice posted in a ticket channel when it is closed. A nil member means a system close.
func closedEmbed(settings *entities.Guild, local i18n.Localizer, member *discordgo.Member, reason string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color:  settings.SuccessColour,
		Title:  local("ticket.closed.title"),
		Footer: footer(settings.Footer, ""),
	}

	switch {
	case member != nil && reason != "":
		embed.Author = memberAuthor(member)
		embed.Description = local("ticket.closed_by_member_with_reason.description", member.User.Mention(), reason)
	case member != nil:
		embed.Author = memberAuthor(member)
		embed.Description = local("ticket.closed_by_member.description", member.User.Mention())
	case reason != "":
		embed.Description = local("ticket.closed_with_reason.description", reason)
	default:
		embed.Description = local("ticket.closed.description")
	}
	return embed
}

// collectedTopic is the topic given by a reply to the topic prompt. A reply with only attachments gives their URLs.
func collectedTopic(msg *discordgo.Message) string {
	if content := strings.TrimSpace(msg.Content); content != "" {
		return content
	}

	urls := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		if a != nil && a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	return strings.Join(urls, " ")
}
