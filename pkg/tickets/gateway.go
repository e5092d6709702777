package tickets

import (
	"context"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/i18n"
)

// Gateway is the chat platform operations the ticket workflows need.
type Gateway interface {
	// IsChannel reports whether ref is recognised as a channel ID.
	IsChannel(ref string) bool

	// Channel gets a channel. Returns an error wrapping ErrChannelNotFound if it does not exist.
	Channel(channelID string) (*discordgo.Channel, error)

	// CategoryChildCount counts the channels inside a category.
	CategoryChildCount(guildID, categoryID string) (int, error)

	// Member gets a guild member.
	Member(guildID, userID string) (*discordgo.Member, error)

	// CreateChannel creates a guild channel.
	CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)

	// GrantMember allows a member the given permissions in a channel.
	GrantMember(channelID, userID string, allow int64) error

	// SetTopic sets the topic of a channel.
	SetTopic(channelID, topic string) error

	// DeleteChannel deletes a channel.
	DeleteChannel(channelID string) error

	// Send sends a message to a channel.
	Send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)

	// Edit edits a message.
	Edit(edit *discordgo.MessageEdit) (*discordgo.Message, error)

	// Pin pins a message.
	Pin(channelID, messageID string) error

	// React adds a reaction to a message.
	React(channelID, messageID, emoji string) error

	// DeleteMessage deletes a message.
	DeleteMessage(channelID, messageID string) error

	// LatestMessage gets the most recent message in a channel.
	LatestMessage(channelID string) (*discordgo.Message, error)

	// Pinned gets the pinned messages of a channel.
	Pinned(channelID string) ([]*discordgo.Message, error)

	// Subscribe streams the messages created in a channel until the returned function is called.
	Subscribe(channelID string) (<-chan *discordgo.Message, func())
}

// Numberer hands out ticket numbers.
type Numberer interface {
	// NextNumber returns the next ticket number of a guild.
	NextNumber(ctx context.Context, guildID string) (int, error)
}

// Cipher protects the topic and close reason of a ticket at rest.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Locales looks up the strings of a locale.
type Locales interface {
	GetLocale(tag string) i18n.Localizer
}

// Archiver records the members that took part in a ticket.
type Archiver interface {
	UpdateMember(ctx context.Context, ticketID string, member *discordgo.Member) error
}
