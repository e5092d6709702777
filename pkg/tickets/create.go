package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/events"
	"github.com/Jacobbrewer1/tickets/pkg/i18n"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/naming"
)

// defaultNameFormat is used for categories that have no name format.
const defaultNameFormat = "ticket-{number}"

// Create opens a new ticket for the creator in a category. The ticket is returned as soon as its channel exists
// and it has been stored; the rest of the channel is set up in the background.
func (m *Manager) Create(ctx context.Context, guildID, creatorID, categoryID, topic string) (*entities.Ticket, error) {
	if m.isStopped() {
		return nil, ErrStopped
	}

	category, err := m.categories.GetCategory(ctx, categoryID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrCategoryNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting category: %w", err)
	}

	children, err := m.gw.CategoryChildCount(guildID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("error counting category channels: %w", err)
	} else if children >= entities.MaxCategoryChildren {
		return nil, ErrCategoryFull
	}

	number, err := m.numbers.NextNumber(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting ticket number: %w", err)
	}

	member, err := m.gw.Member(guildID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("error getting ticket creator: %w", err)
	}

	format := category.NameFormat
	if format == "" {
		format = defaultNameFormat
	}

	channel, err := m.gw.CreateChannel(guildID, discordgo.GuildChannelCreateData{
		Name:     naming.Render(format, naming.Values{DisplayName: displayName(member), Number: number}),
		Type:     discordgo.ChannelTypeGuildText,
		Topic:    channelTopic(member.User.Mention(), topic),
		ParentID: categoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ticket channel: %w", err)
	}

	if err := m.gw.GrantMember(channel.ID, creatorID, creatorPermissions); err != nil {
		m.abandon(channel.ID)
		return nil, fmt.Errorf("error granting creator access to ticket channel: %w", err)
	}

	ticket := &entities.Ticket{
		ID:         channel.ID,
		Number:     number,
		GuildID:    guildID,
		CategoryID: categoryID,
		CreatorID:  creatorID,
		Open:       true,
		CreatedAt:  custom.Now(),
	}

	if topic != "" {
		encrypted, err := m.cipher.Encrypt(topic)
		if err != nil {
			m.abandon(channel.ID)
			return nil, fmt.Errorf("error encrypting topic: %w", err)
		}
		ticket.Topic = encrypted
	}

	if err := m.tickets.CreateTicket(ctx, ticket); err != nil {
		m.abandon(channel.ID)
		return nil, fmt.Errorf("error storing ticket: %w", err)
	}

	created := events.New(events.KindCreate, ticket.ID)
	created.CreatorID = creatorID
	m.events.Publish(created)

	setupCtx, cancel := context.WithCancel(context.Background())
	if m.track(ticket.ID, cancel) {
		go m.setup(setupCtx, &ticketSetup{
			ticket:   *ticket,
			category: category,
			member:   member,
		})
	} else {
		cancel()
		m.l.Warn("Manager stopped before the ticket could be set up", slog.String(logging.KeyTicket, ticket.ID))
	}

	TicketsCreated.Inc()
	m.l.Info(fmt.Sprintf("%s created a new ticket", member.User.String()),
		slog.String(logging.KeyTicket, ticket.ID),
		slog.String(logging.KeyGuild, guildID),
		slog.Int("number", number))

	return ticket, nil
}

// abandon deletes a channel that was created for a ticket that could not be stored.
func (m *Manager) abandon(channelID string) {
	if err := m.gw.DeleteChannel(channelID); err != nil {
		m.l.Warn("Error deleting abandoned ticket channel",
			slog.String(logging.KeyTicket, channelID),
			slog.String(logging.KeyError, err.Error()))
	}
}

// ticketSetup is what the setup continuation needs to know about a new ticket.
type ticketSetup struct {
	ticket   entities.Ticket
	category *entities.Category
	member   *discordgo.Member
}

// setup finishes setting up a new ticket channel. A failed step is logged and the next one runs.
func (m *Manager) setup(ctx context.Context, s *ticketSetup) {
	defer m.untrack(s.ticket.ID)

	l := m.l.With(slog.String(logging.KeyTicket, s.ticket.ID))
	settings := m.settings(ctx, s.ticket.GuildID)
	local := m.locales.GetLocale(settings.Locale)
	channelID := s.ticket.ID
	category := s.category
	mention := s.member.User.Mention()

	// The stored row only holds the encrypted topic.
	var topic string
	if s.ticket.Topic != "" {
		m.step(ctx, l, "decrypt_topic", func() error {
			plain, err := m.cipher.Decrypt(s.ticket.Topic)
			if err != nil {
				return fmt.Errorf("error decrypting topic: %w", err)
			}
			topic = plain
			return nil
		})
	}

	if len(category.Ping) > 0 {
		m.step(ctx, l, "ping", func() error {
			_, err := m.gw.Send(channelID, &discordgo.MessageSend{Content: pingContent(category.Ping)})
			return err
		})
	}

	if category.Image != "" {
		m.step(ctx, l, "image", func() error {
			_, err := m.gw.Send(channelID, &discordgo.MessageSend{Content: category.Image})
			return err
		})
	}

	description := naming.Render(category.OpeningMessage, naming.Values{
		DisplayName: displayName(s.member),
		Mention:     mention,
	})

	var opening *discordgo.Message
	m.step(ctx, l, "opening_message", func() error {
		msg, err := m.gw.Send(channelID, &discordgo.MessageSend{
			Content:    mention,
			Embed:      openingEmbed(settings, local, s.member, description, topic),
			Components: closeButtonRow(local),
		})
		if err != nil {
			return err
		}
		opening = msg
		return nil
	})

	if opening != nil {
		m.step(ctx, l, "pin", func() error {
			if err := m.gw.Pin(channelID, opening.ID); err != nil {
				return err
			}
			m.removePinNotice(l, channelID)
			return nil
		})

		m.step(ctx, l, "store_opening_message", func() error {
			id := opening.ID
			return m.tickets.UpdateTicket(ctx, channelID, &entities.TicketUpdate{OpeningMessageID: &id})
		})

		if category.Claiming {
			m.step(ctx, l, "claim_reaction", func() error {
				return m.gw.React(channelID, opening.ID, ClaimEmoji)
			})
		}
	}

	if category.RequireTopic && s.ticket.Topic == "" {
		m.collectTopic(ctx, l, s, settings, local, opening, description)
	}

	if len(category.OpeningQuestions) > 0 {
		m.step(ctx, l, "opening_questions", func() error {
			_, err := m.gw.Send(channelID, &discordgo.MessageSend{
				Embed: &discordgo.MessageEmbed{
					Color:       settings.Colour,
					Description: local("commands.new.questions", formatQuestions(category.OpeningQuestions)),
					Footer:      footer(settings.Footer, ""),
				},
			})
			return err
		})
	}

	if ctx.Err() != nil {
		l.Debug("Ticket setup cancelled")
		return
	}

	m.events.Publish(events.New(events.KindReady, s.ticket.ID))
	l.Debug("Ticket setup complete")
}

// step runs one setup step unless the setup has been cancelled.
func (m *Manager) step(ctx context.Context, l *slog.Logger, name string, fn func() error) {
	if ctx.Err() != nil {
		return
	}

	if err := fn(); err != nil {
		SetupStepFailures.WithLabelValues(name).Inc()
		l.Error("Error setting up ticket channel",
			slog.String(logging.KeyStep, name),
			slog.String(logging.KeyError, err.Error()))
	}
}

// removePinNotice deletes the system message posted when the opening message was pinned.
func (m *Manager) removePinNotice(l *slog.Logger, channelID string) {
	latest, err := m.gw.LatestMessage(channelID)
	if err != nil {
		l.Warn("Failed to get system pin message", slog.String(logging.KeyError, err.Error()))
		return
	}
	if latest == nil || latest.Type != discordgo.MessageTypeChannelPinnedMessage {
		return
	}
	if err := m.gw.DeleteMessage(channelID, latest.ID); err != nil {
		l.Warn("Failed to delete system pin message", slog.String(logging.KeyError, err.Error()))
	}
}

// collectTopic asks the creator for a topic and waits for their first message.
func (m *Manager) collectTopic(
	ctx context.Context,
	l *slog.Logger,
	s *ticketSetup,
	settings *entities.Guild,
	local i18n.Localizer,
	opening *discordgo.Message,
	description string,
) {
	if ctx.Err() != nil {
		return
	}

	channelID := s.ticket.ID

	// Subscribe before prompting so a fast reply is not missed.
	messages, unsubscribe := m.gw.Subscribe(channelID)

	var prompt *discordgo.Message
	m.step(ctx, l, "topic_prompt", func() error {
		msg, err := m.gw.Send(channelID, &discordgo.MessageSend{
			Embed: &discordgo.MessageEmbed{
				Color:       settings.Colour,
				Title:       fmt.Sprintf("%s %s", warningEmoji, local("commands.new.request_topic.title")),
				Description: local("commands.new.request_topic.description"),
				Footer:      footer(settings.Footer, local("collector_expires_in", int(m.topicTimeout.Seconds()))),
			},
		})
		if err != nil {
			return err
		}
		prompt = msg
		return nil
	})

	c := newCollector(m.topicTimeout, func(msg *discordgo.Message) bool {
		return msg.Author != nil &&
			msg.Author.ID == s.ticket.CreatorID &&
			collectedTopic(msg) != ""
	})

	collected, err := c.collect(ctx, messages)
	unsubscribe()

	switch {
	case err == nil:
		TopicCollections.WithLabelValues("collected").Inc()
		m.applyTopic(ctx, l, s, settings, local, opening, description, collected)
	case errors.Is(err, ErrCollectorTimeout):
		TopicCollections.WithLabelValues("timeout").Inc()
		l.Info("No topic given before the collector expired")
	default:
		TopicCollections.WithLabelValues("cancelled").Inc()
		return
	}

	if prompt != nil {
		if err := m.gw.DeleteMessage(channelID, prompt.ID); err != nil {
			l.Warn("Failed to delete topic collector message", slog.String(logging.KeyError, err.Error()))
		}
	}
}

// applyTopic records a collected topic on the ticket, its channel and its opening message.
func (m *Manager) applyTopic(
	ctx context.Context,
	l *slog.Logger,
	s *ticketSetup,
	settings *entities.Guild,
	local i18n.Localizer,
	opening *discordgo.Message,
	description string,
	collected *discordgo.Message,
) {
	channelID := s.ticket.ID
	topic := collectedTopic(collected)

	m.step(ctx, l, "store_topic", func() error {
		encrypted, err := m.cipher.Encrypt(topic)
		if err != nil {
			return fmt.Errorf("error encrypting topic: %w", err)
		}
		return m.tickets.UpdateTicket(ctx, channelID, &entities.TicketUpdate{Topic: &encrypted})
	})

	m.step(ctx, l, "channel_topic", func() error {
		return m.gw.SetTopic(channelID, channelTopic(s.member.User.Mention(), topic))
	})

	if opening != nil {
		m.step(ctx, l, "opening_message_topic", func() error {
			_, err := m.gw.Edit(&discordgo.MessageEdit{
				Channel: channelID,
				ID:      opening.ID,
				Embed:   openingEmbed(settings, local, s.member, description, topic),
			})
			return err
		})
	}

	m.step(ctx, l, "topic_reaction", func() error {
		return m.gw.React(channelID, collected.ID, TopicAcceptedEmoji)
	})
}
