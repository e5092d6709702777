package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/events"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

const (
	closeKindMember = "member"
	closeKindSystem = "system"
)

// Close closes a ticket. The ticket is referenced by its channel ID or its number within the guild. An empty
// closerID means the ticket is being closed by the system. Closing a ticket that is already closed does nothing
// and returns it as it is.
func (m *Manager) Close(ctx context.Context, ref, closerID, guildID, reason string) (*entities.Ticket, error) {
	if m.isStopped() {
		return nil, ErrStopped
	}

	ticket, err := m.Resolve(ctx, ref, guildID)
	if err != nil {
		return nil, err
	} else if ticket == nil {
		return nil, fmt.Errorf("%w: %q", ErrTicketNotFound, ref)
	}

	if !ticket.Open || !m.beginClose(ticket.ID) {
		return ticket, nil
	}
	defer m.endClose(ticket.ID)

	l := m.l.With(slog.String(logging.KeyTicket, ticket.ID))

	// Only a channel that is known to be gone may be closed without scheduling its deletion.
	channel, err := m.gw.Channel(ticket.ID)
	if errors.Is(err, ErrChannelNotFound) {
		l.Debug("Ticket channel no longer exists")
		channel = nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket channel: %w", err)
	}

	if m.Cancel(ticket.ID) {
		l.Debug("Cancelled ticket setup")
	}

	m.events.Publish(events.New(events.KindBeforeClose, ticket.ID))

	settings := m.settings(ctx, ticket.GuildID)
	local := m.locales.GetLocale(settings.Locale)

	kind := closeKindSystem
	var member *discordgo.Member
	if closerID != "" {
		kind = closeKindMember

		member, err = m.gw.Member(ticket.GuildID, closerID)
		if err != nil {
			return nil, fmt.Errorf("error getting closing member: %w", err)
		}

		if err := m.archives.UpdateMember(ctx, ticket.ID, member); err != nil {
			l.Error("Error archiving closing member",
				slog.String(logging.KeyUser, closerID),
				slog.String(logging.KeyError, err.Error()))
		}
	}

	if channel != nil {
		_, err := m.gw.Send(channel.ID, &discordgo.MessageSend{Embed: closedEmbed(settings, local, member, reason)})
		if err != nil {
			l.Error("Error sending ticket closed notice", slog.String(logging.KeyError, err.Error()))
		}
		m.scheduleDeletion(l, channel.ID)
	}

	attrs := []any{slog.String("kind", kind)}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}
	if member != nil {
		l.Info(fmt.Sprintf("%s closed a ticket", member.User.String()), attrs...)
	} else {
		l.Info("A ticket was closed", attrs...)
	}

	pinned := make([]string, 0)
	if channel != nil {
		msgs, err := m.gw.Pinned(channel.ID)
		if err != nil {
			l.Warn("Error getting pinned messages", slog.String(logging.KeyError, err.Error()))
		}
		for _, msg := range msgs {
			pinned = append(pinned, msg.ID)
		}
	}

	closedReason := ""
	if reason != "" {
		closedReason, err = m.cipher.Encrypt(reason)
		if err != nil {
			return nil, fmt.Errorf("error encrypting close reason: %w", err)
		}
	}

	open := false
	closedAt := custom.Now()
	update := &entities.TicketUpdate{
		Open:           &open,
		ClosedBy:       &closerID,
		ClosedReason:   &closedReason,
		PinnedMessages: &pinned,
		ClosedAt:       &closedAt,
	}
	if err := m.tickets.UpdateTicket(ctx, ticket.ID, update); err != nil {
		return nil, fmt.Errorf("error closing ticket: %w", err)
	}
	update.Apply(ticket)

	TicketsClosed.WithLabelValues(kind).Inc()
	m.events.Publish(events.New(events.KindClose, ticket.ID))

	return ticket, nil
}

// scheduleDeletion deletes a closed ticket channel once the close delay has passed. It is not retried.
func (m *Manager) scheduleDeletion(l *slog.Logger, channelID string) {
	if !m.addWork() {
		// Stopping, so there is no time to wait.
		m.deleteChannel(l, channelID)
		return
	}

	time.AfterFunc(m.closeDelay, func() {
		defer m.wg.Done()
		m.deleteChannel(l, channelID)
	})
}

func (m *Manager) deleteChannel(l *slog.Logger, channelID string) {
	if err := m.gw.DeleteChannel(channelID); err != nil {
		l.Error("Error deleting closed ticket channel", slog.String(logging.KeyError, err.Error()))
		return
	}
	l.Debug("Deleted closed ticket channel")
}
