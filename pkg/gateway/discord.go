// Package gateway implements the ticket gateway on top of a Discord session.
package gateway

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sync"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/tickets"
)

// subscriptionBuffer is how many messages a subscription holds before new ones are dropped.
const subscriptionBuffer = 16

// snowflakePattern matches Discord IDs.
var snowflakePattern = regexp.MustCompile(`^\d{17,20}$`)

// Discord is a tickets.Gateway backed by a discordgo session.
type Discord struct {
	l *slog.Logger
	s *discordgo.Session

	mut  sync.Mutex
	subs map[string]map[int]chan *discordgo.Message
	next int
}

// NewDiscord creates a gateway for the session and starts routing created messages to subscribers.
func NewDiscord(l *slog.Logger, s *discordgo.Session) *Discord {
	d := &Discord{
		l:    l,
		s:    s,
		subs: make(map[string]map[int]chan *discordgo.Message),
	}
	s.AddHandler(d.messageCreateHandler())
	return d
}

var _ tickets.Gateway = (*Discord)(nil)

func (d *Discord) messageCreateHandler() func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Message == nil {
			return
		}
		d.dispatch(m.Message)
	}
}

// dispatch hands a message to the subscribers of its channel. Messages are dropped for subscribers that are full.
func (d *Discord) dispatch(m *discordgo.Message) {
	d.mut.Lock()
	defer d.mut.Unlock()

	for _, ch := range d.subs[m.ChannelID] {
		select {
		case ch <- m:
		default:
			d.l.Warn("Dropping message for full subscriber", slog.String(logging.KeyTicket, m.ChannelID))
		}
	}
}

func (d *Discord) Subscribe(channelID string) (<-chan *discordgo.Message, func()) {
	d.mut.Lock()
	defer d.mut.Unlock()

	id := d.next
	d.next++

	ch := make(chan *discordgo.Message, subscriptionBuffer)
	if d.subs[channelID] == nil {
		d.subs[channelID] = make(map[int]chan *discordgo.Message)
	}
	d.subs[channelID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mut.Lock()
			defer d.mut.Unlock()

			delete(d.subs[channelID], id)
			if len(d.subs[channelID]) == 0 {
				delete(d.subs, channelID)
			}
			close(ch)
		})
	}
}

func (d *Discord) IsChannel(ref string) bool {
	if d.s.State != nil {
		if _, err := d.s.State.Channel(ref); err == nil {
			return true
		}
	}
	return snowflakePattern.MatchString(ref)
}

func (d *Discord) Channel(channelID string) (*discordgo.Channel, error) {
	c, err := d.s.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("error getting channel: %w", wrapNotFound(err))
	}
	return c, nil
}

func (d *Discord) CategoryChildCount(guildID, categoryID string) (int, error) {
	channels, err := d.s.GuildChannels(guildID)
	if err != nil {
		return 0, fmt.Errorf("error getting guild channels: %w", err)
	}

	count := 0
	for _, c := range channels {
		if c.ParentID == categoryID {
			count++
		}
	}
	return count, nil
}

func (d *Discord) Member(guildID, userID string) (*discordgo.Member, error) {
	m, err := d.s.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting member: %w", err)
	}
	return m, nil
}

func (d *Discord) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	c, err := d.s.GuildChannelCreateComplex(guildID, data)
	if err != nil {
		return nil, fmt.Errorf("error creating channel: %w", err)
	}
	return c, nil
}

func (d *Discord) GrantMember(channelID, userID string, allow int64) error {
	if err := d.s.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember, allow, 0); err != nil {
		return fmt.Errorf("error setting channel permissions: %w", wrapNotFound(err))
	}
	return nil
}

func (d *Discord) SetTopic(channelID, topic string) error {
	if _, err := d.s.ChannelEditComplex(channelID, &discordgo.ChannelEdit{Topic: topic}); err != nil {
		return fmt.Errorf("error setting channel topic: %w", wrapNotFound(err))
	}
	return nil
}

func (d *Discord) DeleteChannel(channelID string) error {
	if _, err := d.s.ChannelDelete(channelID); err != nil {
		return fmt.Errorf("error deleting channel: %w", wrapNotFound(err))
	}
	return nil
}

func (d *Discord) Send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	m, err := d.s.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return nil, fmt.Errorf("error sending message: %w", wrapNotFound(err))
	}
	return m, nil
}

func (d *Discord) Edit(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	m, err := d.s.ChannelMessageEditComplex(edit)
	if err != nil {
		return nil, fmt.Errorf("error editing message: %w", wrapNotFound(err))
	}
	return m, nil
}

func (d *Discord) Pin(channelID, messageID string) error {
	if err := d.s.ChannelMessagePin(channelID, messageID); err != nil {
		return fmt.Errorf("error pinning message: %w", wrapNotFound(err))
	}
	return nil
}

func (d *Discord) React(channelID, messageID, emoji string) error {
	if err := d.s.MessageReactionAdd(channelID, messageID, emoji); err != nil {
		return fmt.Errorf("error adding reaction: %w", wrapNotFound(err))
	}
	return nil
}

func (d *Discord) DeleteMessage(channelID, messageID string) error {
	if err := d.s.ChannelMessageDelete(channelID, messageID); err != nil {
		return fmt.Errorf("error deleting message: %w", wrapNotFound(err))
	}
	return nil
}

func (d *Discord) LatestMessage(channelID string) (*discordgo.Message, error) {
	msgs, err := d.s.ChannelMessages(channelID, 1, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting latest message: %w", wrapNotFound(err))
	} else if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

func (d *Discord) Pinned(channelID string) ([]*discordgo.Message, error) {
	msgs, err := d.s.ChannelMessagesPinned(channelID)
	if err != nil {
		return nil, fmt.Errorf("error getting pinned messages: %w", wrapNotFound(err))
	}
	return msgs, nil
}

// wrapNotFound marks unknown channel errors with tickets.ErrChannelNotFound.
func wrapNotFound(err error) error {
	if isUnknownChannel(err) {
		return fmt.Errorf("%w: %w", tickets.ErrChannelNotFound, err)
	}
	return err
}

func isUnknownChannel(err error) bool {
	er := new(discordgo.RESTError)
	if !errors.As(err, &er) || er.Message == nil {
		return false
	}
	switch er.Message.Code {
	case discordgo.ErrCodeUnknownChannel:
		return true
	case discordgo.ErrCodeGeneralError:
		// General is also thrown for server errors, only a 404 means the channel is gone.
		return er.Response != nil && er.Response.StatusCode == http.StatusNotFound
	default:
		return false
	}
}
