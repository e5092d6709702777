package tickets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/events"
	"github.com/Jacobbrewer1/tickets/pkg/i18n"
	"github.com/Jacobbrewer1/tickets/pkg/sealed"
	"github.com/stretchr/testify/require"
)

const (
	testGuild    = "100000000000000001"
	testCategory = "200000000000000001"
	testCreator  = "300000000000000001"
	testStaff    = "300000000000000002"
)

type fakeTickets struct {
	mu   sync.Mutex
	rows map[string]*entities.Ticket
	err  error
}

func newFakeTickets() *fakeTickets {
	return &fakeTickets{rows: make(map[string]*entities.Ticket)}
}

func (f *fakeTickets) CreateTicket(_ context.Context, ticket *entities.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	for _, row := range f.rows {
		if row.GuildID == ticket.GuildID && row.Number == ticket.Number {
			return fmt.Errorf("duplicate ticket number %d", ticket.Number)
		}
	}
	cp := *ticket
	f.rows[ticket.ID] = &cp
	return nil
}

func (f *fakeTickets) GetTicketByID(_ context.Context, id string) (*entities.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("error getting ticket: %w", dataaccess.ErrNotFound)
	}
	cp := *row
	return &cp, nil
}

func (f *fakeTickets) GetTicketByNumber(_ context.Context, guildID string, number int) (*entities.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.GuildID == guildID && row.Number == number {
			cp := *row
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("error getting ticket: %w", dataaccess.ErrNotFound)
}

func (f *fakeTickets) CountTickets(_ context.Context, guildID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, row := range f.rows {
		if row.GuildID == guildID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTickets) UpdateTicket(_ context.Context, id string, update *entities.TicketUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("error updating ticket: %w", dataaccess.ErrNotFound)
	}
	update.Apply(row)
	return nil
}

func (f *fakeTickets) get(t *testing.T, id string) entities.Ticket {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	require.True(t, ok, "ticket %s not stored", id)
	return *row
}

func (f *fakeTickets) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeCategories struct {
	mu   sync.Mutex
	rows map[string]*entities.Category
}

func (f *fakeCategories) GetCategory(_ context.Context, id string) (*entities.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("error getting category: %w", dataaccess.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) SaveCategory(_ context.Context, category *entities.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *category
	f.rows[category.ID] = &cp
	return nil
}

type fakeGuilds struct {
	mu   sync.Mutex
	rows map[string]*entities.Guild
}

func (f *fakeGuilds) SaveGuild(_ context.Context, guild *entities.Guild) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *guild
	f.rows[guild.ID] = &cp
	return nil
}

func (f *fakeGuilds) GetGuildByID(_ context.Context, id string) (*entities.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	g, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("error getting guild: %w", dataaccess.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

// fakeNumberer hands out numbers from an in-memory per-guild counter.
type fakeNumberer struct {
	mu   sync.Mutex
	next map[string]int
}

func (f *fakeNumberer) NextNumber(_ context.Context, guildID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next[guildID]++
	return f.next[guildID], nil
}

type fakeArchiver struct {
	mu      sync.Mutex
	members map[string][]string
}

func (f *fakeArchiver) UpdateMember(_ context.Context, ticketID string, member *discordgo.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.members[ticketID] = append(f.members[ticketID], member.User.ID)
	return nil
}

type sentMessage struct {
	channelID string
	id        string
	msg       *discordgo.MessageSend
}

type reaction struct {
	channelID string
	messageID string
	emoji     string
}

// fakeGateway records every call made to it. Channels it creates are known to IsChannel even once deleted.
type fakeGateway struct {
	mu sync.Mutex

	next            int
	known           map[string]bool
	channels        map[string]*discordgo.Channel
	extraChildren   map[string]int
	latest          map[string]*discordgo.Message
	pins            map[string][]string
	topics          map[string]string
	subs            map[string]chan *discordgo.Message
	sent            []sentMessage
	edits           []*discordgo.MessageEdit
	reactions       []reaction
	deletedMessages []string
	deletedChannels []string
	grants          []string

	// sendErr fails any send it returns an error for.
	sendErr    func(msg *discordgo.MessageSend) error
	grantErr   error
	channelErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		known:         make(map[string]bool),
		channels:      make(map[string]*discordgo.Channel),
		extraChildren: make(map[string]int),
		latest:        make(map[string]*discordgo.Message),
		pins:          make(map[string][]string),
		topics:        make(map[string]string),
		subs:          make(map[string]chan *discordgo.Message),
	}
}

func (g *fakeGateway) id() string {
	g.next++
	return fmt.Sprintf("%d", 900000000000000000+g.next)
}

func (g *fakeGateway) IsChannel(ref string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.known[ref]
}

func (g *fakeGateway) Channel(channelID string) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.channelErr != nil {
		return nil, g.channelErr
	}

	c, ok := g.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("error getting channel %s: %w", channelID, ErrChannelNotFound)
	}
	return c, nil
}

func (g *fakeGateway) CategoryChildCount(_, categoryID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.extraChildren[categoryID]
	for _, c := range g.channels {
		if c.ParentID == categoryID {
			n++
		}
	}
	return n, nil
}

func (g *fakeGateway) Member(guildID, userID string) (*discordgo.Member, error) {
	return &discordgo.Member{
		GuildID: guildID,
		User: &discordgo.User{
			ID:       userID,
			Username: "user" + userID[len(userID)-1:],
		},
	}, nil
}

func (g *fakeGateway) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := &discordgo.Channel{
		ID:       g.id(),
		GuildID:  guildID,
		Name:     data.Name,
		Topic:    data.Topic,
		Type:     data.Type,
		ParentID: data.ParentID,
	}
	g.known[c.ID] = true
	g.channels[c.ID] = c
	g.topics[c.ID] = data.Topic
	return c, nil
}

func (g *fakeGateway) GrantMember(channelID, userID string, _ int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.grantErr != nil {
		return g.grantErr
	}
	g.grants = append(g.grants, channelID+":"+userID)
	return nil
}

func (g *fakeGateway) SetTopic(channelID, topic string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.topics[channelID] = topic
	return nil
}

func (g *fakeGateway) DeleteChannel(channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.channels[channelID]; !ok {
		return fmt.Errorf("error deleting channel %s: %w", channelID, ErrChannelNotFound)
	}
	delete(g.channels, channelID)
	g.deletedChannels = append(g.deletedChannels, channelID)
	return nil
}

func (g *fakeGateway) Send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sendErr != nil {
		if err := g.sendErr(msg); err != nil {
			return nil, err
		}
	}
	if _, ok := g.channels[channelID]; !ok {
		return nil, fmt.Errorf("error sending message: %w", ErrChannelNotFound)
	}

	m := &discordgo.Message{
		ID:        g.id(),
		ChannelID: channelID,
		Content:   msg.Content,
		Type:      discordgo.MessageTypeDefault,
	}
	g.latest[channelID] = m
	g.sent = append(g.sent, sentMessage{channelID: channelID, id: m.ID, msg: msg})
	return m, nil
}

func (g *fakeGateway) Edit(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edits = append(g.edits, edit)
	return &discordgo.Message{ID: edit.ID, ChannelID: edit.Channel}, nil
}

func (g *fakeGateway) Pin(channelID, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pins[channelID] = append(g.pins[channelID], messageID)
	g.latest[channelID] = &discordgo.Message{
		ID:        g.id(),
		ChannelID: channelID,
		Type:      discordgo.MessageTypeChannelPinnedMessage,
	}
	return nil
}

func (g *fakeGateway) React(channelID, messageID, emoji string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reactions = append(g.reactions, reaction{channelID: channelID, messageID: messageID, emoji: emoji})
	return nil
}

func (g *fakeGateway) DeleteMessage(_, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.deletedMessages = append(g.deletedMessages, messageID)
	return nil
}

func (g *fakeGateway) LatestMessage(channelID string) (*discordgo.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[channelID], nil
}

func (g *fakeGateway) Pinned(channelID string) ([]*discordgo.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	msgs := make([]*discordgo.Message, 0, len(g.pins[channelID]))
	for _, id := range g.pins[channelID] {
		msgs = append(msgs, &discordgo.Message{ID: id, ChannelID: channelID, Pinned: true})
	}
	return msgs, nil
}

func (g *fakeGateway) Subscribe(channelID string) (<-chan *discordgo.Message, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch := make(chan *discordgo.Message, 10)
	g.subs[channelID] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.subs[channelID] == ch {
				delete(g.subs, channelID)
			}
			close(ch)
		})
	}
}

// deliver posts a message from a user to a subscribed channel.
func (g *fakeGateway) deliver(channelID, authorID, content string) *discordgo.Message {
	return g.deliverMessage(&discordgo.Message{
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
	})
}

// deliverMessage sends msg to the subscribers of its channel, giving it an ID.
func (g *fakeGateway) deliverMessage(msg *discordgo.Message) *discordgo.Message {
	g.mu.Lock()
	defer g.mu.Unlock()

	msg.ID = g.id()
	if ch, ok := g.subs[msg.ChannelID]; ok {
		ch <- msg
	}
	return msg
}

func (g *fakeGateway) subscribed(channelID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.subs[channelID]
	return ok
}

func (g *fakeGateway) sentTo(channelID string) []*discordgo.MessageSend {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []*discordgo.MessageSend
	for _, s := range g.sent {
		if s.channelID == channelID {
			out = append(out, s.msg)
		}
	}
	return out
}

func (g *fakeGateway) sentIDs(channelID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []string
	for _, s := range g.sent {
		if s.channelID == channelID {
			out = append(out, s.id)
		}
	}
	return out
}

func (g *fakeGateway) reactionsOn(channelID string) []reaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []reaction
	for _, r := range g.reactions {
		if r.channelID == channelID {
			out = append(out, r)
		}
	}
	return out
}

func (g *fakeGateway) snapshot(fn func(g *fakeGateway)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g)
}

type harness struct {
	m          *Manager
	gw         *fakeGateway
	tickets    *fakeTickets
	categories *fakeCategories
	guilds     *fakeGuilds
	archives   *fakeArchiver
	box        *sealed.Box
	events     <-chan events.Event
}

func newHarness(t *testing.T, opts ...func(d *Dependencies)) *harness {
	t.Helper()

	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	box, err := sealed.New("test-secret")
	require.NoError(t, err)

	locales, err := i18n.New(entities.DefaultLocale)
	require.NoError(t, err)

	bus := events.NewBus(l, 0)
	ch, unsubscribe, err := bus.Subscribe()
	require.NoError(t, err)

	h := &harness{
		gw:      newFakeGateway(),
		tickets: newFakeTickets(),
		categories: &fakeCategories{rows: map[string]*entities.Category{
			testCategory: {
				ID:             testCategory,
				GuildID:        testGuild,
				Name:           "Support",
				NameFormat:     "ticket-{number}",
				OpeningMessage: "Hello {name}, thanks for contacting {mention}.",
			},
		}},
		guilds:   &fakeGuilds{rows: make(map[string]*entities.Guild)},
		archives: &fakeArchiver{members: make(map[string][]string)},
		box:      box,
		events:   ch,
	}

	deps := Dependencies{
		Tickets:      h.tickets,
		Categories:   h.categories,
		Guilds:       h.guilds,
		Numbers:      &fakeNumberer{next: make(map[string]int)},
		Gateway:      h.gw,
		Cipher:       box,
		Locales:      locales,
		Archives:     h.archives,
		Events:       bus,
		TopicTimeout: 2 * time.Second,
		CloseDelay:   10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	h.m = NewManager(l, deps)

	t.Cleanup(func() {
		h.m.Stop()
		unsubscribe()
	})

	return h
}

func (h *harness) category(t *testing.T, fn func(c *entities.Category)) {
	t.Helper()

	c, err := h.categories.GetCategory(context.Background(), testCategory)
	require.NoError(t, err)
	fn(c)
	require.NoError(t, h.categories.SaveCategory(context.Background(), c))
}

// waitFor returns the next event of the given kind, skipping others.
func (h *harness) waitFor(t *testing.T, kind events.Kind) events.Event {
	t.Helper()

	timeout := time.After(3 * time.Second)
	for {
		select {
		case e := <-h.events:
			if e.Kind == kind {
				return e
			}
		case <-timeout:
			require.FailNowf(t, "timed out", "no %s event", kind)
		}
	}
}

// drain returns the events published so far.
func (h *harness) drain() []events.Event {
	var out []events.Event
	for {
		select {
		case e := <-h.events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func (h *harness) decrypt(t *testing.T, ciphertext string) string {
	t.Helper()

	plaintext, err := h.box.Decrypt(ciphertext)
	require.NoError(t, err)
	return plaintext
}
