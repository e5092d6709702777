package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/events"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
)

const (
	// DefaultTopicTimeout is how long the creator of a ticket has to give a topic.
	DefaultTopicTimeout = 120 * time.Second

	// DefaultCloseDelay is how long a closed ticket channel stays around before it is deleted.
	DefaultCloseDelay = 5 * time.Second
)

// Dependencies are the collaborators of a Manager.
type Dependencies struct {
	Tickets    dataaccess.TicketDal
	Categories dataaccess.CategoryDal
	Guilds     dataaccess.GuildDal
	Numbers    Numberer
	Gateway    Gateway
	Cipher     Cipher
	Locales    Locales
	Archives   Archiver
	Events     *events.Bus

	// TopicTimeout overrides DefaultTopicTimeout when set.
	TopicTimeout time.Duration

	// CloseDelay overrides DefaultCloseDelay when set.
	CloseDelay time.Duration
}

// Manager creates, resolves and closes tickets.
type Manager struct {
	l *slog.Logger

	tickets    dataaccess.TicketDal
	categories dataaccess.CategoryDal
	guilds     dataaccess.GuildDal
	numbers    Numberer
	gw         Gateway
	cipher     Cipher
	locales    Locales
	archives   Archiver
	events     *events.Bus

	topicTimeout time.Duration
	closeDelay   time.Duration

	// mut guards pending, closing and stopped. wg.Add is only called while holding it.
	mut sync.Mutex

	// stopped is set by Stop. No background work is started after it is set.
	stopped bool

	// pending holds the cancel functions of the running setup continuations, by ticket ID.
	pending map[string]context.CancelFunc

	// closing holds the IDs of the tickets that are part way through being closed.
	closing map[string]struct{}

	// wg tracks the background work: setup continuations and scheduled channel deletions.
	wg sync.WaitGroup
}

// NewManager creates a new ticket manager.
func NewManager(l *slog.Logger, deps Dependencies) *Manager {
	topicTimeout := deps.TopicTimeout
	if topicTimeout <= 0 {
		topicTimeout = DefaultTopicTimeout
	}

	closeDelay := deps.CloseDelay
	if closeDelay <= 0 {
		closeDelay = DefaultCloseDelay
	}

	bus := deps.Events
	if bus == nil {
		bus = events.NewBus(l, 0)
	}

	return &Manager{
		l:            l,
		tickets:      deps.Tickets,
		categories:   deps.Categories,
		guilds:       deps.Guilds,
		numbers:      deps.Numbers,
		gw:           deps.Gateway,
		cipher:       deps.Cipher,
		locales:      deps.Locales,
		archives:     deps.Archives,
		events:       bus,
		topicTimeout: topicTimeout,
		closeDelay:   closeDelay,
		pending:      make(map[string]context.CancelFunc),
		closing:      make(map[string]struct{}),
	}
}

// Events returns the bus the manager publishes its lifecycle events on.
func (m *Manager) Events() *events.Bus {
	return m.events
}

// Resolve finds a ticket from either its channel ID or its number within the guild. A nil ticket and a nil error
// are returned when nothing matches.
func (m *Manager) Resolve(ctx context.Context, ref, guildID string) (*entities.Ticket, error) {
	var (
		ticket *entities.Ticket
		err    error
	)

	if m.gw.IsChannel(ref) {
		ticket, err = m.tickets.GetTicketByID(ctx, ref)
	} else {
		number, convErr := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(ref), "#"))
		if convErr != nil || number <= 0 || guildID == "" {
			return nil, nil
		}
		ticket, err = m.tickets.GetTicketByNumber(ctx, guildID, number)
	}

	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error resolving ticket %q: %w", ref, err)
	}
	return ticket, nil
}

// Cancel stops the setup continuation of a ticket if one is running. Returns whether one was running.
func (m *Manager) Cancel(ticketID string) bool {
	m.mut.Lock()
	cancel, ok := m.pending[ticketID]
	delete(m.pending, ticketID)
	m.mut.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// Stop cancels every running setup continuation and waits for the background work to finish. Tickets can not be
// opened or closed once Stop has been called.
func (m *Manager) Stop() {
	m.mut.Lock()
	m.stopped = true
	for id, cancel := range m.pending {
		cancel()
		delete(m.pending, id)
	}
	m.mut.Unlock()

	m.Wait()
}

// Wait blocks until all the background work of the manager has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) isStopped() bool {
	m.mut.Lock()
	defer m.mut.Unlock()
	return m.stopped
}

// track registers a setup continuation. Returns false if the manager has been stopped.
func (m *Manager) track(ticketID string, cancel context.CancelFunc) bool {
	m.mut.Lock()
	defer m.mut.Unlock()

	if m.stopped {
		return false
	}
	m.pending[ticketID] = cancel
	m.wg.Add(1)
	return true
}

// addWork registers background work that is not a setup continuation. Returns false if the manager has been
// stopped.
func (m *Manager) addWork() bool {
	m.mut.Lock()
	defer m.mut.Unlock()

	if m.stopped {
		return false
	}
	m.wg.Add(1)
	return true
}

func (m *Manager) untrack(ticketID string) {
	// Release the context whether or not the continuation was cancelled.
	m.Cancel(ticketID)
	m.wg.Done()
}

// beginClose marks a ticket as closing. Returns false if it is already being closed.
func (m *Manager) beginClose(ticketID string) bool {
	m.mut.Lock()
	defer m.mut.Unlock()

	if _, ok := m.closing[ticketID]; ok {
		return false
	}
	m.closing[ticketID] = struct{}{}
	return true
}

func (m *Manager) endClose(ticketID string) {
	m.mut.Lock()
	delete(m.closing, ticketID)
	m.mut.Unlock()
}

// settings gets the configuration of a guild, falling back to the defaults.
func (m *Manager) settings(ctx context.Context, guildID string) *entities.Guild {
	def := entities.DefaultGuild(guildID)

	g, err := m.guilds.GetGuildByID(ctx, guildID)
	if err != nil {
		if !errors.Is(err, dataaccess.ErrNotFound) {
			m.l.Warn("Error getting guild settings, using defaults",
				slog.String(logging.KeyGuild, guildID),
				slog.String(logging.KeyError, err.Error()))
		}
		return def
	}

	if g.Locale == "" {
		g.Locale = def.Locale
	}
	if g.Colour == 0 {
		g.Colour = def.Colour
	}
	if g.SuccessColour == 0 {
		g.SuccessColour = def.SuccessColour
	}
	if g.Footer == "" {
		g.Footer = def.Footer
	}
	return g
}
