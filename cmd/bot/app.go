package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/Jacobbrewer1/tickets/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/events"
	"github.com/Jacobbrewer1/tickets/pkg/gateway"
	"github.com/Jacobbrewer1/tickets/pkg/i18n"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/sealed"
	"github.com/Jacobbrewer1/tickets/pkg/tickets"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// shutdownTimeout bounds how long the monitoring server has to finish in-flight requests.
const shutdownTimeout = 10 * time.Second

// IApp is the interface for the application.
type IApp interface {
	// Session returns the discord session.
	Session() *discordgo.Session

	// Log returns the logger.
	Log() *slog.Logger

	// Tickets returns the ticket manager.
	Tickets() *tickets.Manager

	// CategoryDal returns the ticket category data access layer.
	CategoryDal() dataaccess.CategoryDal

	// Locale returns the strings for the locale of a guild.
	Locale(ctx context.Context, guildID string) i18n.Localizer

	// OpenLimiter returns the limiter for opening tickets.
	OpenLimiter() *openLimiter
}

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// redis is the redis client. Nil when redis is not configured.
	redis *redis.Client

	// manager is the ticket manager.
	manager *tickets.Manager

	// locales are the bot's translations.
	locales *i18n.Provider

	categories dataaccess.CategoryDal
	guilds     dataaccess.GuildDal

	// limiter limits how often a user can open tickets.
	limiter *openLimiter

	// commandIDs holds the IDs of the registered slash commands, keyed by "<guild>:<command>".
	commandIDs sync.Map
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger:  l,
		r:       r,
		limiter: newOpenLimiter(openRateInterval, openRateBurst),
	}
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.connectStores(ctx); err != nil {
		return fmt.Errorf("error connecting to stores: %w", err)
	}

	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	if err := a.setupTickets(); err != nil {
		return fmt.Errorf("error setting up tickets: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s", r.User.String()))
	})

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	a.RegisterDiscordHandlers()

	// Start event listeners.
	go a.eventListener()
	if err := a.startTicketEventListener(ctx); err != nil {
		return fmt.Errorf("error starting ticket event listener: %w", err)
	}

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	<-ctx.Done()
	a.Info("Received shutdown signal")

	if err := a.ShutdownHook(); err != nil {
		return fmt.Errorf("error shutting down application: %w", err)
	}
	return nil
}

// connectStores connects to MongoDB and, when configured, Redis.
func (a *App) connectStores(ctx context.Context) error {
	mongoConn := &connection.MongoDB{ConnectionString: config.MongoUri}

	db, err := mongoConn.Connect(ctx)
	if err != nil {
		return err
	}
	dataaccess.MongoDB = db
	a.Debug("Connected to MongoDB", slog.String("key", config.EnvMongoUri))

	if err := dataaccess.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("error ensuring indexes: %w", err)
	}

	if config.RedisAddr == "" {
		a.Debug("No Redis address provided, ticket numbers will be counted in MongoDB")
		return nil
	}

	redisConn := &connection.Redis{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
	}

	a.redis, err = redisConn.Connect(ctx)
	if err != nil {
		return err
	}
	a.Debug("Connected to Redis", slog.String("key", config.EnvRedisAddr))
	return nil
}

// setupTickets builds the ticket manager and everything it depends on.
func (a *App) setupTickets() error {
	box, err := sealed.New(config.EncryptionKey)
	if err != nil {
		return fmt.Errorf("error creating cipher: %w", err)
	}

	a.locales, err = i18n.New(config.DefaultLocale)
	if err != nil {
		return fmt.Errorf("error loading locales: %w", err)
	}

	ticketDal := dataaccess.NewTicketDal(a.Logger)
	a.categories = dataaccess.NewCategoryDal(a.Logger)
	a.guilds = dataaccess.NewGuildDal(a.Logger)

	var numbers dataaccess.CounterDal
	if a.redis != nil {
		numbers = dataaccess.NewRedisCounter(a.Logger, a.redis, ticketDal)
	} else {
		numbers = dataaccess.NewCounterDal(a.Logger, ticketDal)
	}

	a.manager = tickets.NewManager(a.Logger, tickets.Dependencies{
		Tickets:    ticketDal,
		Categories: a.categories,
		Guilds:     a.guilds,
		Numbers:    numbers,
		Gateway:    gateway.NewDiscord(a.Logger, a.s),
		Cipher:     box,
		Locales:    a.locales,
		Archives:   dataaccess.NewArchiveDal(a.Logger),
		Events:     events.NewBus(a.Logger, config.MaxListeners),
	})
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if a.svr != nil {
		if err := a.svr.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error shutting down monitoring server: %w", err))
		}
	}

	// New tickets are refused from here, pending channel deletions run before the session goes away.
	if a.manager != nil {
		a.manager.Stop()
	}

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		errs = append(errs, fmt.Errorf("error unregistering slash commands: %w", err))
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}

	if err := dataaccess.MongoDB.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error disconnecting from MongoDB: %w", err))
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing Redis client: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	if a.eventNotifier == nil {
		// Create event notifier. This is used to count events. It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server", slog.String("port", config.MonitoringPort))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:              ":" + config.MonitoringPort,
		Handler:           a.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Ticket channel deleted by hand.
	a.s.AddHandler(channelDeleteHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]slashCommandController{
			setupCmd.Name:  setupCmdController,
			ticketCmd.Name: ticketCmdController,
		},
		// Button Processors
		map[string]slashProcessor{
			openTicketButtonID:          openTicketButtonHandler,
			tickets.CloseTicketButtonID: closeTicketButtonHandler,
		}))
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

// startTicketEventListener logs and counts the lifecycle events of tickets.
func (a *App) startTicketEventListener(ctx context.Context) error {
	ch, unsubscribe, err := a.manager.Events().Subscribe()
	if err != nil {
		return err
	}

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				monitoring.TicketEvents.WithLabelValues(string(e.Kind)).Inc()
				a.Debug("Ticket event",
					slog.String("kind", string(e.Kind)),
					slog.String("event_id", e.ID),
					slog.String(logging.KeyTicket, e.TicketID))
			}
		}
	}()
	return nil
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		if err := a.registerGuildCommands(g.ID); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) registerGuildCommands(guildID string) error {
	for _, cmd := range []*discordgo.ApplicationCommand{setupCmd, ticketCmd} {
		created, err := a.s.ApplicationCommandCreate(config.ApplicationId, guildID, cmd)
		if err != nil {
			return fmt.Errorf("error creating %s command for guild %s: %w", cmd.Name, guildID, err)
		}
		a.commandIDs.Store(guildID+":"+cmd.Name, created.ID)
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	var errs []error
	a.commandIDs.Range(func(key, value any) bool {
		guildID, _, _ := strings.Cut(key.(string), ":")
		if err := a.s.ApplicationCommandDelete(config.ApplicationId, guildID, value.(string)); err != nil {
			errs = append(errs, fmt.Errorf("error deleting command %s for guild %s: %w", key, guildID, err))
		}
		return true
	})
	return errors.Join(errs...)
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Tickets() *tickets.Manager {
	return a.manager
}

func (a *App) CategoryDal() dataaccess.CategoryDal {
	return a.categories
}

func (a *App) OpenLimiter() *openLimiter {
	return a.limiter
}

func (a *App) Locale(ctx context.Context, guildID string) i18n.Localizer {
	tag := config.DefaultLocale
	g, err := a.guilds.GetGuildByID(ctx, guildID)
	if err == nil && g.Locale != "" {
		tag = g.Locale
	} else if err != nil && !errors.Is(err, dataaccess.ErrNotFound) {
		a.Warn("Error getting guild locale", slog.String(logging.KeyGuild, guildID), slog.String(logging.KeyError, err.Error()))
	}
	return a.locales.GetLocale(tag)
}

// defaultGuild creates and stores the default settings for a guild the bot has just joined.
func (a *App) defaultGuild(ctx context.Context, guildID string) error {
	if _, err := a.guilds.GetGuildByID(ctx, guildID); err == nil {
		return nil
	} else if !errors.Is(err, dataaccess.ErrNotFound) {
		return fmt.Errorf("error getting guild: %w", err)
	}

	g := entities.DefaultGuild(guildID)
	g.Locale = config.DefaultLocale
	if err := a.guilds.SaveGuild(ctx, g); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}
	return nil
}
