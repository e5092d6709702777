package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const ticketDalName = "ticket_dal"

// TicketDal is the data access layer for tickets.
type TicketDal interface {
	// CreateTicket stores a new ticket.
	CreateTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetTicketByID gets a ticket by its channel ID.
	GetTicketByID(ctx context.Context, id string) (*entities.Ticket, error)

	// GetTicketByNumber gets a ticket by its number within a guild.
	GetTicketByNumber(ctx context.Context, guildID string, number int) (*entities.Ticket, error)

	// CountTickets counts the tickets of a guild.
	CountTickets(ctx context.Context, guildID string) (int64, error)

	// UpdateTicket applies an update to a ticket.
	UpdateTicket(ctx context.Context, id string, update *entities.TicketUpdate) error
}

type ticketDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewTicketDal creates a new ticket data access layer.
func NewTicketDal(logger *slog.Logger) TicketDal {
	l := logger.With(slog.String(logging.KeyDal, ticketDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &ticketDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *ticketDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection(collectionTickets)
}

func (d *ticketDal) CreateTicket(ctx context.Context, ticket *entities.Ticket) error {
	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "create_ticket", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "create_ticket", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	if _, err := d.collection().InsertOne(ctx, ticket); err != nil {
		return fmt.Errorf("error inserting ticket: %w", err)
	}
	return nil
}

func (d *ticketDal) GetTicketByID(ctx context.Context, id string) (*entities.Ticket, error) {
	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "get_ticket_by_id", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "get_ticket_by_id", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	ticket := new(entities.Ticket)
	if err := d.collection().FindOne(ctx, bson.M{"id": id}).Decode(ticket); err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", notFound(err))
	}
	return ticket, nil
}

func (d *ticketDal) GetTicketByNumber(ctx context.Context, guildID string, number int) (*entities.Ticket, error) {
	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "get_ticket_by_number", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "get_ticket_by_number", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	ticket := new(entities.Ticket)
	err := d.collection().FindOne(ctx, bson.M{
		"guild":  guildID,
		"number": number,
	}).Decode(ticket)
	if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", notFound(err))
	}
	return ticket, nil
}

func (d *ticketDal) CountTickets(ctx context.Context, guildID string) (int64, error) {
	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "count_tickets", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "count_tickets", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	count, err := d.collection().CountDocuments(ctx, bson.M{"guild": guildID})
	if err != nil {
		return 0, fmt.Errorf("error counting tickets: %w", err)
	}
	return count, nil
}

func (d *ticketDal) UpdateTicket(ctx context.Context, id string, update *entities.TicketUpdate) error {
	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "update_ticket", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "update_ticket", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	doc := ticketUpdateDocument(update)
	if len(doc) == 0 {
		return nil
	}

	res, err := d.collection().UpdateOne(ctx, bson.M{"id": id}, doc)
	if err != nil {
		return fmt.Errorf("error updating ticket: %w", err)
	} else if res.MatchedCount == 0 {
		return fmt.Errorf("error updating ticket %s: %w", id, ErrNotFound)
	}
	return nil
}

// ticketUpdateDocument converts an update into a mongo update document. Empty strings unset their field.
func ticketUpdateDocument(u *entities.TicketUpdate) bson.M {
	set := bson.M{}
	unset := bson.M{}

	setString := func(field string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			unset[field] = ""
			return
		}
		set[field] = *v
	}

	setString("topic", u.Topic)
	setString("opening_message", u.OpeningMessageID)
	setString("closed_by", u.ClosedBy)
	setString("closed_reason", u.ClosedReason)

	if u.Open != nil {
		set["open"] = *u.Open
	}
	if u.PinnedMessages != nil {
		pinned := *u.PinnedMessages
		if pinned == nil {
			pinned = []string{}
		}
		set["pinned_messages"] = pinned
	}
	if u.ClosedAt != nil {
		set["closed_at"] = *u.ClosedAt
	}

	doc := bson.M{}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

// IsDuplicate reports whether err is caused by a unique index violation.
func IsDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
