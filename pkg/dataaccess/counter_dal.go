package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterDalName = "counter_dal"

// CounterDal hands out ticket numbers from a per guild sequence.
type CounterDal interface {
	// NextNumber returns the next ticket number of a guild. Numbers are unique and increasing even when called
	// concurrently.
	NextNumber(ctx context.Context, guildID string) (int, error)
}

type counterDal struct {
	l       *slog.Logger
	client  *mongo.Client
	tickets TicketDal
}

type counterDocument struct {
	Seq int `bson:"seq"`
}

// NewCounterDal creates a counter stored in Mongo. A guild's sequence is seeded from its ticket count the first
// time it is used.
func NewCounterDal(logger *slog.Logger, tickets TicketDal) CounterDal {
	l := logger.With(slog.String(logging.KeyDal, counterDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &counterDal{
		l:       l,
		client:  MongoDB,
		tickets: tickets,
	}
}

func (d *counterDal) NextNumber(ctx context.Context, guildID string) (int, error) {
	n, err := d.increment(ctx, guildID)
	if err == nil {
		return n, nil
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	if err := d.seed(ctx, guildID); err != nil {
		return 0, err
	}
	return d.increment(ctx, guildID)
}

func (d *counterDal) increment(ctx context.Context, guildID string) (int, error) {
	defer monitoring.ObserveMongo(counterDalName, "increment", mongoDatabase, collectionCounters)()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	doc := new(counterDocument)
	err := d.client.Database(mongoDatabase).Collection(collectionCounters).
		FindOneAndUpdate(ctx, bson.M{"_id": guildID}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(doc)
	if err != nil {
		return 0, fmt.Errorf("error incrementing counter: %w", notFound(err))
	}
	return doc.Seq, nil
}

// seed creates the guild's counter starting at its current ticket count. Losing a race with another seed is fine.
func (d *counterDal) seed(ctx context.Context, guildID string) error {
	count, err := d.tickets.CountTickets(ctx, guildID)
	if err != nil {
		return fmt.Errorf("error seeding counter: %w", err)
	}

	defer monitoring.ObserveMongo(counterDalName, "seed", mongoDatabase, collectionCounters)()

	opts := options.Update().SetUpsert(true)
	_, err = d.client.Database(mongoDatabase).Collection(collectionCounters).
		UpdateOne(ctx, bson.M{"_id": guildID}, bson.M{"$setOnInsert": bson.M{"seq": count}}, opts)
	if err != nil && !IsDuplicate(err) {
		return fmt.Errorf("error seeding counter: %w", err)
	}

	d.l.Debug("Seeded ticket counter",
		slog.String(logging.KeyGuild, guildID),
		slog.Int64("count", count),
	)
	return nil
}
