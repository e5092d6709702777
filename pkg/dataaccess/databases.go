package dataaccess

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB is the Mongo client. This is a connection pool.
var MongoDB *mongo.Client

const mongoDatabase = "tickets"

const (
	collectionTickets    = "tickets"
	collectionCategories = "categories"
	collectionGuilds     = "guilds"
	collectionCounters   = "counters"
	collectionArchives   = "archive_members"
)

// ErrNotFound is returned when no document matches a query.
var ErrNotFound = errors.New("not found")

// notFound translates the mongo no documents error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
