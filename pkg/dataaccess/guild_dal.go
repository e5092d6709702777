package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/entities"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const guildDalName = "guild_dal"

// GuildDal stores the per guild settings that ticket messages are rendered with.
type GuildDal interface {
	// SaveGuild creates or replaces the settings of a guild.
	SaveGuild(ctx context.Context, guild *entities.Guild) error

	// GetGuildByID gets the settings of a guild. ErrNotFound is returned for a guild that has none.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)
}

type guildDal struct {
	l      *slog.Logger
	client *mongo.Client
}

func NewGuildDal(logger *slog.Logger) GuildDal {
	l := logger.With(slog.String(logging.KeyDal, guildDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &guildDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *guildDal) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	defer monitoring.ObserveMongo(guildDalName, "save_guild", mongoDatabase, collectionGuilds)()

	opts := options.Update().SetUpsert(true)
	_, err := d.client.Database(mongoDatabase).Collection(collectionGuilds).
		UpdateOne(ctx, bson.M{"id": guild.ID}, bson.M{"$set": guild}, opts)
	if err != nil {
		return fmt.Errorf("error saving guild settings: %w", err)
	}

	d.l.Debug("Saved guild settings", slog.String(logging.KeyGuild, guild.ID))
	return nil
}

func (d *guildDal) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	defer monitoring.ObserveMongo(guildDalName, "get_guild_by_id", mongoDatabase, collectionGuilds)()

	guild := new(entities.Guild)
	err := d.client.Database(mongoDatabase).Collection(collectionGuilds).
		FindOne(ctx, bson.M{"id": id}).
		Decode(guild)
	if err != nil {
		return nil, fmt.Errorf("error getting guild settings: %w", notFound(err))
	}
	return guild, nil
}
