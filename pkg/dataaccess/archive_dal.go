package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/tickets/pkg/custom"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const archiveDalName = "archive_dal"

// ArchiveDal keeps the member details shown in ticket archives.
type ArchiveDal interface {
	// UpdateMember stores a snapshot of a member that took part in a ticket.
	UpdateMember(ctx context.Context, ticketID string, member *discordgo.Member) error
}

type archiveDal struct {
	l      *slog.Logger
	client *mongo.Client
}

// archivedMember is a snapshot of a member at the time they took part in a ticket.
type archivedMember struct {
	TicketID    string          `bson:"ticket"`
	UserID      string          `bson:"user"`
	Username    string          `bson:"username"`
	DisplayName string          `bson:"display_name"`
	Avatar      string          `bson:"avatar"`
	Roles       []string        `bson:"roles"`
	UpdatedAt   custom.Datetime `bson:"updated_at"`
}

// NewArchiveDal creates a new archive data access layer.
func NewArchiveDal(logger *slog.Logger) ArchiveDal {
	l := logger.With(slog.String(logging.KeyDal, archiveDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &archiveDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *archiveDal) UpdateMember(ctx context.Context, ticketID string, member *discordgo.Member) error {
	if member == nil || member.User == nil {
		return fmt.Errorf("error updating archived member: no member provided")
	}

	defer monitoring.ObserveMongo(archiveDalName, "update_member", mongoDatabase, collectionArchives)()

	displayName := member.Nick
	if displayName == "" {
		displayName = member.User.Username
	}

	doc := &archivedMember{
		TicketID:    ticketID,
		UserID:      member.User.ID,
		Username:    member.User.String(),
		DisplayName: displayName,
		Avatar:      member.User.AvatarURL(""),
		Roles:       member.Roles,
		UpdatedAt:   custom.Now(),
	}

	opts := options.Update().SetUpsert(true)
	_, err := d.client.Database(mongoDatabase).Collection(collectionArchives).
		UpdateOne(ctx, bson.M{"ticket": ticketID, "user": member.User.ID}, bson.M{"$set": doc}, opts)
	if err != nil {
		return fmt.Errorf("error updating archived member: %w", err)
	}
	return nil
}
