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

const categoryDalName = "category_dal"

// CategoryDal is the data access layer for ticket categories.
type CategoryDal interface {
	// GetCategory gets the ticket configuration of a category.
	GetCategory(ctx context.Context, id string) (*entities.Category, error)

	// SaveCategory saves the ticket configuration of a category.
	SaveCategory(ctx context.Context, category *entities.Category) error
}

type categoryDal struct {
	l      *slog.Logger
	client *mongo.Client
}

// NewCategoryDal creates a new category data access layer.
func NewCategoryDal(logger *slog.Logger) CategoryDal {
	l := logger.With(slog.String(logging.KeyDal, categoryDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &categoryDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *categoryDal) GetCategory(ctx context.Context, id string) (*entities.Category, error) {
	defer monitoring.ObserveMongo(categoryDalName, "get_category", mongoDatabase, collectionCategories)()

	category := new(entities.Category)
	err := d.client.Database(mongoDatabase).Collection(collectionCategories).
		FindOne(ctx, bson.M{"id": id}).
		Decode(category)
	if err != nil {
		return nil, fmt.Errorf("error getting category: %w", notFound(err))
	}
	return category, nil
}

func (d *categoryDal) SaveCategory(ctx context.Context, category *entities.Category) error {
	defer monitoring.ObserveMongo(categoryDalName, "save_category", mongoDatabase, collectionCategories)()

	opts := options.Update().SetUpsert(true)
	_, err := d.client.Database(mongoDatabase).Collection(collectionCategories).
		UpdateOne(ctx, bson.M{"id": category.ID}, bson.M{"$set": category}, opts)
	if err != nil {
		return fmt.Errorf("error saving category: %w", err)
	}
	return nil
}
