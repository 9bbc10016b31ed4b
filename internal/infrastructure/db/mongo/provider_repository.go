package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
)

const providersCollection = "providers"

// ProviderRepository keeps the provider reference collection.
type ProviderRepository struct {
	col *mongo.Collection
}

var _ ports.ProviderRepository = (*ProviderRepository)(nil)

func NewProviderRepository(db *mongo.Database) *ProviderRepository {
	return &ProviderRepository{col: db.Collection(providersCollection)}
}

// Seed upserts every provider; running it again is a no-op.
func (r *ProviderRepository) Seed(ctx context.Context, providers []domain.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(providers))
	for _, p := range providers {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": string(p)}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{"name": string(p)}}).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}

	if _, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("seed providers: %w", err)
	}
	return nil
}

func (r *ProviderRepository) List(ctx context.Context) ([]domain.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	out := make([]domain.Provider, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Provider(d.ID))
	}
	return out, nil
}
