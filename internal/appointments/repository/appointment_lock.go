package repository

import (
	"context"
	"time"

	"glowbridge/pkg/config"
	"glowbridge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Slot_holds"

// SlotHoldRepository provides operations for advisory booking locks. The
// collection carries a unique _id and a TTL index on expires_at so abandoned
// holds clean themselves up.
type SlotHoldRepository interface {
	Create(ctx context.Context, hold *model.SlotHold) (*model.SlotHold, error)
	Delete(ctx context.Context, holdID string) error
}

type mongoSlotHoldRepository struct {
	collection *mongo.Collection
}

func NewSlotHoldRepository(cfg *config.Config) SlotHoldRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotHoldRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Returns duplicate key error if the hold already exists
func (r *mongoSlotHoldRepository) Create(ctx context.Context, hold *model.SlotHold) (*model.SlotHold, error) {
	hold.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, hold)
	if err != nil {
		return nil, err
	}

	return hold, nil
}

func (r *mongoSlotHoldRepository) Delete(ctx context.Context, holdID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": holdID})
	return err
}
