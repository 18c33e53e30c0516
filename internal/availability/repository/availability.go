package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "glowbridge/internal/availability/errors"
	"glowbridge/pkg/config"
	mongotx "glowbridge/pkg/db/mongo"
	"glowbridge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Staff_availability"
)

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AvailabilityRepository interface {
	Create(ctx context.Context, slot *model.WeeklySlot) error
	CreateBulk(ctx context.Context, slots []*model.WeeklySlot) error
	FindByID(ctx context.Context, id string) (*model.WeeklySlot, error)
	FindAll(ctx context.Context, filter model.SlotFilter, limit int, offset int64) ([]*model.WeeklySlot, error)
	Count(ctx context.Context, filter model.SlotFilter) (int64, error)
	Update(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error)
	Delete(ctx context.Context, id string) error
	DeleteByStaff(ctx context.Context, staffID string) (int64, error)
	DeleteByStaffAndDay(ctx context.Context, staffID string, day int) (bool, error)
	FindByStaff(ctx context.Context, staffID string) ([]*model.WeeklySlot, error)
	FindByDay(ctx context.Context, day int) ([]*model.WeeklySlot, error)
	Search(ctx context.Context, criteria model.SearchCriteria, staffIDs []string, limit int, offset int64) ([]*model.WeeklySlot, int64, error)
	SearchAvailableInWindow(ctx context.Context, criteria model.WindowCriteria, staffIDs []string, limit int, offset int64) ([]*model.WeeklySlot, int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoAvailabilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		// Inside transaction - cannot wrap SessionContext, return no-op cancel
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining > timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAvailabilityRepository) Create(ctx context.Context, slot *model.WeeklySlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to create availability slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAvailabilityRepository) CreateBulk(ctx context.Context, slots []*model.WeeklySlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(slots))
	for _, slot := range slots {
		slot.CreatedAt = now
		docs = append(docs, slot)
	}

	// Ordered insert: the driver stops at the first failure, and inside the
	// transaction callers wrap this in, nothing is committed on failure.
	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("failed to bulk create availability slots: %w", err)
	}

	for i, insertedID := range result.InsertedIDs {
		if oid, ok := insertedID.(primitive.ObjectID); ok && i < len(slots) {
			slots[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoAvailabilityRepository) FindByID(ctx context.Context, id string) (*model.WeeklySlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var slot model.WeeklySlot
	err = r.collection.FindOne(ctx, filter).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find availability slot: %w", err)
	}

	return &slot, nil
}

func buildSlotFilter(filter model.SlotFilter) bson.M {
	query := bson.M{}
	if filter.SalonStaffID != "" {
		query["salon_staff_id"] = filter.SalonStaffID
	}
	if filter.DayOfWeek != nil {
		query["day_of_week"] = *filter.DayOfWeek
	}
	if filter.IsAvailable != nil {
		query["is_available"] = *filter.IsAvailable
	}
	return query
}

func (r *mongoAvailabilityRepository) FindAll(ctx context.Context, filter model.SlotFilter, limit int, offset int64) ([]*model.WeeklySlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{
			{Key: "day_of_week", Value: 1},
			{Key: "start_time", Value: 1},
		})

	cursor, err := r.collection.Find(ctx, buildSlotFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.WeeklySlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode availability slots: %w", err)
	}
	return slots, nil
}

func (r *mongoAvailabilityRepository) Count(ctx context.Context, filter model.SlotFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSlotFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count availability slots: %w", err)
	}
	return count, nil
}

// Update applies only the provided fields. An empty partial returns the
// current row unchanged.
func (r *mongoAvailabilityRepository) Update(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if updates.SalonStaffID != "" {
		set["salon_staff_id"] = updates.SalonStaffID
	}
	if updates.DayOfWeek != nil {
		set["day_of_week"] = *updates.DayOfWeek
	}
	if updates.StartTime != "" {
		set["start_time"] = updates.StartTime
	}
	if updates.EndTime != "" {
		set["end_time"] = updates.EndTime
	}
	if updates.IsAvailable != nil {
		set["is_available"] = *updates.IsAvailable
	}

	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated model.WeeklySlot
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update availability slot: %w", err)
	}

	return &updated, nil
}

func (r *mongoAvailabilityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete availability slot: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoAvailabilityRepository) DeleteByStaff(ctx context.Context, staffID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"salon_staff_id": staffID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete availability slots for staff: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoAvailabilityRepository) DeleteByStaffAndDay(ctx context.Context, staffID string, day int) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"salon_staff_id": staffID,
		"day_of_week":    day,
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete availability slots for staff day: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *mongoAvailabilityRepository) FindByStaff(ctx context.Context, staffID string) ([]*model.WeeklySlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "day_of_week", Value: 1},
		{Key: "start_time", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"salon_staff_id": staffID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff availability: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.WeeklySlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode staff availability: %w", err)
	}
	return slots, nil
}

func (r *mongoAvailabilityRepository) FindByDay(ctx context.Context, day int) ([]*model.WeeklySlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"day_of_week":  day,
		"is_available": true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query day availability: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.WeeklySlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode day availability: %w", err)
	}
	return slots, nil
}

func (r *mongoAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
