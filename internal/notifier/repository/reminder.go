package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glowbridge/pkg/config"
	"glowbridge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reminders"
)

var ErrNotFound = errors.New("reminder not found")

type ReminderRepository interface {
	Create(ctx context.Context, reminder *model.Reminder) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
	CancelByAppointment(ctx context.Context, appointmentID string) (int64, error)
}

type mongoReminderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReminderRepository(cfg *config.Config) ReminderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReminderRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reminder.CreatedAt = now
	reminder.UpdatedAt = now
	if reminder.Status == "" {
		reminder.Status = model.ReminderPending
	}

	result, err := r.collection.InsertOne(ctx, reminder)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reminder.ID = oid.Hex()
	}
	return nil
}

// FindDue returns pending reminders whose remind_at has passed, oldest first.
func (r *mongoReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":    model.ReminderPending,
		"remind_at": bson.M{"$lte": now},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "remind_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find due reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var reminders []*model.Reminder
	if err = cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}

func (r *mongoReminderRepository) MarkSent(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, model.ReminderSent, "")
}

func (r *mongoReminderRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.setStatus(ctx, id, model.ReminderFailed, reason)
}

func (r *mongoReminderRepository) setStatus(ctx context.Context, id string, status string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid reminder id: %s", id)
	}

	update := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if reason != "" {
		update["failure_reason"] = reason
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update reminder status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelByAppointment cancels every pending reminder for the appointment.
// Returns the number of reminders cancelled.
func (r *mongoReminderRepository) CancelByAppointment(ctx context.Context, appointmentID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateMany(ctx,
		bson.M{"appointment_id": appointmentID, "status": model.ReminderPending},
		bson.M{"$set": bson.M{
			"status":     model.ReminderCancelled,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel reminders: %w", err)
	}
	return result.ModifiedCount, nil
}
