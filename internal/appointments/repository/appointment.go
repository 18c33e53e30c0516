package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "glowbridge/internal/appointments/errors"
	"glowbridge/pkg/config"
	mongotx "glowbridge/pkg/db/mongo"
	"glowbridge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Appointments"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindAll(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, filter model.AppointmentFilter) (int64, error)
	Update(ctx context.Context, id string, appointment *model.Appointment) error
	Delete(ctx context.Context, id string) error
	FindOverlapping(ctx context.Context, staffID string, startAt, endAt time.Time) ([]*model.Appointment, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, appointment)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appointment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	var appointment model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appointment, nil
}

func (r *mongoAppointmentRepository) FindAll(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildAppointmentFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appointments, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, filter model.AppointmentFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildAppointmentFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, id string, appointment *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"service_id":   appointment.ServiceID,
			"note":         appointment.Note,
			"start_at":     appointment.StartAt,
			"end_at":       appointment.EndAt,
			"payment_type": appointment.PaymentType,
			"amount":       appointment.Amount,
			"is_paid":      appointment.IsPaid,
			"status":       appointment.Status,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return appointmentserrors.ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if result.DeletedCount == 0 {
		return appointmentserrors.ErrNotFound
	}
	return nil
}

// FindOverlapping returns non-cancelled appointments for the staff member whose
// time range intersects [startAt, endAt).
func (r *mongoAppointmentRepository) FindOverlapping(ctx context.Context, staffID string, startAt, endAt time.Time) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"salon_staff_id": staffID,
		"status":         bson.M{"$ne": model.AppointmentCancelled},
		"start_at":       bson.M{"$lt": endAt},
		"end_at":         bson.M{"$gt": startAt},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping appointments: %w", err)
	}

	return appointments, nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildAppointmentFilter(f model.AppointmentFilter) bson.M {
	filter := bson.M{}

	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.SalonStaffID != "" {
		filter["salon_staff_id"] = f.SalonStaffID
	}
	if f.ServiceID != "" {
		filter["service_id"] = f.ServiceID
	}
	if f.PaymentType != "" {
		filter["payment_type"] = f.PaymentType
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.IsPaid != nil {
		filter["is_paid"] = *f.IsPaid
	}
	if f.StartAtFrom != nil || f.StartAtTo != nil {
		rangeFilter := bson.M{}
		if f.StartAtFrom != nil {
			rangeFilter["$gte"] = *f.StartAtFrom
		}
		if f.StartAtTo != nil {
			rangeFilter["$lt"] = *f.StartAtTo
		}
		filter["start_at"] = rangeFilter
	}

	return filter
}
