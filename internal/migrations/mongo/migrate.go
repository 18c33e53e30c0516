package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"glowbridge/internal/migrations/mongo/validators"
)

const (
	DB_NAME = "glowbridge"
)

var (
	StaffAvailabilityIndexes = []mongo.IndexModel{
		// Primary lookup path: one staff member's week, in display order
		{Keys: bson.D{
			{Key: "salon_staff_id", Value: 1},
			{Key: "day_of_week", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		// Matching path: who is open on a day at a time
		{Keys: bson.D{
			{Key: "day_of_week", Value: 1},
			{Key: "is_available", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	SalonStaffIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "salon_name", Value: 1}}},
	}

	AppointmentsIndexes = []mongo.IndexModel{
		// Overlap checks scan a staff member's bookings by time
		{Keys: bson.D{
			{Key: "salon_staff_id", Value: 1},
			{Key: "start_at", Value: 1},
			{Key: "end_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "start_at", Value: 1},
		}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	// Abandoned holds expire server-side; expireAfterSeconds 0 means
	// "at the expires_at timestamp".
	SlotHoldsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	RemindersIndexes = []mongo.IndexModel{
		// Dispatcher scan: pending reminders ordered by due time
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "remind_at", Value: 1},
		}},
		// Cancellation path
		{Keys: bson.D{{Key: "appointment_id", Value: 1}}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client) error {
	db := client.Database(DB_NAME)
	fmt.Printf("🚀 Running GlowBridge Mongo migrations on database: %s\n", DB_NAME)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Staff_availability": {
			Indexes:   StaffAvailabilityIndexes,
			Validator: validators.StaffAvailabilityValidator,
		},
		"Salon_staff": {
			Indexes:   SalonStaffIndexes,
			Validator: validators.SalonStaffValidator,
		},
		"Appointments": {
			Indexes:   AppointmentsIndexes,
			Validator: validators.AppointmentValidator,
		},
		"Slot_holds": {
			Indexes: SlotHoldsIndexes,
		},
		"Reminders": {
			Indexes: RemindersIndexes,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts = opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else if validator != nil {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
