package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	availabilityerrors "glowbridge/internal/availability/errors"
	"glowbridge/pkg/config"
	"glowbridge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	StaffCollectionName = "Salon_staff"

	maxStaffMatches = 1000
)

// StaffRepository is the read side of the staff directory. Availability rows
// carry only salon_staff_id; identity joins happen app-side through this repo.
type StaffRepository interface {
	FindByID(ctx context.Context, id string) (*model.SalonStaff, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.SalonStaff, error)
	FindIDsByName(ctx context.Context, staffName, salonName string) ([]string, error)
	FindIDsByNameOrSalon(ctx context.Context, q string) ([]string, error)
}

type mongoStaffRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStaffRepository(cfg *config.Config) StaffRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStaffRepository{
		cfg:        cfg,
		collection: db.Collection(StaffCollectionName),
	}
}

// escapeRegexSpecialChars escapes special regex characters to prevent ReDoS attacks
func escapeRegexSpecialChars(s string) string {
	// Escape special regex characters: . * + ? ^ $ ( ) [ ] { } | \
	specialChars := regexp.MustCompile(`[.*+?^$()[\]{}|\\]`)
	return specialChars.ReplaceAllStringFunc(s, func(match string) string {
		return "\\" + match
	})
}

func (r *mongoStaffRepository) FindByID(ctx context.Context, id string) (*model.SalonStaff, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrStaffNotFound, id)
	}

	var staff model.SalonStaff
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&staff)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrStaffNotFound, id)
		}
		return nil, fmt.Errorf("failed to find salon staff: %w", err)
	}
	return &staff, nil
}

// FindByIDs batch-fetches staff rows and keys them by hex id. Unparseable ids
// are skipped rather than failing the whole join.
func (r *mongoStaffRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.SalonStaff, error) {
	byID := make(map[string]*model.SalonStaff, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return byID, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to query salon staff: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []*model.SalonStaff
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode salon staff: %w", err)
	}

	for _, staff := range rows {
		byID[staff.ID] = staff
	}
	return byID, nil
}

func (r *mongoStaffRepository) findIDs(ctx context.Context, filter bson.M) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetLimit(maxStaffMatches)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query salon staff ids: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode salon staff ids: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// FindIDsByName resolves staff ids matching the provided name filters.
// Both filters are case-insensitive substring matches; when both are given
// a staff member must match both.
func (r *mongoStaffRepository) FindIDsByName(ctx context.Context, staffName, salonName string) ([]string, error) {
	filter := bson.M{}
	if staffName != "" {
		filter["name"] = bson.M{"$regex": escapeRegexSpecialChars(staffName), "$options": "i"}
	}
	if salonName != "" {
		filter["salon_name"] = bson.M{"$regex": escapeRegexSpecialChars(salonName), "$options": "i"}
	}
	return r.findIDs(ctx, filter)
}

// FindIDsByNameOrSalon resolves staff ids where the query matches either the
// staff name or the salon name.
func (r *mongoStaffRepository) FindIDsByNameOrSalon(ctx context.Context, q string) ([]string, error) {
	escaped := escapeRegexSpecialChars(q)
	filter := bson.M{
		"$or": []bson.M{
			{"name": bson.M{"$regex": escaped, "$options": "i"}},
			{"salon_name": bson.M{"$regex": escaped, "$options": "i"}},
		},
	}
	return r.findIDs(ctx, filter)
}
