package repository

import (
	"context"
	"fmt"
	"sync"

	"glowbridge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// buildSearchFilter translates the flexible search criteria into a Mongo
// filter. Times are stored zero-padded, so lexicographic $lte/$gte matches
// chronological order. The time pair matches any overlap
// (start_time <= timeEnd AND end_time >= timeStart); a single-sided pair
// degrades to the one comparison that can be made.
func buildSearchFilter(criteria model.SearchCriteria, staffIDs []string) bson.M {
	filter := bson.M{}

	if staffIDs != nil {
		filter["salon_staff_id"] = bson.M{"$in": staffIDs}
	}
	if criteria.DayOfWeek != nil {
		filter["day_of_week"] = *criteria.DayOfWeek
	}
	if criteria.IsAvailable != nil {
		filter["is_available"] = *criteria.IsAvailable
	}

	switch {
	case criteria.TimeStart != "" && criteria.TimeEnd != "":
		filter["start_time"] = bson.M{"$lte": criteria.TimeEnd}
		filter["end_time"] = bson.M{"$gte": criteria.TimeStart}
	case criteria.TimeStart != "":
		filter["end_time"] = bson.M{"$gte": criteria.TimeStart}
	case criteria.TimeEnd != "":
		filter["start_time"] = bson.M{"$lte": criteria.TimeEnd}
	}

	return filter
}

// buildWindowFilter is the stricter variant: the slot must be available and
// must CONTAIN the requested window, not merely touch it.
func buildWindowFilter(criteria model.WindowCriteria, staffIDs []string) bson.M {
	filter := bson.M{
		"day_of_week":  criteria.DayOfWeek,
		"is_available": true,
		"start_time":   bson.M{"$lte": criteria.TimeStart},
		"end_time":     bson.M{"$gte": criteria.TimeEnd},
	}
	if staffIDs != nil {
		filter["salon_staff_id"] = bson.M{"$in": staffIDs}
	}
	return filter
}

// paginatedFind runs the count and the page query in parallel against the
// same filter.
func (r *mongoAvailabilityRepository) paginatedFind(ctx context.Context, filter bson.M, sort bson.D, limit int, offset int64) ([]*model.WeeklySlot, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var slots []*model.WeeklySlot
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = r.collection.CountDocuments(ctx, filter)
		if err != nil {
			errCount = fmt.Errorf("failed to count search results: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		opts := options.Find().
			SetLimit(int64(limit)).
			SetSkip(offset).
			SetSort(sort)

		cursor, err := r.collection.Find(ctx, filter, opts)
		if err != nil {
			errFind = fmt.Errorf("failed to search availability slots: %w", err)
			return
		}
		defer cursor.Close(ctx)

		if err = cursor.All(ctx, &slots); err != nil {
			errFind = fmt.Errorf("failed to decode search results: %w", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return slots, count, nil
}

func (r *mongoAvailabilityRepository) Search(ctx context.Context, criteria model.SearchCriteria, staffIDs []string, limit int, offset int64) ([]*model.WeeklySlot, int64, error) {
	sort := bson.D{
		{Key: "day_of_week", Value: 1},
		{Key: "start_time", Value: 1},
		{Key: "salon_staff_id", Value: 1},
	}
	return r.paginatedFind(ctx, buildSearchFilter(criteria, staffIDs), sort, limit, offset)
}

func (r *mongoAvailabilityRepository) SearchAvailableInWindow(ctx context.Context, criteria model.WindowCriteria, staffIDs []string, limit int, offset int64) ([]*model.WeeklySlot, int64, error) {
	// salon_staff_id breaks ties between equal start times so pagination
	// never skips or repeats a row across pages.
	sort := bson.D{
		{Key: "start_time", Value: 1},
		{Key: "salon_staff_id", Value: 1},
	}
	return r.paginatedFind(ctx, buildWindowFilter(criteria, staffIDs), sort, limit, offset)
}
