package service

import (
	"context"
	"errors"
	"sync"
	"time"

	availabilityerrors "glowbridge/internal/availability/errors"
	"glowbridge/internal/availability/repository"
	"glowbridge/internal/availability/validator"
	"glowbridge/pkg/config"
	apperrors "glowbridge/pkg/errors"
	"glowbridge/pkg/kafka"
	"glowbridge/pkg/model"
	"glowbridge/pkg/sanitizer"
	"glowbridge/pkg/timeutil"

	"go.mongodb.org/mongo-driver/mongo"
)

type AvailabilityService interface {
	Create(ctx context.Context, slot *model.WeeklySlot) error
	GetByID(ctx context.Context, id string) (*model.WeeklySlot, error)
	List(ctx context.Context, filter model.SlotFilter, page model.Pagination) (model.Page[*model.WeeklySlot], error)
	Update(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error)
	Delete(ctx context.Context, id string) error
	GetByStaff(ctx context.Context, staffID string) ([]*model.WeeklySlot, error)
	GetWeekly(ctx context.Context, staffID string) (*model.WeeklyAvailability, error)
	GetByDay(ctx context.Context, day int) ([]*model.WeeklySlot, error)
	GetWithIdentity(ctx context.Context, filter model.SlotFilter) ([]*model.StaffAvailabilityWithStaff, error)
	CreateWeeklyTemplate(ctx context.Context, staffID string, slots []model.WeeklyTemplateSlot) ([]*model.WeeklySlot, error)
	ReplaceWeeklyTemplate(ctx context.Context, staffID string, slots []model.WeeklyTemplateSlot) ([]*model.WeeklySlot, error)
	ClearStaff(ctx context.Context, staffID string) (int64, error)
	ClearDay(ctx context.Context, staffID string, day int) (bool, error)

	FindFreeStaffExactWindow(ctx context.Context, day int, startTime, endTime string) ([]*model.StaffAvailabilityWithStaff, error)
	FindFreeStaffAtTime(ctx context.Context, day int, timeSlot string, durationMin int, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error)
	Search(ctx context.Context, criteria model.SearchCriteria, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error)
	QuickSearch(ctx context.Context, q string, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error)
	ScheduleForStaffName(ctx context.Context, staffName string, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error)

	// IsStaffFreeInWindow is consumed by the appointments service when gating
	// a booking on availability.
	IsStaffFreeInWindow(ctx context.Context, staffID string, day int, startTime, endTime string) (bool, error)
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	staff     repository.StaffRepository
	validator *validator.SlotValidator
	cfg       *config.Config
	events    *kafka.EventPublisher
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	staff repository.StaffRepository,
	validator *validator.SlotValidator,
	cfg *config.Config,
	events *kafka.EventPublisher,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		staff:     staff,
		validator: validator,
		cfg:       cfg,
		events:    events,
	}
}

// canonicalize rewrites both times into the zero-padded form the store relies
// on for lexicographic range queries. Must run after validation.
func canonicalize(slot *model.WeeklySlot) {
	if c, err := timeutil.Canonical(slot.StartTime); err == nil {
		slot.StartTime = c
	}
	if c, err := timeutil.Canonical(slot.EndTime); err == nil {
		slot.EndTime = c
	}
}

func (s *availabilityService) Create(ctx context.Context, slot *model.WeeklySlot) error {
	slot.SalonStaffID = sanitizer.TrimAndNormalize(slot.SalonStaffID)

	if err := s.validator.Validate(slot); err != nil {
		s.cfg.Log.Warn("Availability slot validation failed",
			"salon_staff_id", slot.SalonStaffID,
			"day_of_week", slot.DayOfWeek,
			"error", err,
		)
		return apperrors.Validation("Availability slot validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	canonicalize(slot)

	if err := s.repo.Create(ctx, slot); err != nil {
		s.cfg.Log.Error("Failed to create availability slot",
			"salon_staff_id", slot.SalonStaffID,
			"day_of_week", slot.DayOfWeek,
			"error", err,
		)
		return apperrors.Internal("Failed to create availability slot", err)
	}

	s.cfg.Log.Info("Availability slot created successfully",
		"id", slot.ID,
		"salon_staff_id", slot.SalonStaffID,
		"day_of_week", slot.DayOfWeek,
		"start_time", slot.StartTime,
		"end_time", slot.EndTime,
	)
	s.publishChange(ctx, kafka.EventAvailabilitySlotCreated, slot.SalonStaffID, &slot.DayOfWeek, []string{slot.ID})
	return nil
}

func (s *availabilityService) GetByID(ctx context.Context, id string) (*model.WeeklySlot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve availability slot")
	}
	return slot, nil
}

func (s *availabilityService) List(ctx context.Context, filter model.SlotFilter, page model.Pagination) (model.Page[*model.WeeklySlot], error) {
	page.Limit = config.NormalizePaginationLimit(page.Limit)
	if page.Page < 1 {
		page.Page = 1
	}
	if filter.DayOfWeek != nil && (*filter.DayOfWeek < 0 || *filter.DayOfWeek > 6) {
		return model.Page[*model.WeeklySlot]{}, apperrors.InvalidInput("day_of_week must be between 0 and 6")
	}

	// Shared context so a timeout in one leg cancels the other
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var slots []*model.WeeklySlot
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count availability slots", "error", err)
			errCount = apperrors.Internal("Failed to count availability slots", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		slots, err = s.repo.FindAll(sharedCtx, filter, page.Limit, page.Offset())
		if err != nil {
			s.cfg.Log.Error("Failed to list availability slots",
				"page", page.Page,
				"limit", page.Limit,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve availability slots", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return model.Page[*model.WeeklySlot]{}, errCount
	}
	if errFind != nil {
		return model.Page[*model.WeeklySlot]{}, errFind
	}
	return model.NewPage(slots, count, page), nil
}

// Update merges the partial onto the stored row and validates the FULL merged
// slot, so a single-sided time change can never invert the stored range.
func (s *availabilityService) Update(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability slot ID cannot be empty")
	}
	updates.SalonStaffID = sanitizer.TrimAndNormalize(updates.SalonStaffID)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Availability slot validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "check availability slot existence")
	}

	merged := s.mergeSlotUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Merged availability slot validation failed",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Availability slot validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if updates.StartTime != "" {
		updates.StartTime = merged.StartTime
	}
	if updates.EndTime != "" {
		updates.EndTime = merged.EndTime
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, s.mapRepoError(err, id, "update availability slot")
	}

	s.cfg.Log.Info("Availability slot updated successfully", "id", id)
	s.publishChange(ctx, kafka.EventAvailabilitySlotUpdated, updated.SalonStaffID, &updated.DayOfWeek, []string{updated.ID})
	return updated, nil
}

func (s *availabilityService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Availability slot ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "check availability slot existence")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "delete availability slot")
	}

	s.cfg.Log.Info("Availability slot deleted successfully", "id", id)
	s.publishChange(ctx, kafka.EventAvailabilitySlotDeleted, existing.SalonStaffID, &existing.DayOfWeek, []string{id})
	return nil
}

func (s *availabilityService) GetByStaff(ctx context.Context, staffID string) ([]*model.WeeklySlot, error) {
	staffID = sanitizer.TrimAndNormalize(staffID)
	if staffID == "" {
		return nil, apperrors.InvalidInput("Salon staff ID cannot be empty")
	}

	slots, err := s.repo.FindByStaff(ctx, staffID)
	if err != nil {
		s.cfg.Log.Error("Failed to get staff availability",
			"salon_staff_id", staffID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve staff availability", err)
	}
	return slots, nil
}

func (s *availabilityService) GetWeekly(ctx context.Context, staffID string) (*model.WeeklyAvailability, error) {
	slots, err := s.GetByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	weekly := &model.WeeklyAvailability{
		SalonStaffID: staffID,
		Availability: make(map[int][]model.WeeklySlot, 7),
	}
	for _, slot := range slots {
		weekly.Availability[slot.DayOfWeek] = append(weekly.Availability[slot.DayOfWeek], *slot)
	}

	if staff, err := s.staff.FindByID(ctx, staffID); err == nil {
		weekly.StaffName = staff.Name
	}
	return weekly, nil
}

func (s *availabilityService) GetByDay(ctx context.Context, day int) ([]*model.WeeklySlot, error) {
	if day < 0 || day > 6 {
		return nil, apperrors.InvalidInput("day_of_week must be between 0 and 6")
	}

	slots, err := s.repo.FindByDay(ctx, day)
	if err != nil {
		s.cfg.Log.Error("Failed to get day availability",
			"day_of_week", day,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve day availability", err)
	}
	return slots, nil
}

func (s *availabilityService) GetWithIdentity(ctx context.Context, filter model.SlotFilter) ([]*model.StaffAvailabilityWithStaff, error) {
	if filter.DayOfWeek != nil && (*filter.DayOfWeek < 0 || *filter.DayOfWeek > 6) {
		return nil, apperrors.InvalidInput("day_of_week must be between 0 and 6")
	}
	filter.SalonStaffID = sanitizer.TrimAndNormalize(filter.SalonStaffID)

	const maxDetailRows = 1000
	slots, err := s.repo.FindAll(ctx, filter, maxDetailRows, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to get availability details", "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability details", err)
	}
	if len(slots) == maxDetailRows {
		s.cfg.Log.Warn("Availability details hit the row cap, result may be truncated",
			"cap", maxDetailRows,
			"salon_staff_id", filter.SalonStaffID,
		)
	}

	return s.joinIdentity(ctx, slots)
}

func (s *availabilityService) CreateWeeklyTemplate(ctx context.Context, staffID string, template []model.WeeklyTemplateSlot) ([]*model.WeeklySlot, error) {
	slots, err := s.buildTemplateSlots(staffID, template)
	if err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return s.repo.CreateBulk(sessCtx, slots)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create weekly template",
			"salon_staff_id", staffID,
			"slot_count", len(slots),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create weekly availability", err)
	}

	s.cfg.Log.Info("Weekly availability created successfully",
		"salon_staff_id", staffID,
		"slot_count", len(slots),
	)
	s.publishChange(ctx, kafka.EventAvailabilitySlotCreated, staffID, nil, slotIDs(slots))
	return slots, nil
}

// ReplaceWeeklyTemplate deletes the staff member's existing slots and inserts
// the new template inside one transaction, so a failure can never leave the
// staff member with an empty week.
func (s *availabilityService) ReplaceWeeklyTemplate(ctx context.Context, staffID string, template []model.WeeklyTemplateSlot) ([]*model.WeeklySlot, error) {
	slots, err := s.buildTemplateSlots(staffID, template)
	if err != nil {
		return nil, err
	}

	staffID = slots[0].SalonStaffID
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.repo.DeleteByStaff(sessCtx, staffID); err != nil {
			return err
		}
		return s.repo.CreateBulk(sessCtx, slots)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to replace weekly template",
			"salon_staff_id", staffID,
			"slot_count", len(slots),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to replace weekly availability", err)
	}

	s.cfg.Log.Info("Weekly availability replaced successfully",
		"salon_staff_id", staffID,
		"slot_count", len(slots),
	)
	s.publishChange(ctx, kafka.EventAvailabilityTemplateReplaced, staffID, nil, slotIDs(slots))
	return slots, nil
}

func (s *availabilityService) ClearStaff(ctx context.Context, staffID string) (int64, error) {
	staffID = sanitizer.TrimAndNormalize(staffID)
	if staffID == "" {
		return 0, apperrors.InvalidInput("Salon staff ID cannot be empty")
	}

	deleted, err := s.repo.DeleteByStaff(ctx, staffID)
	if err != nil {
		s.cfg.Log.Error("Failed to clear staff availability",
			"salon_staff_id", staffID,
			"error", err,
		)
		return 0, apperrors.Internal("Failed to clear staff availability", err)
	}

	s.cfg.Log.Info("Staff availability cleared", "salon_staff_id", staffID, "deleted", deleted)
	if deleted > 0 {
		s.publishChange(ctx, kafka.EventAvailabilitySlotDeleted, staffID, nil, nil)
	}
	return deleted, nil
}

func (s *availabilityService) ClearDay(ctx context.Context, staffID string, day int) (bool, error) {
	staffID = sanitizer.TrimAndNormalize(staffID)
	if staffID == "" {
		return false, apperrors.InvalidInput("Salon staff ID cannot be empty")
	}
	if day < 0 || day > 6 {
		return false, apperrors.InvalidInput("day_of_week must be between 0 and 6")
	}

	removed, err := s.repo.DeleteByStaffAndDay(ctx, staffID, day)
	if err != nil {
		s.cfg.Log.Error("Failed to clear staff day availability",
			"salon_staff_id", staffID,
			"day_of_week", day,
			"error", err,
		)
		return false, apperrors.Internal("Failed to clear staff day availability", err)
	}

	if removed {
		s.cfg.Log.Info("Staff day availability cleared", "salon_staff_id", staffID, "day_of_week", day)
		s.publishChange(ctx, kafka.EventAvailabilitySlotDeleted, staffID, &day, nil)
	}
	return removed, nil
}

// buildTemplateSlots validates every slot of a weekly template before any
// write is issued; a single invalid entry rejects the whole batch.
func (s *availabilityService) buildTemplateSlots(staffID string, template []model.WeeklyTemplateSlot) ([]*model.WeeklySlot, error) {
	staffID = sanitizer.TrimAndNormalize(staffID)
	if staffID == "" {
		return nil, apperrors.InvalidInput("Salon staff ID cannot be empty")
	}
	if len(template) == 0 {
		return nil, apperrors.InvalidInput("Weekly availability must contain at least one slot")
	}

	slots := make([]*model.WeeklySlot, 0, len(template))
	for i, entry := range template {
		isAvailable := true
		if entry.IsAvailable != nil {
			isAvailable = *entry.IsAvailable
		}
		slot := &model.WeeklySlot{
			SalonStaffID: staffID,
			DayOfWeek:    entry.DayOfWeek,
			StartTime:    entry.StartTime,
			EndTime:      entry.EndTime,
			IsAvailable:  isAvailable,
		}
		if err := s.validator.Validate(slot); err != nil {
			return nil, apperrors.Validation("Weekly availability validation failed", map[string]any{
				"slot_index": i,
				"error":      err.Error(),
			})
		}
		canonicalize(slot)
		slots = append(slots, slot)
	}
	return slots, nil
}

func (s *availabilityService) mergeSlotUpdates(existing *model.WeeklySlot, updates *model.WeeklySlotUpdate) *model.WeeklySlot {
	merged := *existing

	if updates.SalonStaffID != "" {
		merged.SalonStaffID = updates.SalonStaffID
	}
	if updates.DayOfWeek != nil {
		merged.DayOfWeek = *updates.DayOfWeek
	}
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}
	if updates.IsAvailable != nil {
		merged.IsAvailable = *updates.IsAvailable
	}

	canonicalize(&merged)
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}

func (s *availabilityService) mapRepoError(err error, id string, action string) error {
	if errors.Is(err, availabilityerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Availability slot", id)
	}
	if errors.Is(err, availabilityerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid availability slot ID format")
	}
	s.cfg.Log.Error("Failed to "+action,
		"id", id,
		"error", err,
	)
	return apperrors.Internal("Failed to "+action, err)
}

func (s *availabilityService) publishChange(ctx context.Context, eventType, staffID string, day *int, ids []string) {
	s.events.Publish(ctx, staffID, eventType, kafka.AvailabilityChangedEvent{
		SalonStaffID: staffID,
		DayOfWeek:    day,
		SlotIDs:      ids,
		OccurredAt:   time.Now().UTC(),
	})
}

func slotIDs(slots []*model.WeeklySlot) []string {
	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	return ids
}
