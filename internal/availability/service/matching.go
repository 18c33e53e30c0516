package service

import (
	"context"
	"sort"

	"glowbridge/pkg/config"
	apperrors "glowbridge/pkg/errors"
	"glowbridge/pkg/model"
	"glowbridge/pkg/sanitizer"
	"glowbridge/pkg/timeutil"
)

// joinIdentity batch-fetches the staff directory rows for a page of slots and
// merges them in. Slots whose staff row is missing keep empty identity fields
// rather than dropping out of the result.
func (s *availabilityService) joinIdentity(ctx context.Context, slots []*model.WeeklySlot) ([]*model.StaffAvailabilityWithStaff, error) {
	ids := make([]string, 0, len(slots))
	seen := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		if _, ok := seen[slot.SalonStaffID]; !ok {
			seen[slot.SalonStaffID] = struct{}{}
			ids = append(ids, slot.SalonStaffID)
		}
	}

	staffByID, err := s.staff.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to join staff identity", "error", err)
		return nil, apperrors.Internal("Failed to resolve staff identity", err)
	}

	joined := make([]*model.StaffAvailabilityWithStaff, 0, len(slots))
	for _, slot := range slots {
		row := &model.StaffAvailabilityWithStaff{WeeklySlot: *slot}
		if staff, ok := staffByID[slot.SalonStaffID]; ok {
			row.StaffName = staff.Name
			row.StaffEmail = staff.Email
			row.StaffRole = staff.Role
			row.SalonName = staff.SalonName
		}
		joined = append(joined, row)
	}
	return joined, nil
}

// resolveStaffIDs turns name criteria into a staff id set. The bool reports
// whether the criteria matched nobody, which short-circuits to an empty page.
func (s *availabilityService) resolveStaffIDs(ctx context.Context, staffName, salonName string) ([]string, bool, error) {
	if staffName == "" && salonName == "" {
		return nil, false, nil
	}

	ids, err := s.staff.FindIDsByName(ctx, staffName, salonName)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve staff by name",
			"staff_name", staffName,
			"salon_name", salonName,
			"error", err,
		)
		return nil, false, apperrors.Internal("Failed to resolve staff by name", err)
	}
	if len(ids) == 0 {
		return nil, true, nil
	}
	return ids, false, nil
}

func normalizePage(page model.Pagination) model.Pagination {
	page.Limit = config.NormalizePaginationLimit(page.Limit)
	if page.Page < 1 {
		page.Page = 1
	}
	return page
}

func (s *availabilityService) Search(ctx context.Context, criteria model.SearchCriteria, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error) {
	empty := model.Page[*model.StaffAvailabilityWithStaff]{}
	page = normalizePage(page)

	criteria.StaffName = sanitizer.SanitizeSearchQuery(criteria.StaffName)
	criteria.SalonName = sanitizer.SanitizeSearchQuery(criteria.SalonName)

	if criteria.DayOfWeek != nil && (*criteria.DayOfWeek < 0 || *criteria.DayOfWeek > 6) {
		return empty, apperrors.InvalidInput("day_of_week must be between 0 and 6")
	}
	var err error
	if criteria.TimeStart != "" {
		if criteria.TimeStart, err = timeutil.Canonical(criteria.TimeStart); err != nil {
			return empty, apperrors.InvalidInput("time_start must be a valid HH:MM 24-hour time")
		}
	}
	if criteria.TimeEnd != "" {
		if criteria.TimeEnd, err = timeutil.Canonical(criteria.TimeEnd); err != nil {
			return empty, apperrors.InvalidInput("time_end must be a valid HH:MM 24-hour time")
		}
	}

	staffIDs, none, err := s.resolveStaffIDs(ctx, criteria.StaffName, criteria.SalonName)
	if err != nil {
		return empty, err
	}
	if none {
		return model.NewPage([]*model.StaffAvailabilityWithStaff{}, 0, page), nil
	}

	slots, total, err := s.repo.Search(ctx, criteria, staffIDs, page.Limit, page.Offset())
	if err != nil {
		s.cfg.Log.Error("Failed to search availability", "error", err)
		return empty, apperrors.Internal("Failed to search availability", err)
	}

	joined, err := s.joinIdentity(ctx, slots)
	if err != nil {
		return empty, err
	}

	s.cfg.Log.Debug("Availability search completed",
		"staff_name", criteria.StaffName,
		"salon_name", criteria.SalonName,
		"results_count", len(joined),
		"total", total,
	)
	return model.NewPage(joined, total, page), nil
}

// SearchAvailableInWindow finds staff free for the ENTIRE requested window:
// only slots that contain it count, overlap alone is not enough.
func (s *availabilityService) searchAvailableInWindow(ctx context.Context, criteria model.WindowCriteria, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error) {
	empty := model.Page[*model.StaffAvailabilityWithStaff]{}
	page = normalizePage(page)

	if criteria.DayOfWeek < 0 || criteria.DayOfWeek > 6 {
		return empty, apperrors.InvalidInput("day_of_week must be between 0 and 6")
	}
	var err error
	if criteria.TimeStart, err = timeutil.Canonical(criteria.TimeStart); err != nil {
		return empty, apperrors.InvalidInput("time_start must be a valid HH:MM 24-hour time")
	}
	if criteria.TimeEnd, err = timeutil.Canonical(criteria.TimeEnd); err != nil {
		return empty, apperrors.InvalidInput("time_end must be a valid HH:MM 24-hour time")
	}
	if err := timeutil.ValidateOrder(criteria.TimeStart, criteria.TimeEnd); err != nil {
		return empty, apperrors.InvalidInput("time_end must be after time_start")
	}

	staffIDs, none, err := s.resolveStaffIDs(ctx, criteria.StaffName, criteria.SalonName)
	if err != nil {
		return empty, err
	}
	if none {
		return model.NewPage([]*model.StaffAvailabilityWithStaff{}, 0, page), nil
	}

	slots, total, err := s.repo.SearchAvailableInWindow(ctx, criteria, staffIDs, page.Limit, page.Offset())
	if err != nil {
		s.cfg.Log.Error("Failed to search available staff in window", "error", err)
		return empty, apperrors.Internal("Failed to search available staff", err)
	}

	joined, err := s.joinIdentity(ctx, slots)
	if err != nil {
		return empty, err
	}

	// Store sorts by start time; break ties by staff name within the page.
	sort.SliceStable(joined, func(i, j int) bool {
		if joined[i].StartTime != joined[j].StartTime {
			return joined[i].StartTime < joined[j].StartTime
		}
		return joined[i].StaffName < joined[j].StaffName
	})

	return model.NewPage(joined, total, page), nil
}

func (s *availabilityService) FindFreeStaffExactWindow(ctx context.Context, day int, startTime, endTime string) ([]*model.StaffAvailabilityWithStaff, error) {
	if day < 0 || day > 6 {
		return nil, apperrors.InvalidInput("day_of_week must be between 0 and 6")
	}

	startTime, err := timeutil.Canonical(startTime)
	if err != nil {
		return nil, apperrors.InvalidInput("start_time must be a valid HH:MM 24-hour time")
	}
	endTime, err = timeutil.Canonical(endTime)
	if err != nil {
		return nil, apperrors.InvalidInput("end_time must be a valid HH:MM 24-hour time")
	}
	if err := timeutil.ValidateOrder(startTime, endTime); err != nil {
		return nil, apperrors.InvalidInput("end_time must be after start_time")
	}

	rows, err := s.repo.FindByDay(ctx, day)
	if err != nil {
		s.cfg.Log.Error("Failed to fetch day availability",
			"day_of_week", day,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve day availability", err)
	}

	reqStart, _ := timeutil.ParseMinutes(startTime)
	reqEnd, _ := timeutil.ParseMinutes(endTime)

	free := make([]*model.WeeklySlot, 0, len(rows))
	for _, slot := range rows {
		slotStart, err := timeutil.ParseMinutes(slot.StartTime)
		if err != nil {
			continue
		}
		slotEnd, err := timeutil.ParseMinutes(slot.EndTime)
		if err != nil {
			continue
		}
		if timeutil.Contains(slotStart, slotEnd, reqStart, reqEnd) {
			free = append(free, slot)
		}
	}

	return s.joinIdentity(ctx, free)
}

// FindFreeStaffAtTime answers "who can take a customer at timeSlot for
// durationMin minutes": it computes the end of the requested window and
// requires the staff slot to contain it entirely. A window that would reach
// or cross midnight is rejected, there is no day rollover.
func (s *availabilityService) FindFreeStaffAtTime(ctx context.Context, day int, timeSlot string, durationMin int, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error) {
	empty := model.Page[*model.StaffAvailabilityWithStaff]{}

	if durationMin == 0 {
		durationMin = s.cfg.DefaultSlotDurationMin
	}
	if durationMin < 0 || durationMin > s.cfg.MaxSlotDurationMin {
		return empty, apperrors.InvalidInput("duration must be between 1 and 480 minutes")
	}

	start, err := timeutil.Canonical(timeSlot)
	if err != nil {
		return empty, apperrors.InvalidInput("time_slot must be a valid HH:MM 24-hour time")
	}

	end, err := timeutil.AddMinutes(start, durationMin)
	if err != nil {
		return empty, apperrors.InvalidInput("requested window crosses midnight; choose an earlier time or shorter duration")
	}

	return s.searchAvailableInWindow(ctx, model.WindowCriteria{
		DayOfWeek: day,
		TimeStart: start,
		TimeEnd:   end,
	}, page)
}

func (s *availabilityService) QuickSearch(ctx context.Context, q string, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error) {
	empty := model.Page[*model.StaffAvailabilityWithStaff]{}
	page = normalizePage(page)

	q = sanitizer.SanitizeSearchQuery(q)
	if q == "" {
		return empty, apperrors.InvalidInput("Search query cannot be empty")
	}

	ids, err := s.staff.FindIDsByNameOrSalon(ctx, q)
	if err != nil {
		s.cfg.Log.Error("Failed quick search staff lookup", "query", q, "error", err)
		return empty, apperrors.Internal("Failed to search staff", err)
	}
	if len(ids) == 0 {
		return model.NewPage([]*model.StaffAvailabilityWithStaff{}, 0, page), nil
	}

	slots, total, err := s.repo.Search(ctx, model.SearchCriteria{}, ids, page.Limit, page.Offset())
	if err != nil {
		s.cfg.Log.Error("Failed quick search", "query", q, "error", err)
		return empty, apperrors.Internal("Failed to search availability", err)
	}

	joined, err := s.joinIdentity(ctx, slots)
	if err != nil {
		return empty, err
	}
	return model.NewPage(joined, total, page), nil
}

func (s *availabilityService) ScheduleForStaffName(ctx context.Context, staffName string, page model.Pagination) (model.Page[*model.StaffAvailabilityWithStaff], error) {
	staffName = sanitizer.SanitizeSearchQuery(staffName)
	if staffName == "" {
		return model.Page[*model.StaffAvailabilityWithStaff]{}, apperrors.InvalidInput("Staff name cannot be empty")
	}
	return s.Search(ctx, model.SearchCriteria{StaffName: staffName}, page)
}

// IsStaffFreeInWindow reports whether the staff member has an available slot
// containing the requested window on the given day.
func (s *availabilityService) IsStaffFreeInWindow(ctx context.Context, staffID string, day int, startTime, endTime string) (bool, error) {
	if day < 0 || day > 6 {
		return false, apperrors.InvalidInput("day_of_week must be between 0 and 6")
	}

	startTime, err := timeutil.Canonical(startTime)
	if err != nil {
		return false, apperrors.InvalidInput("start_time must be a valid HH:MM 24-hour time")
	}
	endTime, err = timeutil.Canonical(endTime)
	if err != nil {
		return false, apperrors.InvalidInput("end_time must be a valid HH:MM 24-hour time")
	}
	if err := timeutil.ValidateOrder(startTime, endTime); err != nil {
		return false, apperrors.InvalidInput("end_time must be after start_time")
	}

	slots, err := s.repo.FindByStaff(ctx, staffID)
	if err != nil {
		s.cfg.Log.Error("Failed to fetch staff availability for gating",
			"salon_staff_id", staffID,
			"error", err,
		)
		return false, apperrors.Internal("Failed to check staff availability", err)
	}

	reqStart, _ := timeutil.ParseMinutes(startTime)
	reqEnd, _ := timeutil.ParseMinutes(endTime)

	for _, slot := range slots {
		if slot.DayOfWeek != day || !slot.IsAvailable {
			continue
		}
		slotStart, err := timeutil.ParseMinutes(slot.StartTime)
		if err != nil {
			continue
		}
		slotEnd, err := timeutil.ParseMinutes(slot.EndTime)
		if err != nil {
			continue
		}
		if timeutil.Contains(slotStart, slotEnd, reqStart, reqEnd) {
			return true, nil
		}
	}
	return false, nil
}
