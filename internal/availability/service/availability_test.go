package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	availabilityerrors "glowbridge/internal/availability/errors"
	"glowbridge/internal/availability/validator"
	"glowbridge/pkg/config"
	mongotx "glowbridge/pkg/db/mongo"
	apperrors "glowbridge/pkg/errors"
	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
)

// Mock repositories for testing
type mockAvailabilityRepository struct {
	createFunc              func(ctx context.Context, slot *model.WeeklySlot) error
	createBulkFunc          func(ctx context.Context, slots []*model.WeeklySlot) error
	findByIDFunc            func(ctx context.Context, id string) (*model.WeeklySlot, error)
	findAllFunc             func(ctx context.Context, filter model.SlotFilter, limit int, offset int64) ([]*model.WeeklySlot, error)
	countFunc               func(ctx context.Context, filter model.SlotFilter) (int64, error)
	updateFunc              func(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error)
	deleteFunc              func(ctx context.Context, id string) error
	deleteByStaffFunc       func(ctx context.Context, staffID string) (int64, error)
	deleteByStaffAndDayFunc func(ctx context.Context, staffID string, day int) (bool, error)
	findByStaffFunc         func(ctx context.Context, staffID string) ([]*model.WeeklySlot, error)
	findByDayFunc           func(ctx context.Context, day int) ([]*model.WeeklySlot, error)
	searchFunc              func(ctx context.Context, criteria model.SearchCriteria, staffIDs []string, limit int, offset int64) ([]*model.WeeklySlot, int64, error)
	searchWindowFunc        func(ctx context.Context, criteria model.WindowCriteria, staffIDs []string, limit int, offset int64) ([]*model.WeeklySlot, int64, error)
	executeTransactionFunc  func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockAvailabilityRepository) Create(ctx context.Context, slot *model.WeeklySlot) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, slot)
	}
	slot.ID = "generated-id"
	return nil
}

func (m *mockAvailabilityRepository) CreateBulk(ctx context.Context, slots []*model.WeeklySlot) error {
	if m.createBulkFunc != nil {
		return m.createBulkFunc(ctx, slots)
	}
	return nil
}

func (m *mockAvailabilityRepository) FindByID(ctx context.Context, id string) (*model.WeeklySlot, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, availabilityerrors.ErrNotFound
}

func (m *mockAvailabilityRepository) FindAll(ctx context.Context, filter model.SlotFilter, limit int, offset int64) ([]*model.WeeklySlot, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.WeeklySlot{}, nil
}

func (m *mockAvailabilityRepository) Count(ctx context.Context, filter model.SlotFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockAvailabilityRepository) Update(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil, availabilityerrors.ErrNotFound
}

func (m *mockAvailabilityRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockAvailabilityRepository) DeleteByStaff(ctx context.Context, staffID string) (int64, error) {
	if m.deleteByStaffFunc != nil {
		return m.deleteByStaffFunc(ctx, staffID)
	}
	return 0, nil
}

func (m *mockAvailabilityRepository) DeleteByStaffAndDay(ctx context.Context, staffID string, day int) (bool, error) {
	if m.deleteByStaffAndDayFunc != nil {
		return m.deleteByStaffAndDayFunc(ctx, staffID, day)
	}
	return false, nil
}

func (m *mockAvailabilityRepository) FindByStaff(ctx context.Context, staffID string) ([]*model.WeeklySlot, error) {
	if m.findByStaffFunc != nil {
		return m.findByStaffFunc(ctx, staffID)
	}
	return []*model.WeeklySlot{}, nil
}

func (m *mockAvailabilityRepository) FindByDay(ctx context.Context, day int) ([]*model.WeeklySlot, error) {
	if m.findByDayFunc != nil {
		return m.findByDayFunc(ctx, day)
	}
	return []*model.WeeklySlot{}, nil
}

func (m *mockAvailabilityRepository) Search(ctx context.Context, criteria model.SearchCriteria, staffIDs []string, limit int, offset int64) ([]*model.WeeklySlot, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, criteria, staffIDs, limit, offset)
	}
	return []*model.WeeklySlot{}, 0, nil
}

func (m *mockAvailabilityRepository) SearchAvailableInWindow(ctx context.Context, criteria model.WindowCriteria, staffIDs []string, limit int, offset int64) ([]*model.WeeklySlot, int64, error) {
	if m.searchWindowFunc != nil {
		return m.searchWindowFunc(ctx, criteria, staffIDs, limit, offset)
	}
	return []*model.WeeklySlot{}, 0, nil
}

func (m *mockAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return fn(nil)
}

type mockStaffRepository struct {
	findByIDFunc             func(ctx context.Context, id string) (*model.SalonStaff, error)
	findByIDsFunc            func(ctx context.Context, ids []string) (map[string]*model.SalonStaff, error)
	findIDsByNameFunc        func(ctx context.Context, staffName, salonName string) ([]string, error)
	findIDsByNameOrSalonFunc func(ctx context.Context, q string) ([]string, error)
}

func (m *mockStaffRepository) FindByID(ctx context.Context, id string) (*model.SalonStaff, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, availabilityerrors.ErrStaffNotFound
}

func (m *mockStaffRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.SalonStaff, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	return map[string]*model.SalonStaff{}, nil
}

func (m *mockStaffRepository) FindIDsByName(ctx context.Context, staffName, salonName string) ([]string, error) {
	if m.findIDsByNameFunc != nil {
		return m.findIDsByNameFunc(ctx, staffName, salonName)
	}
	return []string{}, nil
}

func (m *mockStaffRepository) FindIDsByNameOrSalon(ctx context.Context, q string) ([]string, error) {
	if m.findIDsByNameOrSalonFunc != nil {
		return m.findIDsByNameOrSalonFunc(ctx, q)
	}
	return []string{}, nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:                    log,
		ReadTimeout:            5 * time.Second,
		DefaultSlotDurationMin: 60,
		MaxSlotDurationMin:     480,
	}
}

func newTestService(repo *mockAvailabilityRepository, staff *mockStaffRepository) *availabilityService {
	cfg := testConfig()
	return &availabilityService{
		repo:      repo,
		staff:     staff,
		validator: validator.NewSlotValidator(cfg.Log),
		cfg:       cfg,
	}
}

func TestCreate_CanonicalizesTimes(t *testing.T) {
	var stored *model.WeeklySlot
	repo := &mockAvailabilityRepository{
		createFunc: func(ctx context.Context, slot *model.WeeklySlot) error {
			stored = slot
			slot.ID = "slot-1"
			return nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	slot := &model.WeeklySlot{
		SalonStaffID: "staff-1",
		DayOfWeek:    2,
		StartTime:    "9:00",
		EndTime:      "17:00",
		IsAvailable:  true,
	}
	if err := service.Create(context.Background(), slot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.StartTime != "09:00" {
		t.Errorf("expected canonical start time 09:00, got %q", stored.StartTime)
	}
	if slot.ID != "slot-1" {
		t.Errorf("expected generated id on slot, got %q", slot.ID)
	}
}

func TestCreate_RejectsInvertedRange(t *testing.T) {
	repoCalled := false
	repo := &mockAvailabilityRepository{
		createFunc: func(ctx context.Context, slot *model.WeeklySlot) error {
			repoCalled = true
			return nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	slot := &model.WeeklySlot{
		SalonStaffID: "staff-1",
		DayOfWeek:    2,
		StartTime:    "17:00",
		EndTime:      "09:00",
	}
	err := service.Create(context.Background(), slot)
	if err == nil {
		t.Fatal("expected validation error for inverted time range")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
	if repoCalled {
		t.Error("repository should not be called for an invalid slot")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.WeeklySlot, error) {
			return nil, availabilityerrors.ErrNotFound
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	_, err := service.GetByID(context.Background(), "507f1f77bcf86cd799439011")
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestList_ParallelCountAndFind(t *testing.T) {
	repo := &mockAvailabilityRepository{
		countFunc: func(ctx context.Context, filter model.SlotFilter) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 25, nil
		},
		findAllFunc: func(ctx context.Context, filter model.SlotFilter, limit int, offset int64) ([]*model.WeeklySlot, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.WeeklySlot{
				{ID: "1", SalonStaffID: "staff-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
			}, nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	// Run with -race to verify the two goroutines do not share state
	for i := 0; i < 20; i++ {
		page, err := service.List(context.Background(), model.SlotFilter{}, model.Pagination{Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if page.Total != 25 {
			t.Errorf("iteration %d: expected total 25, got %d", i, page.Total)
		}
		if len(page.Data) != 1 {
			t.Errorf("iteration %d: expected 1 slot, got %d", i, len(page.Data))
		}
		if page.TotalPages != 3 {
			t.Errorf("iteration %d: expected 3 total pages, got %d", i, page.TotalPages)
		}
	}
}

func TestList_CountErrorWins(t *testing.T) {
	repo := &mockAvailabilityRepository{
		countFunc: func(ctx context.Context, filter model.SlotFilter) (int64, error) {
			return 0, errors.New("count failed")
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	_, err := service.List(context.Background(), model.SlotFilter{}, model.Pagination{Page: 1, Limit: 10})
	if err == nil {
		t.Fatal("expected error when count fails")
	}
}

func TestUpdate_ValidatesMergedSlot(t *testing.T) {
	existing := &model.WeeklySlot{
		ID:           "507f1f77bcf86cd799439011",
		SalonStaffID: "staff-1",
		DayOfWeek:    3,
		StartTime:    "09:00",
		EndTime:      "12:00",
		IsAvailable:  true,
	}

	updateCalled := false
	repo := &mockAvailabilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.WeeklySlot, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error) {
			updateCalled = true
			return existing, nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	// Moving only the start past the stored end must fail against the merged slot
	_, err := service.Update(context.Background(), existing.ID, &model.WeeklySlotUpdate{
		StartTime: "13:00",
	})
	if err == nil {
		t.Fatal("expected validation error when update inverts the stored range")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
	if updateCalled {
		t.Error("repository update should not run when the merged slot is invalid")
	}
}

func TestUpdate_CanonicalizesPartialTimes(t *testing.T) {
	existing := &model.WeeklySlot{
		ID:           "507f1f77bcf86cd799439011",
		SalonStaffID: "staff-1",
		DayOfWeek:    3,
		StartTime:    "09:00",
		EndTime:      "17:00",
		IsAvailable:  true,
	}

	var captured *model.WeeklySlotUpdate
	repo := &mockAvailabilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.WeeklySlot, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error) {
			captured = updates
			return existing, nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	_, err := service.Update(context.Background(), existing.ID, &model.WeeklySlotUpdate{
		StartTime: "9:30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.StartTime != "09:30" {
		t.Errorf("expected canonical start time 09:30 in update, got %q", captured.StartTime)
	}
}

func TestGetWithIdentity_WarnsWhenRowCapHit(t *testing.T) {
	full := make([]*model.WeeklySlot, 1000)
	for i := range full {
		full[i] = &model.WeeklySlot{
			ID:           fmt.Sprintf("slot-%d", i),
			SalonStaffID: "staff-1",
			DayOfWeek:    i % 7,
			StartTime:    "09:00",
			EndTime:      "17:00",
			IsAvailable:  true,
		}
	}
	repo := &mockAvailabilityRepository{
		findAllFunc: func(ctx context.Context, filter model.SlotFilter, limit int, offset int64) ([]*model.WeeklySlot, error) {
			return full[:limit], nil
		},
	}

	var logged bytes.Buffer
	service := newTestService(repo, &mockStaffRepository{})
	service.cfg.Log = logger.New(logger.Config{
		Level:   logger.WARN,
		Format:  logger.JSON,
		Output:  &logged,
		Service: "test",
	})

	rows, err := service.GetWithIdentity(context.Background(), model.SlotFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1000 {
		t.Fatalf("expected the capped page back, got %d rows", len(rows))
	}
	if !strings.Contains(logged.String(), "row cap") {
		t.Errorf("expected a truncation warning in the log, got %q", logged.String())
	}
}

func TestUpdate_NormalizesStaffID(t *testing.T) {
	existing := &model.WeeklySlot{
		ID:           "507f1f77bcf86cd799439011",
		SalonStaffID: "staff-1",
		DayOfWeek:    3,
		StartTime:    "09:00",
		EndTime:      "17:00",
		IsAvailable:  true,
	}

	var captured *model.WeeklySlotUpdate
	repo := &mockAvailabilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.WeeklySlot, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, updates *model.WeeklySlotUpdate) (*model.WeeklySlot, error) {
			captured = updates
			return existing, nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	// A padded staff id must be stored trimmed, or the staff-scoped
	// queries will never find the row again.
	_, err := service.Update(context.Background(), existing.ID, &model.WeeklySlotUpdate{
		SalonStaffID: "  staff-2  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.SalonStaffID != "staff-2" {
		t.Errorf("expected normalized staff id %q in update, got %q", "staff-2", captured.SalonStaffID)
	}
}

func TestDelete_InvalidIDFormat(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.WeeklySlot, error) {
			return nil, availabilityerrors.ErrInvalidID
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	err := service.Delete(context.Background(), "not-a-hex-id")
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestGetWeekly_GroupsByDay(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findByStaffFunc: func(ctx context.Context, staffID string) ([]*model.WeeklySlot, error) {
			return []*model.WeeklySlot{
				{ID: "1", SalonStaffID: staffID, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
				{ID: "2", SalonStaffID: staffID, DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00"},
				{ID: "3", SalonStaffID: staffID, DayOfWeek: 4, StartTime: "10:00", EndTime: "14:00"},
			}, nil
		},
	}
	staff := &mockStaffRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.SalonStaff, error) {
			return &model.SalonStaff{ID: id, Name: "Dana"}, nil
		},
	}
	service := newTestService(repo, staff)

	weekly, err := service.GetWeekly(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(weekly.Availability[1]) != 2 {
		t.Errorf("expected 2 slots on Monday, got %d", len(weekly.Availability[1]))
	}
	if len(weekly.Availability[4]) != 1 {
		t.Errorf("expected 1 slot on Thursday, got %d", len(weekly.Availability[4]))
	}
	if weekly.StaffName != "Dana" {
		t.Errorf("expected staff name Dana, got %q", weekly.StaffName)
	}
}

func TestGetWeekly_StaffLookupFailureIsNotFatal(t *testing.T) {
	repo := &mockAvailabilityRepository{
		findByStaffFunc: func(ctx context.Context, staffID string) ([]*model.WeeklySlot, error) {
			return []*model.WeeklySlot{
				{ID: "1", SalonStaffID: staffID, DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"},
			}, nil
		},
	}
	staff := &mockStaffRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.SalonStaff, error) {
			return nil, availabilityerrors.ErrStaffNotFound
		},
	}
	service := newTestService(repo, staff)

	weekly, err := service.GetWeekly(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weekly.StaffName != "" {
		t.Errorf("expected empty staff name, got %q", weekly.StaffName)
	}
}

func TestGetByDay_RejectsOutOfRangeDay(t *testing.T) {
	service := newTestService(&mockAvailabilityRepository{}, &mockStaffRepository{})

	for _, day := range []int{-1, 7} {
		_, err := service.GetByDay(context.Background(), day)
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeInvalidInput {
			t.Errorf("day %d: expected INVALID_INPUT, got %v", day, err)
		}
	}
}

func TestCreateWeeklyTemplate_RejectsBatchOnSingleBadSlot(t *testing.T) {
	bulkCalled := false
	repo := &mockAvailabilityRepository{
		createBulkFunc: func(ctx context.Context, slots []*model.WeeklySlot) error {
			bulkCalled = true
			return nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	template := []model.WeeklyTemplateSlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
		{DayOfWeek: 2, StartTime: "25:00", EndTime: "17:00"},
	}
	_, err := service.CreateWeeklyTemplate(context.Background(), "staff-1", template)
	if err == nil {
		t.Fatal("expected validation error for bad template entry")
	}
	if bulkCalled {
		t.Error("no writes should be issued when any template entry is invalid")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateWeeklyTemplate_EmptyTemplate(t *testing.T) {
	service := newTestService(&mockAvailabilityRepository{}, &mockStaffRepository{})

	_, err := service.CreateWeeklyTemplate(context.Background(), "staff-1", nil)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for empty template, got %v", err)
	}
}

func TestReplaceWeeklyTemplate_DeleteAndInsertShareTransaction(t *testing.T) {
	var order []string
	repo := &mockAvailabilityRepository{
		deleteByStaffFunc: func(ctx context.Context, staffID string) (int64, error) {
			order = append(order, "delete")
			return 3, nil
		},
		createBulkFunc: func(ctx context.Context, slots []*model.WeeklySlot) error {
			order = append(order, "insert")
			return nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	template := []model.WeeklyTemplateSlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
	}
	slots, err := service.ReplaceWeeklyTemplate(context.Background(), "staff-1", template)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "delete" || order[1] != "insert" {
		t.Errorf("expected delete then insert inside transaction, got %v", order)
	}
	if len(slots) != 1 {
		t.Errorf("expected 1 slot, got %d", len(slots))
	}
}

func TestReplaceWeeklyTemplate_InsertFailureAbortsTransaction(t *testing.T) {
	repo := &mockAvailabilityRepository{
		createBulkFunc: func(ctx context.Context, slots []*model.WeeklySlot) error {
			return errors.New("write conflict")
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	template := []model.WeeklyTemplateSlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
	}
	_, err := service.ReplaceWeeklyTemplate(context.Background(), "staff-1", template)
	if err == nil {
		t.Fatal("expected error when bulk insert fails inside transaction")
	}
}

func TestClearDay_RejectsOutOfRangeDay(t *testing.T) {
	service := newTestService(&mockAvailabilityRepository{}, &mockStaffRepository{})

	_, err := service.ClearDay(context.Background(), "staff-1", 7)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for day 7, got %v", err)
	}
}

func TestClearStaff_ReturnsDeletedCount(t *testing.T) {
	repo := &mockAvailabilityRepository{
		deleteByStaffFunc: func(ctx context.Context, staffID string) (int64, error) {
			return 5, nil
		},
	}
	service := newTestService(repo, &mockStaffRepository{})

	deleted, err := service.ClearStaff(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 5 {
		t.Errorf("expected 5 deleted, got %d", deleted)
	}
}
