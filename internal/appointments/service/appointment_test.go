package service

import (
	"context"
	"testing"
	"time"

	appointmentserrors "glowbridge/internal/appointments/errors"
	"glowbridge/internal/appointments/validator"
	"glowbridge/pkg/config"
	mongotx "glowbridge/pkg/db/mongo"
	apperrors "glowbridge/pkg/errors"
	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
)

// Mock repositories for testing
type mockAppointmentRepository struct {
	createFunc          func(ctx context.Context, appointment *model.Appointment) error
	findByIDFunc        func(ctx context.Context, id string) (*model.Appointment, error)
	findAllFunc         func(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error)
	countFunc           func(ctx context.Context, filter model.AppointmentFilter) (int64, error)
	updateFunc          func(ctx context.Context, id string, appointment *model.Appointment) error
	deleteFunc          func(ctx context.Context, id string) error
	findOverlappingFunc func(ctx context.Context, staffID string, startAt, endAt time.Time) ([]*model.Appointment, error)
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, appointment)
	}
	appointment.ID = "generated-id"
	return nil
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, appointmentserrors.ErrNotFound
}

func (m *mockAppointmentRepository) FindAll(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) Count(ctx context.Context, filter model.AppointmentFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockAppointmentRepository) Update(ctx context.Context, id string, appointment *model.Appointment) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, appointment)
	}
	return nil
}

func (m *mockAppointmentRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockAppointmentRepository) FindOverlapping(ctx context.Context, staffID string, startAt, endAt time.Time) ([]*model.Appointment, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, staffID, startAt, endAt)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockSlotHoldRepository struct {
	createFunc func(ctx context.Context, hold *model.SlotHold) (*model.SlotHold, error)
	deleteFunc func(ctx context.Context, holdID string) error
}

func (m *mockSlotHoldRepository) Create(ctx context.Context, hold *model.SlotHold) (*model.SlotHold, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, hold)
	}
	return hold, nil
}

func (m *mockSlotHoldRepository) Delete(ctx context.Context, holdID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, holdID)
	}
	return nil
}

type mockAvailabilityChecker struct {
	isFreeFunc func(ctx context.Context, staffID string, day int, startTime, endTime string) (bool, error)
}

func (m *mockAvailabilityChecker) IsStaffFreeInWindow(ctx context.Context, staffID string, day int, startTime, endTime string) (bool, error) {
	if m.isFreeFunc != nil {
		return m.isFreeFunc(ctx, staffID, day, startTime, endTime)
	}
	return true, nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
		SlotHoldTTL: 10 * time.Second,
	}
}

func newTestService(repo *mockAppointmentRepository, lockRepo *mockSlotHoldRepository, availability *mockAvailabilityChecker) *appointmentService {
	cfg := testConfig()
	return &appointmentService{
		repo:         repo,
		lockRepo:     lockRepo,
		availability: availability,
		validator:    validator.NewAppointmentValidator(cfg.Log),
		cfg:          cfg,
	}
}

// futureWindow returns a same-day appointment window well in the future.
func futureWindow(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	if start.Hour() > 22 {
		start = start.Add(-4 * time.Hour)
	}
	return start, start.Add(time.Hour)
}

func validAppointment(t *testing.T) *model.Appointment {
	start, end := futureWindow(t)
	return &model.Appointment{
		UserID:       "user-1",
		SalonStaffID: "staff-1",
		ServiceID:    "service-1",
		StartAt:      start,
		EndAt:        end,
		PaymentType:  "cash",
		Amount:       50,
		Status:       model.AppointmentUpcoming,
	}
}

func TestCreate_GatedOnAvailability(t *testing.T) {
	insertCalled := false
	repo := &mockAppointmentRepository{
		createFunc: func(ctx context.Context, appointment *model.Appointment) error {
			insertCalled = true
			return nil
		},
	}
	availability := &mockAvailabilityChecker{
		isFreeFunc: func(ctx context.Context, staffID string, day int, startTime, endTime string) (bool, error) {
			return false, nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, availability)

	err := service.Create(context.Background(), validAppointment(t))
	if err == nil {
		t.Fatal("expected conflict when staff is not available")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
	if insertCalled {
		t.Error("insert should not run when availability gating fails")
	}
}

func TestCreate_RejectsOverlappingAppointment(t *testing.T) {
	start, end := futureWindow(t)
	insertCalled := false
	repo := &mockAppointmentRepository{
		findOverlappingFunc: func(ctx context.Context, staffID string, s, e time.Time) ([]*model.Appointment, error) {
			return []*model.Appointment{
				{ID: "other", SalonStaffID: staffID, StartAt: start.Add(-30 * time.Minute), EndAt: end.Add(-30 * time.Minute)},
			}, nil
		},
		createFunc: func(ctx context.Context, appointment *model.Appointment) error {
			insertCalled = true
			return nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	err := service.Create(context.Background(), validAppointment(t))
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT for overlapping appointment, got %v", err)
	}
	if insertCalled {
		t.Error("insert should not run when an overlap exists")
	}
}

func TestCreate_SlotHoldConflict(t *testing.T) {
	lockRepo := &mockSlotHoldRepository{
		createFunc: func(ctx context.Context, hold *model.SlotHold) (*model.SlotHold, error) {
			// Simulate a concurrent request already holding the slot; the
			// service treats only genuine duplicate-key errors as conflicts,
			// everything else is internal.
			return nil, context.DeadlineExceeded
		},
	}
	service := newTestService(&mockAppointmentRepository{}, lockRepo, &mockAvailabilityChecker{})

	err := service.Create(context.Background(), validAppointment(t))
	if err == nil {
		t.Fatal("expected error when slot hold cannot be acquired")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInternal {
		t.Errorf("expected INTERNAL for non-duplicate lock failure, got %v", err)
	}
}

func TestCreate_ReleasesHoldAfterBooking(t *testing.T) {
	var heldID, releasedID string
	lockRepo := &mockSlotHoldRepository{
		createFunc: func(ctx context.Context, hold *model.SlotHold) (*model.SlotHold, error) {
			heldID = hold.ID
			return hold, nil
		},
		deleteFunc: func(ctx context.Context, holdID string) error {
			releasedID = holdID
			return nil
		},
	}
	service := newTestService(&mockAppointmentRepository{}, lockRepo, &mockAvailabilityChecker{})

	if err := service.Create(context.Background(), validAppointment(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if heldID == "" || heldID != releasedID {
		t.Errorf("expected hold %q to be released, released %q", heldID, releasedID)
	}
}

func TestCreate_DefaultsStatusToUpcoming(t *testing.T) {
	var stored *model.Appointment
	repo := &mockAppointmentRepository{
		createFunc: func(ctx context.Context, appointment *model.Appointment) error {
			stored = appointment
			return nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	a := validAppointment(t)
	a.Status = ""
	if err := service.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != model.AppointmentUpcoming {
		t.Errorf("expected default status upcoming, got %q", stored.Status)
	}
}

func TestCreate_RejectsPastStart(t *testing.T) {
	service := newTestService(&mockAppointmentRepository{}, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	a := validAppointment(t)
	a.StartAt = time.Now().Add(-2 * time.Hour)
	a.EndAt = time.Now().Add(-1 * time.Hour)
	err := service.Create(context.Background(), a)
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR for past start, got %v", err)
	}
}

func TestCreate_RejectsWindowSpanningDays(t *testing.T) {
	service := newTestService(&mockAppointmentRepository{}, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	a := validAppointment(t)
	a.EndAt = a.StartAt.Add(26 * time.Hour)
	err := service.Create(context.Background(), a)
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for multi-day window, got %v", err)
	}
}

func TestUpdate_WindowMoveRechecksGates(t *testing.T) {
	start, end := futureWindow(t)
	existing := validAppointment(t)
	existing.ID = "507f1f77bcf86cd799439011"

	availabilityChecked := false
	availability := &mockAvailabilityChecker{
		isFreeFunc: func(ctx context.Context, staffID string, day int, startTime, endTime string) (bool, error) {
			availabilityChecked = true
			return true, nil
		},
	}
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			copy := *existing
			return &copy, nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, availability)

	newStart := start.Add(2 * time.Hour)
	newEnd := end.Add(2 * time.Hour)
	_, err := service.Update(context.Background(), existing.ID, &model.AppointmentUpdate{
		StartAt: &newStart,
		EndAt:   &newEnd,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !availabilityChecked {
		t.Error("moving the window should re-check staff availability")
	}
}

func TestUpdate_NoteOnlySkipsGates(t *testing.T) {
	existing := validAppointment(t)
	existing.ID = "507f1f77bcf86cd799439011"

	availability := &mockAvailabilityChecker{
		isFreeFunc: func(ctx context.Context, staffID string, day int, startTime, endTime string) (bool, error) {
			t.Error("availability should not be checked when the window is unchanged")
			return true, nil
		},
	}
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			copy := *existing
			return &copy, nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, availability)

	note := "bring reference photos"
	updated, err := service.Update(context.Background(), existing.ID, &model.AppointmentUpdate{Note: &note})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Note != note {
		t.Errorf("expected note %q, got %q", note, updated.Note)
	}
}

func TestUpdate_PastAppointmentNoteAndPayment(t *testing.T) {
	existing := validAppointment(t)
	existing.ID = "507f1f77bcf86cd799439011"
	existing.StartAt = time.Now().Add(-2 * time.Hour)
	existing.EndAt = existing.StartAt.Add(time.Hour)
	existing.Status = model.AppointmentCompleted

	var stored *model.Appointment
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			copy := *existing
			return &copy, nil
		},
		updateFunc: func(ctx context.Context, id string, appointment *model.Appointment) error {
			stored = appointment
			return nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	note := "settled in cash at the desk"
	paid := true
	updated, err := service.Update(context.Background(), existing.ID, &model.AppointmentUpdate{
		Note:   &note,
		IsPaid: &paid,
	})
	if err != nil {
		t.Fatalf("updating a past appointment without moving it should succeed, got %v", err)
	}
	if updated.Note != note || !updated.IsPaid {
		t.Errorf("merged = (note %q, paid %v), want (%q, true)", updated.Note, updated.IsPaid, note)
	}
	if stored == nil {
		t.Fatal("expected the merged appointment to be persisted")
	}
}

func TestUpdate_MovingWindowIntoPastRejected(t *testing.T) {
	existing := validAppointment(t)
	existing.ID = "507f1f77bcf86cd799439011"

	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			copy := *existing
			return &copy, nil
		},
		updateFunc: func(ctx context.Context, id string, appointment *model.Appointment) error {
			t.Error("update should not be persisted when the new window starts in the past")
			return nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	pastStart := time.Now().Add(-3 * time.Hour)
	pastEnd := pastStart.Add(time.Hour)
	_, err := service.Update(context.Background(), existing.ID, &model.AppointmentUpdate{
		StartAt: &pastStart,
		EndAt:   &pastEnd,
	})
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR for a window moved into the past, got %v", err)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	service := newTestService(&mockAppointmentRepository{}, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	_, err := service.UpdateStatus(context.Background(), "507f1f77bcf86cd799439011", "rescheduled")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for unknown status, got %v", err)
	}
}

func TestUpdateStatus_Cancel(t *testing.T) {
	existing := validAppointment(t)
	existing.ID = "507f1f77bcf86cd799439011"

	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			copy := *existing
			return &copy, nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	updated, err := service.UpdateStatus(context.Background(), existing.ID, model.AppointmentCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.AppointmentCancelled {
		t.Errorf("expected cancelled status, got %q", updated.Status)
	}
}

func TestList_PaginatesWithParallelCount(t *testing.T) {
	repo := &mockAppointmentRepository{
		countFunc: func(ctx context.Context, filter model.AppointmentFilter) (int64, error) {
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error) {
			return []*model.Appointment{validAppointment(t)}, nil
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	page, err := service.List(context.Background(), model.AppointmentFilter{}, model.Pagination{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 42 || page.TotalPages != 5 || page.Page != 2 {
		t.Errorf("unexpected pagination: total=%d pages=%d page=%d", page.Total, page.TotalPages, page.Page)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockAppointmentRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return appointmentserrors.ErrNotFound
		},
	}
	service := newTestService(repo, &mockSlotHoldRepository{}, &mockAvailabilityChecker{})

	err := service.Delete(context.Background(), "507f1f77bcf86cd799439011")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
