package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appointmentserrors "glowbridge/internal/appointments/errors"
	"glowbridge/internal/appointments/repository"
	"glowbridge/internal/appointments/validator"
	"glowbridge/pkg/config"
	apperrors "glowbridge/pkg/errors"
	"glowbridge/pkg/kafka"
	"glowbridge/pkg/model"
	"glowbridge/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityChecker is the slice of the availability service appointments
// need: is the staff member's weekly template open for this window.
type AvailabilityChecker interface {
	IsStaffFreeInWindow(ctx context.Context, staffID string, day int, startTime, endTime string) (bool, error)
}

type AppointmentService interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, filter model.AppointmentFilter, page model.Pagination) (model.Page[*model.Appointment], error)
	Update(ctx context.Context, id string, updates *model.AppointmentUpdate) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error)
	Delete(ctx context.Context, id string) error
}

type appointmentService struct {
	repo         repository.AppointmentRepository
	lockRepo     repository.SlotHoldRepository
	availability AvailabilityChecker
	validator    *validator.AppointmentValidator
	cfg          *config.Config
	events       *kafka.EventPublisher
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotHoldRepository,
	availability AvailabilityChecker,
	validator *validator.AppointmentValidator,
	cfg *config.Config,
	events *kafka.EventPublisher,
) AppointmentService {
	return &appointmentService{
		repo:         repo,
		lockRepo:     lockRepo,
		availability: availability,
		validator:    validator,
		cfg:          cfg,
		events:       events,
	}
}

// Create books an appointment. The booking is gated twice: the staff member's
// weekly availability must contain the requested window, and no non-cancelled
// appointment may overlap it. An advisory lock on (staff, start) closes the
// race between two concurrent requests for the same slot.
func (s *appointmentService) Create(ctx context.Context, appointment *model.Appointment) error {
	s.applyDefaults(appointment)
	s.sanitize(appointment)
	if err := s.validate(appointment); err != nil {
		return err
	}

	lockID, err := s.acquireSlotLock(ctx, appointment.SalonStaffID, appointment.StartAt)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot hold", "hold_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyStaffAvailable(ctx, appointment); err != nil {
			return err
		}
		if err := s.verifyNoOverlap(sessCtx, appointment); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, appointment); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment", "error", err)
		return err
	}

	s.cfg.Log.Info("Appointment created successfully",
		"id", appointment.ID,
		"user_id", appointment.UserID,
		"salon_staff_id", appointment.SalonStaffID,
		"start_at", appointment.StartAt,
	)
	s.events.Publish(ctx, appointment.SalonStaffID, kafka.EventAppointmentBooked, kafka.AppointmentBookedEvent{
		AppointmentID: appointment.ID,
		UserID:        appointment.UserID,
		SalonStaffID:  appointment.SalonStaffID,
		ServiceID:     appointment.ServiceID,
		StartAt:       appointment.StartAt,
		EndAt:         appointment.EndAt,
		OccurredAt:    time.Now().UTC(),
	})
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve appointment")
	}
	return appointment, nil
}

func (s *appointmentService) List(ctx context.Context, filter model.AppointmentFilter, page model.Pagination) (model.Page[*model.Appointment], error) {
	page.Limit = config.NormalizePaginationLimit(page.Limit)
	if page.Page < 1 {
		page.Page = 1
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", err)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appointments, err = s.repo.FindAll(sharedCtx, filter, page.Limit, page.Offset())
		if err != nil {
			s.cfg.Log.Error("Failed to list appointments",
				"page", page.Page,
				"limit", page.Limit,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve appointments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return model.Page[*model.Appointment]{}, errCount
	}
	if errFind != nil {
		return model.Page[*model.Appointment]{}, errFind
	}
	return model.NewPage(appointments, count, page), nil
}

// Update merges the partial onto the stored appointment, validates the full
// merged document, and re-checks availability and overlap when the window moved.
func (s *appointmentService) Update(ctx context.Context, id string, updates *model.AppointmentUpdate) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Appointment update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "check appointment existence")
	}

	merged := s.mergeAppointmentUpdates(existing, updates)
	s.sanitize(merged)

	windowMoved := !merged.StartAt.Equal(existing.StartAt) || !merged.EndAt.Equal(existing.EndAt)
	if err := s.validator.ValidateMerged(merged, windowMoved); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if windowMoved {
			if err := s.verifyStaffAvailable(ctx, merged); err != nil {
				return err
			}
			if err := s.verifyNoOverlap(sessCtx, merged); err != nil {
				return err
			}
		}
		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			if errors.Is(err, appointmentserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Appointment", id)
			}
			return apperrors.Internal("Failed to update appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update appointment", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Appointment updated successfully", "id", id)
	return merged, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error) {
	switch status {
	case model.AppointmentUpcoming, model.AppointmentInProgress, model.AppointmentCompleted, model.AppointmentCancelled:
	default:
		return nil, apperrors.InvalidInput("status must be one of: upcoming, in_progress, completed, cancelled")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "check appointment existence")
	}

	existing.Status = status
	if err := s.repo.Update(ctx, id, existing); err != nil {
		return nil, s.mapRepoError(err, id, "update appointment status")
	}

	s.cfg.Log.Info("Appointment status updated", "id", id, "status", status)
	if status == model.AppointmentCancelled {
		s.events.Publish(ctx, existing.SalonStaffID, kafka.EventAppointmentCancelled, kafka.AppointmentBookedEvent{
			AppointmentID: existing.ID,
			UserID:        existing.UserID,
			SalonStaffID:  existing.SalonStaffID,
			ServiceID:     existing.ServiceID,
			StartAt:       existing.StartAt,
			EndAt:         existing.EndAt,
			OccurredAt:    time.Now().UTC(),
		})
	}
	return existing, nil
}

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "delete appointment")
	}

	s.cfg.Log.Info("Appointment deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *appointmentService) applyDefaults(a *model.Appointment) {
	if a.Status == "" {
		a.Status = model.AppointmentUpcoming
	}
}

func (s *appointmentService) sanitize(a *model.Appointment) {
	a.Note = sanitizer.SanitizeNote(a.Note)
	a.UserID = sanitizer.TrimAndNormalize(a.UserID)
	a.SalonStaffID = sanitizer.TrimAndNormalize(a.SalonStaffID)
	a.ServiceID = sanitizer.TrimAndNormalize(a.ServiceID)
}

func (s *appointmentService) validate(appointment *model.Appointment) error {
	if err := s.validator.Validate(appointment); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *appointmentService) mergeAppointmentUpdates(existing *model.Appointment, updates *model.AppointmentUpdate) *model.Appointment {
	merged := *existing

	if updates.Note != nil {
		merged.Note = *updates.Note
	}
	if updates.ServiceID != "" {
		merged.ServiceID = updates.ServiceID
	}
	if updates.StartAt != nil {
		merged.StartAt = *updates.StartAt
	}
	if updates.EndAt != nil {
		merged.EndAt = *updates.EndAt
	}
	if updates.PaymentType != "" {
		merged.PaymentType = updates.PaymentType
	}
	if updates.Amount != nil {
		merged.Amount = *updates.Amount
	}
	if updates.IsPaid != nil {
		merged.IsPaid = *updates.IsPaid
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

// verifyStaffAvailable checks the weekly template: the appointment window must
// fall on a single day and be fully contained in an available slot.
func (s *appointmentService) verifyStaffAvailable(ctx context.Context, a *model.Appointment) error {
	start := a.StartAt
	end := a.EndAt
	if start.Year() != end.Year() || start.YearDay() != end.YearDay() {
		return apperrors.InvalidInput("Appointment must start and end on the same day")
	}

	day := int(start.Weekday())
	free, err := s.availability.IsStaffFreeInWindow(ctx, a.SalonStaffID,
		day,
		start.Format("15:04"),
		end.Format("15:04"),
	)
	if err != nil {
		return err
	}
	if !free {
		return apperrors.Conflict("Staff member is not available for the requested time")
	}
	return nil
}

func (s *appointmentService) verifyNoOverlap(ctx context.Context, a *model.Appointment) error {
	existing, err := s.repo.FindOverlapping(ctx, a.SalonStaffID, a.StartAt, a.EndAt)
	if err != nil {
		return apperrors.Internal("Failed to check existing appointments", err)
	}

	for _, other := range existing {
		if other.ID == a.ID {
			continue
		}
		return apperrors.Conflict(fmt.Sprintf(
			"Appointment overlaps with an existing appointment (%s - %s)",
			other.StartAt.Format(time.RFC3339),
			other.EndAt.Format(time.RFC3339),
		))
	}
	return nil
}

// acquireSlotLock creates an advisory lock keyed on the slot coordinates.
// Returns the hold ID if successful, or conflict error if the hold already exists
func (s *appointmentService) acquireSlotLock(ctx context.Context, staffID string, startAt time.Time) (string, error) {
	holdID := fmt.Sprintf("slot_hold_%s_%d", staffID, startAt.Unix())

	hold := &model.SlotHold{
		ID:        holdID,
		ExpiresAt: time.Now().Add(s.cfg.SlotHoldTTL),
	}

	_, err := s.lockRepo.Create(ctx, hold)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot hold", err)
	}

	return holdID, nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, holdID string) error {
	return s.lockRepo.Delete(ctx, holdID)
}

func (s *appointmentService) mapRepoError(err error, id string, action string) error {
	if errors.Is(err, appointmentserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Appointment", id)
	}
	if errors.Is(err, appointmentserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid appointment ID format")
	}
	s.cfg.Log.Error("Failed to "+action,
		"id", id,
		"error", err,
	)
	return apperrors.Internal("Failed to "+action, err)
}
