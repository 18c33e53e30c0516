package service

import (
	"context"
	"fmt"
	"time"

	"glowbridge/internal/notifier/repository"
	"glowbridge/pkg/kafka"
	"glowbridge/pkg/locale"
	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
)

// Sender delivers a due reminder to the user. The production implementation
// would hand off to an SMS or push provider; LogSender just logs.
type Sender interface {
	Send(ctx context.Context, reminder *model.Reminder) error
}

type Options struct {
	// Lead is how long before the appointment start the reminder fires.
	Lead time.Duration
	// SalonPhone anchors the timezone reminder times are rendered in.
	SalonPhone string
	// PollInterval is how often the dispatcher scans for due reminders.
	PollInterval time.Duration
	// BatchSize caps how many due reminders one scan dispatches.
	BatchSize int
}

type ReminderService struct {
	repo     repository.ReminderRepository
	sender   Sender
	log      *logger.Logger
	opts     Options
	location *time.Location
}

func NewReminderService(repo repository.ReminderRepository, sender Sender, log *logger.Logger, opts Options) *ReminderService {
	if opts.Lead <= 0 {
		opts.Lead = 24 * time.Hour
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}

	tz := locale.InferTimezoneFromPhone(opts.SalonPhone)
	location, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn("Unknown salon timezone, falling back to UTC", "timezone", tz)
		location = time.UTC
	}

	return &ReminderService{
		repo:     repo,
		sender:   sender,
		log:      log,
		opts:     opts,
		location: location,
	}
}

// HandleEvent is the kafka message handler. It routes on the event-type
// header: bookings schedule a reminder, cancellations revoke pending ones.
// Undecodable payloads are logged and dropped rather than retried.
func (s *ReminderService) HandleEvent(ctx context.Context, msg kafka.Message) error {
	eventType := msg.Headers[kafka.HeaderEventType]

	var event kafka.AppointmentBookedEvent
	if err := msg.DecodeValue(&event); err != nil {
		s.log.Error("Invalid appointment event payload", "event_type", eventType, "error", err)
		return nil
	}
	if event.AppointmentID == "" {
		s.log.Error("Appointment event missing appointment_id", "event_type", eventType)
		return nil
	}

	switch eventType {
	case kafka.EventAppointmentBooked:
		return s.scheduleReminder(ctx, &event)
	case kafka.EventAppointmentCancelled:
		return s.cancelReminders(ctx, event.AppointmentID)
	default:
		s.log.Debug("Ignoring event", "event_type", eventType)
		return nil
	}
}

func (s *ReminderService) scheduleReminder(ctx context.Context, event *kafka.AppointmentBookedEvent) error {
	remindAt := event.StartAt.Add(-s.opts.Lead)
	if !remindAt.After(time.Now()) {
		// Bookings inside the lead window fire immediately.
		remindAt = time.Now().UTC()
	}

	reminder := &model.Reminder{
		AppointmentID: event.AppointmentID,
		UserID:        event.UserID,
		SalonStaffID:  event.SalonStaffID,
		Message:       s.formatMessage(event),
		RemindAt:      remindAt,
		Status:        model.ReminderPending,
	}

	if err := s.repo.Create(ctx, reminder); err != nil {
		s.log.Error("Failed to schedule reminder",
			"appointment_id", event.AppointmentID,
			"error", err,
		)
		return err
	}

	s.log.Info("Reminder scheduled",
		"reminder_id", reminder.ID,
		"appointment_id", event.AppointmentID,
		"remind_at", remindAt,
	)
	return nil
}

func (s *ReminderService) cancelReminders(ctx context.Context, appointmentID string) error {
	cancelled, err := s.repo.CancelByAppointment(ctx, appointmentID)
	if err != nil {
		s.log.Error("Failed to cancel reminders", "appointment_id", appointmentID, "error", err)
		return err
	}

	s.log.Info("Reminders cancelled", "appointment_id", appointmentID, "count", cancelled)
	return nil
}

func (s *ReminderService) formatMessage(event *kafka.AppointmentBookedEvent) string {
	start := event.StartAt.In(s.location)
	end := event.EndAt.In(s.location)
	return fmt.Sprintf("Reminder: your appointment on %s from %s to %s.",
		start.Format("Monday, Jan 2"),
		start.Format("15:04"),
		end.Format("15:04"),
	)
}

// Run is the dispatch loop. Every poll interval it sends the reminders whose
// remind_at has passed, marking each sent or failed. Blocks until ctx is done.
func (s *ReminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	s.log.Info("Reminder dispatcher started",
		"poll_interval", s.opts.PollInterval,
		"lead", s.opts.Lead,
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Reminder dispatcher stopped")
			return
		case <-ticker.C:
			s.DispatchDue(ctx)
		}
	}
}

// DispatchDue performs one scan-and-send pass. Exposed so the loop and tests
// share the same path.
func (s *ReminderService) DispatchDue(ctx context.Context) {
	due, err := s.repo.FindDue(ctx, time.Now().UTC(), s.opts.BatchSize)
	if err != nil {
		s.log.Error("Failed to scan due reminders", "error", err)
		return
	}

	for _, reminder := range due {
		if err := s.sender.Send(ctx, reminder); err != nil {
			s.log.Error("Failed to send reminder",
				"reminder_id", reminder.ID,
				"appointment_id", reminder.AppointmentID,
				"error", err,
			)
			if markErr := s.repo.MarkFailed(ctx, reminder.ID, err.Error()); markErr != nil {
				s.log.Error("Failed to mark reminder failed", "reminder_id", reminder.ID, "error", markErr)
			}
			continue
		}

		if err := s.repo.MarkSent(ctx, reminder.ID); err != nil {
			s.log.Error("Failed to mark reminder sent", "reminder_id", reminder.ID, "error", err)
			continue
		}

		s.log.Info("Reminder sent",
			"reminder_id", reminder.ID,
			"appointment_id", reminder.AppointmentID,
			"user_id", reminder.UserID,
		)
	}
}
