package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"glowbridge/pkg/kafka"
	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
)

type mockReminderRepository struct {
	createFunc              func(ctx context.Context, reminder *model.Reminder) error
	findDueFunc             func(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error)
	markSentFunc            func(ctx context.Context, id string) error
	markFailedFunc          func(ctx context.Context, id string, reason string) error
	cancelByAppointmentFunc func(ctx context.Context, appointmentID string) (int64, error)
}

func (m *mockReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, reminder)
	}
	return nil
}

func (m *mockReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	if m.findDueFunc != nil {
		return m.findDueFunc(ctx, now, limit)
	}
	return nil, nil
}

func (m *mockReminderRepository) MarkSent(ctx context.Context, id string) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id)
	}
	return nil
}

func (m *mockReminderRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	if m.markFailedFunc != nil {
		return m.markFailedFunc(ctx, id, reason)
	}
	return nil
}

func (m *mockReminderRepository) CancelByAppointment(ctx context.Context, appointmentID string) (int64, error) {
	if m.cancelByAppointmentFunc != nil {
		return m.cancelByAppointmentFunc(ctx, appointmentID)
	}
	return 0, nil
}

type captureSender struct {
	sent    []*model.Reminder
	sendErr error
}

func (s *captureSender) Send(ctx context.Context, reminder *model.Reminder) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, reminder)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func newTestService(repo *mockReminderRepository, sender Sender, opts Options) *ReminderService {
	return NewReminderService(repo, sender, testLogger(), opts)
}

func bookedMessage(t *testing.T, eventType string, event kafka.AppointmentBookedEvent) kafka.Message {
	t.Helper()
	return kafka.NewMessage().
		WithKey(event.SalonStaffID).
		WithValue(event).
		WithEventType(eventType).
		WithSource("test").
		Build()
}

func TestHandleEvent_BookingSchedulesReminder(t *testing.T) {
	var created *model.Reminder
	repo := &mockReminderRepository{
		createFunc: func(ctx context.Context, reminder *model.Reminder) error {
			created = reminder
			return nil
		},
	}
	svc := newTestService(repo, &captureSender{}, Options{Lead: time.Hour})

	startAt := time.Now().Add(48 * time.Hour).UTC()
	event := kafka.AppointmentBookedEvent{
		AppointmentID: "appt-1",
		UserID:        "user-1",
		SalonStaffID:  "staff-1",
		StartAt:       startAt,
		EndAt:         startAt.Add(time.Hour),
		OccurredAt:    time.Now().UTC(),
	}

	err := svc.HandleEvent(context.Background(), bookedMessage(t, kafka.EventAppointmentBooked, event))
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if created == nil {
		t.Fatal("expected a reminder to be created")
	}
	if created.AppointmentID != "appt-1" || created.UserID != "user-1" {
		t.Errorf("reminder identity = (%s, %s), want (appt-1, user-1)", created.AppointmentID, created.UserID)
	}
	wantRemindAt := startAt.Add(-time.Hour)
	if !created.RemindAt.Equal(wantRemindAt) {
		t.Errorf("RemindAt = %v, want %v", created.RemindAt, wantRemindAt)
	}
	if created.Status != model.ReminderPending {
		t.Errorf("Status = %s, want %s", created.Status, model.ReminderPending)
	}
	if created.Message == "" {
		t.Error("expected a formatted reminder message")
	}
}

func TestHandleEvent_BookingInsideLeadFiresImmediately(t *testing.T) {
	var created *model.Reminder
	repo := &mockReminderRepository{
		createFunc: func(ctx context.Context, reminder *model.Reminder) error {
			created = reminder
			return nil
		},
	}
	svc := newTestService(repo, &captureSender{}, Options{Lead: 24 * time.Hour})

	startAt := time.Now().Add(2 * time.Hour).UTC()
	event := kafka.AppointmentBookedEvent{
		AppointmentID: "appt-2",
		UserID:        "user-1",
		SalonStaffID:  "staff-1",
		StartAt:       startAt,
		EndAt:         startAt.Add(time.Hour),
	}

	if err := svc.HandleEvent(context.Background(), bookedMessage(t, kafka.EventAppointmentBooked, event)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if created == nil {
		t.Fatal("expected a reminder to be created")
	}
	if created.RemindAt.After(time.Now().Add(time.Minute)) {
		t.Errorf("RemindAt = %v, want approximately now", created.RemindAt)
	}
}

func TestHandleEvent_CancellationRevokesPending(t *testing.T) {
	var cancelledFor string
	repo := &mockReminderRepository{
		cancelByAppointmentFunc: func(ctx context.Context, appointmentID string) (int64, error) {
			cancelledFor = appointmentID
			return 1, nil
		},
	}
	svc := newTestService(repo, &captureSender{}, Options{})

	event := kafka.AppointmentBookedEvent{
		AppointmentID: "appt-3",
		SalonStaffID:  "staff-1",
	}

	if err := svc.HandleEvent(context.Background(), bookedMessage(t, kafka.EventAppointmentCancelled, event)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if cancelledFor != "appt-3" {
		t.Errorf("cancelled appointment = %q, want appt-3", cancelledFor)
	}
}

func TestHandleEvent_MalformedPayloadIsDropped(t *testing.T) {
	repo := &mockReminderRepository{
		createFunc: func(ctx context.Context, reminder *model.Reminder) error {
			t.Error("no reminder should be created for a malformed payload")
			return nil
		},
	}
	svc := newTestService(repo, &captureSender{}, Options{})

	msg := kafka.NewMessage().
		WithRawValue([]byte("not json")).
		WithEventType(kafka.EventAppointmentBooked).
		Build()

	if err := svc.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleEvent() error = %v, want nil for malformed payload", err)
	}
}

func TestHandleEvent_UnknownEventTypeIsIgnored(t *testing.T) {
	repo := &mockReminderRepository{
		createFunc: func(ctx context.Context, reminder *model.Reminder) error {
			t.Error("no reminder should be created for an unknown event type")
			return nil
		},
	}
	svc := newTestService(repo, &captureSender{}, Options{})

	event := kafka.AppointmentBookedEvent{AppointmentID: "appt-4"}
	if err := svc.HandleEvent(context.Background(), bookedMessage(t, "appointment.rescheduled", event)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
}

func TestDispatchDue_SendsAndMarks(t *testing.T) {
	due := []*model.Reminder{
		{ID: "rem-1", AppointmentID: "appt-1", UserID: "user-1", Message: "hi", Status: model.ReminderPending},
		{ID: "rem-2", AppointmentID: "appt-2", UserID: "user-2", Message: "hi", Status: model.ReminderPending},
	}
	var marked []string
	repo := &mockReminderRepository{
		findDueFunc: func(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
			return due, nil
		},
		markSentFunc: func(ctx context.Context, id string) error {
			marked = append(marked, id)
			return nil
		},
	}
	sender := &captureSender{}
	svc := newTestService(repo, sender, Options{})

	svc.DispatchDue(context.Background())

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d reminders, want 2", len(sender.sent))
	}
	if len(marked) != 2 || marked[0] != "rem-1" || marked[1] != "rem-2" {
		t.Errorf("marked sent = %v, want [rem-1 rem-2]", marked)
	}
}

func TestDispatchDue_SendFailureMarksFailed(t *testing.T) {
	var failedID, failedReason string
	repo := &mockReminderRepository{
		findDueFunc: func(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
			return []*model.Reminder{
				{ID: "rem-1", AppointmentID: "appt-1", Status: model.ReminderPending},
			}, nil
		},
		markSentFunc: func(ctx context.Context, id string) error {
			t.Error("MarkSent should not be called when sending fails")
			return nil
		},
		markFailedFunc: func(ctx context.Context, id string, reason string) error {
			failedID = id
			failedReason = reason
			return nil
		},
	}
	svc := newTestService(repo, &captureSender{sendErr: errors.New("provider down")}, Options{})

	svc.DispatchDue(context.Background())

	if failedID != "rem-1" {
		t.Errorf("failed reminder = %q, want rem-1", failedID)
	}
	if failedReason != "provider down" {
		t.Errorf("failure reason = %q, want provider down", failedReason)
	}
}

func TestFormatMessage_RendersInSalonTimezone(t *testing.T) {
	svc := newTestService(&mockReminderRepository{}, &captureSender{}, Options{
		SalonPhone: "+972501234567",
	})

	// 10:00 UTC is 13:00 in Asia/Jerusalem during IDT.
	startAt := time.Date(2026, time.July, 6, 10, 0, 0, 0, time.UTC)
	event := &kafka.AppointmentBookedEvent{
		AppointmentID: "appt-1",
		StartAt:       startAt,
		EndAt:         startAt.Add(time.Hour),
	}

	msg := svc.formatMessage(event)
	want := "Reminder: your appointment on Monday, Jul 6 from 13:00 to 14:00."
	if msg != want {
		t.Errorf("formatMessage() = %q, want %q", msg, want)
	}
}
