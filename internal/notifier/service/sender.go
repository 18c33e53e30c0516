package service

import (
	"context"

	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
)

// LogSender writes reminders to the log instead of a delivery provider.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, reminder *model.Reminder) error {
	s.log.Info("Reminder delivered",
		"appointment_id", reminder.AppointmentID,
		"user_id", reminder.UserID,
		"message", reminder.Message,
	)
	return nil
}
