package service

import (
	"context"

	"glowbridge/pkg/logger"
)

// LogSender writes codes to the log instead of an SMS provider. Useful for
// development and tests; never enable it in production.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, phone string, code string) error {
	s.log.Info("OTP code issued", "phone", phone, "code", code)
	return nil
}
