package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"glowbridge/internal/notifier/repository"
	"glowbridge/internal/notifier/service"
	"glowbridge/pkg/config"
	"glowbridge/pkg/kafka"
	kafka_config "glowbridge/pkg/kafka/config"
	kafka_middleware "glowbridge/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Notifier worker")

	reminderRepo := repository.NewMongoReminderRepository(cfg)
	sender := service.NewLogSender(cfg.Log)
	reminderService := service.NewReminderService(reminderRepo, sender, cfg.Log, loadOptions())

	kafkaCfg := kafka_config.Load()
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafka.TopicAppointmentBooked,
		ServiceName,
		kafka.TopicAppointmentBooked+kafka.DLQSuffix,
		reminderService.HandleEvent,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware())
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reminderService.Run(ctx)

	cfg.Log.Info("Notifier worker consuming", "topic", kafka.TopicAppointmentBooked, "group", ServiceName)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.GracefulShutdown()
	cfg.Log.Info("Notifier worker stopped")
}

func loadOptions() service.Options {
	return service.Options{
		Lead:         envDuration("REMINDER_LEAD", 24*time.Hour),
		SalonPhone:   os.Getenv("SALON_PHONE"),
		PollInterval: envDuration("REMINDER_POLL_INTERVAL", 30*time.Second),
		BatchSize:    envInt("REMINDER_BATCH_SIZE", 50),
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
