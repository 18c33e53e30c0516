package main

import (
	"glowbridge/internal/availability/handler"
	"glowbridge/internal/availability/repository"
	"glowbridge/internal/availability/service"
	"glowbridge/internal/availability/validator"
	"glowbridge/pkg/app"
	"glowbridge/pkg/config"
	"glowbridge/pkg/kafka"
	kafka_config "glowbridge/pkg/kafka/config"
	kafka_middleware "glowbridge/pkg/kafka/middleware"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Availability service")
	availabilityService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AvailabilityService {
	slotValidator := validator.NewSlotValidator(cfg.Log)
	availabilityRepo := repository.NewMongoAvailabilityRepository(cfg)
	staffRepo := repository.NewMongoStaffRepository(cfg)
	availabilityService := service.NewAvailabilityService(
		availabilityRepo,
		staffRepo,
		slotValidator,
		cfg,
		newEventPublisher(cfg),
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}

// newEventPublisher wires the availability.changed producer. Event publishing
// is best effort, so a broker misconfiguration downgrades to a nil publisher
// instead of failing startup.
func newEventPublisher(cfg *config.Config) *kafka.EventPublisher {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(
		kafkaCfg,
		kafka.TopicAvailabilityChanged,
		kafka.TopicAvailabilityChanged+kafka.DLQSuffix,
	)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, availability events disabled", "error", err)
		return nil
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}
	return kafka.NewEventPublisher(producer, ServiceName, cfg.Log)
}
