package main

import (
	"glowbridge/internal/appointments/handler"
	"glowbridge/internal/appointments/repository"
	"glowbridge/internal/appointments/service"
	"glowbridge/internal/appointments/validator"
	availabilityrepo "glowbridge/internal/availability/repository"
	availabilityservice "glowbridge/internal/availability/service"
	availabilityvalidator "glowbridge/internal/availability/validator"
	"glowbridge/pkg/app"
	"glowbridge/pkg/config"
	"glowbridge/pkg/kafka"
	kafka_config "glowbridge/pkg/kafka/config"
	kafka_middleware "glowbridge/pkg/kafka/middleware"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Appointments service")
	appointmentService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AppointmentService {
	appointmentValidator := validator.NewAppointmentValidator(cfg.Log)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	slotHoldRepo := repository.NewSlotHoldRepository(cfg)
	appointmentService := service.NewAppointmentService(
		appointmentRepo,
		slotHoldRepo,
		newAvailabilityChecker(cfg),
		appointmentValidator,
		cfg,
		newEventPublisher(cfg),
	)

	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService
}

// newAvailabilityChecker builds the availability service bookings are gated
// on. Both services read the same database, so the checker runs in-process
// against the shared collections.
func newAvailabilityChecker(cfg *config.Config) service.AvailabilityChecker {
	return availabilityservice.NewAvailabilityService(
		availabilityrepo.NewMongoAvailabilityRepository(cfg),
		availabilityrepo.NewMongoStaffRepository(cfg),
		availabilityvalidator.NewSlotValidator(cfg.Log),
		cfg,
		nil,
	)
}

func newEventPublisher(cfg *config.Config) *kafka.EventPublisher {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(
		kafkaCfg,
		kafka.TopicAppointmentBooked,
		kafka.TopicAppointmentBooked+kafka.DLQSuffix,
	)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, appointment events disabled", "error", err)
		return nil
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}
	return kafka.NewEventPublisher(producer, ServiceName, cfg.Log)
}
