package main

import (
	"glowbridge/internal/otp/handler"
	"glowbridge/internal/otp/service"
	"glowbridge/internal/otp/store"
	"glowbridge/pkg/app"
	"glowbridge/pkg/config"
)

const ServiceName = "otp"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetRedis()

	cfg.Log.Info("Starting OTP service")
	otpService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewOTPHandler(otpService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.OTPService {
	sessionStore := store.NewRedisSessionStore(cfg)
	sender := service.NewLogSender(cfg.Log)
	otpService := service.NewOTPService(sessionStore, sender, cfg)

	cfg.Log.Info("OTP service initialized", "redis_addr", cfg.RedisAddr)
	return otpService
}
