package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	log.Info("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func (v *AppointmentValidator) Validate(appointment *model.Appointment) error {
	if err := v.validateBase(appointment); err != nil {
		return err
	}

	if appointment.StartAt.Before(time.Now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "StartAt",
				Message: "start_at cannot be in the past",
			},
		}
	}

	return nil
}

// ValidateMerged checks the result of merging a partial update onto a stored
// appointment. The future-start rule applies only when the window itself was
// changed; marking an appointment that already started as paid, or editing
// its note, must stay legal.
func (v *AppointmentValidator) ValidateMerged(appointment *model.Appointment, windowMoved bool) error {
	if err := v.validateBase(appointment); err != nil {
		return err
	}

	if windowMoved && appointment.StartAt.Before(time.Now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "StartAt",
				Message: "start_at cannot be in the past",
			},
		}
	}

	return nil
}

func (v *AppointmentValidator) validateBase(appointment *model.Appointment) error {
	if err := v.validate.Struct(appointment); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !appointment.EndAt.After(appointment.StartAt) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndAt",
				Message: "end_at must be after start_at",
			},
		}
	}

	return nil
}

func (v *AppointmentValidator) ValidateUpdate(update *model.AppointmentUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.StartAt != nil && update.EndAt != nil {
		if !update.EndAt.After(*update.StartAt) {
			return ValidationErrors{
				ValidationError{
					Field:   "EndAt",
					Message: "end_at must be after start_at",
				},
			}
		}
	}

	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
