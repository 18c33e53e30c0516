package validator

import (
	"errors"
	"fmt"
	"strings"

	"glowbridge/pkg/logger"
	"glowbridge/pkg/model"
	"glowbridge/pkg/timeutil"

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

type SlotValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSlotValidator(log *logger.Logger) *SlotValidator {
	v := validator.New()

	if err := v.RegisterValidation("time_hhmm", validateTimeHHMM); err != nil {
		log.Fatal("Failed to register 'time_hhmm' validator", "error", err)
	}

	log.Info("Availability slot validator initialized successfully")

	return &SlotValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeHHMM(fl validator.FieldLevel) bool {
	_, err := timeutil.ParseMinutes(fl.Field().String())
	return err == nil
}

// Validate checks the struct tags plus the start<end ordering the tags alone
// cannot express.
func (v *SlotValidator) Validate(slot *model.WeeklySlot) error {
	if err := v.validate.Struct(slot); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if err := timeutil.ValidateOrder(slot.StartTime, slot.EndTime); err != nil {
		return ValidationErrors{{
			Field:   "end_time",
			Message: fmt.Sprintf("end_time (%s) must be after start_time (%s)", slot.EndTime, slot.StartTime),
		}}
	}
	return nil
}

// ValidateUpdate checks only the fields present in the partial. Ordering of a
// partial pair against the stored row is the service's job.
func (v *SlotValidator) ValidateUpdate(updates *model.WeeklySlotUpdate) error {
	if err := v.validate.Struct(updates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *SlotValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "time_hhmm":
			message = fmt.Sprintf("%s must be a valid HH:MM 24-hour time", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
