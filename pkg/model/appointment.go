package model

import "time"

// Appointment statuses. An appointment moves upcoming -> in_progress ->
// completed, or is cancelled at any point before completion.
const (
	AppointmentUpcoming   = "upcoming"
	AppointmentInProgress = "in_progress"
	AppointmentCompleted  = "completed"
	AppointmentCancelled  = "cancelled"
)

type Appointment struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID       string    `json:"user_id" bson:"user_id" validate:"required"`
	SalonStaffID string    `json:"salon_staff_id" bson:"salon_staff_id" validate:"required"`
	ServiceID    string    `json:"service_id" bson:"service_id" validate:"required"`
	Note         string    `json:"note" bson:"note" validate:"max=500"`
	StartAt      time.Time `json:"start_at" bson:"start_at" validate:"required"`
	EndAt        time.Time `json:"end_at" bson:"end_at" validate:"required,gtfield=StartAt"`
	PaymentType  string    `json:"payment_type" bson:"payment_type" validate:"required,oneof=cash card online"`
	Amount       float64   `json:"amount" bson:"amount" validate:"min=0"`
	IsPaid       bool      `json:"is_paid" bson:"is_paid"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=upcoming in_progress completed cancelled"`
	CreatedAt    time.Time `json:"created_at,omitempty" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at"`
}

type AppointmentUpdate struct {
	Note        *string    `json:"note,omitempty" validate:"omitempty,max=500"`
	ServiceID   string     `json:"service_id,omitempty"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	PaymentType string     `json:"payment_type,omitempty" validate:"omitempty,oneof=cash card online"`
	Amount      *float64   `json:"amount,omitempty" validate:"omitempty,min=0"`
	IsPaid      *bool      `json:"is_paid,omitempty"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=upcoming in_progress completed cancelled"`
}

// AppointmentFilter is the sparse filter for appointment listing.
type AppointmentFilter struct {
	UserID       string
	SalonStaffID string
	ServiceID    string
	PaymentType  string
	Status       string
	IsPaid       *bool
	StartAtFrom  *time.Time
	StartAtTo    *time.Time
}

// SlotHold is a short-lived advisory lock preventing two concurrent bookings
// from both seeing the same staff window as free. Holds expire via a Mongo
// TTL index on expires_at; mutual exclusion comes from the deterministic _id.
type SlotHold struct {
	ID        string    `json:"id" bson:"_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
