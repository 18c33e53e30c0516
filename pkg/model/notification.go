package model

import "time"

// Reminder statuses. A reminder is pending until the dispatcher picks it up,
// then sent or failed; cancelling the appointment cancels it.
const (
	ReminderPending   = "pending"
	ReminderSent      = "sent"
	ReminderFailed    = "failed"
	ReminderCancelled = "cancelled"
)

// Reminder is one scheduled appointment notification. Rows are created by the
// notifier worker when it consumes a booking event and dispatched when
// remind_at passes.
type Reminder struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	AppointmentID string    `json:"appointment_id" bson:"appointment_id"`
	UserID        string    `json:"user_id" bson:"user_id"`
	SalonStaffID  string    `json:"salon_staff_id" bson:"salon_staff_id"`
	Message       string    `json:"message" bson:"message"`
	RemindAt      time.Time `json:"remind_at" bson:"remind_at"`
	Status        string    `json:"status" bson:"status"`
	FailureReason string    `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitempty" bson:"updated_at"`
}
