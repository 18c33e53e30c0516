package model

import "time"

// SalonStaff is the staff directory entry availability results are joined
// against. Staff lifecycle is owned elsewhere; this collection is read-mostly
// from the availability side.
type SalonStaff struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"omitempty,email"`
	Role      string    `json:"role,omitempty" bson:"role,omitempty"`
	SalonID   string    `json:"salon_id,omitempty" bson:"salon_id,omitempty"`
	SalonName string    `json:"salon_name,omitempty" bson:"salon_name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at"`
}
