package model

import "time"

// WeeklySlot is one recurring availability window on a staff member's weekly
// template. dayOfWeek runs 0 (Sunday) through 6 (Saturday); times are "HH:MM"
// 24-hour strings stored zero-padded so lexicographic comparison matches
// chronological order.
type WeeklySlot struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SalonStaffID string    `json:"salon_staff_id" bson:"salon_staff_id" validate:"required"`
	DayOfWeek    int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartTime    string    `json:"start_time" bson:"start_time" validate:"required,time_hhmm"`
	EndTime      string    `json:"end_time" bson:"end_time" validate:"required,time_hhmm"`
	IsAvailable  bool      `json:"is_available" bson:"is_available"`
	CreatedAt    time.Time `json:"created_at,omitempty" bson:"created_at" validate:"omitempty"`
}

// WeeklySlotUpdate carries a partial update; nil/empty fields are left
// untouched. DayOfWeek is a pointer so day 0 (Sunday) survives the
// "was this field provided" check.
type WeeklySlotUpdate struct {
	SalonStaffID string `json:"salon_staff_id,omitempty" validate:"omitempty"`
	DayOfWeek    *int   `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	StartTime    string `json:"start_time,omitempty" validate:"omitempty,time_hhmm"`
	EndTime      string `json:"end_time,omitempty" validate:"omitempty,time_hhmm"`
	IsAvailable  *bool  `json:"is_available,omitempty"`
}

// WeeklyTemplateSlot is one entry in a bulk weekly-template request; the staff
// id comes from the enclosing request, not the slot.
type WeeklyTemplateSlot struct {
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

// WeeklyAvailability is the day-keyed read model for one staff member's week.
// It is assembled on demand from the slot collection, never persisted.
type WeeklyAvailability struct {
	SalonStaffID string               `json:"salon_staff_id"`
	StaffName    string               `json:"staff_name,omitempty"`
	Availability map[int][]WeeklySlot `json:"availability"`
}

// StaffAvailabilityWithStaff is a WeeklySlot joined with denormalized staff
// and salon identity, used only in search/presentation results.
type StaffAvailabilityWithStaff struct {
	WeeklySlot `bson:",inline"`
	StaffName  string `json:"staff_name,omitempty" bson:"staff_name,omitempty"`
	StaffEmail string `json:"staff_email,omitempty" bson:"staff_email,omitempty"`
	StaffRole  string `json:"staff_role,omitempty" bson:"staff_role,omitempty"`
	SalonName  string `json:"salon_name,omitempty" bson:"salon_name,omitempty"`
}

// SlotFilter is the sparse filter for identity-joined listing. Pointer fields
// distinguish "absent" from zero values.
type SlotFilter struct {
	SalonStaffID string
	DayOfWeek    *int
	IsAvailable  *bool
}

// SearchCriteria drives the flexible availability search. TimeStart/TimeEnd
// match any overlap (slot.start <= timeEnd AND slot.end >= timeStart); the
// name fields are case-insensitive substring matches.
type SearchCriteria struct {
	StaffName   string
	SalonName   string
	DayOfWeek   *int
	TimeStart   string
	TimeEnd     string
	IsAvailable *bool
}

// WindowCriteria drives the stricter "free for the whole window" search:
// is_available must be true and the slot must CONTAIN the requested window
// (slot.start <= timeStart AND slot.end >= timeEnd). Day and both times are
// mandatory; the names are optional refinements.
type WindowCriteria struct {
	DayOfWeek int
	TimeStart string
	TimeEnd   string
	StaffName string
	SalonName string
}
