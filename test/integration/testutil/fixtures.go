package testutil

import (
	"time"

	"glowbridge/pkg/model"
)

type SlotBuilder struct {
	slot model.WeeklySlot
}

func NewSlotBuilder() *SlotBuilder {
	return &SlotBuilder{
		slot: model.WeeklySlot{
			SalonStaffID: "staff-001",
			DayOfWeek:    1,
			StartTime:    "09:00",
			EndTime:      "17:00",
			IsAvailable:  true,
		},
	}
}

func (b *SlotBuilder) WithStaff(staffID string) *SlotBuilder {
	b.slot.SalonStaffID = staffID
	return b
}

func (b *SlotBuilder) WithDay(day int) *SlotBuilder {
	b.slot.DayOfWeek = day
	return b
}

func (b *SlotBuilder) WithWindow(start, end string) *SlotBuilder {
	b.slot.StartTime = start
	b.slot.EndTime = end
	return b
}

func (b *SlotBuilder) Unavailable() *SlotBuilder {
	b.slot.IsAvailable = false
	return b
}

func (b *SlotBuilder) Build() model.WeeklySlot {
	return b.slot
}

func (b *SlotBuilder) BuildPtr() *model.WeeklySlot {
	slot := b.slot
	return &slot
}

func ValidSlot() model.WeeklySlot {
	return NewSlotBuilder().Build()
}

type StaffBuilder struct {
	staff model.SalonStaff
}

func NewStaffBuilder() *StaffBuilder {
	return &StaffBuilder{
		staff: model.SalonStaff{
			Name:      "Alma Levi",
			Email:     "alma@example.com",
			Role:      "stylist",
			SalonName: "Glow Studio",
			CreatedAt: time.Now(),
		},
	}
}

func (b *StaffBuilder) WithName(name string) *StaffBuilder {
	b.staff.Name = name
	return b
}

func (b *StaffBuilder) WithSalon(salonName string) *StaffBuilder {
	b.staff.SalonName = salonName
	return b
}

func (b *StaffBuilder) Build() model.SalonStaff {
	return b.staff
}

type AppointmentBuilder struct {
	appointment model.Appointment
}

func NewAppointmentBuilder() *AppointmentBuilder {
	startAt := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Hour)
	return &AppointmentBuilder{
		appointment: model.Appointment{
			UserID:       "user-001",
			SalonStaffID: "staff-001",
			ServiceID:    "service-001",
			StartAt:      startAt,
			EndAt:        startAt.Add(time.Hour),
			PaymentType:  "cash",
			Amount:       120,
			Status:       model.AppointmentUpcoming,
		},
	}
}

func (b *AppointmentBuilder) WithStaff(staffID string) *AppointmentBuilder {
	b.appointment.SalonStaffID = staffID
	return b
}

func (b *AppointmentBuilder) WithUser(userID string) *AppointmentBuilder {
	b.appointment.UserID = userID
	return b
}

func (b *AppointmentBuilder) WithWindow(startAt, endAt time.Time) *AppointmentBuilder {
	b.appointment.StartAt = startAt
	b.appointment.EndAt = endAt
	return b
}

func (b *AppointmentBuilder) WithNote(note string) *AppointmentBuilder {
	b.appointment.Note = note
	return b
}

func (b *AppointmentBuilder) Build() model.Appointment {
	return b.appointment
}
