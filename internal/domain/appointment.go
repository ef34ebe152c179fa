package domain

import "time"

type AppointmentStatus string

const (
	AppointmentStatusUpcoming  AppointmentStatus = "Upcoming"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

// Appointment is a scheduled doctor or lab visit.
type Appointment struct {
	ID          int64
	UserID      string
	Doctor      string
	Specialty   string
	ScheduledAt time.Time
	Status      AppointmentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
