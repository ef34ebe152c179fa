package repository

import (
	"context"

	"medexa/internal/domain"
)

// AppointmentRepository exposes persistence operations for Appointment records.
type AppointmentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, appt *domain.Appointment) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Delete(ctx context.Context, id int64) error
}
