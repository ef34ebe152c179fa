package repository

import (
	"context"

	"medexa/internal/domain"
)

// MedicineRepository exposes persistence operations for Medicine records.
type MedicineRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, medicine *domain.Medicine) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Medicine, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Medicine, error)
	Delete(ctx context.Context, id int64) error
}

// ReminderTimeRepository manages the reminder times attached to a medicine.
type ReminderTimeRepository interface {
	Init(ctx context.Context) error
	ReplaceForMedicine(ctx context.Context, medicineID int64, times []domain.ReminderTime) error
	ListByMedicine(ctx context.Context, medicineID int64) ([]domain.ReminderTime, error)
}
