package repository

import (
	"context"

	"medexa/internal/domain"
)

// HealthLogRepository exposes persistence operations for HealthLog records.
type HealthLogRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, log *domain.HealthLog) (int64, error)
	Get(ctx context.Context, id int64) (*domain.HealthLog, error)
	ListByUser(ctx context.Context, userID string) ([]domain.HealthLog, error)
	Delete(ctx context.Context, id int64) error
}
