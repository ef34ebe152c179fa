package service

import (
	"context"
	"strings"
	"time"

	"medexa/internal/domain"
	"medexa/internal/repository"
)

// HealthLogInput carries a recorded metric. A zero RecordedAt means now.
type HealthLogInput struct {
	Type       string
	Value      string
	Notes      string
	RecordedAt time.Time
}

// HealthLogService records blood pressure, glucose, weight and similar readings.
type HealthLogService interface {
	Create(ctx context.Context, userID string, in HealthLogInput) (*domain.HealthLog, error)
	List(ctx context.Context, userID string) ([]domain.HealthLog, error)
	Delete(ctx context.Context, userID string, id int64) error
}

type healthLogService struct {
	logs repository.HealthLogRepository
}

func NewHealthLogService(logs repository.HealthLogRepository) HealthLogService {
	return &healthLogService{logs: logs}
}

func (s *healthLogService) Create(ctx context.Context, userID string, in HealthLogInput) (*domain.HealthLog, error) {
	log := &domain.HealthLog{
		UserID:     userID,
		Type:       strings.TrimSpace(in.Type),
		Value:      strings.TrimSpace(in.Value),
		Notes:      strings.TrimSpace(in.Notes),
		RecordedAt: in.RecordedAt,
	}
	if log.Type == "" {
		return nil, invalid("type", "is required")
	}
	if log.Value == "" {
		return nil, invalid("value", "is required")
	}

	if _, err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *healthLogService) List(ctx context.Context, userID string) ([]domain.HealthLog, error) {
	return s.logs.ListByUser(ctx, userID)
}

func (s *healthLogService) Delete(ctx context.Context, userID string, id int64) error {
	log, err := s.logs.Get(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if log.UserID != userID {
		return ErrNotFound
	}
	return mapRepoErr(s.logs.Delete(ctx, id))
}
