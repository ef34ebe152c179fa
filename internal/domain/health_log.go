package domain

import "time"

// HealthLog is a single recorded health metric, e.g. blood pressure "120/80 mmHg".
type HealthLog struct {
	ID         int64
	UserID     string
	Type       string
	Value      string
	Notes      string
	RecordedAt time.Time
	CreatedAt  time.Time
}
