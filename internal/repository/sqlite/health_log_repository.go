package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medexa/internal/domain"
	"medexa/internal/repository"
)

const createHealthLogsTable = `
CREATE TABLE IF NOT EXISTS health_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	value TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	recorded_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_health_logs_user_id ON health_logs(user_id);
`

type HealthLogRepository struct {
	db *sql.DB
}

func NewHealthLogRepository(db *sql.DB) repository.HealthLogRepository {
	return &HealthLogRepository{db: db}
}

func (r *HealthLogRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createHealthLogsTable); err != nil {
		return fmt.Errorf("create health_logs table: %w", err)
	}
	return nil
}

func (r *HealthLogRepository) Create(ctx context.Context, log *domain.HealthLog) (int64, error) {
	log.CreatedAt = time.Now().UTC()
	if log.RecordedAt.IsZero() {
		log.RecordedAt = log.CreatedAt
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO health_logs (user_id, type, value, notes, recorded_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		log.UserID,
		log.Type,
		log.Value,
		log.Notes,
		log.RecordedAt.UTC(),
		log.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert health log: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	log.ID = id
	return id, nil
}

func (r *HealthLogRepository) Get(ctx context.Context, id int64) (*domain.HealthLog, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, type, value, notes, recorded_at, created_at
FROM health_logs
WHERE id=?`,
		id,
	)
	return scanHealthLog(row)
}

// ListByUser returns the user's logs, most recently recorded first.
func (r *HealthLogRepository) ListByUser(ctx context.Context, userID string) ([]domain.HealthLog, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, type, value, notes, recorded_at, created_at
FROM health_logs
WHERE user_id=?
ORDER BY recorded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query health logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.HealthLog{}
	for rows.Next() {
		log, err := scanHealthLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}

	return logs, rows.Err()
}

func (r *HealthLogRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM health_logs WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete health log: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("health log delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("health log %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func scanHealthLog(scanner rowScanner) (*domain.HealthLog, error) {
	var (
		log        domain.HealthLog
		recordedAt time.Time
		createdAt  time.Time
	)
	if err := scanner.Scan(
		&log.ID,
		&log.UserID,
		&log.Type,
		&log.Value,
		&log.Notes,
		&recordedAt,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("health log: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan health log: %w", err)
	}
	log.RecordedAt = recordedAt.UTC()
	log.CreatedAt = createdAt.UTC()
	return &log, nil
}
