package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"medexa/internal/domain"
	"medexa/internal/repository"
)

const createReminderTimesTable = `
CREATE TABLE IF NOT EXISTS reminder_times (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	medicine_id INTEGER NOT NULL,
	label TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(medicine_id) REFERENCES medicines(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_reminder_times_medicine_id ON reminder_times(medicine_id);
`

type ReminderTimeRepository struct {
	db *sql.DB
}

func NewReminderTimeRepository(db *sql.DB) repository.ReminderTimeRepository {
	return &ReminderTimeRepository{db: db}
}

func (r *ReminderTimeRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReminderTimesTable); err != nil {
		return fmt.Errorf("create reminder_times table: %w", err)
	}
	return nil
}

func (r *ReminderTimeRepository) ReplaceForMedicine(ctx context.Context, medicineID int64, times []domain.ReminderTime) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_times WHERE medicine_id=?`, medicineID); err != nil {
		return fmt.Errorf("delete reminder times: %w", err)
	}

	for i, rt := range times {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO reminder_times (medicine_id, label, position)
VALUES (?, ?, ?)`,
			medicineID,
			rt.Label,
			i,
		); err != nil {
			return fmt.Errorf("insert reminder time: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *ReminderTimeRepository) ListByMedicine(ctx context.Context, medicineID int64) ([]domain.ReminderTime, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, medicine_id, label, position
FROM reminder_times
WHERE medicine_id=?
ORDER BY position ASC, id ASC`, medicineID)
	if err != nil {
		return nil, fmt.Errorf("query reminder times: %w", err)
	}
	defer rows.Close()

	times := []domain.ReminderTime{}
	for rows.Next() {
		var rt domain.ReminderTime
		if err := rows.Scan(&rt.ID, &rt.MedicineID, &rt.Label, &rt.Position); err != nil {
			return nil, fmt.Errorf("scan reminder time: %w", err)
		}
		times = append(times, rt)
	}

	return times, rows.Err()
}
