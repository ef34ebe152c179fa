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

const createMedicinesTable = `
CREATE TABLE IF NOT EXISTS medicines (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	dosage TEXT NOT NULL,
	duration TEXT NOT NULL DEFAULT '',
	form TEXT NOT NULL,
	meal TEXT NOT NULL,
	frequency TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_medicines_user_id ON medicines(user_id);
`

const medicineColumns = `id, user_id, name, dosage, duration, form, meal, frequency, created_at, updated_at`

type MedicineRepository struct {
	db *sql.DB
}

func NewMedicineRepository(db *sql.DB) repository.MedicineRepository {
	return &MedicineRepository{db: db}
}

func (r *MedicineRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMedicinesTable); err != nil {
		return fmt.Errorf("create medicines table: %w", err)
	}
	return nil
}

func (r *MedicineRepository) Create(ctx context.Context, medicine *domain.Medicine) (int64, error) {
	now := time.Now().UTC()
	medicine.CreatedAt = now
	medicine.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO medicines (user_id, name, dosage, duration, form, meal, frequency, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		medicine.UserID,
		medicine.Name,
		medicine.Dosage,
		medicine.Duration,
		string(medicine.Form),
		string(medicine.Meal),
		string(medicine.Frequency),
		medicine.CreatedAt,
		medicine.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert medicine: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	medicine.ID = id
	return id, nil
}

func (r *MedicineRepository) Get(ctx context.Context, id int64) (*domain.Medicine, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+medicineColumns+`
FROM medicines
WHERE id=?`,
		id,
	)
	return scanMedicine(row)
}

func (r *MedicineRepository) ListByUser(ctx context.Context, userID string) ([]domain.Medicine, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+medicineColumns+`
FROM medicines
WHERE user_id=?
ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query medicines: %w", err)
	}
	defer rows.Close()

	medicines := []domain.Medicine{}
	for rows.Next() {
		medicine, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, *medicine)
	}

	return medicines, rows.Err()
}

func (r *MedicineRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_times WHERE medicine_id=?`, id); err != nil {
		return fmt.Errorf("delete reminder times: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM medicines WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("medicine delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("medicine %d: %w", id, repository.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit medicine delete: %w", err)
	}
	return nil
}

func scanMedicine(scanner rowScanner) (*domain.Medicine, error) {
	var (
		medicine  domain.Medicine
		form      string
		meal      string
		frequency string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := scanner.Scan(
		&medicine.ID,
		&medicine.UserID,
		&medicine.Name,
		&medicine.Dosage,
		&medicine.Duration,
		&form,
		&meal,
		&frequency,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("medicine: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan medicine: %w", err)
	}

	medicine.Form = domain.MedicineForm(form)
	medicine.Meal = domain.MealTiming(meal)
	medicine.Frequency = domain.Frequency(frequency)
	medicine.CreatedAt = createdAt.UTC()
	medicine.UpdatedAt = updatedAt.UTC()
	return &medicine, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
